package catalog

import (
	"context"
	"errors"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"go.uber.org/zap"
)

// LiveRequest is one keystroke on the live-suggestion socket.
type LiveRequest struct {
	Seq         int64  `json:"seq"`
	Query       string `json:"query"`
	InStockOnly bool   `json:"in_stock_only"`
}

// LiveResponse answers the newest pending LiveRequest.
type LiveResponse struct {
	Seq    int64             `json:"seq"`
	Result *SuggestionResult `json:"result,omitempty"`
	Error  string            `json:"error,omitempty"`
}

// handleLiveSuggest streams suggestions over a websocket. Requests that
// arrive while an answer is being computed replace each other; only the
// newest one is answered.
//
//	@Summary		Live suggestions
//	@Description	Websocket. Send {"seq","query","in_stock_only"} per keystroke; superseded keystrokes are dropped.
//	@Tags			catalog
//	@Router			/catalog/suggest/live [get]
func (h *Handler) handleLiveSuggest(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: h.originPatterns})
	if err != nil {
		h.logger.Warn("live suggest upgrade failed", zap.Error(err))
		return
	}
	defer conn.CloseNow()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	latest := make(chan LiveRequest, 1)
	go func() {
		defer cancel()
		for {
			var req LiveRequest
			if err := wsjson.Read(ctx, conn, &req); err != nil {
				if websocket.CloseStatus(err) == -1 && !errors.Is(err, context.Canceled) {
					h.logger.Debug("live suggest read", zap.Error(err))
				}
				return
			}
			// Last write wins: drop a pending request nobody has answered yet.
			select {
			case <-latest:
			default:
			}
			latest <- req
		}
	}()

	for {
		select {
		case <-ctx.Done():
			_ = conn.Close(websocket.StatusNormalClosure, "")
			return
		case req := <-latest:
			resp := LiveResponse{Seq: req.Seq}
			res, err := h.engine.Suggest(req.Query, req.InStockOnly)
			if err != nil {
				resp.Error = err.Error()
			} else {
				resp.Result = &res
			}
			if err := wsjson.Write(ctx, conn, resp); err != nil {
				return
			}
		}
	}
}
