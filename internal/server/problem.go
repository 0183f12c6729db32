package server

import (
	"encoding/json"
	"net/http"
)

// Problem types for RFC 7807 Problem Details responses.
const (
	ProblemTypeNotFound        = "https://loftloot.shop/problems/not-found"
	ProblemTypeBadRequest      = "https://loftloot.shop/problems/bad-request"
	ProblemTypeInternal        = "https://loftloot.shop/problems/internal-error"
	ProblemTypeRateLimited     = "https://loftloot.shop/problems/rate-limited"
	ProblemTypeUnauthorized    = "https://loftloot.shop/problems/unauthorized"
	ProblemTypeForbidden       = "https://loftloot.shop/problems/forbidden"
	ProblemTypeNotReady        = "https://loftloot.shop/problems/catalog-not-ready"
	ProblemTypeFeedUnavailable = "https://loftloot.shop/problems/feed-unavailable"
	ProblemTypeFeedMalformed   = "https://loftloot.shop/problems/feed-malformed"
)

// Problem represents an RFC 7807 Problem Details response.
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

// WriteProblem writes an RFC 7807 Problem Details JSON response.
func WriteProblem(w http.ResponseWriter, p Problem) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// NotFound writes a 404 problem response.
func NotFound(w http.ResponseWriter, detail, instance string) {
	WriteProblem(w, Problem{
		Type:     ProblemTypeNotFound,
		Title:    "Not Found",
		Status:   http.StatusNotFound,
		Detail:   detail,
		Instance: instance,
	})
}

// BadRequest writes a 400 problem response.
func BadRequest(w http.ResponseWriter, detail, instance string) {
	WriteProblem(w, Problem{
		Type:     ProblemTypeBadRequest,
		Title:    "Bad Request",
		Status:   http.StatusBadRequest,
		Detail:   detail,
		Instance: instance,
	})
}

// InternalError writes a 500 problem response.
func InternalError(w http.ResponseWriter, detail, instance string) {
	WriteProblem(w, Problem{
		Type:     ProblemTypeInternal,
		Title:    "Internal Server Error",
		Status:   http.StatusInternalServerError,
		Detail:   detail,
		Instance: instance,
	})
}

// Unauthorized writes a 401 problem response with a Bearer challenge.
func Unauthorized(w http.ResponseWriter, detail, instance string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="loftloot"`)
	WriteProblem(w, Problem{
		Type:     ProblemTypeUnauthorized,
		Title:    "Unauthorized",
		Status:   http.StatusUnauthorized,
		Detail:   detail,
		Instance: instance,
	})
}

// Forbidden writes a 403 problem response.
func Forbidden(w http.ResponseWriter, detail, instance string) {
	WriteProblem(w, Problem{
		Type:     ProblemTypeForbidden,
		Title:    "Forbidden",
		Status:   http.StatusForbidden,
		Detail:   detail,
		Instance: instance,
	})
}

// RateLimited writes a 429 problem response.
func RateLimited(w http.ResponseWriter, detail, instance string) {
	WriteProblem(w, Problem{
		Type:     ProblemTypeRateLimited,
		Title:    "Too Many Requests",
		Status:   http.StatusTooManyRequests,
		Detail:   detail,
		Instance: instance,
	})
}

// NotReady writes a 503 problem response for requests made before the
// first catalog load.
func NotReady(w http.ResponseWriter, detail, instance string) {
	w.Header().Set("Retry-After", "5")
	WriteProblem(w, Problem{
		Type:     ProblemTypeNotReady,
		Title:    "Service Unavailable",
		Status:   http.StatusServiceUnavailable,
		Detail:   detail,
		Instance: instance,
	})
}

// FeedFailure writes a 502 problem response for a feed that could not be
// fetched (malformed is true when it arrived but was not a list of records).
func FeedFailure(w http.ResponseWriter, malformed bool, detail, instance string) {
	typ := ProblemTypeFeedUnavailable
	if malformed {
		typ = ProblemTypeFeedMalformed
	}
	WriteProblem(w, Problem{
		Type:     typ,
		Title:    "Bad Gateway",
		Status:   http.StatusBadGateway,
		Detail:   detail,
		Instance: instance,
	})
}
