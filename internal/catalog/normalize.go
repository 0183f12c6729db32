package catalog

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/loftloot/loftloot/pkg/models"
)

const (
	defaultPlaceholderColor = "cbd5e1"
	videoThumbnailFormat    = "https://img.youtube.com/vi/%s/hqdefault.jpg"
	placeholderURIFormat    = "data:image/svg+xml;charset=utf-8,%%3Csvg xmlns='http://www.w3.org/2000/svg' viewBox='0 0 10 10'%%3E%%3Crect width='10' height='10' fill='%%23%s'/%%3E%%3C/svg%%3E"
)

// NormalizeText folds s into a matching key: lower-case, diacritics removed,
// anything but ASCII word characters and whitespace dropped, whitespace runs
// collapsed to a single space, trimmed. The result is never meant for display.
func NormalizeText(s string) string {
	if s == "" {
		return ""
	}

	// A transform chain carries per-call state, so build one each time.
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	folded, _, err := transform.String(stripMarks, strings.ToLower(s))
	if err != nil {
		folded = strings.ToLower(s)
	}

	var b strings.Builder
	b.Grow(len(folded))
	pendingSpace := false
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
		case r >= 'A' && r <= 'Z':
			r += 'a' - 'A'
		case unicode.IsSpace(r):
			pendingSpace = b.Len() > 0
			continue
		default:
			continue
		}
		if pendingSpace {
			b.WriteByte(' ')
			pendingSpace = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Decade returns "1990s" style labels, or "Unknown" without a release year.
func Decade(releaseDate *int) string {
	if releaseDate == nil || *releaseDate == 0 {
		return models.DecadeUnknown
	}
	return fmt.Sprintf("%ds", floorDecade(*releaseDate))
}

func floorDecade(year int) int {
	d := year / 10 * 10
	if year < 0 && year%10 != 0 {
		d -= 10
	}
	return d
}

// VideoID extracts a video identifier from a recognised video-host URL.
// It returns "" for anything that should be treated as an image.
func VideoID(raw string) string {
	switch {
	case strings.Contains(raw, "youtu.be/"):
		u, err := url.Parse(raw)
		if err != nil {
			return ""
		}
		return u.Path[strings.LastIndex(u.Path, "/")+1:]
	case strings.Contains(raw, "youtube.com/watch"):
		u, err := url.Parse(raw)
		if err != nil {
			return ""
		}
		return u.Query().Get("v")
	}
	return ""
}

// Normalize derives an enriched Product from a raw record. It never fails;
// fields that cannot be derived degrade to their empty form. RelatedIDs are
// left empty and filled in by Build.
func Normalize(raw models.RawProduct) *models.Product {
	collection := raw.Collection
	if strings.TrimSpace(collection) == "" {
		collection = models.CollectionOther
	}

	color := raw.ImageColor
	if color == "" {
		color = defaultPlaceholderColor
	}

	media := buildMedia(raw.Images)

	p := &models.Product{
		ID:           raw.ID,
		Name:         raw.Name,
		Brand:        raw.Brand,
		Manufacturer: raw.Manufacturer,
		Collection:   collection,
		Type:         raw.Type,
		Description:  raw.Description,
		Price:        raw.Price,
		Stock:        raw.Stock,
		ReleaseDate:  raw.ReleaseDate,
		Condition:    raw.Condition,
		Demographic:  raw.Demographic,

		NormalizedName:         NormalizeText(raw.Name),
		NormalizedBrand:        NormalizeText(raw.Brand),
		NormalizedManufacturer: NormalizeText(raw.Manufacturer),
		NormalizedCollection:   NormalizeText(collection),
		NormalizedType:         NormalizeText(raw.Type),
		NormalizedDescription:  NormalizeText(raw.Description),

		Decade:           Decade(raw.ReleaseDate),
		IsSold:           raw.Stock < 1,
		Media:            media,
		PrimaryThumbnail: primaryThumbnail(media),
		PlaceholderColor: color,
		PlaceholderURI:   fmt.Sprintf(placeholderURIFormat, color),
		CommerceLinks:    commerceLinks(raw.Links),
		ConditionSchema:  conditionSchema(raw.Condition),
		RelatedIDs:       []int64{},
	}
	return p
}

func buildMedia(images []string) []models.MediaItem {
	media := make([]models.MediaItem, 0, len(images))
	for _, u := range images {
		item := models.MediaItem{OriginalURL: u, ThumbnailURL: u}
		if id := VideoID(u); id != "" {
			item.IsVideo = true
			item.VideoID = id
			item.ThumbnailURL = fmt.Sprintf(videoThumbnailFormat, id)
		}
		media = append(media, item)
	}
	return media
}

// primaryThumbnail picks the first image, falling back to the first entry.
func primaryThumbnail(media []models.MediaItem) string {
	for i := range media {
		if !media[i].IsVideo {
			return media[i].ThumbnailURL
		}
	}
	if len(media) > 0 {
		return media[0].ThumbnailURL
	}
	return ""
}

func commerceLinks(links []models.Link) []models.CommerceLink {
	out := make([]models.CommerceLink, 0, len(links))
	for _, l := range links {
		out = append(out, models.CommerceLink{
			Platform: l.Platform,
			URL:      l.URL,
			Logo:     models.Logo(l.Platform),
		})
	}
	return out
}

func conditionSchema(condition string) models.ConditionSchema {
	if strings.Contains(strings.ToLower(condition), "new") {
		return models.ConditionNew
	}
	return models.ConditionUsed
}
