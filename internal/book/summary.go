package book

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

const (
	UnknownAuthor     = "Unknown Author"
	NoDescription     = "No description available."
	EllipsisMarker    = "..."
	DefaultClipLength = 150
	MaxCategories     = 3
)

// Summary is the display record for one catalog entry. It is produced once by
// a provider's mapping step and never modified afterwards.
type Summary struct {
	VolumeID      string              `json:"id,omitempty"`
	Title         string              `json:"title"`
	Authors       mo.Option[[]string] `json:"authors"`
	Description   mo.Option[string]   `json:"description"`
	Publisher     mo.Option[string]   `json:"publisher"`
	PublishedDate mo.Option[string]   `json:"published_date"`
	PageCount     mo.Option[int]      `json:"page_count"`
	Categories    []string            `json:"categories,omitempty"`
	Thumbnail     mo.Option[string]   `json:"thumbnail"`
}

// String renders title and author line as a JSON object, for log lines.
func (s Summary) String() string {
	data, err := json.Marshal(struct {
		Title   string `json:"title"`
		Authors string `json:"authors"`
	}{s.Title, s.AuthorsLine()})
	if err != nil {
		return s.Title
	}
	return string(data)
}

// ID identifies a summary across re-renders. The catalog volume id is used
// when present; otherwise a hash of title and authors is synthesized.
func (s Summary) ID() string {
	if s.VolumeID != "" {
		return s.VolumeID
	}
	h := xxhash.New()
	_, _ = h.WriteString(s.Title)
	for _, author := range s.Authors.OrElse(nil) {
		_, _ = h.WriteString("\x00")
		_, _ = h.WriteString(author)
	}
	return "h" + strconv.FormatUint(h.Sum64(), 16)
}

func (s Summary) AuthorsLine() string {
	authors := lo.Compact(s.Authors.OrElse(nil))
	if len(authors) == 0 {
		return UnknownAuthor
	}
	return strings.Join(authors, ", ")
}

// DescriptionLine returns the description clipped to clip runes plus the
// ellipsis marker. A clip of zero or less disables clipping.
func (s Summary) DescriptionLine(clip int) string {
	description, ok := s.Description.Get()
	if !ok || strings.TrimSpace(description) == "" {
		return NoDescription
	}
	return Clip(description, clip)
}

// MetaLine joins publisher, publish date and page count, omitting the absent ones.
func (s Summary) MetaLine() string {
	parts := make([]string, 0, 3)
	if publisher, ok := s.Publisher.Get(); ok && publisher != "" {
		parts = append(parts, "Published by "+publisher)
	}
	if date, ok := s.PublishedDate.Get(); ok && date != "" {
		parts = append(parts, date)
	}
	if pages, ok := s.PageCount.Get(); ok && pages > 0 {
		parts = append(parts, fmt.Sprintf("%d pages", pages))
	}
	return strings.Join(parts, " · ")
}

func (s Summary) TopCategories() []string {
	if len(s.Categories) > MaxCategories {
		return s.Categories[:MaxCategories]
	}
	return s.Categories
}

func Clip(s string, clip int) string {
	runes := []rune(s)
	if clip <= 0 || len(runes) <= clip {
		return s
	}
	return string(runes[:clip]) + EllipsisMarker
}
