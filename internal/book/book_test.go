package book_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/larkwiot/bookexplorer/internal/book"
	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
)

func TestIsbnCandidacy(t *testing.T) {
	assert.True(t, book.IsIsbnCandidate("9781718501263"))
	assert.True(t, book.IsIsbnCandidate("9781718501270"))
	assert.True(t, book.IsIsbnCandidate("1718501269"))
	assert.True(t, book.IsIsbnCandidate("043942089X"))

	assert.False(t, book.IsIsbnCandidate("123"))
	assert.False(t, book.IsIsbnCandidate("11111111111"))
	assert.False(t, book.IsIsbnCandidate("1111111111"))
	assert.False(t, book.IsIsbnCandidate("04394X089X"))
}

func TestIsbn10Validity(t *testing.T) {
	assert.True(t, book.ISBN10("1718501269").IsValid())
	assert.True(t, book.ISBN10("043942089X").IsValid())
	assert.False(t, book.ISBN10("1718501268").IsValid())
}

func TestIsbn13Validity(t *testing.T) {
	assert.True(t, book.ISBN13("9781718501263").IsValid())
	assert.True(t, book.ISBN13("9781718501270").IsValid())
	assert.False(t, book.ISBN13("1234567891123").IsValid())
}

func TestParseIsbn(t *testing.T) {
	isbn, ok := book.ParseIsbn(" 978-1-7185-0126-3 ")
	assert.True(t, ok)
	assert.Equal(t, book.ISBN("9781718501263"), isbn)

	isbn, ok = book.ParseIsbn("0-439-42089-x")
	assert.True(t, ok)
	assert.Equal(t, book.ISBN("043942089X"), isbn)

	_, ok = book.ParseIsbn("harry potter")
	assert.False(t, ok)

	_, ok = book.ParseIsbn("1234567891123")
	assert.False(t, ok)
}

func TestMissingFieldDefaults(t *testing.T) {
	s := book.Summary{Title: "T"}
	assert.Equal(t, book.UnknownAuthor, s.AuthorsLine())
	assert.Equal(t, book.NoDescription, s.DescriptionLine(book.DefaultClipLength))

	s.Authors = mo.Some([]string{})
	s.Description = mo.Some("  ")
	assert.Equal(t, book.UnknownAuthor, s.AuthorsLine())
	assert.Equal(t, book.NoDescription, s.DescriptionLine(book.DefaultClipLength))
}

func TestAuthorsLine(t *testing.T) {
	s := book.Summary{Title: "T", Authors: mo.Some([]string{"A", "B"})}
	assert.Equal(t, "A, B", s.AuthorsLine())
}

func TestDescriptionClipping(t *testing.T) {
	long := strings.Repeat("ab", 100)
	s := book.Summary{Description: mo.Some(long)}

	line := s.DescriptionLine(book.DefaultClipLength)
	assert.Len(t, line, book.DefaultClipLength+len(book.EllipsisMarker))
	assert.True(t, strings.HasSuffix(line, book.EllipsisMarker))
	assert.Equal(t, long[:book.DefaultClipLength], strings.TrimSuffix(line, book.EllipsisMarker))

	short := book.Summary{Description: mo.Some("D")}
	assert.Equal(t, "D", short.DescriptionLine(book.DefaultClipLength))

	exact := book.Summary{Description: mo.Some(strings.Repeat("x", book.DefaultClipLength))}
	assert.Equal(t, strings.Repeat("x", book.DefaultClipLength), exact.DescriptionLine(book.DefaultClipLength))
}

func TestClipCountsRunes(t *testing.T) {
	assert.Equal(t, "жжж...", book.Clip("жжжж", 3))
	assert.Equal(t, "жжжж", book.Clip("жжжж", 0))
}

func TestIdentifier(t *testing.T) {
	withVolume := book.Summary{VolumeID: "zyTCAlFPjgYC", Title: "T"}
	assert.Equal(t, "zyTCAlFPjgYC", withVolume.ID())

	a := book.Summary{Title: "T", Authors: mo.Some([]string{"A", "B"})}
	b := book.Summary{Title: "T", Authors: mo.Some([]string{"A", "B"}), Description: mo.Some("other")}
	c := book.Summary{Title: "T", Authors: mo.Some([]string{"AB"})}
	assert.Equal(t, a.ID(), b.ID())
	assert.NotEqual(t, a.ID(), c.ID())
}

func TestMetaLine(t *testing.T) {
	s := book.Summary{
		Publisher:     mo.Some("No Starch Press"),
		PublishedDate: mo.Some("2021-01-26"),
		PageCount:     mo.Some(264),
		Categories:    []string{"Computers", "Security", "Networking", "Cloud"},
	}
	assert.Equal(t, "Published by No Starch Press · 2021-01-26 · 264 pages", s.MetaLine())
	assert.Equal(t, []string{"Computers", "Security", "Networking"}, s.TopCategories())
	assert.Empty(t, book.Summary{}.MetaLine())
}

func TestStringIsValidJSON(t *testing.T) {
	s := book.Summary{Title: "Der \"Zauberberg\"\n", Authors: mo.Some([]string{"Thomas Mann", "Étienne"})}

	var decoded map[string]string
	assert.NoError(t, json.Unmarshal([]byte(s.String()), &decoded))
	assert.Equal(t, "Der \"Zauberberg\"\n", decoded["title"])
	assert.Equal(t, "Thomas Mann, Étienne", decoded["authors"])
}
