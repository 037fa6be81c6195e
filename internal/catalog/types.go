package catalog

import (
	"context"
	"strings"
)

// Book represents a volume from the Google Books catalog
type Book struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Authors   []string `json:"authors,omitempty"`
	Thumbnail string   `json:"thumbnail,omitempty"`
}

// CoverURL returns the thumbnail URL upgraded to https.
// The second return value is false when the book has no cover.
func (b Book) CoverURL() (string, bool) {
	if b.Thumbnail == "" {
		return "", false
	}
	return SecureURL(b.Thumbnail), true
}

// AuthorLine returns the authors joined for display
func (b Book) AuthorLine() string {
	if len(b.Authors) == 0 {
		return "Unknown Author"
	}
	return strings.Join(b.Authors, ", ")
}

// SearchResult contains the books returned for one query, in API order
type SearchResult struct {
	Query string `json:"query"`
	Books []Book `json:"books"`
}

// Searcher defines the interface for catalog access
type Searcher interface {
	// Search issues exactly one catalog request for the query
	Search(ctx context.Context, query string) (*SearchResult, error)
}

// SecureURL rewrites an http:// URL to https://
func SecureURL(raw string) string {
	if strings.HasPrefix(raw, "http://") {
		return "https://" + strings.TrimPrefix(raw, "http://")
	}
	return raw
}

// volumesResponse mirrors the subset of /volumes the client reads
type volumesResponse struct {
	Items []volumeItem `json:"items"`
}

type volumeItem struct {
	ID         string     `json:"id"`
	VolumeInfo volumeInfo `json:"volumeInfo"`
}

type volumeInfo struct {
	Title      string      `json:"title"`
	Authors    []string    `json:"authors"`
	ImageLinks *imageLinks `json:"imageLinks"`
}

type imageLinks struct {
	Thumbnail string `json:"thumbnail"`
}

func (v volumeItem) toBook() Book {
	b := Book{
		ID:      v.ID,
		Title:   v.VolumeInfo.Title,
		Authors: v.VolumeInfo.Authors,
	}
	if v.VolumeInfo.ImageLinks != nil {
		b.Thumbnail = v.VolumeInfo.ImageLinks.Thumbnail
	}
	return b
}
