package catalog

import (
	"context"
	"net/url"
	"strings"

	"cadence/internal/services"
)

// Search queries songs, albums, artists, music videos and playlists, at most
// ten of each.
func (c *Client) Search(ctx context.Context, term, storefront string) (*SearchResults, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, services.Wrap(services.ErrValidation, "catalog", "search", "query is required", nil)
	}
	sf := c.resolveStorefront(storefront)
	query := url.Values{
		"term":  {term},
		"types": {searchTypes},
		"limit": {searchLimit},
	}
	var doc document
	if err := c.get(ctx, "search", sf, catalogPath(sf, "search"), query, true, &doc); err != nil {
		return nil, err
	}

	results := &SearchResults{
		Top:         []Item{},
		Songs:       itemsOf(doc.Results["songs"], c.artworkSize),
		Albums:      itemsOf(doc.Results["albums"], c.artworkSize),
		Artists:     itemsOf(doc.Results["artists"], c.artworkSize),
		MusicVideos: itemsOf(doc.Results["music-videos"], c.artworkSize),
		Playlists:   itemsOf(doc.Results["playlists"], c.artworkSize),
	}
	for _, group := range [][]Item{results.Songs, results.Albums, results.Artists, results.MusicVideos, results.Playlists} {
		if len(group) > 0 {
			results.Top = append(results.Top, group[0])
		}
	}
	return results, nil
}
