package catalog

import (
	"context"
	"net/url"

	"cadence/internal/services"
)

// Artist resolves an artist page URL into the artist's releases.
func (c *Client) Artist(ctx context.Context, pageURL string) (*Discography, error) {
	ref, ok := ParseArtistReference(pageURL)
	if !ok {
		return nil, services.Wrap(services.ErrValidation, "catalog", "artist", "invalid artist URL", nil)
	}
	var doc document
	query := url.Values{"views": {artistViews}}
	if err := c.get(ctx, "artist", ref.Storefront, catalogPath(ref.Storefront, KindArtists, ref.ID), query, false, &doc); err != nil {
		return nil, err
	}
	if len(doc.Data) == 0 {
		return nil, services.Wrap(services.ErrNotFound, "catalog", "artist", ref.Key(), nil)
	}
	views := doc.Data[0].Views

	disc := &Discography{
		Albums:       itemsOf(views["full-albums"], c.artworkSize),
		EPs:          []Item{},
		Singles:      []Item{},
		MusicVideos:  itemsOf(views["music-videos"], c.artworkSize),
		Compilations: itemsOf(views["compilations"], c.artworkSize),
	}
	for _, item := range itemsOf(views["singles"], c.artworkSize) {
		if isEP(item.Name) {
			disc.EPs = append(disc.EPs, item)
		} else {
			disc.Singles = append(disc.Singles, item)
		}
	}
	return disc, nil
}
