package catalog

import (
	"context"
	"encoding/json"
	"net/url"

	"cadence/internal/logging"
	"cadence/internal/services"
)

// Lookup resolves a single resource. Album lookups include the track list.
// Results are served from the in-memory cache, then the persistent store,
// before the API is called.
func (c *Client) Lookup(ctx context.Context, ref Reference) (*Metadata, error) {
	key := ref.Key()
	if meta, ok := c.cache.Get(key); ok {
		c.metrics.CatalogRequest("lookup", "cache")
		return meta.clone(), nil
	}
	if meta := c.loadStored(ctx, key); meta != nil {
		c.cache.Add(key, meta)
		c.metrics.CatalogRequest("lookup", "store")
		return meta.clone(), nil
	}

	var query url.Values
	if ref.Kind == KindAlbums {
		query = url.Values{"views": {"tracks"}}
	}
	var doc document
	if err := c.get(ctx, "lookup", ref.Storefront, catalogPath(ref.Storefront, ref.Kind, ref.ID), query, false, &doc); err != nil {
		return nil, err
	}
	if len(doc.Data) == 0 {
		return nil, services.Wrap(services.ErrNotFound, "catalog", "lookup", key, nil)
	}
	item, ok := doc.Data[0].toItem(c.artworkSize)
	if !ok {
		return nil, services.Wrap(services.ErrNotFound, "catalog", "lookup", key+" has no attributes", nil)
	}
	meta := &Metadata{Item: item}
	if ref.Kind == KindAlbums {
		meta.Tracks = doc.Data[0].tracks()
	}

	c.cache.Add(key, meta)
	c.saveStored(ctx, key, meta)
	return meta.clone(), nil
}

func (c *Client) loadStored(ctx context.Context, key string) *Metadata {
	if c.store == nil {
		return nil
	}
	payload, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn("catalog store read failed", logging.String("key", key), logging.Error(err))
		return nil
	}
	if !ok {
		return nil
	}
	var meta Metadata
	if err := json.Unmarshal(payload, &meta); err != nil {
		c.logger.Warn("catalog store entry unreadable", logging.String("key", key), logging.Error(err))
		return nil
	}
	return &meta
}

func (c *Client) saveStored(ctx context.Context, key string, meta *Metadata) {
	if c.store == nil {
		return
	}
	payload, err := json.Marshal(meta)
	if err != nil {
		return
	}
	if err := c.store.Put(ctx, key, payload); err != nil {
		c.logger.Warn("catalog store write failed", logging.String("key", key), logging.Error(err))
	}
}
