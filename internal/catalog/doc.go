// Package catalog resolves music references against the public catalog API.
//
// The Client discovers a developer token from the catalog web front-end,
// caches it, and refreshes it once when the API answers 401 or 403. Lookups
// are cached in memory (LRU) and optionally in a persistent Store. Transient
// failures (network errors, 429, 5xx) are retried with exponential backoff.
//
// Besides single lookups used for job enrichment, the client serves grouped
// search results and artist discographies for the HTTP API.
package catalog
