// Package enrichment fills a queued job's display metadata and track list
// from the catalog.
//
// Enrichment is best-effort and runs concurrently with dispatch. A track list
// that lands after the worker has started is picked up from the next track
// marker onward; tracks already reported are not reconciled.
package enrichment
