// Package metacache persists catalog lookup payloads in SQLite so resolved
// metadata survives daemon restarts.
//
// Entries older than the configured TTL are treated as misses and removed by
// Prune. A zero TTL keeps entries forever.
package metacache
