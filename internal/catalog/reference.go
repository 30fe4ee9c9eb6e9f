package catalog

import (
	"regexp"
	"strings"
)

// Resource kinds as named by the catalog API.
const (
	KindAlbums      = "albums"
	KindSongs       = "songs"
	KindPlaylists   = "playlists"
	KindMusicVideos = "music-videos"
	KindStations    = "stations"
	KindArtists     = "artists"
)

var (
	referencePattern = regexp.MustCompile(`music\.apple\.com/([a-z]{2})/(album|playlist|music-video|station)/([^/]+)/(\d+)`)
	songIDPattern    = regexp.MustCompile(`\?i=(\d+)`)
	artistPattern    = regexp.MustCompile(`music\.apple\.com/([a-z]{2})/artist/[^/]+/(\d+)`)
)

var kindByPath = map[string]string{
	"album":       KindAlbums,
	"playlist":    KindPlaylists,
	"music-video": KindMusicVideos,
	"station":     KindStations,
}

// Reference identifies one catalog resource.
type Reference struct {
	Storefront string
	Kind       string
	ID         string
}

// Key is the cache key for the reference.
func (r Reference) Key() string {
	return r.Storefront + "/" + r.Kind + "/" + r.ID
}

// ParseReference extracts the storefront, kind and identifier from a job
// URL. A ?i=<id> parameter selects the song inside an album link.
func ParseReference(url string) (Reference, bool) {
	m := referencePattern.FindStringSubmatch(url)
	if m == nil {
		return Reference{}, false
	}
	ref := Reference{Storefront: m[1], Kind: kindByPath[m[2]], ID: m[4]}
	if song := songIDPattern.FindStringSubmatch(url); song != nil {
		ref.Kind = KindSongs
		ref.ID = song[1]
	}
	return ref, true
}

// ParseArtistReference extracts the storefront and artist identifier from an
// artist page URL.
func ParseArtistReference(url string) (Reference, bool) {
	m := artistPattern.FindStringSubmatch(url)
	if m == nil {
		return Reference{}, false
	}
	return Reference{Storefront: m[1], Kind: KindArtists, ID: m[2]}, true
}

func isEP(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), " - ep")
}
