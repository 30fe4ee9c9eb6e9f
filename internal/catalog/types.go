package catalog

import (
	"strconv"
	"strings"
)

// Item is the flattened view of one catalog resource.
type Item struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Name        string `json:"name"`
	Artist      string `json:"artist"`
	Album       string `json:"album"`
	URL         string `json:"url"`
	Image       string `json:"image"`
	ReleaseDate string `json:"releaseDate"`
	TrackNumber int    `json:"trackNumber,omitempty"`
	TrackCount  int    `json:"trackCount,omitempty"`
	HasLyrics   bool   `json:"hasLyrics"`
}

// Track is one entry in an album's track list.
type Track struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
}

// Metadata is the result of a single lookup.
type Metadata struct {
	Item
	Tracks []Track `json:"tracks,omitempty"`
}

func (m *Metadata) clone() *Metadata {
	if m == nil {
		return nil
	}
	out := *m
	out.Tracks = append([]Track(nil), m.Tracks...)
	return &out
}

// SearchResults groups search hits by type. Top holds the first hit of each
// non-empty group.
type SearchResults struct {
	Top         []Item `json:"top"`
	Songs       []Item `json:"songs"`
	Albums      []Item `json:"albums"`
	Artists     []Item `json:"artists"`
	Playlists   []Item `json:"playlists"`
	MusicVideos []Item `json:"music_videos"`
}

// Discography groups an artist's releases. Singles whose name ends in
// " - EP" are listed under EPs.
type Discography struct {
	Albums       []Item `json:"albums"`
	EPs          []Item `json:"eps"`
	Singles      []Item `json:"singles"`
	MusicVideos  []Item `json:"music_videos"`
	Compilations []Item `json:"compilations"`
}

type document struct {
	Data    []resource              `json:"data"`
	Results map[string]resourceList `json:"results"`
}

type resourceList struct {
	Data []resource `json:"data"`
}

type resource struct {
	ID            string                  `json:"id"`
	Type          string                  `json:"type"`
	Attributes    *attributes             `json:"attributes"`
	Views         map[string]resourceList `json:"views"`
	Relationships map[string]resourceList `json:"relationships"`
}

type attributes struct {
	Name        string `json:"name"`
	ArtistName  string `json:"artistName"`
	AlbumName   string `json:"albumName"`
	URL         string `json:"url"`
	ReleaseDate string `json:"releaseDate"`
	TrackNumber int    `json:"trackNumber"`
	TrackCount  int    `json:"trackCount"`
	HasLyrics   bool   `json:"hasLyrics"`
	Artwork     struct {
		URL string `json:"url"`
	} `json:"artwork"`
}

// toItem flattens a resource. Resources without attributes yield false.
func (r resource) toItem(artworkSize int) (Item, bool) {
	if r.Attributes == nil {
		return Item{}, false
	}
	a := r.Attributes
	return Item{
		ID:          r.ID,
		Type:        r.Type,
		Name:        a.Name,
		Artist:      a.ArtistName,
		Album:       a.AlbumName,
		URL:         a.URL,
		Image:       sizeArtwork(a.Artwork.URL, artworkSize),
		ReleaseDate: a.ReleaseDate,
		TrackNumber: a.TrackNumber,
		TrackCount:  a.TrackCount,
		HasLyrics:   a.HasLyrics,
	}, true
}

// tracks returns the album track list from either the views or the
// relationships block.
func (r resource) tracks() []Track {
	list, ok := r.Views["tracks"]
	if !ok {
		list = r.Relationships["tracks"]
	}
	out := make([]Track, 0, len(list.Data))
	for _, t := range list.Data {
		if t.Attributes == nil {
			continue
		}
		out = append(out, Track{Number: t.Attributes.TrackNumber, Title: t.Attributes.Name})
	}
	return out
}

func itemsOf(list resourceList, artworkSize int) []Item {
	items := make([]Item, 0, len(list.Data))
	for _, r := range list.Data {
		if item, ok := r.toItem(artworkSize); ok {
			items = append(items, item)
		}
	}
	return items
}

func sizeArtwork(url string, size int) string {
	if url == "" || !strings.Contains(url, "{w}") {
		return url
	}
	s := strconv.Itoa(size)
	return strings.NewReplacer("{w}", s, "{h}", s).Replace(url)
}
