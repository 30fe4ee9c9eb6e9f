package catalog

import "testing"

func TestParseReference(t *testing.T) {
	tests := []struct {
		url  string
		want Reference
		ok   bool
	}{
		{"https://music.apple.com/us/album/some-album/1440857781", Reference{"us", KindAlbums, "1440857781"}, true},
		{"https://music.apple.com/gb/album/some-album/1440857781?i=1440857790", Reference{"gb", KindSongs, "1440857790"}, true},
		{"https://music.apple.com/jp/playlist/mix/1234", Reference{"jp", KindPlaylists, "1234"}, true},
		{"https://music.apple.com/us/music-video/clip/555", Reference{"us", KindMusicVideos, "555"}, true},
		{"https://music.apple.com/us/station/radio/777", Reference{"us", KindStations, "777"}, true},
		{"https://music.apple.com/us/song/title/42", Reference{}, false},
		{"https://example.com/us/album/x/1", Reference{}, false},
	}
	for _, tt := range tests {
		got, ok := ParseReference(tt.url)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseReference(%q) = %+v, %v; want %+v, %v", tt.url, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseArtistReference(t *testing.T) {
	ref, ok := ParseArtistReference("https://music.apple.com/us/artist/someone/909253")
	if !ok || ref.Storefront != "us" || ref.ID != "909253" || ref.Kind != KindArtists {
		t.Fatalf("unexpected artist reference %+v %v", ref, ok)
	}
	if _, ok := ParseArtistReference("https://music.apple.com/us/album/x/1"); ok {
		t.Fatal("album URL must not parse as artist")
	}
}

func TestSizeArtwork(t *testing.T) {
	if got := sizeArtwork("https://img/{w}x{h}bb.jpg", 600); got != "https://img/600x600bb.jpg" {
		t.Fatalf("unexpected artwork url %q", got)
	}
	if got := sizeArtwork("https://img/fixed.jpg", 600); got != "https://img/fixed.jpg" {
		t.Fatalf("fixed artwork should be untouched, got %q", got)
	}
}

func TestIsEP(t *testing.T) {
	if !isEP("Summer - EP") || !isEP("summer - ep") {
		t.Fatal("expected EP suffix to match case-insensitively")
	}
	if isEP("Episode") {
		t.Fatal("unexpected EP match")
	}
}
