package worker_test

import (
	"slices"
	"testing"

	"cadence/internal/worker"
)

func TestBuildArgs(t *testing.T) {
	tests := []struct {
		name  string
		codec string
		url   string
		want  []string
	}{
		{"album alac", "alac", "https://music.apple.com/us/album/x/1", []string{"--all-album", "https://music.apple.com/us/album/x/1"}},
		{"album aac", "aac", "https://music.apple.com/us/album/x/1", []string{"--aac", "--all-album", "https://music.apple.com/us/album/x/1"}},
		{"atmos", "atmos", "https://music.apple.com/us/album/x/1", []string{"--atmos", "--all-album", "https://music.apple.com/us/album/x/1"}},
		{"ec3 uppercase", "EC3", "https://music.apple.com/us/album/x/1", []string{"--atmos", "--all-album", "https://music.apple.com/us/album/x/1"}},
		{"song path", "", "https://music.apple.com/us/song/x/2", []string{"--song", "https://music.apple.com/us/song/x/2"}},
		{"song in album", "alac", "https://music.apple.com/us/album/x/1?i=2", []string{"--song", "https://music.apple.com/us/album/x/1?i=2"}},
		{"music video", "aac", "https://music.apple.com/us/music-video/x/3", []string{"--aac", "https://music.apple.com/us/music-video/x/3"}},
		{"playlist", "alac", "https://music.apple.com/us/playlist/x/pl.1", []string{"https://music.apple.com/us/playlist/x/pl.1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := worker.BuildArgs(tt.codec, tt.url)
			if !slices.Equal(got, tt.want) {
				t.Fatalf("BuildArgs(%q, %q) = %v, want %v", tt.codec, tt.url, got, tt.want)
			}
		})
	}
}

func TestInvocationString(t *testing.T) {
	inv := worker.NewInvocation("downloader", "/app", "aac", "https://music.apple.com/us/song/x/2")
	if got, want := inv.String(), "downloader --aac --song https://music.apple.com/us/song/x/2"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
	if inv.Dir != "/app" {
		t.Fatalf("unexpected dir %q", inv.Dir)
	}
}
