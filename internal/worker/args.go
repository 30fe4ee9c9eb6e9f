package worker

import "strings"

// BuildArgs returns the downloader arguments for a job. The URL is always
// the final argument.
func BuildArgs(codec, url string) []string {
	args := make([]string, 0, 3)
	switch strings.ToLower(strings.TrimSpace(codec)) {
	case "aac":
		args = append(args, "--aac")
	case "atmos", "ec3":
		args = append(args, "--atmos")
	}
	switch {
	case strings.Contains(url, "/music-video/"):
	case strings.Contains(url, "/song/"), strings.Contains(url, "?i="):
		args = append(args, "--song")
	case strings.Contains(url, "/album/"):
		args = append(args, "--all-album")
	}
	return append(args, url)
}
