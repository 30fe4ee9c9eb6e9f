package linesplit

import (
	"bytes"
	"errors"
	"io"
	"slices"
	"strings"
	"testing"
	"testing/iotest"
)

// chunkReader hands out data in fixed-size pieces so terminators can be
// placed on chunk boundaries.
type chunkReader struct {
	chunks [][]byte
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if len(r.chunks) == 0 {
		return 0, io.EOF
	}
	n := copy(p, r.chunks[0])
	if n == len(r.chunks[0]) {
		r.chunks = r.chunks[1:]
	} else {
		r.chunks[0] = r.chunks[0][n:]
	}
	return n, nil
}

func collect(t *testing.T, r io.Reader) []string {
	t.Helper()
	s := NewScanner(r)
	var out []string
	for s.Scan() {
		out = append(out, s.Text())
	}
	if err := s.Err(); err != nil {
		t.Fatalf("scan error: %v", err)
	}
	return out
}

func TestScannerSplitsOnBothTerminators(t *testing.T) {
	input := "Track 1 of 3:\nFirst Song\rDownloading... 10%\rDownloading... 55%\r\nDone\n"
	got := collect(t, strings.NewReader(input))
	want := []string{"Track 1 of 3:", "First Song", "Downloading... 10%", "Downloading... 55%", "Done"}
	if !slices.Equal(got, want) {
		t.Fatalf("lines mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestScannerDropsBlankAndTrimsLines(t *testing.T) {
	input := "\n\n   \r  padded line  \n\t\n"
	got := collect(t, strings.NewReader(input))
	if !slices.Equal(got, []string{"padded line"}) {
		t.Fatalf("unexpected lines: %q", got)
	}
}

func TestScannerDiscardsUnterminatedTail(t *testing.T) {
	got := collect(t, strings.NewReader("complete\npartial without end"))
	if !slices.Equal(got, []string{"complete"}) {
		t.Fatalf("unexpected lines: %q", got)
	}
}

func TestScannerChunkBoundariesMatchUnchunked(t *testing.T) {
	input := []byte("Track 2 of 3:\nSong Title\rDecrypting... 47%\r\nTrack already exists locally\n")
	want := collect(t, bytes.NewReader(input))

	for cut := 1; cut < len(input); cut++ {
		r := &chunkReader{chunks: [][]byte{input[:cut], input[cut:]}}
		got := collect(t, r)
		if !slices.Equal(got, want) {
			t.Fatalf("cut at %d: got %q want %q", cut, got, want)
		}
	}

	got := collect(t, iotest.OneByteReader(bytes.NewReader(input)))
	if !slices.Equal(got, want) {
		t.Fatalf("one-byte reads: got %q want %q", got, want)
	}
}

func TestScannerReplacesMalformedBytes(t *testing.T) {
	input := []byte("ok\nbad \xff\xfe byte\n")
	got := collect(t, bytes.NewReader(input))
	if len(got) != 2 {
		t.Fatalf("expected 2 lines, got %q", got)
	}
	if !strings.Contains(got[1], "�") {
		t.Fatalf("expected replacement character in %q", got[1])
	}
	if !strings.HasPrefix(got[1], "bad ") || !strings.HasSuffix(got[1], " byte") {
		t.Fatalf("surrounding text lost: %q", got[1])
	}
}

func TestScannerReportsReadErrors(t *testing.T) {
	boom := errors.New("boom")
	r := io.MultiReader(strings.NewReader("first\n"), iotest.ErrReader(boom))
	s := NewScanner(r)
	var lines []string
	for s.Scan() {
		lines = append(lines, s.Text())
	}
	if !slices.Equal(lines, []string{"first"}) {
		t.Fatalf("unexpected lines: %q", lines)
	}
	if !errors.Is(s.Err(), boom) {
		t.Fatalf("expected boom, got %v", s.Err())
	}
}

func TestScannerLineLimit(t *testing.T) {
	s := NewScanner(strings.NewReader(strings.Repeat("x", 64)+"\n"), WithMaxLineBytes(16))
	if s.Scan() {
		t.Fatalf("expected scan to stop, got %q", s.Text())
	}
	if s.Err() == nil {
		t.Fatal("expected too-long error")
	}
}

func TestLinesStopsEarly(t *testing.T) {
	var got []string
	for line := range Lines(strings.NewReader("a\nb\nc\n")) {
		got = append(got, line)
		if line == "b" {
			break
		}
	}
	if !slices.Equal(got, []string{"a", "b"}) {
		t.Fatalf("unexpected lines: %q", got)
	}
}

func TestSplitLinesNeedsMoreData(t *testing.T) {
	advance, token, err := SplitLines([]byte("no terminator"), false)
	if advance != 0 || token != nil || err != nil {
		t.Fatalf("expected request for more data, got %d %q %v", advance, token, err)
	}
	advance, token, _ = SplitLines([]byte("a\rb\nc"), false)
	if advance != 2 || string(token) != "a" {
		t.Fatalf("expected carriage return split, got %d %q", advance, token)
	}
}
