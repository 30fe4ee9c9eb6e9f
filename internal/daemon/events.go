package daemon

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"cadence/internal/broadcast"
	"cadence/internal/logging"
)

const (
	eventBuffer       = 256
	keepaliveInterval = 15 * time.Second
)

// handleEvents streams broadcast lines as Server-Sent Events. An observer
// only sees lines broadcast after it attached.
func (s *apiServer) handleEvents(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)
	// The stream outlives the server write timeout.
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	if _, err := fmt.Fprint(w, ": connected\n\n"); err != nil {
		return
	}
	if err := rc.Flush(); err != nil {
		s.logger.Warn("event stream flush unsupported", logging.Error(err))
		return
	}

	hub := s.daemon.hub
	observer := broadcast.NewChannelObserver(eventBuffer)
	id := hub.Attach(observer)
	s.daemon.metrics.ObserverAttached()
	defer func() {
		hub.Detach(id)
		observer.Close()
		s.daemon.metrics.ObserverDetached()
	}()
	logger := logging.WithContext(r.Context(), s.logger)
	logger.Debug("event observer attached", logging.Int("observers", hub.Len()))

	ticker := time.NewTicker(keepaliveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-r.Context().Done():
			logger.Debug("event observer detached")
			return
		case line, ok := <-observer.Lines():
			if !ok {
				return
			}
			if err := writeEvent(w, line); err != nil {
				return
			}
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}

// writeEvent writes one SSE event; embedded newlines become continuation
// data lines.
func writeEvent(w http.ResponseWriter, line string) error {
	var b strings.Builder
	for part := range strings.SplitSeq(line, "\n") {
		b.WriteString("data: ")
		b.WriteString(strings.TrimRight(part, "\r"))
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	_, err := fmt.Fprint(w, b.String())
	return err
}
