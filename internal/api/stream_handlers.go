package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
)

// HandleStream streams change notices to the client as server-sent
// events. Clients refetch the named resource on each notice instead of
// polling on a timer.
func (s *RESTServer) HandleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.respondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	// Tell the client the stream is live before the first change.
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	changes, cancel := s.hub.Subscribe()
	defer cancel()

	for {
		select {
		case <-r.Context().Done():
			return
		case change := <-changes:
			data, err := json.Marshal(change)
			if err != nil {
				log.Error().Err(err).Msg("Failed to marshal change event")
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}
