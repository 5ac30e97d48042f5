package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/skein/pkg/graph"
	"github.com/matzehuels/skein/pkg/ingest"
	"github.com/matzehuels/skein/pkg/publish"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(indexHTML); err != nil {
		s.logger.Error("write index", "err", err)
	}
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := graph.WriteSnapshot(s.store.Snapshot(), w); err != nil {
		s.logger.Error("write snapshot", "err", err)
	}
}

// handleEvents bridges a publisher subscription onto a server-sent event
// stream. The subscription channel coalesces, so a slow browser tab gets
// the newest update rather than an ever-growing backlog.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	updates, cancel := s.pub.Subscribe()
	defer cancel()

	for {
		select {
		case <-r.Context().Done():
			return
		case u := <-updates:
			if err := writeSSE(w, u); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeSSE(w io.Writer, u publish.Update) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode update: %w", err)
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", data)
	return err
}

func (s *Server) handleAddGroup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Label   string `json:"label"`
		Members string `json:"members"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	id, err := s.driver.AddGroup(r.Context(), req.Label, req.Members)
	switch {
	case errors.Is(err, ingest.ErrMalformedRecord):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		http.Error(w, "add group failed", http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, http.StatusCreated, map[string]string{"id": string(id)})
}

func (s *Server) handlePosition(w http.ResponseWriter, r *http.Request) {
	id := graph.NodeID(chi.URLParam(r, "id"))

	var req struct {
		X      float64 `json:"x"`
		Y      float64 `json:"y"`
		Pinned bool    `json:"pinned"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	if err := s.store.SetPosition(id, graph.Point{X: req.X, Y: req.Y}, req.Pinned); err != nil {
		http.Error(w, "unknown node", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePin(w http.ResponseWriter, r *http.Request) {
	id := graph.NodeID(chi.URLParam(r, "id"))

	var req struct {
		Pinned bool `json:"pinned"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	if err := s.store.SetPinned(id, req.Pinned); err != nil {
		http.Error(w, "unknown node", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "err", err)
	}
}
