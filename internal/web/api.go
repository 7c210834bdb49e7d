// api.go
package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"volcanoweb/internal/dataset"
	"volcanoweb/internal/session"
	"volcanoweb/internal/volcano"
)

const version = "1.0.0"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{Success: false, Error: msg})
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(startTime).Round(time.Second).String(),
		"version":   version,
	})
}

// handleValidate parses an upload without storing it.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, msgTooLarge)
			return
		}
		writeError(w, http.StatusBadRequest, msgUpload)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, msgUpload)
		return
	}
	defer file.Close()

	t, err := dataset.Load(file, header.Filename, header.Size, s.loadOpts)
	if err != nil {
		uploadsTotal.WithLabelValues("invalid").Inc()
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: summarize(t)})
}

// handleVolcano returns the same computation as /plot.png as JSON.
func (s *Server) handleVolcano(w http.ResponseWriter, r *http.Request) {
	t, err := s.store.Get(r.Context(), sessionID(r))
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			writeError(w, http.StatusNotFound, msgUpload)
			return
		}
		writeError(w, http.StatusInternalServerError, "session lookup failed")
		return
	}
	cols, th := selection(r.URL.Query(), t)
	res, err := volcano.Run(t, cols, th, s.labelCount)
	if err != nil {
		writeError(w, http.StatusBadRequest, msgSelectColumns)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: res})
}

func summarize(t *dataset.Table) TableSummary {
	numeric := make([]string, 0, len(t.NumericCols))
	for _, c := range t.NumericCols {
		numeric = append(numeric, t.Headers[c])
	}
	return TableSummary{
		FileName:       t.FileName,
		FileSize:       t.FileSize,
		Rows:           len(t.Rows),
		Headers:        t.Headers,
		NumericColumns: numeric,
	}
}
