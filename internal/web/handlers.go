// handlers.go
package web

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"volcanoweb/internal/dataset"
	"volcanoweb/internal/session"
	"volcanoweb/internal/volcano"
)

const (
	msgUpload        = "Please upload a valid data file."
	msgSelectColumns = "Please select valid columns."
	msgTooLarge      = "File too large"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.page(w, r, http.StatusOK, "")
}

// page renders index.html for the caller's session. uploadErr, when set, is
// shown above whatever table the session still holds.
func (s *Server) page(w http.ResponseWriter, r *http.Request, status int, uploadErr string) {
	data := PageData{Title: s.title, Accept: accept(), Error: uploadErr}

	t, err := s.store.Get(r.Context(), sessionID(r))
	switch {
	case errors.Is(err, session.ErrNotFound):
		data.Prompt = msgUpload
	case err != nil:
		log.Error().Err(err).Str("session", sessionID(r)).Msg("session lookup failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	default:
		if st := s.fillPage(&data, t, r.URL.Query()); status == http.StatusOK {
			status = st
		}
	}

	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, data); err != nil {
		log.Error().Err(err).Msg("template error")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) fillPage(data *PageData, t *dataset.Table, q url.Values) int {
	data.HasTable = true
	data.FileName = t.FileName
	data.FileSize = t.FileSize
	data.RowCount = len(t.Rows)
	data.Headers = t.Headers
	data.NumericCols = t.NumericCols

	cols, th := selection(q, t)
	data.Columns = cols
	res, err := volcano.Run(t, cols, th, s.labelCount)
	if err != nil {
		if data.Error == "" {
			data.Error = msgSelectColumns
		}
		return http.StatusBadRequest
	}

	logRun(res)
	data.HasPlot = true
	data.FoldChange = Slider{
		Name:  "fc",
		Label: "Log2 fold-change threshold",
		Max:   res.FoldChangeLimit,
		Step:  volcano.ThresholdStep,
		Value: res.Thresholds.FoldChange,
	}
	data.Sig = Slider{
		Name:  "sig",
		Label: "-Log10(p-value) threshold",
		Max:   volcano.MaxSignificanceThreshold,
		Step:  volcano.ThresholdStep,
		Value: res.Thresholds.Significance,
	}
	data.PlotURL = "/plot.png?" + query(cols, res.Thresholds).Encode()
	data.Retained = len(res.Points)
	data.Dropped = res.Dropped
	data.Counts = res.Counts
	data.Summary = res.Summary
	data.LabelCount = len(res.Labels)
	return http.StatusOK
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			uploadsTotal.WithLabelValues("invalid").Inc()
			s.page(w, r, http.StatusRequestEntityTooLarge, msgTooLarge)
			return
		}
		uploadsTotal.WithLabelValues("missing").Inc()
		s.page(w, r, http.StatusBadRequest, msgUpload)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		uploadsTotal.WithLabelValues("missing").Inc()
		s.page(w, r, http.StatusBadRequest, msgUpload)
		return
	}
	defer file.Close()

	t, err := dataset.Load(file, header.Filename, header.Size, s.loadOpts)
	if err != nil {
		uploadsTotal.WithLabelValues("invalid").Inc()
		log.Warn().Err(err).Str("file", header.Filename).Msg("upload rejected")
		s.page(w, r, http.StatusBadRequest, fmt.Sprintf("Could not read %s: %v", header.Filename, errors.Unwrap(err)))
		return
	}

	if err := s.store.Put(r.Context(), sessionID(r), t); err != nil {
		log.Error().Err(err).Str("session", sessionID(r)).Msg("session store failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	uploadsTotal.WithLabelValues("ok").Inc()
	log.Info().
		Str("file", t.FileName).
		Int("rows", len(t.Rows)).
		Int("columns", len(t.Headers)).
		Msg("table loaded")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handlePlot(w http.ResponseWriter, r *http.Request) {
	t, err := s.store.Get(r.Context(), sessionID(r))
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			http.Error(w, msgUpload, http.StatusNotFound)
			return
		}
		log.Error().Err(err).Msg("session lookup failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	cols, th := selection(r.URL.Query(), t)
	res, err := volcano.Run(t, cols, th, s.labelCount)
	if err != nil {
		http.Error(w, msgSelectColumns, http.StatusBadRequest)
		return
	}
	logRun(res)
	renderRowsDropped.Observe(float64(res.Dropped))

	start := time.Now()
	var buf bytes.Buffer
	if err := s.renderer.Render(&buf, res); err != nil {
		rendersTotal.WithLabelValues("error").Inc()
		log.Error().Err(err).Msg("render failed")
		http.Error(w, "Failed to render plot", http.StatusInternalServerError)
		return
	}
	renderDuration.Observe(time.Since(start).Seconds())
	outcome := "ok"
	if len(res.Points) == 0 {
		outcome = "empty"
	}
	rendersTotal.WithLabelValues(outcome).Inc()

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}

func logRun(res *volcano.Result) {
	log.Debug().
		Str("fc_col", res.Columns.FoldChange).
		Str("p_col", res.Columns.PValue).
		Str("id_col", res.Columns.ID).
		Int("retained", len(res.Points)).
		Int("dropped", res.Dropped).
		Int("labels", len(res.Labels)).
		Msg("volcano run")
}

// selection reads the column choices and thresholds from the query string.
// An absent column parameter means the table's first column; one that is
// present but empty stays empty and fails validation.
func selection(q url.Values, t *dataset.Table) (volcano.Columns, volcano.Thresholds) {
	first := ""
	if len(t.Headers) > 0 {
		first = t.Headers[0]
	}
	col := func(key string) string {
		v, ok := q[key]
		if !ok {
			return first
		}
		if len(v) == 0 {
			return ""
		}
		return v[0]
	}
	cols := volcano.Columns{
		FoldChange: col("fc_col"),
		PValue:     col("p_col"),
		ID:         col("id_col"),
	}

	th := volcano.DefaultThresholds()
	if v, ok := parseThreshold(q.Get("fc")); ok {
		th.FoldChange = v
	}
	if v, ok := parseThreshold(q.Get("sig")); ok {
		th.Significance = v
	}
	return cols, th
}

func parseThreshold(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

func query(cols volcano.Columns, th volcano.Thresholds) url.Values {
	return url.Values{
		"fc_col": {cols.FoldChange},
		"p_col":  {cols.PValue},
		"id_col": {cols.ID},
		"fc":     {strconv.FormatFloat(th.FoldChange, 'f', -1, 64)},
		"sig":    {strconv.FormatFloat(th.Significance, 'f', -1, 64)},
	}
}
