package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Sumatoshi-tech/locstats/pkg/commits"
	"github.com/Sumatoshi-tech/locstats/pkg/dataset"
	"github.com/Sumatoshi-tech/locstats/pkg/linelog"
	"github.com/Sumatoshi-tech/locstats/pkg/plotpage"
	"github.com/Sumatoshi-tech/locstats/pkg/report"
	"github.com/Sumatoshi-tech/locstats/pkg/timeline"
)

// errBadRequest marks malformed query parameters.
var errBadRequest = errors.New("bad request")

// SummaryResponse is the body of GET /api/summary.
type SummaryResponse struct {
	Source    dataset.Source    `json:"source"`
	LoadedAt  time.Time         `json:"loadedAt"`
	Summary   commits.Summary   `json:"summary"`
	Languages commits.Breakdown `json:"languages"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	Status string `json:"status"`
}

// writeJSON encodes the given value as JSON and writes it to the response writer.
func (s *Server) writeJSON(ctx context.Context, responseWriter http.ResponseWriter, status int, value any) {
	responseWriter.Header().Set("Content-Type", "application/json")
	responseWriter.WriteHeader(status)

	encodeErr := json.NewEncoder(responseWriter).Encode(value)
	if encodeErr != nil {
		s.logger.ErrorContext(ctx, "failed to encode JSON response", "error", encodeErr)
	}
}

func (s *Server) writeError(ctx context.Context, responseWriter http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.ErrorContext(ctx, "request failed", "error", err)
	}

	s.writeJSON(ctx, responseWriter, status, ErrorResponse{Error: err.Error()})
}

// statusFor maps a domain error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, timeline.ErrEmptyDataset):
		return http.StatusNotFound
	case errors.Is(err, errBadRequest),
		errors.Is(err, timeline.ErrStepOutOfRange),
		errors.Is(err, dataset.ErrNoWindow),
		errors.Is(err, dataset.ErrAmbiguousWindow),
		errors.Is(err, dataset.ErrInvalidProgress):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// dataset loads the dataset, answering 503 when it cannot be loaded.
func (s *Server) dataset(responseWriter http.ResponseWriter, request *http.Request) (*dataset.Dataset, bool) {
	ds, err := s.source.Initialize(request.Context())
	if err != nil {
		s.logger.WarnContext(request.Context(), "dataset unavailable", "error", err)
		s.writeJSON(request.Context(), responseWriter, http.StatusServiceUnavailable,
			ErrorResponse{Error: fmt.Sprintf("dataset unavailable: %v", err)})

		return nil, false
	}

	return ds, true
}

func (s *Server) handleSummary(responseWriter http.ResponseWriter, request *http.Request) {
	ds, ok := s.dataset(responseWriter, request)
	if !ok {
		return
	}

	s.writeJSON(request.Context(), responseWriter, http.StatusOK, SummaryResponse{
		Source:    ds.Source,
		LoadedAt:  ds.LoadedAt,
		Summary:   ds.Summary(),
		Languages: ds.Breakdown(),
	})
}

func (s *Server) handleCommits(responseWriter http.ResponseWriter, request *http.Request) {
	ds, ok := s.dataset(responseWriter, request)
	if !ok {
		return
	}

	s.writeJSON(request.Context(), responseWriter, http.StatusOK, commits.Summaries(ds.Commits))
}

func (s *Server) handleFiles(responseWriter http.ResponseWriter, request *http.Request) {
	limit, err := s.fileLimit(request.URL.Query())
	if err != nil {
		s.writeError(request.Context(), responseWriter, err)

		return
	}

	ds, ok := s.dataset(responseWriter, request)
	if !ok {
		return
	}

	files := ds.Files
	if len(files) > limit {
		files = files[:limit]
	}

	out := make([]commits.FileSummary, 0, len(files))
	for _, f := range files {
		out = append(out, f.Summary())
	}

	s.writeJSON(request.Context(), responseWriter, http.StatusOK, out)
}

func (s *Server) handleWindow(responseWriter http.ResponseWriter, request *http.Request) {
	values := request.URL.Query()

	query, err := parseWindowQuery(values)
	if err != nil {
		s.writeError(request.Context(), responseWriter, err)

		return
	}

	limit, err := s.fileLimit(values)
	if err != nil {
		s.writeError(request.Context(), responseWriter, err)

		return
	}

	ds, ok := s.dataset(responseWriter, request)
	if !ok {
		return
	}

	window, err := ds.Query(query)
	if err != nil {
		s.writeError(request.Context(), responseWriter, err)

		return
	}

	s.writeJSON(request.Context(), responseWriter, http.StatusOK, ds.View(window, limit))
}

func (s *Server) handleSelection(responseWriter http.ResponseWriter, request *http.Request) {
	values := request.URL.Query()

	width, err := floatParam(values, "width", float64(s.reportOptions().Width))
	if err != nil {
		s.writeError(request.Context(), responseWriter, err)

		return
	}

	height, err := floatParam(values, "height", float64(s.reportOptions().Height))
	if err != nil {
		s.writeError(request.Context(), responseWriter, err)

		return
	}

	brush, err := parseBrush(values)
	if err != nil {
		s.writeError(request.Context(), responseWriter, err)

		return
	}

	ds, ok := s.dataset(responseWriter, request)
	if !ok {
		return
	}

	selection, err := ds.Select(width, height, brush)
	if err != nil {
		s.writeError(request.Context(), responseWriter, err)

		return
	}

	s.writeJSON(request.Context(), responseWriter, http.StatusOK, selection)
}

func (s *Server) handleReport(responseWriter http.ResponseWriter, request *http.Request) {
	values := request.URL.Query()
	opts := s.reportOptions()

	if raw := values.Get("theme"); raw != "" {
		theme, err := plotpage.ParseTheme(raw)
		if err != nil {
			s.writeError(request.Context(), responseWriter, fmt.Errorf("%w: %w", errBadRequest, err))

			return
		}

		opts.Theme = theme
	}

	progress, err := floatParam(values, "progress", opts.Progress)
	if err != nil {
		s.writeError(request.Context(), responseWriter, err)

		return
	}

	opts.Progress = progress

	ds, ok := s.dataset(responseWriter, request)
	if !ok {
		return
	}

	var buf bytes.Buffer

	renderErr := report.Write(&buf, ds, opts)
	if renderErr != nil {
		s.writeError(request.Context(), responseWriter, renderErr)

		return
	}

	responseWriter.Header().Set("Content-Type", "text/html; charset=utf-8")

	_, writeErr := buf.WriteTo(responseWriter)
	if writeErr != nil {
		s.logger.WarnContext(request.Context(), "failed to write report", "error", writeErr)
	}
}

func (s *Server) handleHealth(responseWriter http.ResponseWriter, request *http.Request) {
	state := s.source.State()

	status := http.StatusOK
	if state != dataset.StateReady {
		status = http.StatusServiceUnavailable
	}

	s.writeJSON(request.Context(), responseWriter, status, healthResponse{Status: state.String()})
}

func (s *Server) reportOptions() report.Options {
	opts := s.opts.Report
	if opts.Width <= 0 {
		opts.Width = report.DefaultWidth
	}

	if opts.Height <= 0 {
		opts.Height = report.DefaultHeight
	}

	if opts.Progress == 0 {
		opts.Progress = timeline.MaxProgress
	}

	return opts
}

func (s *Server) fileLimit(values url.Values) (int, error) {
	raw := values.Get("limit")
	if raw == "" {
		return s.opts.Config.FileLimit, nil
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, fmt.Errorf("%w: limit must be a positive integer, got %q", errBadRequest, raw)
	}

	return limit, nil
}

// parseWindowQuery reads cutoff, progress and step. Validation of the
// combination is left to dataset.WindowQuery.
func parseWindowQuery(values url.Values) (dataset.WindowQuery, error) {
	var query dataset.WindowQuery

	if raw := values.Get("cutoff"); raw != "" {
		cutoff, err := linelog.ParseTimestamp(raw)
		if err != nil {
			return query, fmt.Errorf("%w: cutoff: %w", errBadRequest, err)
		}

		query.Cutoff = &cutoff
	}

	if raw := values.Get("progress"); raw != "" {
		progress, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return query, fmt.Errorf("%w: progress %q is not a number", errBadRequest, raw)
		}

		query.Progress = &progress
	}

	if raw := values.Get("step"); raw != "" {
		step, err := strconv.Atoi(raw)
		if err != nil {
			return query, fmt.Errorf("%w: step %q is not an integer", errBadRequest, raw)
		}

		query.Step = &step
	}

	return query, nil
}

var brushParams = []string{"x0", "y0", "x1", "y1"}

// parseBrush returns nil when no brush corner is given. A partial brush is an error.
func parseBrush(values url.Values) (*timeline.Brush, error) {
	coords := make([]float64, 0, len(brushParams))

	for _, name := range brushParams {
		raw := values.Get(name)
		if raw == "" {
			continue
		}

		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s %q is not a number", errBadRequest, name, raw)
		}

		coords = append(coords, v)
	}

	switch len(coords) {
	case 0:
		return nil, nil //nolint:nilnil // no brush is a valid state.
	case len(brushParams):
		return &timeline.Brush{X0: coords[0], Y0: coords[1], X1: coords[2], Y1: coords[3]}, nil
	default:
		return nil, fmt.Errorf("%w: brush needs all of x0, y0, x1, y1", errBadRequest)
	}
}

func floatParam(values url.Values, name string, fallback float64) (float64, error) {
	raw := values.Get(name)
	if raw == "" {
		return fallback, nil
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not a number", errBadRequest, name, raw)
	}

	return v, nil
}
