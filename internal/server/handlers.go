package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/KaramelBytes/csvlens/internal/analysis"
	"github.com/KaramelBytes/csvlens/internal/chat"
	"github.com/KaramelBytes/csvlens/internal/export"
	"github.com/KaramelBytes/csvlens/internal/parser"
)

// multipart framing allowance on top of the file limit
const formOverhead = 1 << 20

const (
	defaultPageSize = 50
	maxPageSize     = 1000
)

type datasetResponse struct {
	ID       string                    `json:"id"`
	Name     string                    `json:"name"`
	Rows     int                       `json:"rows"`
	Columns  []string                  `json:"columns"`
	Summary  analysis.Summary          `json:"summary"`
	Insights []analysis.Insight        `json:"insights"`
	Skipped  []parser.RowShapeMismatch `json:"skipped,omitempty"`
	Created  time.Time                 `json:"created"`
}

func newDatasetResponse(sess *Session) datasetResponse {
	return datasetResponse{
		ID:       sess.Dataset.ID,
		Name:     sess.Dataset.Name,
		Rows:     sess.Dataset.Len(),
		Columns:  sess.Dataset.Columns,
		Summary:  sess.Analysis.Summary,
		Insights: sess.Analysis.Insights,
		Skipped:  sess.Skipped,
		Created:  sess.Created,
	}
}

// rowsResponse carries one page of records. Rows are column→value objects,
// or value arrays in column order when shape=arrays.
type rowsResponse struct {
	Offset  int      `json:"offset"`
	Limit   int      `json:"limit"`
	Total   int      `json:"total"`
	Columns []string `json:"columns"`
	Rows    any      `json:"rows"`
}

type statisticsResponse struct {
	Column     string               `json:"column"`
	Statistics *analysis.Statistics `json:"statistics"`
	Outliers   analysis.Outliers    `json:"outliers"`
}

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Topic  chat.Topic `json:"topic"`
	Answer string     `json:"answer"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleList(w http.ResponseWriter, _ *http.Request) {
	sessions := s.store.List()
	out := make([]datasetResponse, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, newDatasetResponse(sess))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+formOverhead)
	if err := r.ParseMultipartForm(formOverhead); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			s.writeError(w, &parser.InvalidFormatError{
				TooLarge: true,
				Reason:   "file size too large, please upload files smaller than " + parser.FormatSize(s.cfg.MaxUploadBytes),
			})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "expected multipart form with a file field"})
		return
	}
	f, hdr, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing file field"})
		return
	}
	defer f.Close()

	if err := parser.ValidateFile(hdr.Filename, hdr.Size, s.cfg.MaxUploadBytes); err != nil {
		s.writeError(w, err)
		return
	}
	data, err := io.ReadAll(f)
	if err != nil {
		s.writeError(w, fmt.Errorf("read upload: %w", err))
		return
	}
	res, err := s.parser.Parse(hdr.Filename, string(data))
	if err != nil {
		s.writeError(w, err)
		return
	}
	sess := s.store.Put(res)
	s.logger.Info("dataset uploaded",
		zap.String("id", sess.Dataset.ID),
		zap.String("name", sess.Dataset.Name),
		zap.Int("rows", sess.Dataset.Len()),
		zap.Int("skipped", len(sess.Skipped)))
	writeJSON(w, http.StatusCreated, newDatasetResponse(sess))
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	id := chi.URLParam(r, "id")
	sess, ok := s.store.Get(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: fmt.Sprintf("dataset %s not found", id)})
	}
	return sess, ok
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newDatasetResponse(sess))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.store.Delete(id) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: fmt.Sprintf("dataset %s not found", id)})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRows(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	offset, err := queryInt(q.Get("offset"), 0)
	if err != nil || offset < 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "offset must be a non-negative integer"})
		return
	}
	limit, err := queryInt(q.Get("limit"), defaultPageSize)
	if err != nil || limit < 1 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be a positive integer"})
		return
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	ds := sess.Dataset
	page := ds.Page(offset, limit)
	resp := rowsResponse{Offset: offset, Limit: limit, Total: ds.Len(), Columns: ds.Columns}
	switch q.Get("shape") {
	case "", "objects":
		rows := make([]map[string]any, len(page))
		for i := range page {
			rows[i] = ds.Map(offset + i)
		}
		resp.Rows = rows
	case "arrays":
		resp.Rows = page
	default:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "shape must be objects or arrays"})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func queryInt(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	col := chi.URLParam(r, "column")
	p, ok := sess.Analysis.Summary.Column(col)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: fmt.Sprintf("column %q not found", col)})
		return
	}
	if p.Kind != analysis.KindNumeric {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: fmt.Sprintf("column %q is %s, not numeric", col, p.Kind)})
		return
	}
	values := sess.Dataset.Numbers(col)
	writeJSON(w, http.StatusOK, statisticsResponse{
		Column:     col,
		Statistics: analysis.ComputeStatistics(values),
		Outliers:   analysis.DetectOutliers(values),
	})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req askRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 64<<10)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "question is required"})
		return
	}
	writeJSON(w, http.StatusOK, askResponse{
		Topic:  chat.Classify(req.Question),
		Answer: chat.Answer(req.Question, sess.Analysis),
	})
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.CSVFileName(sess.Dataset.Name)))
	if err := export.WriteCSV(w, sess.Dataset); err != nil {
		s.logger.Warn("write csv export", zap.Error(err))
	}
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.ReportFileName(sess.Dataset.Name)))
	_, _ = io.WriteString(w, export.TextReport(sess.Dataset.Name, sess.Analysis, time.Now()))
}

// writeError maps domain errors onto status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var invalid *parser.InvalidFormatError
	switch {
	case errors.As(err, &invalid):
		status = http.StatusBadRequest
		if invalid.TooLarge {
			status = http.StatusRequestEntityTooLarge
		}
	case errors.Is(err, parser.ErrEmptyFile), errors.Is(err, parser.ErrNoValidRows):
		status = http.StatusUnprocessableEntity
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
