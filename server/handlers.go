package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/jhd3197/linkweaver/config"
	"github.com/jhd3197/linkweaver/engine"
	"github.com/jhd3197/linkweaver/rule"
)

const maxRequestBytes = 10 << 20

// RenderRequest is one render invocation: the document body plus the
// configuration snapshots the caller holds.
type RenderRequest struct {
	HTML     string           `json:"html"`
	RuleSet  rule.Set         `json:"rule_set"`
	Settings *config.Settings `json:"settings,omitempty"`
	// PageCap is an optional per-document cap override (e.g. post metadata).
	PageCap int `json:"page_cap,omitempty"`
}

// RenderResponse carries the rewritten document and its diagnostic report.
type RenderResponse struct {
	HTML   string         `json:"html"`
	Report *engine.Report `json:"report"`
}

// ErrorResponse represents an error.
type ErrorResponse struct {
	Error      string `json:"error"`
	StatusCode int    `json:"status_code"`
}

// handleRender handles POST /v1/render.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRender(w, r)
	if !ok {
		return
	}

	html, report := s.render(r, req)

	s.sendJSON(w, RenderResponse{HTML: html, Report: report}, http.StatusOK)
}

// handlePreview handles POST /v1/preview. Identical to render except the
// output is sanitized before being echoed, since the dashboard embeds it
// directly.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRender(w, r)
	if !ok {
		return
	}

	html, report := s.render(r, req)

	s.sendJSON(w, RenderResponse{HTML: s.preview.Sanitize(html), Report: report}, http.StatusOK)
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	}, http.StatusOK)
}

func (s *Server) decodeRender(w http.ResponseWriter, r *http.Request) (*RenderRequest, bool) {
	var req RenderRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		s.log.Error("failed to decode request", "error", err)
		s.sendError(w, "invalid JSON", http.StatusBadRequest)
		return nil, false
	}
	if err := req.RuleSet.Validate(); err != nil {
		s.log.Error("invalid rule set", "error", err)
		s.sendError(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	if req.Settings != nil {
		if err := req.Settings.Validate(); err != nil {
			s.log.Error("invalid settings", "error", err)
			s.sendError(w, err.Error(), http.StatusBadRequest)
			return nil, false
		}
	}
	return &req, true
}

func (s *Server) render(r *http.Request, req *RenderRequest) (string, *engine.Report) {
	settings := s.settings
	if req.Settings != nil {
		settings = *req.Settings
	}
	if req.PageCap > 0 {
		settings.PageCapOverride = req.PageCap
	}

	start := time.Now()
	html, report := s.engine.Render(r.Context(), req.HTML, &req.RuleSet, settings)
	s.log.Info("render completed",
		"bytes", len(req.HTML),
		"rules", len(req.RuleSet.Rules),
		"links", report.TotalLinks,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return html, report
}

func (s *Server) sendJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("failed to encode response", "error", err)
	}
}

func (s *Server) sendError(w http.ResponseWriter, msg string, status int) {
	s.sendJSON(w, ErrorResponse{Error: msg, StatusCode: status}, status)
}
