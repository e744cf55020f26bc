package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jhd3197/linkweaver/config"
	"github.com/jhd3197/linkweaver/engine"
	"github.com/jhd3197/linkweaver/logger"
	"github.com/jhd3197/linkweaver/rule"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	return New(engine.New(), logger.Noop(), nil)
}

func postJSON(t *testing.T, s *Server, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func renderBody() RenderRequest {
	return RenderRequest{
		HTML: `<p>a cat sat</p>`,
		RuleSet: rule.Set{Rules: []rule.Rule{{
			ID:          1,
			Keywords:    []string{"cat"},
			Destination: rule.Destination{Kind: rule.DestinationURL, URL: "/cats"},
			Status:      rule.StatusActive,
		}}},
	}
}

func TestHandleRender(t *testing.T) {
	t.Run("links matched keywords", func(t *testing.T) {
		s := testServer(t)
		w := postJSON(t, s, "/v1/render", renderBody())
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
		}

		var resp RenderResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if want := `<p>a <a href="/cats">cat</a> sat</p>`; resp.HTML != want {
			t.Errorf("html = %q, want %q", resp.HTML, want)
		}
		if resp.Report == nil || resp.Report.TotalLinks != 1 {
			t.Errorf("report = %+v, want one inserted link", resp.Report)
		}
	})

	t.Run("page cap override", func(t *testing.T) {
		s := testServer(t)
		body := renderBody()
		body.HTML = `<p>cat and cat and cat</p>`
		body.PageCap = 1
		w := postJSON(t, s, "/v1/render", body)

		var resp RenderResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Report.TotalLinks != 1 {
			t.Errorf("total links = %d, want 1 under override", resp.Report.TotalLinks)
		}
	})

	t.Run("invalid JSON", func(t *testing.T) {
		s := testServer(t)
		req := httptest.NewRequest(http.MethodPost, "/v1/render", strings.NewReader("{not json"))
		w := httptest.NewRecorder()
		s.Router().ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", w.Code)
		}
		var resp ErrorResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode error: %v", err)
		}
		if resp.Error != "invalid JSON" {
			t.Errorf("error = %q", resp.Error)
		}
	})

	t.Run("invalid rule set", func(t *testing.T) {
		s := testServer(t)
		body := renderBody()
		body.RuleSet.Rules[0].CategoryID = 99
		w := postJSON(t, s, "/v1/render", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})

	t.Run("invalid settings", func(t *testing.T) {
		s := testServer(t)
		body := renderBody()
		body.Settings = &config.Settings{HeadingBehavior: "sometimes"}
		w := postJSON(t, s, "/v1/render", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})
}

func TestHandlePreview(t *testing.T) {
	s := testServer(t)
	body := renderBody()
	body.HTML = `<p>a cat sat</p><script>alert(1)</script>`
	w := postJSON(t, s, "/v1/preview", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp RenderResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if strings.Contains(resp.HTML, "<script>") {
		t.Errorf("preview should strip scripts, got %q", resp.HTML)
	}
	if !strings.Contains(resp.HTML, `<a href="/cats"`) {
		t.Errorf("preview should keep injected links, got %q", resp.HTML)
	}
}

func TestHandleHealth(t *testing.T) {
	s := testServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("status = %q, want ok", resp["status"])
	}
}
