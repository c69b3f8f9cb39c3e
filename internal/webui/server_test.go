package webui

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kayz/promptforge/internal/chain"
	"github.com/kayz/promptforge/internal/llm"
	"github.com/kayz/promptforge/internal/template"
)

type echoProvider struct{}

func (echoProvider) Name() string { return "echo" }

func (echoProvider) Complete(_ context.Context, req llm.Request) (llm.Response, error) {
	return llm.Response{Text: "echo: " + req.Messages[len(req.Messages)-1].Content}, nil
}

func (echoProvider) ListModels(context.Context) ([]string, error) {
	return []string{"echo-model"}, nil
}

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	root := t.TempDir()

	for rel, content := range map[string]string{
		"prompts/system-evaluator.txt": "You are an evaluator.",
		"prompts/user-evaluator.txt":   "Review {code} written in {language}.",
		"prompts/vars/evaluator.yaml":  "code:\n  type: value\n  value: \"def f(): pass\"\nlanguage: python\n",
		"prompts/chains/review.yaml": `name: review
steps:
  - name: analyze
    templates:
      user:
        text: "Analyze {input}"
    variables:
      input:
        type: value
        value: "the code"
`,
	} {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	cfgData := `layout:
  prompt_dir: prompts
  vars_dir: prompts/vars
  chains_dir: prompts/chains
  prompt_extension: .txt
  vars_extension: .yaml
`
	cfgPath := filepath.Join(root, ".promptforge", "workspace.yaml")
	if err := os.MkdirAll(filepath.Dir(cfgPath), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(cfgPath, []byte(cfgData), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	runner := chain.Runner{
		Provider:   echoProvider{},
		Root:       root,
		Delimiters: template.DefaultDelimiters(),
		Defaults:   chain.Params{Provider: "echo", Model: "echo-model"},
	}
	return NewServer(root, runner), root
}

func TestStatusEndpoint(t *testing.T) {
	server, _ := newTestServer(t)
	handler := server.Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "\"ok\":true") {
		t.Fatalf("unexpected status payload: %s", rr.Body.String())
	}
}

func TestSetsEndpoint(t *testing.T) {
	server, _ := newTestServer(t)
	handler := server.Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/sets", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	var payload struct {
		Sets []setPayload `json:"sets"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(payload.Sets) != 1 || payload.Sets[0].Name != "evaluator" {
		t.Fatalf("unexpected sets: %+v", payload.Sets)
	}
	if payload.Sets[0].Orphan {
		t.Fatal("evaluator has a var file and must not be an orphan")
	}
	if len(payload.Sets[0].Prompts) != 2 {
		t.Fatalf("expected system and user prompts: %+v", payload.Sets[0].Prompts)
	}
}

func TestRenderInlineText(t *testing.T) {
	server, _ := newTestServer(t)
	handler := server.Handler()

	body, _ := json.Marshal(renderRequest{
		Text:      "Hello {name}, you use {tool}",
		Variables: map[string]string{"name": "dev"},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/render", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	var payload struct {
		Rendered map[string]renderedTemplate `json:"rendered"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	preview := payload.Rendered["preview"]
	if preview.Text != "Hello dev, you use {tool}" {
		t.Fatalf("unexpected render: %q", preview.Text)
	}
	if len(preview.Unmapped) != 1 || preview.Unmapped[0] != "tool" {
		t.Fatalf("unexpected unmapped: %v", preview.Unmapped)
	}
}

func TestRenderPromptSet(t *testing.T) {
	server, _ := newTestServer(t)
	handler := server.Handler()

	body, _ := json.Marshal(renderRequest{Set: "evaluator"})
	req := httptest.NewRequest(http.MethodPost, "/api/render", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	var payload struct {
		Rendered map[string]renderedTemplate `json:"rendered"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := payload.Rendered["user"].Text; got != "Review def f(): pass written in python." {
		t.Fatalf("unexpected user render: %q", got)
	}
	if got := payload.Rendered["system"].Text; got != "You are an evaluator." {
		t.Fatalf("unexpected system render: %q", got)
	}
}

func TestRenderRejectsAmbiguousRequest(t *testing.T) {
	server, _ := newTestServer(t)
	handler := server.Handler()

	body, _ := json.Marshal(renderRequest{})
	req := httptest.NewRequest(http.MethodPost, "/api/render", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestChainsEndpoint(t *testing.T) {
	server, _ := newTestServer(t)
	handler := server.Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/chains", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "\"review\"") {
		t.Fatalf("unexpected chains payload: %s", rr.Body.String())
	}
}

func TestChainRunEndpoint(t *testing.T) {
	server, _ := newTestServer(t)
	handler := server.Handler()

	body, _ := json.Marshal(chainRunRequest{Chain: "review"})
	req := httptest.NewRequest(http.MethodPost, "/api/chain/run", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "echo: Analyze the code") {
		t.Fatalf("unexpected run payload: %s", rr.Body.String())
	}
}

func TestChainRunUnknownChain(t *testing.T) {
	server, _ := newTestServer(t)
	handler := server.Handler()

	body, _ := json.Marshal(chainRunRequest{Chain: "ghost"})
	req := httptest.NewRequest(http.MethodPost, "/api/chain/run", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}
