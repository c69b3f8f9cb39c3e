package mcpserver

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

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

func newTestMCP(t *testing.T) *Server {
	t.Helper()
	root := t.TempDir()

	for rel, content := range map[string]string{
		"prompts/system-evaluator.txt": "You are an evaluator.",
		"prompts/user-evaluator.txt":   "Review {code} in {language}.",
		"prompts/vars/evaluator.yaml":  "code:\n  type: value\n  value: snippet\nlanguage: python\n",
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
		".promptforge/workspace.yaml": `layout:
  prompt_dir: prompts
  vars_dir: prompts/vars
  chains_dir: prompts/chains
  prompt_extension: .txt
  vars_extension: .yaml
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

	runner := chain.Runner{
		Provider:   echoProvider{},
		Root:       root,
		Delimiters: template.DefaultDelimiters(),
		Defaults:   chain.Params{Provider: "echo", Model: "echo-model"},
	}
	return New(root, runner)
}

func textOf(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil || len(result.Content) == 0 {
		t.Fatalf("expected tool result content")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", result.Content[0])
	}
	return text.Text
}

func TestListPromptSets(t *testing.T) {
	s := newTestMCP(t)

	result, err := s.ListPromptSets(context.Background(), mcp.CallToolRequest{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	out := textOf(t, result)
	if !strings.Contains(out, "evaluator") {
		t.Fatalf("unexpected output: %s", out)
	}
	if strings.Contains(out, "[orphan]") {
		t.Fatalf("evaluator must not be an orphan: %s", out)
	}
}

func TestRenderPromptWithOverrides(t *testing.T) {
	s := newTestMCP(t)

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{
		"set":       "evaluator",
		"variables": `{"language":"go"}`,
	}
	result, err := s.RenderPrompt(context.Background(), req)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	out := textOf(t, result)
	if !strings.Contains(out, "Review snippet in go.") {
		t.Fatalf("override not applied: %s", out)
	}
	if !strings.Contains(out, "You are an evaluator.") {
		t.Fatalf("system template missing: %s", out)
	}
}

func TestRenderPromptUnknownSet(t *testing.T) {
	s := newTestMCP(t)

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"set": "ghost"}
	result, err := s.RenderPrompt(context.Background(), req)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !result.IsError {
		t.Fatalf("expected tool error for unknown set")
	}
}

func TestValidateTemplate(t *testing.T) {
	s := newTestMCP(t)

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"text": "Hello {name}"}
	result, err := s.ValidateTemplate(context.Background(), req)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	out := textOf(t, result)
	if !strings.Contains(out, "valid") || !strings.Contains(out, "name") {
		t.Fatalf("unexpected output: %s", out)
	}

	req.Params.Arguments = map[string]any{"text": "broken {one} here }"}
	result, err = s.ValidateTemplate(context.Background(), req)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !strings.Contains(textOf(t, result), "mismatched delimiters") {
		t.Fatalf("expected delimiter problem: %s", textOf(t, result))
	}
}

func TestRunChainTool(t *testing.T) {
	s := newTestMCP(t)

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"chain": "review"}
	result, err := s.RunChain(context.Background(), req)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	out := textOf(t, result)
	if !strings.Contains(out, "echo: Analyze the code") {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestRunChainToolUnknownChain(t *testing.T) {
	s := newTestMCP(t)

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"chain": "ghost"}
	result, err := s.RunChain(context.Background(), req)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !result.IsError {
		t.Fatalf("expected tool error for unknown chain")
	}
}
