// Package mcpserver exposes the workspace over the Model Context Protocol
// so editor agents can list prompt sets, render templates, and run chains.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kayz/promptforge/internal/chain"
	"github.com/kayz/promptforge/internal/discovery"
	"github.com/kayz/promptforge/internal/template"
	"github.com/kayz/promptforge/internal/workspace"
)

// Server wires workspace operations into MCP tools.
type Server struct {
	root   string
	runner chain.Runner
}

func New(root string, runner chain.Runner) *Server {
	return &Server{root: root, runner: runner}
}

// MCPServer builds the underlying server with every tool registered.
func (s *Server) MCPServer(version string) *server.MCPServer {
	srv := server.NewMCPServer(
		"promptforge",
		version,
		server.WithToolCapabilities(true),
	)

	srv.AddTool(mcp.NewTool("list_prompt_sets",
		mcp.WithDescription("List the prompt sets discovered in the workspace, with their roles and variable files"),
	), s.ListPromptSets)

	srv.AddTool(mcp.NewTool("render_prompt",
		mcp.WithDescription("Render a prompt set's templates with its variable file, optionally overriding variables"),
		mcp.WithString("set", mcp.Required(), mcp.Description("Prompt set name")),
		mcp.WithString("variables", mcp.Description("JSON object of variable overrides, e.g. {\"language\":\"go\"}")),
	), s.RenderPrompt)

	srv.AddTool(mcp.NewTool("validate_template",
		mcp.WithDescription("Check template text for delimiter and placeholder problems"),
		mcp.WithString("text", mcp.Required(), mcp.Description("Template text to validate")),
	), s.ValidateTemplate)

	srv.AddTool(mcp.NewTool("run_chain",
		mcp.WithDescription("Execute a prompt chain from the workspace chains directory and return its outputs"),
		mcp.WithString("chain", mcp.Required(), mcp.Description("Chain name")),
	), s.RunChain)

	return srv
}

// Serve runs the MCP server on stdio until the client disconnects.
func (s *Server) Serve(version string) error {
	return server.ServeStdio(s.MCPServer(version))
}

func (s *Server) ListPromptSets(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := workspace.Load(s.root)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("load workspace: %v", err)), nil
	}
	sets, warnings, err := discovery.Discover(s.root, cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("discover: %v", err)), nil
	}

	var b strings.Builder
	for _, set := range sets {
		roles := make([]string, 0, len(set.Prompts))
		for role := range set.Prompts {
			roles = append(roles, role)
		}
		fmt.Fprintf(&b, "%s (roles: %s)", set.Name, strings.Join(roles, ", "))
		if set.Orphan {
			b.WriteString(" [orphan]")
		}
		b.WriteString("\n")
	}
	for _, w := range warnings {
		fmt.Fprintf(&b, "warning: %s\n", w)
	}
	if b.Len() == 0 {
		return mcp.NewToolResultText("no prompt sets found"), nil
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) RenderPrompt(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	setName, ok := req.Params.Arguments["set"].(string)
	if !ok || setName == "" {
		return mcp.NewToolResultError("set is required"), nil
	}

	overrides := template.Namespace{}
	if raw, ok := req.Params.Arguments["variables"].(string); ok && raw != "" {
		var vars map[string]string
		if err := json.Unmarshal([]byte(raw), &vars); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("variables must be a JSON object of strings: %v", err)), nil
		}
		for name, value := range vars {
			overrides[name] = template.ValueSpec{Value: value}
		}
	}

	cfg, err := workspace.Load(s.root)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("load workspace: %v", err)), nil
	}
	sets, _, err := discovery.Discover(s.root, cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("discover: %v", err)), nil
	}

	var set *discovery.PromptSet
	for i := range sets {
		if sets[i].Name == setName {
			set = &sets[i]
			break
		}
	}
	if set == nil {
		return mcp.NewToolResultError(fmt.Sprintf("prompt set %q not found", setName)), nil
	}

	ns, err := cfg.Namespace()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if set.VarFile != nil {
		vars, err := workspace.LoadVarsFile(filepath.Join(cfg.VarsDir(s.root), filepath.FromSlash(set.VarFile.Path)))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		setNS, err := template.BuildNamespace(vars)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		ns = ns.Merge(setNS)
	}
	ns = ns.Merge(overrides)

	var b strings.Builder
	for _, role := range sortedRoles(set.Prompts) {
		text, err := workspace.LoadPromptFile(s.root, cfg, set.Prompts[role].Path)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		res := template.Interpolate(text, ns, s.root, cfg.Template.Delimiters)
		fmt.Fprintf(&b, "--- %s ---\n%s\n", role, res.Text)
		if len(res.Unmapped) > 0 {
			fmt.Fprintf(&b, "unmapped: %s\n", strings.Join(res.Unmapped, ", "))
		}
		for name, kind := range res.Errors {
			fmt.Fprintf(&b, "error: %s (%s)\n", name, kind)
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) ValidateTemplate(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, ok := req.Params.Arguments["text"].(string)
	if !ok {
		return mcp.NewToolResultError("text is required"), nil
	}

	cfg, err := workspace.Load(s.root)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("load workspace: %v", err)), nil
	}

	problems := cfg.Template.Delimiters.Validate(text)
	if len(problems) == 0 {
		names := cfg.Template.Delimiters.Extract(text)
		return mcp.NewToolResultText(fmt.Sprintf("template is valid, %d distinct variable(s): %s",
			len(names), strings.Join(names, ", "))), nil
	}
	return mcp.NewToolResultText("problems:\n- " + strings.Join(problems, "\n- ")), nil
}

func (s *Server) RunChain(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, ok := req.Params.Arguments["chain"].(string)
	if !ok || name == "" {
		return mcp.NewToolResultError("chain is required"), nil
	}

	cfg, err := workspace.Load(s.root)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("load workspace: %v", err)), nil
	}
	dir := cfg.ChainsDir(s.root)
	if dir == "" {
		return mcp.NewToolResultError("no chains directory configured"), nil
	}
	c, err := chain.FindChain(dir, name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	runner := s.runner
	res, err := runner.Run(ctx, c)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "chain %s completed (%d steps)\n", res.Chain, len(res.Steps))
	for _, step := range res.Steps {
		fmt.Fprintf(&b, "--- %s (%s) ---\n%s\n", step.Name, step.OutputVar, step.Response.Text)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func sortedRoles(prompts map[string]discovery.PromptFile) []string {
	roles := make([]string, 0, len(prompts))
	for role := range prompts {
		roles = append(roles, role)
	}
	// system first reads better in tool output
	sort.Slice(roles, func(i, j int) bool {
		if (roles[i] == "system") != (roles[j] == "system") {
			return roles[i] == "system"
		}
		return roles[i] < roles[j]
	})
	return roles
}
