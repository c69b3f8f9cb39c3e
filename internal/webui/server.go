// Package webui serves the browser workbench: prompt set listing, live
// render previews, and chain runs with streamed progress.
package webui

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kayz/promptforge/internal/chain"
	"github.com/kayz/promptforge/internal/discovery"
	"github.com/kayz/promptforge/internal/logger"
	"github.com/kayz/promptforge/internal/template"
	"github.com/kayz/promptforge/internal/workspace"
)

// Server is the HTTP surface over one workspace. The workspace config is
// reloaded on every request so file edits show up without a restart.
type Server struct {
	root      string
	runner    chain.Runner
	startedAt time.Time
}

func NewServer(root string, runner chain.Runner) *Server {
	return &Server{
		root:      root,
		runner:    runner,
		startedAt: time.Now().UTC(),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/sets", s.handleSets)
	mux.HandleFunc("/api/render", s.handleRender)
	mux.HandleFunc("/api/chains", s.handleChains)
	mux.HandleFunc("/api/chain/run", s.handleChainRun)
	mux.HandleFunc("/ws/run", s.handleChainRunWS)
	return mux
}

func (s *Server) config() (*workspace.Config, error) {
	return workspace.Load(s.root)
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(defaultIndexHTML))
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":         true,
		"workspace":  s.root,
		"started_at": s.startedAt.Format(time.RFC3339),
		"uptime_sec": int(time.Since(s.startedAt).Seconds()),
	})
}

type setPayload struct {
	Name    string            `json:"name"`
	VarFile string            `json:"var_file,omitempty"`
	Prompts map[string]string `json:"prompts"`
	Orphan  bool              `json:"orphan"`
}

func (s *Server) handleSets(w http.ResponseWriter, _ *http.Request) {
	cfg, err := s.config()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	sets, warnings, err := discovery.Discover(s.root, cfg)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	payload := make([]setPayload, 0, len(sets))
	for _, set := range sets {
		p := setPayload{Name: set.Name, Prompts: map[string]string{}, Orphan: set.Orphan}
		if set.VarFile != nil {
			p.VarFile = set.VarFile.Path
		}
		for role, pf := range set.Prompts {
			p.Prompts[role] = pf.Path
		}
		payload = append(payload, p)
	}
	writeJSON(w, http.StatusOK, map[string]any{"sets": payload, "warnings": warnings})
}

type renderRequest struct {
	Set       string            `json:"set,omitempty"`
	Text      string            `json:"text,omitempty"`
	Variables map[string]string `json:"variables,omitempty"`
}

type renderedTemplate struct {
	Text     string                        `json:"text"`
	Unmapped []string                      `json:"unmapped,omitempty"`
	Errors   map[string]template.ErrorKind `json:"errors,omitempty"`
}

// handleRender interpolates either inline text or every template of a named
// prompt set. Request variables override the set's variable file; unmapped
// placeholders are reported, not rejected, so partial previews work.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req renderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json body"})
		return
	}
	if (req.Set == "") == (req.Text == "") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "exactly one of set or text is required"})
		return
	}

	cfg, err := s.config()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	ns, err := cfg.Namespace()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	texts := map[string]string{}
	if req.Text != "" {
		texts["preview"] = req.Text
	} else {
		set, err := findSet(s.root, cfg, req.Set)
		if err != nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
			return
		}
		if set.VarFile != nil {
			vars, err := workspace.LoadVarsFile(filepath.Join(cfg.VarsDir(s.root), filepath.FromSlash(set.VarFile.Path)))
			if err != nil {
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
				return
			}
			setNS, err := template.BuildNamespace(vars)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
				return
			}
			ns = ns.Merge(setNS)
		}
		for role, pf := range set.Prompts {
			text, err := workspace.LoadPromptFile(s.root, cfg, pf.Path)
			if err != nil {
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
				return
			}
			texts[role] = text
		}
	}

	overrides := make(template.Namespace, len(req.Variables))
	for name, value := range req.Variables {
		overrides[name] = template.ValueSpec{Value: value}
	}
	ns = ns.Merge(overrides)

	rendered := make(map[string]renderedTemplate, len(texts))
	for role, text := range texts {
		res := template.Interpolate(text, ns, s.root, cfg.Template.Delimiters)
		rendered[role] = renderedTemplate{Text: res.Text, Unmapped: res.Unmapped, Errors: res.Errors}
	}
	writeJSON(w, http.StatusOK, map[string]any{"rendered": rendered})
}

func (s *Server) handleChains(w http.ResponseWriter, _ *http.Request) {
	cfg, err := s.config()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	dir := cfg.ChainsDir(s.root)
	if dir == "" {
		writeJSON(w, http.StatusOK, map[string]any{"chains": []any{}})
		return
	}
	chains, err := chain.LoadChains(dir)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	type chainPayload struct {
		Name        string `json:"name"`
		Description string `json:"description,omitempty"`
		Steps       int    `json:"steps"`
	}
	payload := make([]chainPayload, 0, len(chains))
	for _, c := range chains {
		payload = append(payload, chainPayload{Name: c.Name, Description: c.Description, Steps: len(c.Steps)})
	}
	writeJSON(w, http.StatusOK, map[string]any{"chains": payload})
}

type chainRunRequest struct {
	Chain string `json:"chain"`
}

func (s *Server) handleChainRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req chainRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json body"})
		return
	}

	c, status, err := s.loadChain(req.Chain)
	if err != nil {
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}

	runner := s.runner
	res, err := runner.Run(r.Context(), c)
	if err != nil && res == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	payload := map[string]any{"result": res}
	if res.Failed != nil {
		payload["error"] = res.Failed.Error()
	}
	writeJSON(w, http.StatusOK, payload)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The workbench is a local tool; cross-origin pages on the same host are
	// the normal case during development.
	CheckOrigin: func(*http.Request) bool { return true },
}

type wsMessage struct {
	Type   string       `json:"type"`
	Event  *chain.Event `json:"event,omitempty"`
	Result any          `json:"result,omitempty"`
	Error  string       `json:"error,omitempty"`
}

// handleChainRunWS streams run events over a websocket, one JSON message per
// event, followed by a final result message. The chain name comes from the
// ?chain= query parameter.
func (s *Server) handleChainRunWS(w http.ResponseWriter, r *http.Request) {
	c, status, err := s.loadChain(r.URL.Query().Get("chain"))
	if err != nil {
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("webui: websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	runner := s.runner
	runner.Observer = func(ev chain.Event) {
		if err := conn.WriteJSON(wsMessage{Type: "event", Event: &ev}); err != nil {
			logger.Debug("webui: websocket write failed: %v", err)
		}
	}

	res, runErr := runner.Run(r.Context(), c)
	final := wsMessage{Type: "result", Result: res}
	if runErr != nil {
		final.Error = runErr.Error()
	}
	_ = conn.WriteJSON(final)
}

func (s *Server) loadChain(name string) (*chain.Chain, int, error) {
	if name == "" {
		return nil, http.StatusBadRequest, errMissingChain
	}
	cfg, err := s.config()
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}
	dir := cfg.ChainsDir(s.root)
	if dir == "" {
		return nil, http.StatusNotFound, errNoChainsDir
	}
	c, err := chain.FindChain(dir, name)
	if err != nil {
		return nil, http.StatusNotFound, err
	}
	return c, http.StatusOK, nil
}

func findSet(root string, cfg *workspace.Config, name string) (*discovery.PromptSet, error) {
	sets, _, err := discovery.Discover(root, cfg)
	if err != nil {
		return nil, err
	}
	for i := range sets {
		if sets[i].Name == name {
			return &sets[i], nil
		}
	}
	return nil, errUnknownSet(name)
}

var (
	errMissingChain = errors.New("chain name is required")
	errNoChainsDir  = errors.New("no chains directory configured")
)

func errUnknownSet(name string) error {
	return fmt.Errorf("prompt set %q not found", name)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

const defaultIndexHTML = `<!doctype html>
<html>
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>promptforge</title>
  <style>
    body { font-family: "Segoe UI", sans-serif; margin: 0; background: linear-gradient(145deg,#f7fafc,#e9eef7); color: #1f2937; }
    .wrap { max-width: 1000px; margin: 0 auto; padding: 20px; }
    .panel { background: #fff; border-radius: 12px; box-shadow: 0 8px 30px rgba(15,23,42,.08); padding: 16px; margin-bottom: 16px; }
    textarea { width: 100%; min-height: 140px; border: 1px solid #cbd5e1; border-radius: 8px; padding: 10px; font-family: monospace; box-sizing: border-box; }
    pre { border: 1px solid #d1d5db; border-radius: 8px; padding: 12px; background: #f9fafb; white-space: pre-wrap; min-height: 60px; }
    .warn { color: #b45309; }
    button { padding: 10px 16px; border: 0; border-radius: 8px; background: #0f766e; color: #fff; cursor: pointer; }
    button:hover { background: #0d9488; }
    ul { padding-left: 18px; }
  </style>
</head>
<body>
  <div class="wrap">
    <div class="panel">
      <h2>Prompt sets</h2>
      <ul id="sets"></ul>
    </div>
    <div class="panel">
      <h2>Render preview</h2>
      <textarea id="tmpl" placeholder="Paste a template, e.g. Review {code} for {language} issues"></textarea>
      <div style="margin-top:10px"><button id="render">Render</button></div>
      <pre id="out"></pre>
      <div id="unmapped" class="warn"></div>
    </div>
  </div>
  <script>
    async function loadSets() {
      const resp = await fetch('/api/sets');
      const data = await resp.json();
      const ul = document.getElementById('sets');
      ul.innerHTML = '';
      for (const set of data.sets || []) {
        const li = document.createElement('li');
        li.textContent = set.name + (set.orphan ? ' (orphan)' : '') + ' [' + Object.keys(set.prompts).join(', ') + ']';
        ul.appendChild(li);
      }
    }
    async function render() {
      const text = document.getElementById('tmpl').value;
      if (!text.trim()) return;
      const resp = await fetch('/api/render', { method:'POST', headers:{'Content-Type':'application/json'}, body: JSON.stringify({ text })});
      const data = await resp.json();
      const preview = (data.rendered && data.rendered.preview) || {};
      document.getElementById('out').textContent = preview.text || data.error || '';
      const unmapped = preview.unmapped || [];
      document.getElementById('unmapped').textContent = unmapped.length ? 'unmapped: ' + unmapped.join(', ') : '';
    }
    document.getElementById('render').addEventListener('click', render);
    loadSets();
  </script>
</body>
</html>`
