package chain

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/kayz/promptforge/internal/llm"
	"github.com/kayz/promptforge/internal/logger"
	"github.com/kayz/promptforge/internal/template"
)

// Status is the lifecycle state of a chain run.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// FailureKind names why a step failed.
type FailureKind string

const (
	FailInterpolation    FailureKind = "interpolation_error"
	FailUnmapped         FailureKind = "unmapped_variable"
	FailForwardReference FailureKind = "forward_reference"
	FailTemplate         FailureKind = "template_error"
	FailLLM              FailureKind = "llm_error"
	FailCancelled        FailureKind = "cancelled"
)

// StepError is the failure of one chain step. The chain halts at the first
// one; there is no partial continue and no resume.
type StepError struct {
	Step      int // 0-based index into the declared sequence
	Name      string
	Kind      FailureKind
	Unmapped  []string
	VarErrors map[string]template.ErrorKind
	Err       error
}

func (e *StepError) Error() string {
	prefix := fmt.Sprintf("step %d (%s): %s", e.Step+1, e.Name, e.Kind)
	switch e.Kind {
	case FailUnmapped:
		return fmt.Sprintf("%s: no mapping for %s", prefix, strings.Join(e.Unmapped, ", "))
	case FailInterpolation:
		parts := make([]string, 0, len(e.VarErrors))
		for name, kind := range e.VarErrors {
			parts = append(parts, fmt.Sprintf("%s (%s)", name, kind))
		}
		sort.Strings(parts)
		return fmt.Sprintf("%s: %s", prefix, strings.Join(parts, ", "))
	default:
		return fmt.Sprintf("%s: %v", prefix, e.Err)
	}
}

func (e *StepError) Unwrap() error { return e.Err }

// EventType identifies a run lifecycle event.
type EventType string

const (
	EventRunStarted    EventType = "run_started"
	EventStepStarted   EventType = "step_started"
	EventStepCompleted EventType = "step_completed"
	EventRunCompleted  EventType = "run_completed"
	EventRunFailed     EventType = "run_failed"
)

// Event is one observable run state transition.
type Event struct {
	RunID     string    `json:"run_id"`
	Chain     string    `json:"chain"`
	Type      EventType `json:"type"`
	StepIndex int       `json:"step_index,omitempty"`
	StepName  string    `json:"step_name,omitempty"`
	Output    string    `json:"output,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// StepResult records one completed step.
type StepResult struct {
	Name      string        `json:"name"`
	OutputVar string        `json:"output_var"`
	Messages  []llm.Message `json:"messages"`
	Response  llm.Response  `json:"response"`
}

// Result is the outcome of one chain run. Context holds the captured output
// of every completed step, including the steps before a failure.
type Result struct {
	RunID   string            `json:"run_id"`
	Chain   string            `json:"chain"`
	Status  Status            `json:"status"`
	Context map[string]string `json:"context"`
	Steps   []StepResult      `json:"steps"`
	Failed  *StepError        `json:"-"`
}

// Params are the resolved model parameters for one step.
type Params struct {
	Provider    string
	Model       string
	Temperature float32
	MaxTokens   int
}

// Runner executes chains strictly sequentially. Each run owns its context;
// concurrent runs must use separate Result values but may share the Runner.
type Runner struct {
	Provider    llm.Provider
	Root        string
	Delimiters  template.Delimiters
	Defaults    Params
	Observer    func(Event)
	ProviderFor func(name string) (llm.Provider, error) // optional per-step provider override hook
}

const outputSuffix = ".output"
const outputPrefix = "steps."

// Run executes the chain. It fails fast: the first step with unresolved
// variables, a bad reference, or a provider error halts the run. The
// returned error, if any, is the *StepError recorded in Result.Failed.
func (r *Runner) Run(ctx context.Context, c *Chain) (*Result, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	res := &Result{
		RunID:   uuid.NewString(),
		Chain:   c.Name,
		Status:  StatusPending,
		Context: make(map[string]string),
	}

	chainNS, err := template.BuildNamespace(c.Variables)
	if err != nil {
		return nil, fmt.Errorf("chain %q: %w", c.Name, err)
	}

	// Names a steps.<name>.output reference may legally use once the step
	// has run: both the step name and its output variable.
	executed := make(map[string]bool)
	outputs := make(map[string]string)

	res.Status = StatusRunning
	r.emit(Event{RunID: res.RunID, Chain: c.Name, Type: EventRunStarted})
	logger.Info("chain %s: run %s started (%d steps)", c.Name, res.RunID, len(c.Steps))

	for i, step := range c.Steps {
		// Cancellation is honored between steps only; an in-flight call is
		// the provider's to abort via ctx.
		if err := ctx.Err(); err != nil {
			return r.fail(res, &StepError{Step: i, Name: step.Name, Kind: FailCancelled, Err: err})
		}

		r.emit(Event{RunID: res.RunID, Chain: c.Name, Type: EventStepStarted, StepIndex: i, StepName: step.Name})

		texts, stepErr := r.loadTemplates(i, step)
		if stepErr != nil {
			return r.fail(res, stepErr)
		}

		// Reject forward and dangling output references before anything
		// external happens for this step.
		for _, text := range texts {
			for _, name := range r.Delimiters.Extract(text) {
				ref, ok := outputRef(name)
				if !ok {
					continue
				}
				if !executed[ref] {
					return r.fail(res, &StepError{
						Step: i, Name: step.Name, Kind: FailForwardReference,
						Err: fmt.Errorf("reference to %s before step %q has run", name, ref),
					})
				}
			}
		}

		stepNS, err := template.BuildNamespace(step.Variables)
		if err != nil {
			return r.fail(res, &StepError{Step: i, Name: step.Name, Kind: FailTemplate, Err: err})
		}

		// Lookup precedence: step-local override, then chain variables,
		// then chain-scoped step outputs.
		ns := make(template.Namespace, len(outputs)+len(chainNS)+len(stepNS))
		for name, value := range outputs {
			ns[outputPrefix+name+outputSuffix] = template.ValueSpec{Value: value}
		}
		for name, spec := range chainNS {
			ns[name] = spec
		}
		for name, spec := range stepNS {
			ns[name] = spec
		}

		var messages []llm.Message
		var unmapped []string
		varErrors := make(map[string]template.ErrorKind)
		for _, role := range roleOrder(texts) {
			ir := template.Interpolate(texts[role], ns, r.Root, r.Delimiters)
			unmapped = append(unmapped, ir.Unmapped...)
			for name, kind := range ir.Errors {
				varErrors[name] = kind
			}
			messages = append(messages, llm.Message{Role: messageRole(role), Content: ir.Text})
		}
		if len(varErrors) > 0 {
			return r.fail(res, &StepError{Step: i, Name: step.Name, Kind: FailInterpolation, VarErrors: varErrors})
		}
		if len(unmapped) > 0 {
			sort.Strings(unmapped)
			return r.fail(res, &StepError{Step: i, Name: step.Name, Kind: FailUnmapped, Unmapped: unmapped})
		}

		params := r.paramsFor(c, step)
		provider, err := r.providerFor(params.Provider)
		if err != nil {
			return r.fail(res, &StepError{Step: i, Name: step.Name, Kind: FailLLM, Err: err})
		}

		resp, err := provider.Complete(ctx, llm.Request{
			Model:       params.Model,
			Messages:    messages,
			Temperature: params.Temperature,
			MaxTokens:   params.MaxTokens,
		})
		if err != nil {
			kind := FailLLM
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				kind = FailCancelled
			}
			return r.fail(res, &StepError{Step: i, Name: step.Name, Kind: kind, Err: err})
		}

		outVar := step.Output()
		res.Context[outVar] = resp.Text
		outputs[step.Name] = resp.Text
		outputs[outVar] = resp.Text
		executed[step.Name] = true
		executed[outVar] = true

		res.Steps = append(res.Steps, StepResult{
			Name:      step.Name,
			OutputVar: outVar,
			Messages:  messages,
			Response:  resp,
		})
		r.emit(Event{RunID: res.RunID, Chain: c.Name, Type: EventStepCompleted, StepIndex: i, StepName: step.Name, Output: resp.Text})
		logger.Debug("chain %s: step %d (%s) completed, %d chars captured as %s",
			c.Name, i+1, step.Name, len(resp.Text), outVar)
	}

	res.Status = StatusCompleted
	r.emit(Event{RunID: res.RunID, Chain: c.Name, Type: EventRunCompleted})
	logger.Info("chain %s: run %s completed", c.Name, res.RunID)
	return res, nil
}

func (r *Runner) fail(res *Result, stepErr *StepError) (*Result, error) {
	res.Status = StatusFailed
	res.Failed = stepErr
	r.emit(Event{
		RunID: res.RunID, Chain: res.Chain, Type: EventRunFailed,
		StepIndex: stepErr.Step, StepName: stepErr.Name, Error: stepErr.Error(),
	})
	logger.Warn("chain %s: run %s failed: %v", res.Chain, res.RunID, stepErr)
	return res, stepErr
}

func (r *Runner) emit(ev Event) {
	if r.Observer != nil {
		r.Observer(ev)
	}
}

func (r *Runner) loadTemplates(i int, step Step) (map[string]string, *StepError) {
	texts := make(map[string]string, len(step.Templates))
	for role, ref := range step.Templates {
		text, err := ref.Load(r.Root)
		if err != nil {
			return nil, &StepError{Step: i, Name: step.Name, Kind: FailTemplate, Err: err}
		}
		texts[role] = text
	}
	return texts, nil
}

// paramsFor resolves model parameters with narrowest scope winning:
// step, then chain defaults, then runner defaults.
func (r *Runner) paramsFor(c *Chain, step Step) Params {
	p := r.Defaults

	if c.Defaults.Provider != "" {
		p.Provider = c.Defaults.Provider
	}
	if c.Defaults.Model != "" {
		p.Model = c.Defaults.Model
	}
	if c.Defaults.Temperature != nil {
		p.Temperature = *c.Defaults.Temperature
	}
	if c.Defaults.MaxTokens > 0 {
		p.MaxTokens = c.Defaults.MaxTokens
	}

	if step.Provider != "" {
		p.Provider = step.Provider
	}
	if step.Model != "" {
		p.Model = step.Model
	}
	if step.Temperature != nil {
		p.Temperature = *step.Temperature
	}
	if step.MaxTokens > 0 {
		p.MaxTokens = step.MaxTokens
	}

	return p
}

func (r *Runner) providerFor(name string) (llm.Provider, error) {
	if name == "" || r.ProviderFor == nil || (r.Provider != nil && name == r.Provider.Name()) {
		if r.Provider == nil {
			return nil, fmt.Errorf("no provider configured")
		}
		return r.Provider, nil
	}
	return r.ProviderFor(name)
}

// outputRef extracts X from steps.X.output; ok is false for anything else.
func outputRef(name string) (string, bool) {
	if !strings.HasPrefix(name, outputPrefix) || !strings.HasSuffix(name, outputSuffix) {
		return "", false
	}
	ref := name[len(outputPrefix) : len(name)-len(outputSuffix)]
	if ref == "" || strings.Contains(ref, ".") {
		return "", false
	}
	return ref, true
}

// roleOrder sorts template roles deterministically: system first, user
// second, the rest alphabetical.
func roleOrder(texts map[string]string) []string {
	roles := make([]string, 0, len(texts))
	for role := range texts {
		roles = append(roles, role)
	}
	sort.Slice(roles, func(i, j int) bool {
		return roleRank(roles[i]) < roleRank(roles[j]) ||
			(roleRank(roles[i]) == roleRank(roles[j]) && roles[i] < roles[j])
	})
	return roles
}

func roleRank(role string) int {
	switch role {
	case "system":
		return 0
	case "user":
		return 1
	default:
		return 2
	}
}

func messageRole(role string) string {
	switch role {
	case "system", "assistant":
		return role
	default:
		return "user"
	}
}
