package pipeline

import (
	"context"
	"fmt"
	"time"

	"law-rag-platform/internal/logger"
)

// StepStatus is the execution status of a single pipeline step.
type StepStatus string

const (
	StatusPending StepStatus = "pending"
	StatusRunning StepStatus = "running"
	StatusSuccess StepStatus = "success"
	StatusFailed  StepStatus = "failed"
	StatusSkipped StepStatus = "skipped"
)

// Context is a shared key-value bag passed to every step. It carries
// cross-cutting metadata (collection name, filters, counters) that does not
// fit the strict input->output chain. Primary data must flow through step
// outputs, not the bag.
type Context map[string]any

// GetString returns a string value from the context or "" if absent.
func (c Context) GetString(key string) string {
	if v, ok := c[key].(string); ok {
		return v
	}
	return ""
}

// GetInt returns an int value from the context or 0 if absent.
func (c Context) GetInt(key string) int {
	switch v := c[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

// Step is a single unit of work in a pipeline. Process receives the previous
// step's output and returns its own; Validate is called first and a false
// return fails the step without invoking Process.
type Step interface {
	Name() string
	Validate(input any) bool
	Process(ctx context.Context, input any, pctx Context) (any, error)
}

// StepResult records one step execution. Immutable once appended to a
// PipelineResult.
type StepResult struct {
	StepName   string         `json:"step_name"`
	Status     StepStatus     `json:"status"`
	Duration   time.Duration  `json:"duration"`
	InputSize  int            `json:"input_size"`
	OutputSize int            `json:"output_size"`
	Error      string         `json:"error,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Result is the outcome of a full pipeline run. It is owned by the run that
// produced it and never shared across runs.
type Result struct {
	Success       bool           `json:"success"`
	Data          any            `json:"-"`
	Steps         []StepResult   `json:"steps"`
	TotalDuration time.Duration  `json:"total_duration"`
	StartedAt     time.Time      `json:"started_at"`
	CompletedAt   time.Time      `json:"completed_at"`
	Errors        []string       `json:"errors,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// FailedSteps returns the steps that failed.
func (r *Result) FailedSteps() []StepResult {
	var failed []StepResult
	for _, s := range r.Steps {
		if s.Status == StatusFailed {
			failed = append(failed, s)
		}
	}
	return failed
}

// ValidationError marks a step input rejected before processing. It is never
// retried.
type ValidationError struct {
	StepName string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid input for step: %s", e.StepName)
}

// Engine executes an ordered list of steps with per-step timing and error
// policy. An Engine holds no per-run state and is safe for concurrent Run
// calls as long as its steps are.
type Engine struct {
	name  string
	steps []Step
}

// NewEngine creates a named pipeline engine.
func NewEngine(name string) *Engine {
	return &Engine{name: name}
}

// AddStep appends a step and returns the engine for chaining.
func (e *Engine) AddStep(step Step) *Engine {
	e.steps = append(e.steps, step)
	return e
}

// Name returns the pipeline name.
func (e *Engine) Name() string { return e.name }

// StepCount returns the number of configured steps.
func (e *Engine) StepCount() int { return len(e.steps) }

// Run executes the steps in order. When stopOnError is true the first failed
// step halts the run; remaining steps are not executed and not recorded.
// Otherwise execution continues with the last successful output as the next
// input. The run is never retried by the engine; retry policy belongs to the
// caller.
func (e *Engine) Run(ctx context.Context, input any, pctx Context, stopOnError bool) *Result {
	startedAt := time.Now()

	if pctx == nil {
		pctx = Context{}
	}

	current := input
	results := make([]StepResult, 0, len(e.steps))
	var errs []string

	logger.Info("pipeline started", "pipeline", e.name, "steps", len(e.steps))

	for i, step := range e.steps {
		stepStart := time.Now()
		logger.Debug("pipeline step running", "pipeline", e.name, "step", step.Name(), "index", i+1)

		output, err := e.runStep(ctx, step, current, pctx)
		duration := time.Since(stepStart)

		if err != nil {
			results = append(results, StepResult{
				StepName: step.Name(),
				Status:   StatusFailed,
				Duration: duration,
				Error:    err.Error(),
			})
			errs = append(errs, fmt.Sprintf("%s: %s", step.Name(), err.Error()))
			logger.Error("pipeline step failed", "pipeline", e.name, "step", step.Name(), "error", err)

			if stopOnError {
				break
			}
			continue
		}

		results = append(results, StepResult{
			StepName:   step.Name(),
			Status:     StatusSuccess,
			Duration:   duration,
			InputSize:  stepDataSize(step, current),
			OutputSize: stepDataSize(step, output),
		})
		current = output
	}

	completedAt := time.Now()
	success := len(errs) == 0

	if success {
		logger.Info("pipeline completed", "pipeline", e.name, "duration", completedAt.Sub(startedAt))
	} else {
		logger.Error("pipeline failed", "pipeline", e.name, "errors", len(errs))
	}

	completed := 0
	for _, r := range results {
		if r.Status == StatusSuccess {
			completed++
		}
	}

	return &Result{
		Success:       success,
		Data:          current,
		Steps:         results,
		TotalDuration: completedAt.Sub(startedAt),
		StartedAt:     startedAt,
		CompletedAt:   completedAt,
		Errors:        errs,
		Metadata: map[string]any{
			"pipeline_name":   e.name,
			"total_steps":     len(e.steps),
			"completed_steps": completed,
		},
	}
}

// runStep isolates one step execution so a panic inside Process is reported
// as a step failure rather than killing the whole run.
func (e *Engine) runStep(ctx context.Context, step Step, input any, pctx Context) (output any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", step.Name(), r)
		}
	}()

	if !step.Validate(input) {
		return nil, &ValidationError{StepName: step.Name()}
	}

	return step.Process(ctx, input, pctx)
}

// Sizer lets a step report the size of its own domain types. Steps that do
// not implement it fall back to DataSize.
type Sizer interface {
	DataSize(data any) int
}

func stepDataSize(step Step, data any) int {
	if s, ok := step.(Sizer); ok {
		return s.DataSize(data)
	}
	return DataSize(data)
}

// DataSize reports a best-effort size metric for step telemetry: element
// count for slices and maps, byte length for strings and byte slices, and -1
// when no sensible size exists.
func DataSize(data any) int {
	switch v := data.(type) {
	case nil:
		return 0
	case string:
		return len(v)
	case []byte:
		return len(v)
	case []string:
		return len(v)
	case []any:
		return len(v)
	case map[string]any:
		return len(v)
	case interface{ Len() int }:
		return v.Len()
	default:
		return -1
	}
}
