package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStep struct {
	name     string
	valid    bool
	err      error
	panicMsg string
	calls    int
	out      any
}

func (s *stubStep) Name() string            { return s.name }
func (s *stubStep) Validate(input any) bool { return s.valid }
func (s *stubStep) Process(ctx context.Context, input any, pctx Context) (any, error) {
	s.calls++
	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
	if s.err != nil {
		return nil, s.err
	}
	if s.out != nil {
		return s.out, nil
	}
	return input, nil
}

func okStep(name string, out any) *stubStep {
	return &stubStep{name: name, valid: true, out: out}
}

func TestRunAllStepsSucceed(t *testing.T) {
	engine := NewEngine("test").
		AddStep(okStep("a", "first")).
		AddStep(okStep("b", "second")).
		AddStep(okStep("c", "third"))

	result := engine.Run(context.Background(), "input", nil, true)

	require.True(t, result.Success)
	assert.Equal(t, "third", result.Data)
	require.Len(t, result.Steps, 3)
	for _, step := range result.Steps {
		assert.Equal(t, StatusSuccess, step.Status)
	}
	assert.Empty(t, result.Errors)
	assert.Equal(t, 3, result.Metadata["completed_steps"])
}

func TestRunStopOnErrorHaltsRemainingSteps(t *testing.T) {
	last := okStep("c", nil)
	engine := NewEngine("test").
		AddStep(okStep("a", nil)).
		AddStep(&stubStep{name: "b", valid: true, err: errors.New("boom")}).
		AddStep(last)

	result := engine.Run(context.Background(), "input", nil, true)

	require.False(t, result.Success)
	// Only attempted steps are recorded; "c" never ran and is absent.
	require.Len(t, result.Steps, 2)
	assert.Equal(t, StatusSuccess, result.Steps[0].Status)
	assert.Equal(t, StatusFailed, result.Steps[1].Status)
	assert.Equal(t, 0, last.calls)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "boom")
}

func TestRunContinueOnErrorUsesLastGoodOutput(t *testing.T) {
	captured := &stubStep{name: "c", valid: true}
	engine := NewEngine("test").
		AddStep(okStep("a", "good")).
		AddStep(&stubStep{name: "b", valid: true, err: errors.New("boom")}).
		AddStep(captured)

	result := engine.Run(context.Background(), "input", nil, false)

	require.False(t, result.Success)
	require.Len(t, result.Steps, 3)
	assert.Equal(t, StatusFailed, result.Steps[1].Status)
	assert.Equal(t, StatusSuccess, result.Steps[2].Status)
	// The failed step's output is discarded; "c" received "good".
	assert.Equal(t, "good", result.Data)
	assert.Equal(t, 1, captured.calls)
}

func TestRunValidationFailureSkipsProcess(t *testing.T) {
	invalid := &stubStep{name: "b", valid: false}
	engine := NewEngine("test").
		AddStep(okStep("a", nil)).
		AddStep(invalid)

	result := engine.Run(context.Background(), "input", nil, true)

	require.False(t, result.Success)
	assert.Equal(t, 0, invalid.calls)
	require.Len(t, result.Steps, 2)
	assert.Contains(t, result.Steps[1].Error, "invalid input for step: b")
}

func TestRunRecoversStepPanic(t *testing.T) {
	engine := NewEngine("test").
		AddStep(&stubStep{name: "a", valid: true, panicMsg: "kaboom"})

	result := engine.Run(context.Background(), "input", nil, true)

	require.False(t, result.Success)
	require.Len(t, result.Steps, 1)
	assert.Equal(t, StatusFailed, result.Steps[0].Status)
	assert.Contains(t, result.Steps[0].Error, "kaboom")
}

type bagStep struct{ key, value string }

func (s *bagStep) Name() string            { return "bag" }
func (s *bagStep) Validate(input any) bool { return true }
func (s *bagStep) Process(ctx context.Context, input any, pctx Context) (any, error) {
	pctx[s.key] = s.value
	return input, nil
}

func TestRunSharesContextBagAcrossSteps(t *testing.T) {
	engine := NewEngine("test").
		AddStep(&bagStep{key: "collection", value: "laws_jordan"}).
		AddStep(okStep("b", nil))

	pctx := Context{}
	result := engine.Run(context.Background(), nil, pctx, true)

	require.True(t, result.Success)
	assert.Equal(t, "laws_jordan", pctx.GetString("collection"))
}

func TestFailedSteps(t *testing.T) {
	engine := NewEngine("test").
		AddStep(okStep("a", nil)).
		AddStep(&stubStep{name: "b", valid: true, err: errors.New("boom")})

	result := engine.Run(context.Background(), nil, nil, false)
	failed := result.FailedSteps()
	require.Len(t, failed, 1)
	assert.Equal(t, "b", failed[0].StepName)
}

func TestDataSize(t *testing.T) {
	assert.Equal(t, 0, DataSize(nil))
	assert.Equal(t, 5, DataSize("hello"))
	assert.Equal(t, 3, DataSize([]byte{1, 2, 3}))
	assert.Equal(t, 2, DataSize([]string{"a", "b"}))
	assert.Equal(t, 1, DataSize(map[string]any{"k": 1}))
	assert.Equal(t, -1, DataSize(42))
}
