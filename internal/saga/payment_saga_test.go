package saga

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSaga_RunsStepsInOrder(t *testing.T) {
	var calls []string
	s := NewSaga("test", zap.NewNop())
	for _, name := range []string{"a", "b", "c"} {
		name := name
		s.AddStep(SagaStep{Name: name, Execute: func(context.Context) error {
			calls = append(calls, name)
			return nil
		}})
	}

	require.NoError(t, s.Execute(context.Background()))
	assert.Equal(t, []string{"a", "b", "c"}, calls)
}

func TestSaga_CompensatesCompletedStepsInReverse(t *testing.T) {
	var calls []string
	boom := errors.New("boom")

	s := NewSaga("test", zap.NewNop())
	s.AddStep(SagaStep{
		Name:       "first",
		Execute:    func(context.Context) error { calls = append(calls, "first"); return nil },
		Compensate: func(context.Context) error { calls = append(calls, "undo first"); return nil },
	})
	s.AddStep(SagaStep{
		Name:    "second",
		Execute: func(context.Context) error { calls = append(calls, "second"); return nil },
	})
	s.AddStep(SagaStep{
		Name:       "third",
		Execute:    func(context.Context) error { return boom },
		Compensate: func(context.Context) error { calls = append(calls, "undo third"); return nil },
	})

	err := s.Execute(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "third")
	assert.Equal(t, []string{"first", "second", "undo first"}, calls)
}
