package store

import (
	"context"
	"sync"

	"imgclassd/pkg/types"
)

// Memory is a mutex-guarded in-process store. Records are lost on exit.
type Memory struct {
	mu   sync.Mutex
	recs []types.Prediction
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Append(_ context.Context, r types.PredictionResult) (types.Prediction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := types.Prediction{
		ID:         int64(len(m.recs) + 1),
		Filename:   r.Filename,
		Prediction: r.Label,
		Confidence: r.Confidence,
	}
	m.recs = append(m.recs, p)
	return p, nil
}

func (m *Memory) List(context.Context) ([]types.Prediction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]types.Prediction, len(m.recs))
	copy(out, m.recs)
	return out, nil
}

func (m *Memory) Close() error { return nil }
