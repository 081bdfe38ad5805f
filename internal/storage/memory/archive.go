package memory

import (
	"context"
	"sync"

	"github.com/mcoot/wordgame-go/internal/model"
	"github.com/mcoot/wordgame-go/internal/storage"
)

// Archive keeps finished games in memory, newest last
type Archive struct {
	mu      sync.RWMutex
	results []model.GameResult
}

// NewArchive creates an empty in-memory archive
func NewArchive() *Archive {
	return &Archive{}
}

var _ storage.Archive = (*Archive)(nil)

func (a *Archive) RecordResult(ctx context.Context, result *model.GameResult) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.results = append(a.results, *result)
	return nil
}

func (a *Archive) RecentResults(ctx context.Context, limit int) ([]model.GameResult, error) {
	if limit <= 0 {
		return nil, nil
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]model.GameResult, 0, min(limit, len(a.results)))
	for i := len(a.results) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, a.results[i])
	}
	return out, nil
}
