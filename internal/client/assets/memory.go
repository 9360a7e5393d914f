package assets

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/coursekeeper/internal/client/models"
)

// MemoryLedger is an in-process upload ledger for sessions that run
// without a local database.
type MemoryLedger struct {
	mu    sync.Mutex
	order []string
	refs  map[string]models.MediaReference
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{refs: make(map[string]models.MediaReference)}
}

func (l *MemoryLedger) Track(_ context.Context, ref models.MediaReference) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.refs[ref.PublicID]; ok {
		return nil
	}
	l.refs[ref.PublicID] = ref
	l.order = append(l.order, ref.PublicID)
	return nil
}

func (l *MemoryLedger) Forget(_ context.Context, publicID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.refs[publicID]; !ok {
		return nil
	}
	delete(l.refs, publicID)
	for i, id := range l.order {
		if id == publicID {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
	return nil
}

func (l *MemoryLedger) Pending(_ context.Context) ([]models.MediaReference, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.MediaReference, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.refs[id])
	}
	return out, nil
}
