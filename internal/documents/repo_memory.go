package documents

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is a simple in-memory repository useful for tests and early development.
type MemoryRepo struct {
	mu   sync.Mutex
	docs map[string]Document
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{docs: make(map[string]Document)}
}

func (r *MemoryRepo) Insert(ctx context.Context, d Document) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[d.ID] = d
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, id string) (Document, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.docs[id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return d, nil
}

func (r *MemoryRepo) ListByTaxpayer(ctx context.Context, taxpayerPIN string) ([]Document, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Document
	for _, d := range r.docs {
		if d.TaxpayerPIN == taxpayerPIN {
			out = append(out, d)
		}
	}
	sortNewest(out)
	return out, nil
}

func (r *MemoryRepo) ListByStatus(ctx context.Context, status Status) ([]Document, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Document
	for _, d := range r.docs {
		if d.Status == status {
			out = append(out, d)
		}
	}
	sortNewest(out)
	return out, nil
}

func (r *MemoryRepo) UpdateStamp(ctx context.Context, id, stampType, serial string, stampedAt time.Time) (Document, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.docs[id]
	if !ok {
		return Document{}, ErrNotFound
	}
	d.Status = StatusStamped
	d.StampType = stampType
	d.StampSerial = serial
	d.StampedAt = stampedAt
	r.docs[id] = d
	return d, nil
}

func sortNewest(docs []Document) {
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].UploadedAt.After(docs[j].UploadedAt)
	})
}
