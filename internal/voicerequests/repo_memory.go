package voicerequests

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is a simple in-memory repository useful for tests and early development.
//
// NOTE: This is not intended for production; use PostgresRepo instead.
type MemoryRepo struct {
	mu       sync.Mutex
	requests map[string]VoiceRequest
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{requests: make(map[string]VoiceRequest)}
}

func (r *MemoryRepo) Insert(ctx context.Context, v VoiceRequest) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests[v.ID] = v
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, id string) (VoiceRequest, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.requests[id]
	if !ok {
		return VoiceRequest{}, ErrNotFound
	}
	return v, nil
}

func (r *MemoryRepo) List(ctx context.Context, status Status) ([]VoiceRequest, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]VoiceRequest, 0, len(r.requests))
	for _, v := range r.requests {
		if status != "" && v.Status != status {
			continue
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryRepo) UpdateDecision(ctx context.Context, id string, status Status, officerNotes string, updatedAt time.Time) (VoiceRequest, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.requests[id]
	if !ok {
		return VoiceRequest{}, ErrNotFound
	}
	if v.Status != StatusPending {
		return VoiceRequest{}, ErrAlreadyDecided
	}
	v.Status = status
	v.OfficerNotes = officerNotes
	v.UpdatedAt = updatedAt
	r.requests[id] = v
	return v, nil
}
