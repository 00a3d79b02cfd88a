package pallet

import (
	"context"
	"slices"
	"sync"

	"palletscan/internal/station"
)

// Factory builds the workflow for a package line.
type Factory func(line Line) *Workflow

// Handler is the put-in-pack strategy that replaces the station's default
// with a pallet scan. It keeps one workflow per line.
type Handler struct {
	factory Factory

	mu        sync.Mutex
	workflows map[int64]*Workflow
	created   []func(*Workflow)
}

// NewHandler creates a handler that builds workflows with factory.
func NewHandler(factory Factory) *Handler {
	return &Handler{
		factory:   factory,
		workflows: make(map[int64]*Workflow),
	}
}

// OnWorkflow registers fn to be called for every workflow the handler creates.
func (h *Handler) OnWorkflow(fn func(*Workflow)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.created = append(h.created, fn)
}

// Workflow returns the workflow for line, creating it on first use.
func (h *Handler) Workflow(line Line) *Workflow {
	h.mu.Lock()
	if w, ok := h.workflows[line.ContextID()]; ok {
		h.mu.Unlock()
		return w
	}
	w := h.factory(line)
	h.workflows[line.ContextID()] = w
	hooks := slices.Clone(h.created)
	h.mu.Unlock()

	for _, fn := range hooks {
		fn(w)
	}
	return w
}

// PutInPack runs a pallet scan for line.
func (h *Handler) PutInPack(ctx context.Context, line *station.PackageLine) error {
	return h.Workflow(line).TriggerScan(ctx)
}

var _ station.PutInPackHandler = (*Handler)(nil)
