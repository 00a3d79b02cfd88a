package pallet

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
)

type notification struct {
	Message string
	Level   Level
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []notification
}

func (n *fakeNotifier) Notify(msg string, level Level) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification{msg, level})
}

func (n *fakeNotifier) all() []notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notification(nil), n.sent...)
}

func (n *fakeNotifier) count(level Level) int {
	c := 0
	for _, s := range n.all() {
		if s.Level == level {
			c++
		}
	}
	return c
}

type fakePrompter struct {
	barcode string
	err     error
	calls   int
	title   string
}

func (p *fakePrompter) PromptBarcode(ctx context.Context, title, placeholder string) (string, error) {
	p.calls++
	p.title = title
	return p.barcode, p.err
}

type blockingPrompter struct{}

func (blockingPrompter) PromptBarcode(ctx context.Context, _, _ string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

type rpcCall struct {
	Route  string
	Params map[string]interface{}
}

// reply is one canned answer; gate, when set, blocks the call until closed.
type reply struct {
	json string
	err  error
	gate chan struct{}
}

type fakeCaller struct {
	mu      sync.Mutex
	replies []reply
	calls   []rpcCall
}

func (c *fakeCaller) Call(ctx context.Context, route string, params, out interface{}) error {
	c.mu.Lock()
	p, _ := params.(map[string]interface{})
	c.calls = append(c.calls, rpcCall{Route: route, Params: p})
	if len(c.replies) == 0 {
		c.mu.Unlock()
		return errors.New("no canned reply")
	}
	r := c.replies[0]
	c.replies = c.replies[1:]
	c.mu.Unlock()

	if r.gate != nil {
		<-r.gate
	}
	if r.err != nil {
		return r.err
	}
	return json.Unmarshal([]byte(r.json), out)
}

func (c *fakeCaller) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

func (c *fakeCaller) call(i int) rpcCall {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[i]
}

type fakeLine struct {
	mu        sync.Mutex
	id        int64
	name      string
	refreshes int
}

func (l *fakeLine) ContextID() int64 { return l.id }

func (l *fakeLine) SetDisplayName(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.name = name
}

func (l *fakeLine) Refresh() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.refreshes++
}

func (l *fakeLine) snapshot() (string, int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.name, l.refreshes
}

type fakeRecorder struct {
	mu      sync.Mutex
	records []Record
	err     error
}

func (r *fakeRecorder) Record(_ context.Context, rec Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	return r.err
}

func (r *fakeRecorder) all() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Record(nil), r.records...)
}
