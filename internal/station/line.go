package station

import "sync"

// PackageLine is one row of the scanning screen: a package destination
// record the operator can attach a pallet to.
type PackageLine struct {
	mu          sync.RWMutex
	id          int64
	name        string
	displayName string
	scanEnabled bool
	onRender    func(*PackageLine)
}

// NewPackageLine creates a line for the record id.
func NewPackageLine(id int64, name string) *PackageLine {
	return &PackageLine{
		id:          id,
		name:        name,
		displayName: name,
		scanEnabled: true,
	}
}

// ID returns the record id.
func (l *PackageLine) ID() int64 { return l.id }

// ContextID returns the record id the pallet is submitted against.
func (l *PackageLine) ContextID() int64 { return l.id }

// Name returns the name the line was created with.
func (l *PackageLine) Name() string { return l.name }

// DisplayName returns the name currently shown for the line.
func (l *PackageLine) DisplayName() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.displayName
}

// SetDisplayName updates the shown name. Call Refresh to re-render.
func (l *PackageLine) SetDisplayName(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.displayName = name
}

// ScanEnabled reports whether the Scan Pallet control is offered.
func (l *PackageLine) ScanEnabled() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.scanEnabled
}

// SetScanEnabled toggles the Scan Pallet control.
func (l *PackageLine) SetScanEnabled(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.scanEnabled = enabled
}

// Refresh asks the host to re-render the line.
func (l *PackageLine) Refresh() {
	l.mu.RLock()
	fn := l.onRender
	l.mu.RUnlock()
	if fn != nil {
		fn(l)
	}
}

func (l *PackageLine) setRenderHook(fn func(*PackageLine)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onRender = fn
}
