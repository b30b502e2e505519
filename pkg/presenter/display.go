package presenter

import "sync"

// Buffer is a Display that keeps the last text in memory.
type Buffer struct {
	mu      sync.RWMutex
	text    string
	updates int
}

func (b *Buffer) SetText(s string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.text = s
	b.updates++
}

// Text returns the current text and whether anything was ever shown.
func (b *Buffer) Text() (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.text, b.updates > 0
}

// Updates counts SetText calls.
func (b *Buffer) Updates() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.updates
}
