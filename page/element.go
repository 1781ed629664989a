package page

import "sync"

// Element is an output element addressed by id. Each write replaces the
// whole content at once, so concurrent writers never interleave: the last
// write wins.
type Element struct {
	id string

	mu     sync.RWMutex
	text   string
	failed bool
	writes int
}

func newElement(id string) *Element {
	return &Element{id: id}
}

func (e *Element) ID() string {
	return e.id
}

// SetText replaces the text content.
func (e *Element) SetText(text string) {
	e.set(text, false)
}

// SetErrorText replaces the text content and marks it as an error message.
func (e *Element) SetErrorText(text string) {
	e.set(text, true)
}

func (e *Element) set(text string, failed bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.text = text
	e.failed = failed
	e.writes++
}

func (e *Element) Text() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.text
}

// Snapshot returns the text and whether it was written as an error, read
// together under one lock.
func (e *Element) Snapshot() (string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.text, e.failed
}

// Written reports whether anything has been written since the page loaded.
func (e *Element) Written() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.writes > 0
}
