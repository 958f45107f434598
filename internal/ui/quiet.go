package ui

import (
	"fmt"
	"io"
	"sync"
)

// quietPresenter drains events and shows only diagnostics.
type quietPresenter struct {
	mu   sync.Mutex
	w    io.Writer
	prog string
}

func (p *quietPresenter) Run(events <-chan Event) error {
	for range events { //nolint:revive // drain
	}
	return nil
}

func (p *quietPresenter) Report(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "%s: %s\n", p.prog, msg)
}

func (p *quietPresenter) Summary() string {
	return ""
}
