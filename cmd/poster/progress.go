package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/mohammed-shakir/city-map-poster/internal/events"
	"github.com/mohammed-shakir/city-map-poster/internal/fetch"
)

// progress prints one human line per terminal layer transition.
type progress struct {
	mu sync.Mutex
	w  io.Writer
}

func newProgress(w io.Writer) *progress {
	if w == nil {
		w = io.Discard
	}
	return &progress{w: w}
}

func (p *progress) Publish(ev events.LayerEvent) {
	s := fetch.State(ev.State)
	if !s.Terminal() {
		return
	}
	var line string
	switch s {
	case fetch.StateResolved:
		line = fmt.Sprintf("✓ %s (%s)", ev.Kind, sourceLabel(ev.Source))
	case fetch.StateResolvedEmpty:
		line = fmt.Sprintf("· %s: nothing in range", ev.Kind)
	case fetch.StateFailed:
		line = fmt.Sprintf("✗ %s: %s", ev.Kind, ev.Error)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.w, line)
}

func (p *progress) Close() error { return nil }

func sourceLabel(src string) string {
	if fetch.Source(src) == fetch.SourceCache {
		return "cached"
	}
	return "downloaded"
}
