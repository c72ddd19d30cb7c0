package fetch

import (
	"github.com/mohammed-shakir/city-map-poster/internal/feature"
	"github.com/mohammed-shakir/city-map-poster/internal/layer"
)

type Stats struct {
	CacheReads    int
	Fetches       int
	CacheWrites   int
	WriteFailures int
}

// WorkingSet is the outcome of one run. It is not modified after Run returns.
// Layers holds every resolved kind, empty ones included; Omissions holds the failed ones.
type WorkingSet struct {
	Features  feature.RequiredSet
	Layers    map[feature.Kind]layer.Layer
	Omissions map[feature.Kind]error
	States    map[feature.Kind]State
	Sources   map[feature.Kind]Source
	Stats     Stats
}

func newWorkingSet(fs feature.RequiredSet) *WorkingSet {
	ws := &WorkingSet{
		Features:  fs,
		Layers:    make(map[feature.Kind]layer.Layer, len(fs)),
		Omissions: make(map[feature.Kind]error),
		States:    make(map[feature.Kind]State, len(fs)),
		Sources:   make(map[feature.Kind]Source, len(fs)),
	}
	for _, k := range fs {
		ws.States[k] = StatePending
	}
	return ws
}

func (w *WorkingSet) record(r result) {
	w.States[r.kind] = r.state
	switch r.state {
	case StateResolved, StateResolvedEmpty:
		w.Layers[r.kind] = r.layer
		w.Sources[r.kind] = r.source
	case StateFailed:
		w.Omissions[r.kind] = r.err
	}
	if r.cacheRead {
		w.Stats.CacheReads++
	}
	if r.fetched {
		w.Stats.Fetches++
	}
	if r.wrote {
		w.Stats.CacheWrites++
	}
	if r.writeFailed {
		w.Stats.WriteFailures++
	}
}

func (w *WorkingSet) Get(k feature.Kind) (layer.Layer, bool) {
	l, ok := w.Layers[k]
	return l, ok
}

// Has reports whether k resolved to a non-empty layer.
func (w *WorkingSet) Has(k feature.Kind) bool {
	l, ok := w.Layers[k]
	return ok && !l.Empty
}

// Kinds lists resolved kinds, empty ones included, in canonical order.
func (w *WorkingSet) Kinds() []feature.Kind {
	out := make([]feature.Kind, 0, len(w.Layers))
	for _, k := range w.Features {
		if _, ok := w.Layers[k]; ok {
			out = append(out, k)
		}
	}
	return out
}

// Omitted lists failed kinds in canonical order.
func (w *WorkingSet) Omitted() []feature.Kind {
	var out []feature.Kind
	for _, k := range w.Features {
		if _, ok := w.Omissions[k]; ok {
			out = append(out, k)
		}
	}
	return out
}

func (w *WorkingSet) Streets() *layer.Graph {
	return w.Layers[feature.Streets].Graph
}
