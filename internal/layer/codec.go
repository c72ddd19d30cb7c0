package layer

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/paulmach/orb/geojson"

	"github.com/mohammed-shakir/city-map-poster/internal/core/model"
	"github.com/mohammed-shakir/city-map-poster/internal/feature"
)

// Blob layout:
//
//	magic "PLYR" | version (1 byte) | kind length (1 byte) | kind | xxhash64(payload) BE | payload
//
// payload is zstd-compressed JSON.
var magic = []byte("PLYR")

const codecVersion byte = 1

var (
	encoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	decoder, _ = zstd.NewReader(nil)
)

type wire struct {
	Kind     feature.Kind               `json:"kind"`
	Empty    bool                       `json:"empty"`
	Graph    *Graph                     `json:"graph,omitempty"`
	Features *geojson.FeatureCollection `json:"features,omitempty"`
}

func Encode(l Layer) ([]byte, error) {
	if len(l.Kind) == 0 || len(l.Kind) > 255 {
		return nil, fmt.Errorf("encode layer: invalid kind %q", l.Kind)
	}
	raw, err := json.Marshal(wire{Kind: l.Kind, Empty: l.Empty, Graph: l.Graph, Features: l.Features})
	if err != nil {
		return nil, fmt.Errorf("encode layer %s: %w", l.Kind, err)
	}
	payload := encoder.EncodeAll(raw, make([]byte, 0, len(raw)/4))

	var buf bytes.Buffer
	buf.Grow(len(magic) + 2 + len(l.Kind) + 8 + len(payload))
	buf.Write(magic)
	buf.WriteByte(codecVersion)
	buf.WriteByte(byte(len(l.Kind)))
	buf.WriteString(string(l.Kind))
	var sum [8]byte
	binary.BigEndian.PutUint64(sum[:], xxhash.Sum64(payload))
	buf.Write(sum[:])
	buf.Write(payload)
	return buf.Bytes(), nil
}

// Decode validates the envelope against the expected kind. Every failure wraps
// model.ErrCacheCorrupt.
func Decode(kind feature.Kind, b []byte) (Layer, error) {
	corrupt := func(format string, args ...any) (Layer, error) {
		return Layer{}, fmt.Errorf("%w: %s: %s", model.ErrCacheCorrupt, kind, fmt.Sprintf(format, args...))
	}

	if len(b) < len(magic)+2 || !bytes.Equal(b[:len(magic)], magic) {
		return corrupt("bad magic")
	}
	b = b[len(magic):]
	if b[0] != codecVersion {
		return corrupt("unsupported version %d", b[0])
	}
	n := int(b[1])
	b = b[2:]
	if len(b) < n+8 {
		return corrupt("truncated header")
	}
	if got := feature.Kind(b[:n]); got != kind {
		return corrupt("kind mismatch %q", got)
	}
	b = b[n:]
	want := binary.BigEndian.Uint64(b[:8])
	payload := b[8:]
	if xxhash.Sum64(payload) != want {
		return corrupt("checksum mismatch")
	}

	raw, err := decoder.DecodeAll(payload, nil)
	if err != nil {
		return corrupt("decompress: %v", err)
	}
	var w wire
	if err := json.Unmarshal(raw, &w); err != nil {
		return corrupt("decode: %v", err)
	}
	if w.Kind != kind {
		return corrupt("payload kind mismatch %q", w.Kind)
	}

	l := Layer{Kind: kind, Empty: w.Empty}
	if w.Empty {
		return l, nil
	}
	if kind.IsGraph() {
		if w.Graph == nil || w.Features != nil {
			return corrupt("want graph payload")
		}
		l.Graph = w.Graph
		return l, nil
	}
	if w.Features == nil || w.Graph != nil {
		return corrupt("want feature collection payload")
	}
	l.Features = w.Features
	return l, nil
}
