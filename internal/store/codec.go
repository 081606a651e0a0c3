package store

import (
	"encoding/binary"
	"encoding/json"
	"math"

	"github.com/sagaeng/saga/internal/model"
)

// encodeEmbedding packs a float32 vector into a little-endian byte blob
// for BLOB storage; coder/hnsw and the query engine both operate on
// []float32 in memory, so the on-disk form only needs to round-trip.
func encodeEmbedding(vec []float32) []byte {
	if len(vec) == 0 {
		return nil
	}
	out := make([]byte, 4*len(vec))
	for i, f := range vec {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(f))
	}
	return out
}

func decodeEmbedding(blob []byte) []float32 {
	if len(blob) == 0 {
		return nil
	}
	n := len(blob) / 4
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return out
}

func encodeExtra(extra map[string]string) ([]byte, error) {
	if len(extra) == 0 {
		return nil, nil
	}
	return json.Marshal(extra)
}

func decodeExtra(blob []byte) (map[string]string, error) {
	if len(blob) == 0 {
		return nil, nil
	}
	var out map[string]string
	if err := json.Unmarshal(blob, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// nullableString maps Go's zero string to SQL NULL for optional columns.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// statusOrDefault defaults an empty Status to active.
func statusOrDefault(s model.Status) model.Status {
	if s == "" {
		return model.StatusActive
	}
	return s
}
