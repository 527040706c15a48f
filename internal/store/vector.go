package store

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Embedding vectors are stored as little-endian float32 blobs. The codec
// is length-checked on decode so a truncated blob surfaces as an error
// rather than a silently short vector.

func encodeVector(v []float32) ([]byte, error) {
	if len(v) == 0 {
		return nil, fmt.Errorf("empty embedding vector")
	}
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf, nil
}

func decodeVector(blob []byte) ([]float32, error) {
	if len(blob) == 0 || len(blob)%4 != 0 {
		return nil, fmt.Errorf("malformed embedding blob: %d bytes", len(blob))
	}
	v := make([]float32, len(blob)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return v, nil
}
