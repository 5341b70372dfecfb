package vector

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// EncodeCoords encodes coordinates into a BLOB: a little-endian sequence of
// IEEE 754 float32 values without a length prefix. The length is derived
// from the BLOB size on decode.
func EncodeCoords(coords []float32) ([]byte, error) {
	if len(coords) == 0 {
		return nil, nil
	}
	b := make([]byte, len(coords)*4)
	for i, v := range coords {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(v))
	}
	return b, nil
}

// DecodeCoords decodes a BLOB produced by EncodeCoords.
func DecodeCoords(b []byte) ([]float32, error) {
	if len(b) == 0 {
		return nil, nil
	}
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("vector: invalid coords blob length %d (not multiple of 4)", len(b))
	}
	n := len(b) / 4
	coords := make([]float32, n)
	for i := 0; i < n; i++ {
		coords[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return coords, nil
}

// ParseCoords accepts coordinates as an encoded BLOB, a JSON array, a
// base64 encoded BLOB or a comma separated list of floats.
func ParseCoords(v interface{}) ([]float32, error) {
	switch val := v.(type) {
	case []byte:
		return DecodeCoords(val)
	case string:
		return parseCoordsString(val)
	default:
		return nil, fmt.Errorf("vector: expected coords as BLOB or string, got %T", v)
	}
}

func parseCoordsString(raw string) ([]float32, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, fmt.Errorf("vector: coords string is empty")
	}
	if strings.HasPrefix(s, "[") {
		var floats []float64
		if err := json.Unmarshal([]byte(s), &floats); err != nil {
			return nil, fmt.Errorf("vector: invalid JSON coords: %w", err)
		}
		coords := make([]float32, len(floats))
		for i, f := range floats {
			coords[i] = float32(f)
		}
		return coords, nil
	}
	if strings.Contains(s, ",") {
		parts := strings.Split(s, ",")
		coords := make([]float32, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			f, err := strconv.ParseFloat(p, 32)
			if err != nil {
				return nil, fmt.Errorf("vector: invalid coord %q: %w", p, err)
			}
			coords = append(coords, float32(f))
		}
		if len(coords) > 0 {
			return coords, nil
		}
	}
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		if coords, err := DecodeCoords(b); err == nil && len(coords) > 0 {
			return coords, nil
		}
	}
	if f, err := strconv.ParseFloat(s, 32); err == nil {
		return []float32{float32(f)}, nil
	}
	return nil, fmt.Errorf("vector: coords must be a BLOB, base64 BLOB or JSON/CSV float list")
}
