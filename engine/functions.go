package engine

import (
	"database/sql/driver"
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/viant/kdtree/index"
	sqlite "modernc.org/sqlite"
)

var registerOnce sync.Once

// RegisterFunctions registers kd_l2(a BLOB, b BLOB) REAL with the driver so
// it is available on connections opened after this call. Repeated calls are
// no-ops.
func RegisterFunctions() error {
	var err error
	registerOnce.Do(func() {
		err = sqlite.RegisterDeterministicScalarFunction("kd_l2", 2, l2Impl)
	})
	return err
}

func asCoords(arg driver.Value) ([]float32, error) {
	switch v := arg.(type) {
	case nil:
		return nil, nil
	case []byte:
		return decodeCoords(v)
	default:
		return nil, fmt.Errorf("kd_l2: unsupported argument type %T; want BLOB", arg)
	}
}

func l2Impl(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("kd_l2: expected 2 arguments, got %d", len(args))
	}
	a, err := asCoords(args[0])
	if err != nil {
		return nil, err
	}
	b, err := asCoords(args[1])
	if err != nil {
		return nil, err
	}
	if a == nil || b == nil {
		return nil, nil
	}
	return l2(a, b)
}

// decodeCoords mirrors vector.DecodeCoords; vector tests open databases
// through this package, so it cannot be imported here.
func decodeCoords(b []byte) ([]float32, error) {
	if len(b) == 0 {
		return nil, nil
	}
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("kd_l2: invalid coords blob length %d", len(b))
	}
	n := len(b) / 4
	v := make([]float32, n)
	for i := 0; i < n; i++ {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v, nil
}

func l2(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("kd_l2: dimension mismatch %d vs %d", len(a), len(b))
	}
	return index.EuclideanDistance(a, b), nil
}
