package knn

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

const (
	indexKD    = "kd"
	indexBrute = "brute"
	indexAuto  = "auto"

	defaultIndexKind = indexAuto

	// below autoKDMinPoints a scan is as fast as a tree walk; above
	// autoKDMaxDims pruning rarely skips a subtree
	autoKDMinPoints = 32
	autoKDMaxDims   = 16
)

// Option configures the module.
type Option func(*Module)

// WithLogger sets the logger used for index builds and invalidations.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Module) { m.logger = logger }
}

type tableOptions struct {
	dims int
	kind string
}

func (o tableOptions) resolveIndexKind(points, dims int) string {
	switch o.kind {
	case indexKD, indexBrute:
		return o.kind
	}
	if points >= autoKDMinPoints && dims <= autoKDMaxDims {
		return indexKD
	}
	return indexBrute
}

// parseTableOptions reads key=value module arguments, for example
// USING knn(dims=3, index=kd). Unknown keys are ignored.
func parseTableOptions(args []string) (tableOptions, error) {
	opts := tableOptions{kind: defaultIndexKind}
	for _, raw := range args {
		a := strings.TrimSpace(raw)
		if a == "" {
			continue
		}
		parts := strings.SplitN(a, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(parts[0]))
		val := strings.Trim(strings.TrimSpace(parts[1]), `'"`)
		switch key {
		case "dims", "dimensions":
			n, err := strconv.Atoi(val)
			if err != nil || n < 1 {
				return opts, fmt.Errorf("knn: invalid dims %q", val)
			}
			opts.dims = n
		case "index":
			switch kind := strings.ToLower(val); kind {
			case indexKD, indexBrute, indexAuto:
				opts.kind = kind
			default:
				return opts, fmt.Errorf("knn: unsupported index %q", val)
			}
		}
	}
	return opts, nil
}
