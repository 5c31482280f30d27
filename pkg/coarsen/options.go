package coarsen

import (
	"fmt"
	"math"
	"strconv"

	errs "github.com/matzehuels/dynalayout/pkg/errors"
)

// Own-cluster mass policies understood by barycentric placement.
const (
	MassCount = "count"
	MassSolar = "solar"
)

// Option keys accepted by [ParseOptions].
const (
	OptMinNodes  = "min_nodes"
	OptMaxLevels = "max_levels"
	OptPolicy    = "policy"
	OptMass      = "mass"
)

// ParseOptions reads coarsening options from a generic mapping, as decoded
// from a TOML table or JSON object. Integers may be given as int, int64,
// integral float64 or decimal strings. Unknown keys are rejected.
func ParseOptions(m map[string]any) (Options, error) {
	var o Options
	for k, v := range m {
		switch k {
		case OptMinNodes:
			n, err := toInt(k, v)
			if err != nil {
				return Options{}, err
			}
			o.MinNodes = n
		case OptMaxLevels:
			n, err := toInt(k, v)
			if err != nil {
				return Options{}, err
			}
			o.MaxLevels = n
		case OptPolicy:
			name, _ := v.(string)
			p, ok := PolicyByName(name)
			if !ok {
				return Options{}, errs.New(errs.ErrCodeInvalidInput, "unknown coarsening policy %v", v)
			}
			o.Policy = p
		case OptMass:
			name, _ := v.(string)
			if err := errs.ValidateFormat(name, []string{MassCount, MassSolar}); err != nil {
				return Options{}, errs.Wrap(errs.ErrCodeInvalidInput, err, "option %s", k)
			}
			o.Mass = name
		default:
			return Options{}, errs.New(errs.ErrCodeInvalidInput, "unknown coarsening option %q", k)
		}
	}
	if o.MinNodes < 0 || o.MaxLevels < 0 {
		return Options{}, errs.New(errs.ErrCodeInvalidInput, "coarsening limits must not be negative")
	}
	return o, nil
}

func toInt(key string, v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n == math.Trunc(n) && !math.IsInf(n, 0) {
			return int(n), nil
		}
	case string:
		i, err := strconv.Atoi(n)
		if err == nil {
			return i, nil
		}
	}
	return 0, errs.New(errs.ErrCodeInvalidInput, "option %s: %s is not an integer", key, fmt.Sprint(v))
}
