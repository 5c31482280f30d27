package temporal

import (
	"maps"
	"math"
	"slices"

	errs "github.com/matzehuels/dynalayout/pkg/errors"
)

// Interpolation names a kernel used by rect functions.
type Interpolation string

// Supported interpolation kernels.
const (
	Linear         Interpolation = "linear"
	Step           Interpolation = "step"
	Constant       Interpolation = "constant"
	SmoothStep     Interpolation = "smoothstep"
	SmootherStep   Interpolation = "smootherstep"
	Gaussian       Interpolation = "gaussian"
	GaussianNarrow Interpolation = "gaussian_narrow"
	GaussianWide   Interpolation = "gaussian_wide"
	Charge         Interpolation = "charge"
	ChargeFast     Interpolation = "charge_fast"
	Discharge      Interpolation = "discharge"
	DischargeFast  Interpolation = "discharge_fast"
)

// Kernel maps a normalized position in [0, 1] to a blend ratio in [0, 1].
type Kernel func(x float64) float64

var kernels = map[Interpolation]Kernel{
	Linear:   func(x float64) float64 { return x },
	Constant: func(float64) float64 { return 0 },
	Step: func(x float64) float64 {
		if x < 0.5 {
			return 0
		}
		return 1
	},
	SmoothStep:     func(x float64) float64 { return x * x * (3 - 2*x) },
	SmootherStep:   func(x float64) float64 { return x * x * x * (x*(6*x-15) + 10) },
	Gaussian:       gaussianKernel(4),
	GaussianNarrow: gaussianKernel(8),
	GaussianWide:   gaussianKernel(2),
	Charge:         chargeKernel(5),
	ChargeFast:     chargeKernel(10),
	Discharge:      dischargeKernel(5),
	DischargeFast:  dischargeKernel(10),
}

// gaussianKernel is the normalized error function centered at 0.5;
// larger k makes the transition sharper.
func gaussianKernel(k float64) Kernel {
	norm := math.Erf(0.5 * k)
	return func(x float64) float64 {
		return (math.Erf((x-0.5)*k)/norm + 1) / 2
	}
}

// chargeKernel rises fast and saturates, like a charging capacitor.
func chargeKernel(k float64) Kernel {
	norm := 1 - math.Exp(-k)
	return func(x float64) float64 {
		return (1 - math.Exp(-k*x)) / norm
	}
}

// dischargeKernel starts slow and accelerates towards the end.
func dischargeKernel(k float64) Kernel {
	norm := math.Exp(k) - 1
	return func(x float64) float64 {
		return (math.Exp(k*x) - 1) / norm
	}
}

// KernelFor returns the kernel registered under name. The empty name
// resolves to Linear.
func KernelFor(name Interpolation) (Kernel, error) {
	if name == "" {
		name = Linear
	}
	k, ok := kernels[name]
	if !ok {
		return nil, errs.New(errs.ErrCodeInvalidInput, "unknown interpolation %q", name)
	}
	return k, nil
}

// Interpolations lists the registered kernel names in sorted order.
func Interpolations() []Interpolation {
	return slices.Sorted(maps.Keys(kernels))
}

// Blender is implemented by value types that know how to blend towards
// another value of the same type.
type Blender[V any] interface {
	Blend(to V, ratio float64) V
}

// Blend mixes a towards b by ratio r in [0, 1]. Numeric types blend
// arithmetically, Blender implementations use their own method, and any
// other type falls back to the nearest endpoint.
func Blend[V any](a, b V, r float64) V {
	switch av := any(a).(type) {
	case float64:
		bv := any(b).(float64)
		return any(av + (bv-av)*r).(V)
	case float32:
		bv := any(b).(float32)
		return any(av + (bv-av)*float32(r)).(V)
	case int:
		bv := any(b).(int)
		return any(av + int(math.Round(float64(bv-av)*r))).(V)
	case Blender[V]:
		return av.Blend(b, r)
	}
	if r < 0.5 {
		return a
	}
	return b
}
