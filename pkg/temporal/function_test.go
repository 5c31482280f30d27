package temporal

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/matzehuels/dynalayout/pkg/errors"
)

func TestFunctionValueAtOutside(t *testing.T) {
	f := Rect(ClosedOpen(0, 10), 0.0, 1.0, Linear)

	_, err := f.ValueAt(10)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.ErrCodeOutOfInterval))

	v, err := f.ValueAt(0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)
}

func TestFunctionValueAtUnknownKernel(t *testing.T) {
	f := Function[float64]{Kind: KindRect, Interval: Closed(0, 10), From: 0, To: 1, Interp: "wobble"}

	_, err := f.ValueAt(5)
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidInput), "got %v", err)

	_, err = f.Map(func(v float64) float64 { return v * 2 }).ValueAt(5)
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidInput), "mapped copy keeps the bad kernel: %v", err)
}

func TestFunctionEqualEndpointsAnyKernel(t *testing.T) {
	for _, k := range Interpolations() {
		t.Run(string(k), func(t *testing.T) {
			f := Rect(Closed(0, 10), 3.0, 3.0, k)
			for ti := 0.0; ti <= 10; ti += 0.5 {
				v, err := f.ValueAt(ti)
				require.NoError(t, err)
				assert.Equal(t, 3.0, v, "t=%v", ti)
			}
		})
	}
}

func TestKernelEndpoints(t *testing.T) {
	for _, name := range Interpolations() {
		t.Run(string(name), func(t *testing.T) {
			k, err := KernelFor(name)
			require.NoError(t, err)
			assert.InDelta(t, 0, k(0), 1e-12)
			if name == Constant {
				assert.Equal(t, 0.0, k(1))
				return
			}
			assert.InDelta(t, 1, k(1), 1e-12)
			for x := 0.0; x <= 1; x += 0.05 {
				v := k(x)
				assert.GreaterOrEqual(t, v, -1e-12)
				assert.LessOrEqual(t, v, 1+1e-12)
			}
		})
	}
}

func TestKernelForUnknown(t *testing.T) {
	_, err := KernelFor("wobble")
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidInput))

	k, err := KernelFor("")
	require.NoError(t, err)
	assert.Equal(t, 0.25, k(0.25))

	f := Rect(Closed(0, 1), 0.0, 1.0, "wobble")
	assert.Error(t, f.Validate())
}

func TestFunctionStepKernel(t *testing.T) {
	f := Rect(Closed(0, 10), 0.0, 1.0, Step)
	v, _ := f.ValueAt(4)
	assert.Equal(t, 0.0, v)
	v, _ = f.ValueAt(6)
	assert.Equal(t, 1.0, v)
}

func TestFunctionBlendTypes(t *testing.T) {
	s := Rect(Closed(0, 10), "a", "b", Linear)
	v, _ := s.ValueAt(4)
	assert.Equal(t, "a", v)
	v, _ = s.ValueAt(5)
	assert.Equal(t, "b", v)

	n := Rect(Closed(0, 10), 0, 10, Linear)
	iv, _ := n.ValueAt(3)
	assert.Equal(t, 3, iv)

	b := Rect(Closed(0, 10), false, true, Linear)
	bv, _ := b.ValueAt(2)
	assert.False(t, bv)
	bv, _ = b.ValueAt(8)
	assert.True(t, bv)
}

func TestFunctionUnboundedRect(t *testing.T) {
	f := Rect(OpenClosed(math.Inf(-1), 5), 1.0, 9.0, Linear)
	v, err := f.ValueAt(0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)
}

func TestFunctionMap(t *testing.T) {
	f := Rect(Closed(0, 10), 1.0, 2.0, SmoothStep).Map(func(v float64) float64 { return v * 10 })
	assert.Equal(t, 10.0, f.From)
	assert.Equal(t, 20.0, f.To)
	assert.Equal(t, SmoothStep, f.Interp)
	assert.Equal(t, KindRect, f.Kind)
	assert.Equal(t, "rect", f.Kind.String())
}
