package temporal

import (
	errs "github.com/matzehuels/dynalayout/pkg/errors"
)

// Kind distinguishes the two function variants.
type Kind uint8

const (
	// KindConst holds a single value across the whole interval.
	KindConst Kind = iota
	// KindRect interpolates between From and To with a named kernel.
	KindRect
)

// String returns "const" or "rect".
func (k Kind) String() string {
	if k == KindRect {
		return "rect"
	}
	return "const"
}

// Function is a value-producing rule defined exactly on one Interval.
//
// For KindConst only From is meaningful. For KindRect the value at t is
// Blend(From, To, kernel(normalized t)).
type Function[V comparable] struct {
	Kind     Kind
	Interval Interval
	From     V
	To       V
	Interp   Interpolation
}

// Const returns a constant function over iv.
func Const[V comparable](iv Interval, v V) Function[V] {
	return Function[V]{Kind: KindConst, Interval: iv, From: v, To: v}
}

// Rect returns an interpolating function over iv. An empty interp means Linear.
func Rect[V comparable](iv Interval, from, to V, interp Interpolation) Function[V] {
	if interp == "" {
		interp = Linear
	}
	return Function[V]{Kind: KindRect, Interval: iv, From: from, To: to, Interp: interp}
}

// IsConstant reports whether the function yields a single value everywhere.
func (f Function[V]) IsConstant() bool {
	return f.Kind == KindConst || f.From == f.To
}

// ValueAt evaluates the function at t. It fails like [Function.Validate]
// for a malformed function, and with OUT_OF_INTERVAL when t is not inside
// the interval.
func (f Function[V]) ValueAt(t float64) (V, error) {
	var zero V
	if err := f.Validate(); err != nil {
		return zero, err
	}
	if !f.Interval.Contains(t) {
		return zero, errs.New(errs.ErrCodeOutOfInterval, "time %v outside %s", t, f.Interval)
	}
	return f.eval(t), nil
}

// eval assumes t lies inside the interval and the kernel is registered, as
// Evolution.Insert guarantees. The linear fallback only serves functions
// placed without validation.
func (f Function[V]) eval(t float64) V {
	if f.IsConstant() {
		return f.From
	}
	k, err := KernelFor(f.Interp)
	if err != nil {
		k = kernels[Linear]
	}
	return Blend(f.From, f.To, clamp01(k(f.Interval.Normalize(t))))
}

// Validate checks the interval and the kernel name.
func (f Function[V]) Validate() error {
	if err := f.Interval.Validate(); err != nil {
		return err
	}
	if f.Kind == KindRect {
		if _, err := KernelFor(f.Interp); err != nil {
			return err
		}
	}
	return nil
}

// Map applies fn to the function's endpoint values.
func (f Function[V]) Map(fn func(V) V) Function[V] {
	f.From = fn(f.From)
	f.To = fn(f.To)
	return f
}
