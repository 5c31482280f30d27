package temporal

import (
	"cmp"
	"math"
	"strconv"
	"strings"

	errs "github.com/matzehuels/dynalayout/pkg/errors"
)

// Interval is a range over the real line with independently typed bounds.
// The zero value of LeftOpen/RightOpen means closed, so Interval{Left: 0,
// Right: 10} is [0, 10]. Unbounded sides use ±Inf and must be open.
//
// Boundary type is part of identity: [0, 10] and [0, 10) are distinct.
type Interval struct {
	Left      float64
	Right     float64
	LeftOpen  bool
	RightOpen bool
}

// NewInterval returns a validated interval.
func NewInterval(left, right float64, leftOpen, rightOpen bool) (Interval, error) {
	if err := errs.ValidateBounds(left, right, leftOpen, rightOpen); err != nil {
		return Interval{}, err
	}
	return Interval{Left: left, Right: right, LeftOpen: leftOpen, RightOpen: rightOpen}, nil
}

// Closed returns [l, r].
func Closed(l, r float64) Interval { return Interval{Left: l, Right: r} }

// Open returns (l, r).
func Open(l, r float64) Interval { return Interval{Left: l, Right: r, LeftOpen: true, RightOpen: true} }

// ClosedOpen returns [l, r).
func ClosedOpen(l, r float64) Interval { return Interval{Left: l, Right: r, RightOpen: true} }

// OpenClosed returns (l, r].
func OpenClosed(l, r float64) Interval { return Interval{Left: l, Right: r, LeftOpen: true} }

// Point returns the degenerate interval [t, t].
func Point(t float64) Interval { return Interval{Left: t, Right: t} }

// Unbounded returns (-inf, +inf).
func Unbounded() Interval { return Open(math.Inf(-1), math.Inf(1)) }

// Validate checks the interval invariants.
func (i Interval) Validate() error {
	return errs.ValidateBounds(i.Left, i.Right, i.LeftOpen, i.RightOpen)
}

// IsEmpty reports whether no instant belongs to the interval.
func (i Interval) IsEmpty() bool {
	return i.Left > i.Right || (i.Left == i.Right && (i.LeftOpen || i.RightOpen))
}

// IsBounded reports whether both bounds are finite.
func (i Interval) IsBounded() bool {
	return !math.IsInf(i.Left, 0) && !math.IsInf(i.Right, 0)
}

// Width returns Right-Left.
func (i Interval) Width() float64 { return i.Right - i.Left }

// Center returns the midpoint of a bounded interval. For half-bounded
// intervals the finite bound is returned.
func (i Interval) Center() float64 {
	switch {
	case math.IsInf(i.Left, 0) && math.IsInf(i.Right, 0):
		return 0
	case math.IsInf(i.Left, 0):
		return i.Right
	case math.IsInf(i.Right, 0):
		return i.Left
	}
	return (i.Left + i.Right) / 2
}

// Contains reports whether t lies within the interval, honoring closures.
func (i Interval) Contains(t float64) bool {
	if t < i.Left || t > i.Right {
		return false
	}
	if t == i.Left && i.LeftOpen {
		return false
	}
	if t == i.Right && i.RightOpen {
		return false
	}
	return true
}

// OverlapsWith reports whether the two intervals share at least one instant.
// Intervals that share a boundary overlap only when both are closed there.
func (i Interval) OverlapsWith(o Interval) bool {
	if i.IsEmpty() || o.IsEmpty() {
		return false
	}
	if i.Right < o.Left || o.Right < i.Left {
		return false
	}
	if i.Right == o.Left && (i.RightOpen || o.LeftOpen) {
		return false
	}
	if o.Right == i.Left && (o.RightOpen || i.LeftOpen) {
		return false
	}
	return true
}

// Touches reports whether i ends exactly where o starts and the shared
// instant is covered by exactly one of them, so the union is contiguous
// without overlap.
func (i Interval) Touches(o Interval) bool {
	return i.Right == o.Left && i.RightOpen != o.LeftOpen
}

// Hull returns the smallest interval covering both i and o.
func (i Interval) Hull(o Interval) Interval {
	out := i
	if CompareLeft(o, i) < 0 {
		out.Left, out.LeftOpen = o.Left, o.LeftOpen
	}
	if CompareRight(o, i) > 0 {
		out.Right, out.RightOpen = o.Right, o.RightOpen
	}
	return out
}

// Normalize maps t to its relative position inside the interval, clamped
// to [0, 1]. Unbounded or zero-width intervals normalize to 0.
func (i Interval) Normalize(t float64) float64 {
	w := i.Width()
	if w <= 0 || math.IsInf(w, 0) || math.IsNaN(w) {
		return 0
	}
	return clamp01((t - i.Left) / w)
}

// Equal reports structural equality including closure types.
func (i Interval) Equal(o Interval) bool { return i == o }

// CompareLeft orders intervals by their left bound. On equal bounds a
// closed left side sorts before an open one, since it starts earlier.
func CompareLeft(a, b Interval) int {
	if c := cmp.Compare(a.Left, b.Left); c != 0 {
		return c
	}
	switch {
	case a.LeftOpen == b.LeftOpen:
		return 0
	case !a.LeftOpen:
		return -1
	}
	return 1
}

// CompareRight orders intervals by their right bound. On equal bounds an
// open right side sorts before a closed one, since it ends earlier.
func CompareRight(a, b Interval) int {
	if c := cmp.Compare(a.Right, b.Right); c != 0 {
		return c
	}
	switch {
	case a.RightOpen == b.RightOpen:
		return 0
	case a.RightOpen:
		return -1
	}
	return 1
}

// String formats the interval as "[0, 10)" with "-inf"/"+inf" sentinels.
func (i Interval) String() string {
	var b strings.Builder
	if i.LeftOpen {
		b.WriteByte('(')
	} else {
		b.WriteByte('[')
	}
	b.WriteString(formatBound(i.Left))
	b.WriteString(", ")
	b.WriteString(formatBound(i.Right))
	if i.RightOpen {
		b.WriteByte(')')
	} else {
		b.WriteByte(']')
	}
	return b.String()
}

// MarshalText implements encoding.TextMarshaler.
func (i Interval) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *Interval) UnmarshalText(text []byte) error {
	parsed, err := ParseInterval(string(text))
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}

// ParseInterval parses the String form, e.g. "[0, 10)" or "(-inf, 5]".
func ParseInterval(s string) (Interval, error) {
	s = strings.TrimSpace(s)
	if len(s) < 5 {
		return Interval{}, errs.New(errs.ErrCodeInvalidInterval, "malformed interval %q", s)
	}

	var iv Interval
	switch s[0] {
	case '[':
	case '(':
		iv.LeftOpen = true
	default:
		return Interval{}, errs.New(errs.ErrCodeInvalidInterval, "malformed interval %q: bad left bracket", s)
	}
	switch s[len(s)-1] {
	case ']':
	case ')':
		iv.RightOpen = true
	default:
		return Interval{}, errs.New(errs.ErrCodeInvalidInterval, "malformed interval %q: bad right bracket", s)
	}

	left, right, ok := strings.Cut(s[1:len(s)-1], ",")
	if !ok {
		return Interval{}, errs.New(errs.ErrCodeInvalidInterval, "malformed interval %q: missing comma", s)
	}
	var err error
	if iv.Left, err = parseBound(left); err != nil {
		return Interval{}, errs.Wrap(errs.ErrCodeInvalidInterval, err, "malformed interval %q", s)
	}
	if iv.Right, err = parseBound(right); err != nil {
		return Interval{}, errs.Wrap(errs.ErrCodeInvalidInterval, err, "malformed interval %q", s)
	}
	if err := iv.Validate(); err != nil {
		return Interval{}, err
	}
	return iv, nil
}

func formatBound(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "+inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func parseBound(s string) (float64, error) {
	switch s = strings.TrimSpace(s); s {
	case "+inf", "inf":
		return math.Inf(1), nil
	case "-inf":
		return math.Inf(-1), nil
	}
	return strconv.ParseFloat(s, 64)
}

func clamp01(v float64) float64 {
	return max(0, min(v, 1))
}

// ValidateIntervals checks that every interval is well formed and that the
// list is sorted by left bound with no two intervals overlapping.
func ValidateIntervals(ivs []Interval) error {
	if len(ivs) == 0 {
		return errs.New(errs.ErrCodeInvalidInput, "at least one interval is required")
	}
	for k, iv := range ivs {
		if err := iv.Validate(); err != nil {
			return err
		}
		if k == 0 {
			continue
		}
		prev := ivs[k-1]
		if CompareLeft(prev, iv) >= 0 {
			return errs.New(errs.ErrCodeInvalidInterval, "intervals not sorted: %s before %s", prev, iv)
		}
		if prev.OverlapsWith(iv) {
			return errs.New(errs.ErrCodeInvalidInterval, "interval %s overlaps %s", prev, iv)
		}
	}
	return nil
}
