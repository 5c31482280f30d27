package temporal

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/matzehuels/dynalayout/pkg/errors"
)

func TestIntervalOverlapsWith(t *testing.T) {
	tests := []struct {
		name string
		a, b Interval
		want bool
	}{
		{"BothClosedAtShared", Closed(0, 10), Closed(10, 20), true},
		{"RightClosedLeftOpen", Closed(0, 10), OpenClosed(10, 20), false},
		{"RightOpenLeftClosed", ClosedOpen(0, 10), Closed(10, 20), false},
		{"BothOpenAtShared", ClosedOpen(0, 10), OpenClosed(10, 20), false},
		{"Nested", Closed(0, 10), Open(2, 3), true},
		{"Partial", Closed(0, 5), Closed(3, 8), true},
		{"Disjoint", Closed(0, 1), Closed(2, 3), false},
		{"PointInside", Point(5), Closed(0, 10), true},
		{"PointOnOpenEnd", Point(10), ClosedOpen(0, 10), false},
		{"Unbounded", Unbounded(), Point(-1e9), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.OverlapsWith(tt.b))
			assert.Equal(t, tt.want, tt.b.OverlapsWith(tt.a), "overlap must be symmetric")
			assert.True(t, tt.a.OverlapsWith(tt.a), "overlap must be reflexive")
		})
	}
}

func TestIntervalTouches(t *testing.T) {
	assert.True(t, ClosedOpen(0, 10).Touches(Closed(10, 20)))
	assert.True(t, Closed(0, 10).Touches(OpenClosed(10, 20)))
	assert.False(t, Closed(0, 10).Touches(Closed(10, 20)), "shared instant covered twice")
	assert.False(t, ClosedOpen(0, 10).Touches(OpenClosed(10, 20)), "shared instant not covered")
	assert.False(t, Closed(0, 9).Touches(Closed(10, 20)))
}

func TestIntervalContains(t *testing.T) {
	iv := OpenClosed(0, 10)
	assert.False(t, iv.Contains(0))
	assert.True(t, iv.Contains(0.0001))
	assert.True(t, iv.Contains(10))
	assert.False(t, iv.Contains(10.5))

	assert.True(t, Unbounded().Contains(math.MaxFloat64))
	assert.True(t, Point(3).Contains(3))
}

func TestIntervalEqualDistinguishesClosure(t *testing.T) {
	assert.True(t, Closed(0, 10).Equal(Closed(0, 10)))
	assert.False(t, Closed(0, 10).Equal(ClosedOpen(0, 10)))
}

func TestIntervalHull(t *testing.T) {
	assert.Equal(t, Closed(0, 20), ClosedOpen(0, 10).Hull(Closed(10, 20)))
	assert.Equal(t, OpenClosed(0, 20), OpenClosed(0, 10).Hull(OpenClosed(5, 20)))
	assert.Equal(t, Closed(0, 10), Closed(0, 10).Hull(Open(0, 10)))
}

func TestIntervalNormalize(t *testing.T) {
	iv := Closed(30, 40)
	assert.InDelta(t, 0.5, iv.Normalize(35), 1e-12)
	assert.Equal(t, 0.0, iv.Normalize(20))
	assert.Equal(t, 1.0, iv.Normalize(50))
	assert.Equal(t, 0.0, Unbounded().Normalize(3))
	assert.Equal(t, 0.0, Point(3).Normalize(3))
}

func TestCompareLeftRight(t *testing.T) {
	assert.Equal(t, -1, CompareLeft(Closed(0, 1), Open(0, 1)))
	assert.Equal(t, 1, CompareLeft(Open(0, 1), Closed(0, 1)))
	assert.Equal(t, 0, CompareLeft(Closed(0, 1), Closed(0, 5)))
	assert.Equal(t, -1, CompareRight(ClosedOpen(0, 1), Closed(0, 1)))
	assert.Equal(t, 1, CompareRight(Closed(0, 2), Closed(0, 1)))
}

func TestParseInterval(t *testing.T) {
	for _, s := range []string{"[0, 10)", "(-inf, 5]", "(1.5, +inf)", "[3, 3]", "(-inf, +inf)"} {
		t.Run(s, func(t *testing.T) {
			iv, err := ParseInterval(s)
			require.NoError(t, err)
			assert.Equal(t, s, iv.String())
		})
	}

	for _, s := range []string{"[10, 0]", "[-inf, 0]", "0, 1", "[5, 5)", "[a, 1]", "[1 2]"} {
		t.Run("Invalid/"+s, func(t *testing.T) {
			_, err := ParseInterval(s)
			require.Error(t, err)
			assert.True(t, errs.Is(err, errs.ErrCodeInvalidInterval), "got %v", err)
		})
	}
}

func TestIntervalText(t *testing.T) {
	text, err := OpenClosed(-2, 7.5).MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "(-2, 7.5]", string(text))

	var iv Interval
	require.NoError(t, iv.UnmarshalText(text))
	assert.Equal(t, OpenClosed(-2, 7.5), iv)
}

func TestNewInterval(t *testing.T) {
	iv, err := NewInterval(0, 1, false, true)
	require.NoError(t, err)
	assert.Equal(t, ClosedOpen(0, 1), iv)

	_, err = NewInterval(math.Inf(-1), 0, false, false)
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidInterval))
}

func TestValidateIntervals(t *testing.T) {
	require.NoError(t, ValidateIntervals([]Interval{ClosedOpen(0, 10), Closed(10, 20), OpenClosed(20, 30)}))

	err := ValidateIntervals([]Interval{Closed(0, 10), Closed(10, 20)})
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidInterval))

	err = ValidateIntervals([]Interval{Closed(10, 20), Closed(0, 5)})
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidInterval))

	err = ValidateIntervals(nil)
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidInput))
}
