package errors

import (
	"math"
	"testing"
)

func TestValidateNodeID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "alice", false},
		{"valid with dash", "node-1", false},
		{"valid single underscore suffix", "a_1", false},
		{"valid double underscore word", "a__b", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 300)), true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
		{"reserved level suffix", "a__3", true},
		{"reserved level suffix multi digit", "node__12", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNodeID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateNodeID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidNodeID) {
				t.Errorf("ValidateNodeID(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidNodeID)
			}
		})
	}
}

func TestValidateSnapTimes(t *testing.T) {
	tests := []struct {
		name    string
		input   []float64
		wantErr bool
	}{
		{"single", []float64{8}, false},
		{"increasing", []float64{0, 1.5, 10}, false},

		{"empty", nil, true},
		{"equal", []float64{1, 1}, true},
		{"decreasing", []float64{2, 1}, true},
		{"nan", []float64{math.NaN()}, true},
		{"inf", []float64{0, math.Inf(1)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSnapTimes(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSnapTimes(%v) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateBounds(t *testing.T) {
	inf := math.Inf(1)
	tests := []struct {
		name                string
		left, right         float64
		leftOpen, rightOpen bool
		wantErr             bool
	}{
		{"closed", 0, 10, false, false, false},
		{"half open", 0, 10, false, true, false},
		{"point", 5, 5, false, false, false},
		{"unbounded", -inf, inf, true, true, false},

		{"reversed", 10, 0, false, false, true},
		{"open point", 5, 5, true, false, true},
		{"closed infinity", 0, inf, false, false, true},
		{"closed negative infinity", -inf, 0, false, false, true},
		{"nan", math.NaN(), 1, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBounds(tt.left, tt.right, tt.leftOpen, tt.rightOpen)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateBounds() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateFormat(t *testing.T) {
	allowed := []string{"json", "svg", "dot"}
	if err := ValidateFormat("svg", allowed); err != nil {
		t.Errorf("ValidateFormat(svg) error = %v", err)
	}
	if err := ValidateFormat("SVG", allowed); err == nil {
		t.Error("ValidateFormat should be case-sensitive")
	}
	if err := ValidateFormat("", allowed); err == nil {
		t.Error("ValidateFormat should reject empty format")
	}
}
