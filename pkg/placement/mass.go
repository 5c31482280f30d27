package placement

import (
	"github.com/matzehuels/dynalayout/pkg/coarsen"
	errs "github.com/matzehuels/dynalayout/pkg/errors"
)

// Mass weighs a member's own cluster against the foreign clusters of its
// neighbours, whose weights sum to foreign.
type Mass interface {
	Own(coarse *coarsen.Level, cid, fineID string, foreign float64) float64
}

// MassByName returns the mass registered under name. Empty means count.
func MassByName(name string) (Mass, error) {
	switch name {
	case coarsen.MassCount, "":
		return CountMass{}, nil
	case coarsen.MassSolar:
		return DefaultSolarMass(), nil
	}
	return nil, errs.New(errs.ErrCodeInvalidInput, "unknown placement mass %q", name)
}

// CountMass weighs the own cluster by its number of members.
type CountMass struct{}

func (CountMass) Own(coarse *coarsen.Level, cid, _ string, _ float64) float64 {
	return float64(len(coarse.Groups[cid]))
}

// SolarMass gives the own cluster a fixed share of the mean depending on
// the member's role: planets stay closer to their sun than moons.
type SolarMass struct {
	Planet  float64
	Moon    float64
	Default float64
}

// DefaultSolarMass returns shares of 0.5 for planets, 0.25 for moons and
// 0.6 for everything else.
func DefaultSolarMass() SolarMass {
	return SolarMass{Planet: 0.5, Moon: 0.25, Default: 0.6}
}

// Own returns the weight that makes the own cluster's share of the total
// equal to the role's fraction f: f/(1-f) times the foreign weight.
func (m SolarMass) Own(coarse *coarsen.Level, _, fineID string, foreign float64) float64 {
	f := m.Default
	switch coarse.Roles[fineID] {
	case coarsen.RolePlanet:
		f = m.Planet
	case coarsen.RoleMoon:
		f = m.Moon
	}
	f = min(max(f, 0), 0.99)
	return f / (1 - f) * foreign
}
