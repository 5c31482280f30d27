package coarsen

// Role is the solar status a node receives when it is absorbed.
type Role uint8

const (
	// RoleUnassigned is used by policies without tiers.
	RoleUnassigned Role = iota
	// RoleSun marks a cluster leader under the solar merger.
	RoleSun
	// RolePlanet marks a direct neighbour of the sun.
	RolePlanet
	// RoleMoon marks a neighbour of a planet.
	RoleMoon
)

func (r Role) String() string {
	switch r {
	case RoleSun:
		return "sun"
	case RolePlanet:
		return "planet"
	case RoleMoon:
		return "moon"
	}
	return "unassigned"
}

// Member is one node of a cluster together with its role.
type Member struct {
	ID   string
	Role Role
}

// View is what a policy may inspect while forming a cluster: the finer
// level and which of its nodes are already taken.
type View struct {
	level    *Level
	consumed map[string]bool
}

// Neighbors returns id's sorted neighbours that are not yet consumed.
func (v *View) Neighbors(id string) []string {
	var out []string
	for _, n := range v.level.Graph.Neighbors(id) {
		if !v.consumed[n] {
			out = append(out, n)
		}
	}
	return out
}

// Weight returns the weight of the edge joining a and b.
func (v *View) Weight(a, b string) float64 { return v.level.WeightBetween(a, b) }

// Policy decides which unconsumed neighbours a leader absorbs. Absorb
// returns the whole cluster with the leader first; ids must be unique and
// unconsumed.
type Policy interface {
	Name() string
	Absorb(v *View, leader string) []Member
}

// Policy names accepted by [ParseOptions].
const (
	PolicyIndependentSet = "independent_set"
	PolicyWalshaw        = "walshaw"
	PolicySolarMerger    = "solar_merger"
)

// IndependentSet absorbs every unconsumed neighbour of the leader.
type IndependentSet struct{}

func (IndependentSet) Name() string { return PolicyIndependentSet }

func (IndependentSet) Absorb(v *View, leader string) []Member {
	out := []Member{{ID: leader}}
	for _, n := range v.Neighbors(leader) {
		out = append(out, Member{ID: n})
	}
	return out
}

// Walshaw absorbs the single unconsumed neighbour reached through the
// lightest edge. Ties go to the smaller id.
type Walshaw struct{}

func (Walshaw) Name() string { return PolicyWalshaw }

func (Walshaw) Absorb(v *View, leader string) []Member {
	out := []Member{{ID: leader}}
	best, bestW := "", 0.0
	for _, n := range v.Neighbors(leader) {
		// Neighbours arrive sorted, so strict less keeps the smaller id.
		if w := v.Weight(leader, n); best == "" || w < bestW {
			best, bestW = n, w
		}
	}
	if best != "" {
		out = append(out, Member{ID: best})
	}
	return out
}

// SolarMerger forms solar systems: the leader becomes the sun, its
// unconsumed neighbours planets, and the planets' unconsumed neighbours
// moons.
type SolarMerger struct{}

func (SolarMerger) Name() string { return PolicySolarMerger }

func (SolarMerger) Absorb(v *View, leader string) []Member {
	taken := map[string]bool{leader: true}
	out := []Member{{ID: leader, Role: RoleSun}}

	var planets []string
	for _, n := range v.Neighbors(leader) {
		taken[n] = true
		planets = append(planets, n)
		out = append(out, Member{ID: n, Role: RolePlanet})
	}
	for _, p := range planets {
		for _, n := range v.Neighbors(p) {
			if taken[n] {
				continue
			}
			taken[n] = true
			out = append(out, Member{ID: n, Role: RoleMoon})
		}
	}
	return out
}

// PolicyByName returns the policy registered under name.
func PolicyByName(name string) (Policy, bool) {
	switch name {
	case PolicyIndependentSet, "":
		return IndependentSet{}, true
	case PolicyWalshaw:
		return Walshaw{}, true
	case PolicySolarMerger:
		return SolarMerger{}, true
	}
	return nil, false
}
