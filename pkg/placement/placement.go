package placement

import (
	"math"
	"math/rand/v2"
	"slices"

	"github.com/matzehuels/dynalayout/pkg/coarsen"
	"github.com/matzehuels/dynalayout/pkg/dygraph"
	errs "github.com/matzehuels/dynalayout/pkg/errors"
)

// Strategy assigns a trajectory to every node of fine from the resolved
// trajectories of coarse, the level directly above it. Only node positions
// of fine are written.
type Strategy interface {
	Place(fine, coarse *coarsen.Level, rng *rand.Rand) error
}

// Strategy names accepted by [ByName].
const (
	NameIdentity   = "identity"
	NameBarycenter = "barycenter"
)

// ByName builds a strategy from its name. The barycenter strategy uses
// mass ("count" or "solar") for the own-cluster weight.
func ByName(name, mass string, distance, jitter float64) (Strategy, error) {
	switch name {
	case NameIdentity:
		return Identity{Jitter: jitter}, nil
	case NameBarycenter, "":
		m, err := MassByName(mass)
		if err != nil {
			return nil, err
		}
		return Barycenter{Mass: m, Distance: distance, Jitter: jitter}, nil
	}
	return nil, errs.New(errs.ErrCodeInvalidInput, "unknown placement strategy %q", name)
}

// Identity gives every member its cluster's trajectory, shifted by a
// uniform jitter in [-Jitter, Jitter] on each axis.
type Identity struct {
	Jitter float64
}

func (s Identity) Place(fine, coarse *coarsen.Level, rng *rand.Rand) error {
	for _, n := range fine.Graph.Nodes() {
		cluster, err := clusterNode(coarse, n.ID)
		if err != nil {
			return err
		}
		n.Position = dygraph.Shift(cluster.Position, jitter(rng, s.Jitter))
	}
	return nil
}

// Barycenter places cluster leaders like [Identity]. Every other member
// moves to the weighted mean of the clusters its neighbours belong to: each
// foreign cluster weighs the number of neighbours it holds, and the
// member's own cluster weighs what Mass returns. A member without foreign
// neighbours lands Distance away from its cluster at a uniformly random
// angle. Every position finally gets the same jitter as [Identity].
type Barycenter struct {
	Mass     Mass
	Distance float64
	Jitter   float64
}

func (s Barycenter) Place(fine, coarse *coarsen.Level, rng *rand.Rand) error {
	mass := s.Mass
	if mass == nil {
		mass = CountMass{}
	}
	for _, n := range fine.Graph.Nodes() {
		cid, err := coarse.ClusterOf(n.ID)
		if err != nil {
			return err
		}
		cluster, err := clusterNode(coarse, n.ID)
		if err != nil {
			return err
		}
		leader, err := coarse.Leader(cid)
		if err != nil {
			return err
		}
		if leader == n.ID {
			n.Position = dygraph.Shift(cluster.Position, jitter(rng, s.Jitter))
			continue
		}

		foreign := make(map[string]float64)
		for _, nb := range fine.Graph.Neighbors(n.ID) {
			other, err := coarse.ClusterOf(nb)
			if err != nil {
				return err
			}
			if other != cid {
				foreign[other]++
			}
		}

		if len(foreign) == 0 {
			offset := dygraph.Polar(s.Distance, rng.Float64()*2*math.Pi)
			n.Position = dygraph.Shift(cluster.Position, offset.Add(jitter(rng, s.Jitter)))
			continue
		}

		ids := make([]string, 0, len(foreign))
		for id := range foreign {
			ids = append(ids, id)
		}
		slices.Sort(ids)

		trs := make([]*dygraph.Trajectory, 0, len(ids)+1)
		weights := make([]float64, 0, len(ids)+1)
		total := 0.0
		for _, id := range ids {
			other, ok := coarse.Graph.Node(id)
			if !ok {
				return errs.New(errs.ErrCodeMissingMapping, "cluster %q not in level %d", id, coarse.Index)
			}
			trs = append(trs, other.Position)
			weights = append(weights, foreign[id])
			total += foreign[id]
		}
		trs = append(trs, cluster.Position)
		weights = append(weights, mass.Own(coarse, cid, n.ID, total))

		n.Position = dygraph.Shift(dygraph.WeightedMean(trs, weights), jitter(rng, s.Jitter))
	}
	return nil
}

func clusterNode(coarse *coarsen.Level, fineID string) (*dygraph.Node, error) {
	cid, err := coarse.ClusterOf(fineID)
	if err != nil {
		return nil, err
	}
	n, ok := coarse.Graph.Node(cid)
	if !ok {
		return nil, errs.New(errs.ErrCodeMissingMapping, "cluster %q of %q not in level %d", cid, fineID, coarse.Index)
	}
	return n, nil
}

func jitter(rng *rand.Rand, j float64) dygraph.Point {
	if j <= 0 {
		return dygraph.Point{}
	}
	return dygraph.Point{
		X: (rng.Float64()*2 - 1) * j,
		Y: (rng.Float64()*2 - 1) * j,
	}
}
