package metrics

import (
	"errors"
	"fmt"
	"strings"
)

// ErrZeroVolume is returned under ZeroVolumeError when a non-singleton
// cluster has vol1 = 0.
var ErrZeroVolume = errors.New("metrics: conductance over zero volume")

// ErrNoResolution is returned when cpm is evaluated by name without a
// resolution. CPM has no default resolution.
var ErrNoResolution = errors.New("metrics: cpm needs a resolution")

// ZeroVolumePolicy decides what conductance reports for n > 1 and vol1 = 0.
type ZeroVolumePolicy int

const (
	// ZeroVolumeNull reports a null conductance.
	ZeroVolumeNull ZeroVolumePolicy = iota
	// ZeroVolumeError fails the evaluation with ErrZeroVolume.
	ZeroVolumeError
)

func (p ZeroVolumePolicy) String() string {
	switch p {
	case ZeroVolumeNull:
		return "null"
	case ZeroVolumeError:
		return "error"
	default:
		return fmt.Sprintf("ZeroVolumePolicy(%d)", int(p))
	}
}

// ParseZeroVolumePolicy accepts "null" (or "") and "error".
func ParseZeroVolumePolicy(s string) (ZeroVolumePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "null":
		return ZeroVolumeNull, nil
	case "error":
		return ZeroVolumeError, nil
	default:
		return 0, fmt.Errorf("metrics: unknown zero-volume policy %q (want null or error)", s)
	}
}

// Row is one cluster's counts: N member nodes, M internal edges and C cut
// edges.
type Row struct {
	N, M, C int64
}

// CPM is the constant Potts model score m - r·n·(n-1)/2.
func (r Row) CPM(resolution float64) float64 {
	n := float64(r.N)
	return float64(r.M) - resolution*n*(n-1)/2
}

// Volume is 2m + c, the degree sum of the cluster's members.
func (r Row) Volume() int64 {
	return 2*r.M + r.C
}

// Modularity is m/M - r·(vol/2M)². It is undefined when the graph has no
// edges.
func (r Row) Modularity(g *Context, resolution float64) (float64, bool) {
	if g.M == 0 {
		return 0, false
	}
	bigM := float64(g.M)
	share := float64(r.Volume()) / (2 * bigM)
	return float64(r.M)/bigM - resolution*share*share, true
}

// Vol1 is the smaller of the cluster's volume and the volume of its
// complement, 2M - vol. Ties return the complement.
func (r Row) Vol1(g *Context) int64 {
	vol := r.Volume()
	complement := 2*g.M - vol
	if vol >= complement {
		return complement
	}
	return vol
}

// Conductance is c / vol1. Clusters with n <= 1 always get a null. For
// larger clusters with vol1 = 0 the policy decides between a null and
// ErrZeroVolume.
func (r Row) Conductance(g *Context, policy ZeroVolumePolicy) (float64, bool, error) {
	if r.N <= 1 {
		return 0, false, nil
	}
	vol1 := r.Vol1(g)
	if vol1 == 0 {
		if policy == ZeroVolumeError {
			return 0, false, fmt.Errorf("%w: n=%d m=%d c=%d", ErrZeroVolume, r.N, r.M, r.C)
		}
		return 0, false, nil
	}
	return float64(r.C) / float64(vol1), true, nil
}
