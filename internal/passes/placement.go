package passes

import (
	"sort"

	"github.com/pkg/errors"

	"quilbridge/internal/circuit"
	"quilbridge/internal/device"
)

// Error rates charged to uncalibrated hardware during noise-aware
// placement. Unknown couplers and nodes are assumed mediocre so that
// calibrated ones win ties.
const (
	defaultEdgeError = 1e-2
	defaultNodeError = 1e-3
)

// ErrArchTooSmall reports a circuit wider than the device.
var ErrArchTooSmall = errors.New("passes: circuit needs more qubits than the device has nodes")

// NaivePlacementPass assigns every qubit not already on a device node
// to the lowest free node, in qubit order. It is the fallback that
// guarantees a full placement before routing.
type NaivePlacementPass struct {
	arch *device.Architecture
}

// NaivePlacement builds the fallback placement pass for an architecture.
func NaivePlacement(arch *device.Architecture) *NaivePlacementPass {
	return &NaivePlacementPass{arch: arch}
}

func (*NaivePlacementPass) Name() string { return "NaivePlacement" }

func (p *NaivePlacementPass) Apply(c *circuit.Circuit) (bool, error) {
	used := make(map[int]bool)
	var unplaced []circuit.Qubit
	for _, q := range c.Qubits() {
		if q.Register == device.NodeRegister {
			if !p.arch.HasNode(q.Index) {
				return false, errors.Errorf("passes: qubit %s is not a device node", q)
			}
			used[q.Index] = true
			continue
		}
		unplaced = append(unplaced, q)
	}
	if len(unplaced) == 0 {
		return false, nil
	}
	var free []int
	for _, n := range p.arch.Nodes() {
		if !used[n] {
			free = append(free, n)
		}
	}
	if len(free) < len(unplaced) {
		return false, errors.Wrapf(ErrArchTooSmall, "%d qubits, %d free nodes", len(unplaced), len(free))
	}
	rename := make(map[circuit.Qubit]circuit.Qubit, len(unplaced))
	for i, q := range unplaced {
		rename[q] = device.NodeQubit(free[i])
	}
	if err := c.RenameUnits(rename, nil); err != nil {
		return false, err
	}
	return true, nil
}

// NoiseAwarePlacementPass maps the circuit's most strongly interacting
// qubit pairs onto the device's lowest-error couplers. Qubits it does
// not place (no two-qubit interactions, or no free coupler left) are
// left for NaivePlacement.
type NoiseAwarePlacementPass struct {
	char *device.Characterisation
}

// NoiseAwarePlacement builds the calibration-driven placement pass.
func NoiseAwarePlacement(char *device.Characterisation) *NoiseAwarePlacementPass {
	return &NoiseAwarePlacementPass{char: char}
}

func (*NoiseAwarePlacementPass) Name() string { return "NoiseAwarePlacement" }

func (p *NoiseAwarePlacementPass) Apply(c *circuit.Circuit) (bool, error) {
	arch := p.char.Architecture
	avg := p.char.Averaged()

	placed := make(map[circuit.Qubit]int)
	used := make(map[int]bool)
	for _, q := range c.Qubits() {
		if q.Register != device.NodeRegister {
			continue
		}
		if !arch.HasNode(q.Index) {
			return false, errors.Errorf("passes: qubit %s is not a device node", q)
		}
		placed[q] = q.Index
		used[q.Index] = true
	}

	pairs := interactionPairs(c)
	if len(pairs) == 0 {
		return false, nil
	}

	edgeCost := func(e device.Edge) float64 {
		cost, ok := avg.EdgeErrors[e]
		if !ok {
			cost = defaultEdgeError
		}
		return cost
	}
	nodeCost := func(n int) float64 {
		cost, ok := avg.NodeErrors[n]
		if !ok {
			cost = defaultNodeError
		}
		return cost
	}

	renamed := false
	for _, pr := range pairs {
		na, aok := placed[pr.a]
		nb, bok := placed[pr.b]
		switch {
		case aok && bok:
			continue
		case aok:
			n, found, err := bestFreeNeighbor(arch, na, used, edgeCost, nodeCost)
			if err != nil {
				return false, err
			}
			if !found {
				continue
			}
			placed[pr.b] = n
			used[n] = true
			renamed = true
		case bok:
			n, found, err := bestFreeNeighbor(arch, nb, used, edgeCost, nodeCost)
			if err != nil {
				return false, err
			}
			if !found {
				continue
			}
			placed[pr.a] = n
			used[n] = true
			renamed = true
		default:
			e, found := bestFreeEdge(arch, used, edgeCost, nodeCost)
			if !found {
				continue
			}
			placed[pr.a] = e.A
			placed[pr.b] = e.B
			used[e.A] = true
			used[e.B] = true
			renamed = true
		}
	}
	if !renamed {
		return false, nil
	}

	rename := make(map[circuit.Qubit]circuit.Qubit, len(placed))
	for q, n := range placed {
		if q.Register == device.NodeRegister && q.Index == n {
			continue
		}
		rename[q] = device.NodeQubit(n)
	}
	if len(rename) == 0 {
		return false, nil
	}
	if err := c.RenameUnits(rename, nil); err != nil {
		return false, err
	}
	return true, nil
}

type qubitPair struct {
	a, b  circuit.Qubit
	count int
}

// interactionPairs tallies two-qubit gates per unordered qubit pair and
// returns the pairs heaviest-first, ties broken by qubit order.
func interactionPairs(c *circuit.Circuit) []qubitPair {
	counts := make(map[[2]circuit.Qubit]int)
	for _, cmd := range c.Commands() {
		if cmd.Op == circuit.Barrier || len(cmd.Qubits) != 2 {
			continue
		}
		a, b := cmd.Qubits[0], cmd.Qubits[1]
		if b.Less(a) {
			a, b = b, a
		}
		counts[[2]circuit.Qubit{a, b}]++
	}
	out := make([]qubitPair, 0, len(counts))
	for k, n := range counts {
		out = append(out, qubitPair{a: k[0], b: k[1], count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		if out[i].a != out[j].a {
			return out[i].a.Less(out[j].a)
		}
		return out[i].b.Less(out[j].b)
	})
	return out
}

// bestFreeNeighbor picks the unused neighbor of n reachable over the
// cheapest coupler, counting the neighbor's own error in.
func bestFreeNeighbor(arch *device.Architecture, n int, used map[int]bool,
	edgeCost func(device.Edge) float64, nodeCost func(int) float64) (int, bool, error) {
	neigh, err := arch.Neighbors(n)
	if err != nil {
		return 0, false, err
	}
	best, found := 0, false
	bestCost := 0.0
	for _, v := range neigh {
		if used[v] {
			continue
		}
		cost := edgeCost(device.NewEdge(n, v)) + nodeCost(v)
		if !found || cost < bestCost {
			best, bestCost, found = v, cost, true
		}
	}
	return best, found, nil
}

// bestFreeEdge picks the cheapest coupler with both endpoints unused.
func bestFreeEdge(arch *device.Architecture, used map[int]bool,
	edgeCost func(device.Edge) float64, nodeCost func(int) float64) (device.Edge, bool) {
	var best device.Edge
	found := false
	bestCost := 0.0
	for _, e := range arch.Edges() {
		if used[e.A] || used[e.B] {
			continue
		}
		cost := edgeCost(e) + nodeCost(e.A) + nodeCost(e.B)
		if !found || cost < bestCost {
			best, bestCost, found = e, cost, true
		}
	}
	return best, found
}
