package passes

import (
	"github.com/pkg/errors"

	"quilbridge/internal/circuit"
	"quilbridge/internal/device"
)

// Routing errors.
var (
	// ErrNotPlaced reports an unplaced circuit handed to the router.
	ErrNotPlaced = errors.New("passes: circuit must be placed on device nodes before routing")

	// ErrUnroutable reports a gate the router cannot make adjacent, such
	// as a three-qubit gate or a gate spanning disconnected components.
	ErrUnroutable = errors.New("passes: cannot route command")
)

// RoutePass inserts SWAP chains along shortest architecture paths so
// every two-qubit gate acts on adjacent device nodes. The circuit must
// already be placed: every qubit in the node register. Gates on three
// or more qubits are rejected; rebase them away first.
//
// Routing permutes wires. The pass records where each wire ends up in
// the circuit's implicit permutation, and measurements follow their
// wire, so readout semantics are unchanged.
type RoutePass struct {
	arch *device.Architecture
}

// Route builds the SWAP-insertion pass for an architecture.
func Route(arch *device.Architecture) *RoutePass { return &RoutePass{arch: arch} }

func (*RoutePass) Name() string { return "Route" }

func (p *RoutePass) Apply(c *circuit.Circuit) (bool, error) {
	// pos tracks the physical node currently holding each wire, keyed
	// by the wire's starting node; occ is the inverse.
	pos := make(map[int]int)
	occ := make(map[int]int)
	for _, q := range c.Qubits() {
		if q.Register != device.NodeRegister {
			return false, errors.Wrapf(ErrNotPlaced, "qubit %s", q)
		}
		if !p.arch.HasNode(q.Index) {
			return false, errors.Errorf("passes: qubit %s is not a device node", q)
		}
		pos[q.Index] = q.Index
		occ[q.Index] = q.Index
	}

	var out []circuit.Command
	changed := false

	swapStep := func(u, v int) {
		out = append(out, circuit.Command{
			Op:     circuit.SWAP,
			Qubits: []circuit.Qubit{device.NodeQubit(u), device.NodeQubit(v)},
		})
		lu, lv := occ[u], occ[v]
		pos[lu], pos[lv] = v, u
		occ[u], occ[v] = lv, lu
	}

	mapped := func(cmd circuit.Command) circuit.Command {
		mc := cmd.Clone()
		for i, q := range mc.Qubits {
			mc.Qubits[i] = device.NodeQubit(pos[q.Index])
		}
		return mc
	}

	adjacent := func(cmd circuit.Command) bool {
		for i := 0; i < len(cmd.Qubits); i++ {
			for j := i + 1; j < len(cmd.Qubits); j++ {
				if !p.arch.HasEdge(pos[cmd.Qubits[i].Index], pos[cmd.Qubits[j].Index]) {
					return false
				}
			}
		}
		return true
	}

	for _, cmd := range c.Commands() {
		if cmd.Op == circuit.Barrier || len(cmd.Qubits) < 2 {
			out = append(out, mapped(cmd))
			continue
		}
		if len(cmd.Qubits) > 2 {
			// Swap chains only bring two wires together. Wider gates
			// must already sit on mutually adjacent nodes.
			if !adjacent(cmd) {
				return false, errors.Wrapf(ErrUnroutable, "%s acts on %d non-adjacent qubits", cmd.Op, len(cmd.Qubits))
			}
			out = append(out, mapped(cmd))
			continue
		}
		pa := pos[cmd.Qubits[0].Index]
		pb := pos[cmd.Qubits[1].Index]
		if !p.arch.HasEdge(pa, pb) {
			path, err := p.arch.ShortestPath(pa, pb)
			if err != nil {
				return false, errors.Wrapf(ErrUnroutable, "%s: nodes %d and %d are disconnected", cmd.Op, pa, pb)
			}
			// Walk the wire at pa down the path until one hop remains.
			// Path nodes outside the circuit become fresh zero wires.
			for i := 0; i+2 < len(path); i++ {
				step := path[i+1]
				if _, ok := occ[step]; !ok {
					if !c.HasQubit(device.NodeQubit(step)) {
						if err := c.AddQubit(device.NodeQubit(step)); err != nil {
							return false, err
						}
					}
					pos[step] = step
					occ[step] = step
				}
				swapStep(path[i], step)
			}
			changed = true
		}
		out = append(out, mapped(cmd))
	}

	if !changed {
		return false, nil
	}
	if err := c.ReplaceCommands(out); err != nil {
		return false, err
	}

	// Compose the wire movement into the implicit permutation.
	perm := make(map[circuit.Qubit]circuit.Qubit)
	for from, to := range c.ImplicitPermutation() {
		perm[from] = device.NodeQubit(pos[to.Index])
	}
	if err := c.SetImplicitPermutation(perm); err != nil {
		return false, err
	}
	return true, nil
}
