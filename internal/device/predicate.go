package device

import (
	"fmt"

	"quilbridge/internal/circuit"
)

// NodeRegister is the register placed circuits use: a qubit node[i]
// sits on physical node i of the architecture.
const NodeRegister = "node"

// NodeQubit returns the placed-qubit label for a physical node.
func NodeQubit(n int) circuit.Qubit {
	return circuit.Qubit{Register: NodeRegister, Index: n}
}

// ConnectivityPredicate requires a placed circuit whose multi-qubit
// gates act on mutually adjacent architecture nodes.
type ConnectivityPredicate struct {
	arch *Architecture
}

// NewConnectivityPredicate builds the predicate for an architecture.
func NewConnectivityPredicate(arch *Architecture) *ConnectivityPredicate {
	return &ConnectivityPredicate{arch: arch}
}

func (*ConnectivityPredicate) Name() string { return "Connectivity" }

func (p *ConnectivityPredicate) Verify(c *circuit.Circuit) error {
	for _, q := range c.Qubits() {
		if q.Register != NodeRegister {
			return fmt.Errorf("qubit %s is not placed on a device node", q)
		}
		if !p.arch.HasNode(q.Index) {
			return fmt.Errorf("qubit %s is not a node of the device", q)
		}
	}
	for _, cmd := range c.Commands() {
		if cmd.Op == circuit.Barrier || len(cmd.Qubits) < 2 {
			continue
		}
		for i := 0; i < len(cmd.Qubits); i++ {
			for j := i + 1; j < len(cmd.Qubits); j++ {
				a, b := cmd.Qubits[i].Index, cmd.Qubits[j].Index
				if !p.arch.HasEdge(a, b) {
					return fmt.Errorf("%s acts on non-adjacent nodes %d and %d", cmd.Op, a, b)
				}
			}
		}
	}
	return nil
}

var _ circuit.Predicate = (*ConnectivityPredicate)(nil)
