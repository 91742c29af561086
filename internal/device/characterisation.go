package device

import (
	"quilbridge/internal/circuit"
)

// GateErrors maps an op to its average error rate, 1 - fidelity.
type GateErrors map[circuit.OpType]float64

// Characterisation is the processed calibration of a device: its
// coupling map plus per-node and per-coupler error rates.
type Characterisation struct {
	Name          string
	Architecture  *Architecture
	NodeErrors    map[int]GateErrors
	EdgeErrors    map[Edge]GateErrors
	ReadoutErrors map[int]float64
	T1            map[int]float64
	T2            map[int]float64
}

// Process derives a characterisation from a device description. Dead
// qubits and couplers are dropped; uncalibrated (zero) fidelities
// contribute no error entry. Single-qubit benchmarking fidelity is
// charged to both Rx and Rz.
func Process(d Description) (*Characterisation, error) {
	ch := &Characterisation{
		Name:          d.Name,
		NodeErrors:    make(map[int]GateErrors),
		EdgeErrors:    make(map[Edge]GateErrors),
		ReadoutErrors: make(map[int]float64),
		T1:            make(map[int]float64),
		T2:            make(map[int]float64),
	}

	dead := make(map[int]struct{})
	for _, q := range d.Qubits {
		if q.Dead {
			dead[q.ID] = struct{}{}
			continue
		}
		if q.F1QRB > 0 {
			ch.NodeErrors[q.ID] = GateErrors{
				circuit.Rx: 1 - q.F1QRB,
				circuit.Rz: 1 - q.F1QRB,
			}
		}
		if q.FRO > 0 {
			ch.ReadoutErrors[q.ID] = 1 - q.FRO
		}
		if q.T1 > 0 {
			ch.T1[q.ID] = q.T1
		}
		if q.T2 > 0 {
			ch.T2[q.ID] = q.T2
		}
	}

	var couplings []Edge
	for _, e := range d.Edges {
		if e.Dead {
			continue
		}
		if _, ok := dead[e.Targets[0]]; ok {
			continue
		}
		if _, ok := dead[e.Targets[1]]; ok {
			continue
		}
		edge := NewEdge(e.Targets[0], e.Targets[1])
		couplings = append(couplings, edge)
		ers := GateErrors{}
		if e.FCZ > 0 {
			ers[circuit.CZ] = 1 - e.FCZ
		}
		if e.FISWAP > 0 {
			ers[circuit.ISWAP] = 1 - e.FISWAP
		}
		if len(ers) > 0 {
			ch.EdgeErrors[edge] = ers
		}
	}

	arch, err := NewArchitecture(couplings)
	if err != nil {
		return nil, err
	}
	for _, q := range d.Qubits {
		if q.Dead {
			continue
		}
		if err := arch.AddNode(q.ID); err != nil {
			return nil, err
		}
	}
	ch.Architecture = arch
	return ch, nil
}

// Averaged flattens per-gate error maps to a single mean per node and
// per coupler, the shape noise-aware placement consumes.
type Averaged struct {
	NodeErrors    map[int]float64
	EdgeErrors    map[Edge]float64
	ReadoutErrors map[int]float64
}

// Averaged computes mean error rates from the characterisation.
func (c *Characterisation) Averaged() Averaged {
	avg := Averaged{
		NodeErrors:    make(map[int]float64, len(c.NodeErrors)),
		EdgeErrors:    make(map[Edge]float64, len(c.EdgeErrors)),
		ReadoutErrors: make(map[int]float64, len(c.ReadoutErrors)),
	}
	for n, ers := range c.NodeErrors {
		avg.NodeErrors[n] = meanErrors(ers)
	}
	for e, ers := range c.EdgeErrors {
		avg.EdgeErrors[e] = meanErrors(ers)
	}
	for n, er := range c.ReadoutErrors {
		avg.ReadoutErrors[n] = er
	}
	return avg
}

func meanErrors(ers GateErrors) float64 {
	if len(ers) == 0 {
		return 0
	}
	sum := 0.0
	for _, e := range ers {
		sum += e
	}
	return sum / float64(len(ers))
}
