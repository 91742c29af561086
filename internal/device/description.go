package device

// Description is the wire form of a device as served by the devices
// endpoint. Fidelities are in [0, 1]; zero means uncalibrated. T1 and
// T2 are seconds.
type Description struct {
	Name   string      `json:"name"`
	QPU    bool        `json:"is_qpu"`
	Qubits []QubitSpec `json:"qubits"`
	Edges  []EdgeSpec  `json:"edges"`
}

// QubitSpec carries per-qubit calibration data.
type QubitSpec struct {
	ID    int     `json:"id"`
	Dead  bool    `json:"dead,omitempty"`
	T1    float64 `json:"t1,omitempty"`
	T2    float64 `json:"t2,omitempty"`
	FRO   float64 `json:"f_ro,omitempty"`
	F1QRB float64 `json:"f_1q_rb,omitempty"`
}

// EdgeSpec carries per-coupler calibration data.
type EdgeSpec struct {
	Targets [2]int  `json:"targets"`
	Dead    bool    `json:"dead,omitempty"`
	FCZ     float64 `json:"f_cz,omitempty"`
	FISWAP  float64 `json:"f_iswap,omitempty"`
}

// NumQubits counts live qubits.
func (d Description) NumQubits() int {
	n := 0
	for _, q := range d.Qubits {
		if !q.Dead {
			n++
		}
	}
	return n
}

// MarkDead flags the listed qubit IDs as dead, along with every
// coupler touching them.
func (d *Description) MarkDead(ids ...int) {
	dead := make(map[int]bool, len(ids))
	for _, id := range ids {
		dead[id] = true
	}
	for i := range d.Qubits {
		if dead[d.Qubits[i].ID] {
			d.Qubits[i].Dead = true
		}
	}
	for i := range d.Edges {
		if dead[d.Edges[i].Targets[0]] || dead[d.Edges[i].Targets[1]] {
			d.Edges[i].Dead = true
		}
	}
}

// QualitySpec is a uniform calibration applied to every qubit and
// coupler of a synthesised device.
type QualitySpec struct {
	T1     float64
	T2     float64
	FRO    float64
	F1QRB  float64
	FCZ    float64
	FISWAP float64
}

// PerfectQuality describes a noiseless simulator.
var PerfectQuality = QualitySpec{FRO: 1, F1QRB: 1, FCZ: 1, FISWAP: 1}

// synthesise builds a Description over the given architecture with a
// uniform quality.
func synthesise(name string, qpu bool, arch *Architecture, q QualitySpec) Description {
	d := Description{Name: name, QPU: qpu}
	for _, n := range arch.Nodes() {
		d.Qubits = append(d.Qubits, QubitSpec{
			ID: n, T1: q.T1, T2: q.T2, FRO: q.FRO, F1QRB: q.F1QRB,
		})
	}
	for _, e := range arch.Edges() {
		d.Edges = append(d.Edges, EdgeSpec{
			Targets: [2]int{e.A, e.B}, FCZ: q.FCZ, FISWAP: q.FISWAP,
		})
	}
	return d
}

// GridDevice synthesises a rows-by-cols lattice device.
func GridDevice(name string, rows, cols int, qpu bool, q QualitySpec) (Description, error) {
	arch, err := NewGridArchitecture(rows, cols)
	if err != nil {
		return Description{}, err
	}
	return synthesise(name, qpu, arch, q), nil
}

// RingDevice synthesises an n-qubit ring device.
func RingDevice(name string, n int, qpu bool, q QualitySpec) (Description, error) {
	arch, err := NewRingArchitecture(n)
	if err != nil {
		return Description{}, err
	}
	return synthesise(name, qpu, arch, q), nil
}

// FullDevice synthesises an all-to-all connected device.
func FullDevice(name string, n int, qpu bool, q QualitySpec) (Description, error) {
	arch, err := NewFullArchitecture(n)
	if err != nil {
		return Description{}, err
	}
	return synthesise(name, qpu, arch, q), nil
}
