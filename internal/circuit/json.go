package circuit

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Wire form for circuits. Units are spelled out as register/index pairs
// so files stay readable and diffable.

type unitJSON struct {
	Register string `json:"register"`
	Index    int    `json:"index"`
}

type conditionJSON struct {
	Bit   unitJSON `json:"bit"`
	Value int      `json:"value"`
}

type commandJSON struct {
	Op        OpType         `json:"op"`
	Params    []float64      `json:"params,omitempty"`
	Qubits    []unitJSON     `json:"qubits"`
	Bits      []unitJSON     `json:"bits,omitempty"`
	Condition *conditionJSON `json:"condition,omitempty"`
}

type permJSON struct {
	From unitJSON `json:"from"`
	To   unitJSON `json:"to"`
}

type circuitJSON struct {
	Name     string        `json:"name,omitempty"`
	Phase    float64       `json:"phase"`
	Qubits   []unitJSON    `json:"qubits"`
	Bits     []unitJSON    `json:"bits"`
	Commands []commandJSON `json:"commands"`
	Perm     []permJSON    `json:"implicit_permutation,omitempty"`
}

func qubitWire(q Qubit) unitJSON { return unitJSON{Register: q.Register, Index: q.Index} }
func bitWire(b Bit) unitJSON     { return unitJSON{Register: b.Register, Index: b.Index} }

func (u unitJSON) qubit() Qubit { return Qubit{Register: u.Register, Index: u.Index} }
func (u unitJSON) bit() Bit     { return Bit{Register: u.Register, Index: u.Index} }

// MarshalJSON encodes the circuit in its file form. Units and the
// identity part of the permutation are written sorted so output is
// stable.
func (c *Circuit) MarshalJSON() ([]byte, error) {
	out := circuitJSON{
		Name:     c.name,
		Phase:    c.phase,
		Qubits:   make([]unitJSON, 0, len(c.qubits)),
		Bits:     make([]unitJSON, 0, len(c.bits)),
		Commands: make([]commandJSON, 0, len(c.commands)),
	}
	for _, q := range c.Qubits() {
		out.Qubits = append(out.Qubits, qubitWire(q))
	}
	for _, b := range c.Bits() {
		out.Bits = append(out.Bits, bitWire(b))
	}
	for _, cmd := range c.commands {
		cj := commandJSON{
			Op:     cmd.Op,
			Params: cmd.Params,
			Qubits: make([]unitJSON, len(cmd.Qubits)),
		}
		for i, q := range cmd.Qubits {
			cj.Qubits[i] = qubitWire(q)
		}
		if len(cmd.Bits) > 0 {
			cj.Bits = make([]unitJSON, len(cmd.Bits))
			for i, b := range cmd.Bits {
				cj.Bits[i] = bitWire(b)
			}
		}
		if cmd.Condition != nil {
			cj.Condition = &conditionJSON{Bit: bitWire(cmd.Condition.Bit), Value: cmd.Condition.Value}
		}
		out.Commands = append(out.Commands, cj)
	}
	if c.perm != nil {
		for _, q := range c.Qubits() {
			to, ok := c.perm[q]
			if !ok || to == q {
				continue
			}
			out.Perm = append(out.Perm, permJSON{From: qubitWire(q), To: qubitWire(to)})
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a circuit from its file form, validating every
// command against the declared units.
func (c *Circuit) UnmarshalJSON(data []byte) error {
	var in circuitJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return errors.Wrap(err, "decode circuit")
	}
	fresh := New(0, 0)
	fresh.name = in.Name
	fresh.AddPhase(in.Phase)
	for _, u := range in.Qubits {
		if err := fresh.AddQubit(u.qubit()); err != nil {
			return err
		}
	}
	for _, u := range in.Bits {
		if err := fresh.AddBit(u.bit()); err != nil {
			return err
		}
	}
	for _, cj := range in.Commands {
		cmd := Command{Op: cj.Op, Params: cj.Params}
		cmd.Qubits = make([]Qubit, len(cj.Qubits))
		for i, u := range cj.Qubits {
			cmd.Qubits[i] = u.qubit()
		}
		if len(cj.Bits) > 0 {
			cmd.Bits = make([]Bit, len(cj.Bits))
			for i, u := range cj.Bits {
				cmd.Bits[i] = u.bit()
			}
		}
		if cj.Condition != nil {
			cmd.Condition = &Condition{Bit: cj.Condition.Bit.bit(), Value: cj.Condition.Value}
		}
		if err := fresh.Append(cmd); err != nil {
			return err
		}
	}
	if len(in.Perm) > 0 {
		perm := make(map[Qubit]Qubit, len(in.Perm))
		for _, p := range in.Perm {
			perm[p.From.qubit()] = p.To.qubit()
		}
		if err := fresh.SetImplicitPermutation(perm); err != nil {
			return err
		}
	}
	*c = *fresh
	return nil
}
