package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"quilbridge/internal/circuit"
	"quilbridge/internal/convert"
	"quilbridge/internal/domain"
	"quilbridge/internal/forest"
	"quilbridge/internal/quil"
)

// loadCircuit reads a circuit from path. ".quil" files are parsed as
// Quil text and converted; anything else is decoded as circuit JSON.
func loadCircuit(path string) (*circuit.Circuit, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(path), ".quil") {
		p, err := quil.Parse(string(b))
		if err != nil {
			return nil, err
		}
		return convert.ToCircuit(p)
	}
	var c circuit.Circuit
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &c, nil
}

// writeCircuit writes a circuit to the path's format, or to stdout as
// JSON when path is empty.
func writeCircuit(c *circuit.Circuit, path string) error {
	if strings.EqualFold(filepath.Ext(path), ".quil") {
		p, err := convert.ToQuil(c, convert.Options{})
		if err != nil {
			return err
		}
		return os.WriteFile(path, []byte(p.Text()), 0o644)
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	if path == "" {
		fmt.Println(string(b))
		return nil
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}

// backendForHandle rebuilds the backend a handle was submitted
// through, using the device name in the stored record.
func backendForHandle(ctx context.Context, h domain.ResultHandle) (*forest.Backend, error) {
	rec, err := wire.Handles.Load(h.ID)
	if err != nil {
		return nil, err
	}
	return wire.Backend(ctx, rec.Device)
}

// parseOperator turns "ZZ:0.5,IZ:-1" into an operator map. Pauli
// strings are upper-cased; repeated terms accumulate.
func parseOperator(s string) (map[string]complex128, error) {
	op := make(map[string]complex128)
	for _, term := range strings.Split(s, ",") {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		pauli, coeff, ok := strings.Cut(term, ":")
		if !ok {
			return nil, fmt.Errorf("term %q: want PAULIS:COEFF", term)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(coeff), 64)
		if err != nil {
			return nil, fmt.Errorf("term %q: %v", term, err)
		}
		op[strings.ToUpper(strings.TrimSpace(pauli))] += complex(v, 0)
	}
	if len(op) == 0 {
		return nil, fmt.Errorf("operator %q has no terms", s)
	}
	return op, nil
}

func printCounts(res *domain.Result) {
	counts := res.Counts()
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("%s\t%d\n", k, counts[k])
	}
}
