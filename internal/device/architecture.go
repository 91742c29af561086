package device

import (
	"sort"
	"strconv"

	"github.com/katalvlaran/lvlath/bfs"
	"github.com/katalvlaran/lvlath/core"
	"github.com/pkg/errors"
)

// ErrBadTopology reports an architecture that cannot be built.
var ErrBadTopology = errors.New("device: bad topology")

// ErrNoPath reports two nodes with no route between them.
var ErrNoPath = errors.New("device: no path between nodes")

// Edge is an undirected coupler, normalised so A < B.
type Edge struct {
	A, B int
}

// NewEdge normalises the endpoint order.
func NewEdge(a, b int) Edge {
	if a > b {
		a, b = b, a
	}
	return Edge{A: a, B: b}
}

// Architecture is a device coupling map: an undirected, unweighted
// graph whose vertices are physical qubit ids.
type Architecture struct {
	g *core.Graph
}

func nodeID(n int) string { return strconv.Itoa(n) }

func nodeNum(id string) int {
	n, _ := strconv.Atoi(id)
	return n
}

// NewArchitecture builds a coupling map from undirected node pairs.
// Endpoints are added implicitly.
func NewArchitecture(couplings []Edge) (*Architecture, error) {
	g := core.NewGraph()
	for _, e := range couplings {
		if e.A == e.B {
			return nil, errors.Wrapf(ErrBadTopology, "self-coupling on node %d", e.A)
		}
		if _, err := g.AddEdge(nodeID(e.A), nodeID(e.B), 0); err != nil {
			return nil, errors.Wrap(err, "add coupling")
		}
	}
	return &Architecture{g: g}, nil
}

// AddNode adds an isolated node; harmless if it already exists.
func (a *Architecture) AddNode(n int) error {
	return a.g.AddVertex(nodeID(n))
}

// Nodes returns all node ids sorted ascending.
func (a *Architecture) Nodes() []int {
	ids := a.g.Vertices()
	out := make([]int, len(ids))
	for i, id := range ids {
		out[i] = nodeNum(id)
	}
	sort.Ints(out)
	return out
}

// NodeCount returns the number of nodes.
func (a *Architecture) NodeCount() int { return a.g.VertexCount() }

// HasNode reports whether n is in the map.
func (a *Architecture) HasNode(n int) bool { return a.g.HasVertex(nodeID(n)) }

// HasEdge reports whether nodes x and y share a coupler.
func (a *Architecture) HasEdge(x, y int) bool {
	return a.g.HasEdge(nodeID(x), nodeID(y))
}

// Neighbors returns the nodes adjacent to n, sorted ascending.
func (a *Architecture) Neighbors(n int) ([]int, error) {
	ids, err := a.g.NeighborIDs(nodeID(n))
	if err != nil {
		return nil, errors.Wrapf(err, "neighbors of %d", n)
	}
	out := make([]int, len(ids))
	for i, id := range ids {
		out[i] = nodeNum(id)
	}
	sort.Ints(out)
	return out, nil
}

// Edges returns the distinct couplers sorted by (A, B).
func (a *Architecture) Edges() []Edge {
	seen := make(map[Edge]struct{})
	for _, n := range a.Nodes() {
		ids, err := a.g.NeighborIDs(nodeID(n))
		if err != nil {
			continue
		}
		for _, id := range ids {
			seen[NewEdge(n, nodeNum(id))] = struct{}{}
		}
	}
	out := make([]Edge, 0, len(seen))
	for e := range seen {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].A != out[j].A {
			return out[i].A < out[j].A
		}
		return out[i].B < out[j].B
	})
	return out
}

// Distance returns the hop count of the shortest route from x to y.
func (a *Architecture) Distance(x, y int) (int, error) {
	if x == y {
		return 0, nil
	}
	res, err := bfs.BFS(a.g, nodeID(x))
	if err != nil {
		return 0, errors.Wrap(err, "bfs")
	}
	d, ok := res.Depth[nodeID(y)]
	if !ok {
		return 0, errors.Wrapf(ErrNoPath, "%d to %d", x, y)
	}
	return d, nil
}

// ShortestPath returns a minimal-hop route from x to y inclusive.
func (a *Architecture) ShortestPath(x, y int) ([]int, error) {
	res, err := bfs.BFS(a.g, nodeID(x))
	if err != nil {
		return nil, errors.Wrap(err, "bfs")
	}
	ids, err := res.PathTo(nodeID(y))
	if err != nil {
		return nil, errors.Wrapf(ErrNoPath, "%d to %d", x, y)
	}
	out := make([]int, len(ids))
	for i, id := range ids {
		out[i] = nodeNum(id)
	}
	return out, nil
}

// Connected reports whether every node is reachable from every other.
func (a *Architecture) Connected() (bool, error) {
	nodes := a.Nodes()
	if len(nodes) <= 1 {
		return true, nil
	}
	res, err := bfs.BFS(a.g, nodeID(nodes[0]))
	if err != nil {
		return false, errors.Wrap(err, "bfs")
	}
	return len(res.Order) == len(nodes), nil
}

// NewGridArchitecture builds a rows-by-cols lattice with nearest
// neighbour couplings. Node ids are row-major.
func NewGridArchitecture(rows, cols int) (*Architecture, error) {
	if rows < 1 || cols < 1 {
		return nil, errors.Wrapf(ErrBadTopology, "grid %dx%d", rows, cols)
	}
	var edges []Edge
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			n := r*cols + c
			if c+1 < cols {
				edges = append(edges, NewEdge(n, n+1))
			}
			if r+1 < rows {
				edges = append(edges, NewEdge(n, n+cols))
			}
		}
	}
	if len(edges) == 0 {
		// Single node grid.
		a, err := NewArchitecture(nil)
		if err != nil {
			return nil, err
		}
		if err := a.AddNode(0); err != nil {
			return nil, err
		}
		return a, nil
	}
	return NewArchitecture(edges)
}

// NewRingArchitecture builds an n-node cycle.
func NewRingArchitecture(n int) (*Architecture, error) {
	if n < 3 {
		return nil, errors.Wrapf(ErrBadTopology, "ring of %d", n)
	}
	edges := make([]Edge, 0, n)
	for i := 0; i < n; i++ {
		edges = append(edges, NewEdge(i, (i+1)%n))
	}
	return NewArchitecture(edges)
}

// NewFullArchitecture builds an all-to-all coupling over n nodes.
func NewFullArchitecture(n int) (*Architecture, error) {
	if n < 1 {
		return nil, errors.Wrapf(ErrBadTopology, "full of %d", n)
	}
	if n == 1 {
		a, err := NewArchitecture(nil)
		if err != nil {
			return nil, err
		}
		if err := a.AddNode(0); err != nil {
			return nil, err
		}
		return a, nil
	}
	var edges []Edge
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			edges = append(edges, NewEdge(i, j))
		}
	}
	return NewArchitecture(edges)
}
