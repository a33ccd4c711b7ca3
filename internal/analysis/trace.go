package analysis

import (
	"errors"
	"fmt"

	"rivernet/internal/network"
	"rivernet/internal/units"
)

// ErrLabelNotFound is returned when a label names no node or unit.
var ErrLabelNotFound = errors.New("label not found in network")

// Direction is the way a trace follows the flow.
type Direction int

const (
	Downstream Direction = iota
	Upstream
)

func (d Direction) String() string {
	if d == Upstream {
		return "upstream"
	}
	return "downstream"
}

// Config controls how far a trace extends.
type Config struct {
	// MaxHops limits the number of branches followed from the start;
	// zero means no limit.
	MaxHops int
}

func DefaultConfig() Config {
	return Config{MaxHops: 0}
}

// TraceReport summarizes the part of the network reached from a label.
type TraceReport struct {
	Label     string
	Direction Direction
	// Branches are in the order they were reached.
	Branches   []*network.Branch
	Nodes      []*network.Node
	Depth      map[string]int // node ID -> hops from the start
	Boundaries []units.Unit
}

// Units returns every unit on the traced branches.
func (r *TraceReport) Units() []units.Unit {
	var out []units.Unit
	for _, b := range r.Branches {
		for _, reach := range b.Reaches() {
			out = append(out, reach.Units...)
		}
	}
	return out
}

// Analyzer performs flow tracing on a built network.
type Analyzer struct {
	n *network.Network
}

// NewAnalyzer creates a new analyzer.
func NewAnalyzer(n *network.Network) *Analyzer {
	return &Analyzer{n: n}
}

type queueItem struct {
	node  *network.Node
	depth int
}

// Trace follows branches from label in the given direction. A label inside
// a branch starts the trace with that branch.
func (a *Analyzer) Trace(label string, dir Direction, cfg Config) (*TraceReport, error) {
	report := &TraceReport{Label: label, Direction: dir, Depth: map[string]int{}}
	seenBranch := make(map[string]bool)

	var queue []queueItem
	visit := func(n *network.Node, depth int) {
		if n == nil {
			return
		}
		if _, seen := report.Depth[n.ID]; seen {
			return
		}
		report.Depth[n.ID] = depth
		report.Nodes = append(report.Nodes, n)
		report.Boundaries = append(report.Boundaries, n.Boundaries...)
		queue = append(queue, queueItem{node: n, depth: depth})
	}
	addBranch := func(b *network.Branch) {
		if !seenBranch[b.ID] {
			seenBranch[b.ID] = true
			report.Branches = append(report.Branches, b)
		}
	}

	// 1. Find the start
	if start := a.n.Node(label); start != nil {
		visit(start, 0)
	} else if b := a.branchContaining(label); b != nil {
		addBranch(b)
		visit(next(b, dir), 1)
	} else {
		return nil, fmt.Errorf("%w: %s", ErrLabelNotFound, label)
	}

	// 2. Walk branches breadth first
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if cfg.MaxHops > 0 && cur.depth >= cfg.MaxHops {
			continue
		}
		for _, b := range edges(cur.node, dir) {
			addBranch(b)
			visit(next(b, dir), cur.depth+1)
		}
	}

	return report, nil
}

func (a *Analyzer) branchContaining(label string) *network.Branch {
	for _, b := range a.n.Branches {
		for _, r := range b.Reaches() {
			for _, u := range r.Units {
				for _, l := range u.Connections() {
					if l == label {
						return b
					}
				}
			}
		}
	}
	return nil
}

func edges(n *network.Node, dir Direction) []*network.Branch {
	if dir == Upstream {
		return n.Incoming
	}
	return n.Outgoing
}

func next(b *network.Branch, dir Direction) *network.Node {
	if dir == Upstream {
		return b.Upstream
	}
	return b.Downstream
}
