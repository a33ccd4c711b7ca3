// Package network reconstructs the branched topology of a model from its
// ordered unit list.
package network

import (
	"strings"

	"rivernet/internal/message"
	"rivernet/internal/units"
)

// Node is a point where branches meet. It is backed either by a junction
// unit or by a bare node label at a branch end.
type Node struct {
	ID   string
	Name string
	// Labels are every node label that resolves to this node.
	Labels     []string
	Junction   units.Unit
	Boundaries []units.Unit
	// Incoming branches end here; Outgoing branches start here.
	Incoming []*Branch
	Outgoing []*Branch
}

// HasLabel reports whether label resolves to the node.
func (n *Node) HasLabel(label string) bool {
	for _, l := range n.Labels {
		if l == label {
			return true
		}
	}
	return false
}

// CalcPoint is a unit position along a reach.
type CalcPoint struct {
	Name     string
	Chainage float64
}

// Reach is a maximal run of chainage-linked units, or a single structure.
type Reach struct {
	ID    string
	Units []units.Unit
	// Partial is set when the run ended without a zero chainage.
	Partial   bool
	Structure bool
}

// UpstreamLabel is the label water enters the reach by.
func (r *Reach) UpstreamLabel() string {
	if len(r.Units) == 0 {
		return ""
	}
	return r.Units[0].UpstreamLabel()
}

// DownstreamLabel is the label water leaves the reach by.
func (r *Reach) DownstreamLabel() string {
	if len(r.Units) == 0 {
		return ""
	}
	return r.Units[len(r.Units)-1].DownstreamLabel()
}

// Length sums the chainage of the reach's units.
func (r *Reach) Length() float64 {
	var total float64
	for _, u := range r.Units {
		if rc, ok := u.(units.ReachComponent); ok {
			total += rc.Chainage()
		}
	}
	return total
}

// Points returns each unit with its distance from the upstream end.
func (r *Reach) Points() []CalcPoint {
	out := make([]CalcPoint, 0, len(r.Units))
	var at float64
	for _, u := range r.Units {
		out = append(out, CalcPoint{Name: u.Name(), Chainage: at})
		if rc, ok := u.(units.ReachComponent); ok {
			at += rc.Chainage()
		}
	}
	return out
}

func (r *Reach) String() string {
	return r.UpstreamLabel() + "-" + r.DownstreamLabel()
}

// Layer is one step along a branch. It holds more than one reach where
// channels run in parallel between the same pair of junctions.
type Layer []*Reach

// Branch is a maximal chain of layers between two nodes.
type Branch struct {
	ID     string
	Layers []Layer
	// Junctions are the two-way junctions absorbed into the branch.
	Junctions  []units.Unit
	Upstream   *Node
	Downstream *Node
}

// UpstreamLabel is the upstream label of the first layer.
func (b *Branch) UpstreamLabel() string {
	if len(b.Layers) == 0 || len(b.Layers[0]) == 0 {
		return ""
	}
	return b.Layers[0][0].UpstreamLabel()
}

// DownstreamLabel is the downstream label of the last layer.
func (b *Branch) DownstreamLabel() string {
	if len(b.Layers) == 0 {
		return ""
	}
	last := b.Layers[len(b.Layers)-1]
	if len(last) == 0 {
		return ""
	}
	return last[0].DownstreamLabel()
}

// Name is "US → DS" using the resolved node names where available.
func (b *Branch) Name() string {
	us, ds := b.UpstreamLabel(), b.DownstreamLabel()
	if b.Upstream != nil {
		us = b.Upstream.Name
	}
	if b.Downstream != nil {
		ds = b.Downstream.Name
	}
	return us + " → " + ds
}

// Reaches returns every reach in the branch, layer by layer.
func (b *Branch) Reaches() []*Reach {
	var out []*Reach
	for _, l := range b.Layers {
		out = append(out, l...)
	}
	return out
}

func (b *Branch) String() string {
	var sb strings.Builder
	sb.WriteString(b.Name())
	sb.WriteString(" [")
	for i, l := range b.Layers {
		if i > 0 {
			sb.WriteString(", ")
		}
		for j, r := range l {
			if j > 0 {
				sb.WriteString(" | ")
			}
			sb.WriteString(r.String())
		}
	}
	sb.WriteString("]")
	return sb.String()
}

// Network is the finished topology. It is not modified after Build.
type Network struct {
	Nodes    []*Node
	Branches []*Branch
	// Reaches are all extracted reaches in unit order, including any
	// partial reaches left out of the branches.
	Reaches  []*Reach
	Messages *message.Message
}

// Node finds the node a label resolves to.
func (n *Network) Node(label string) *Node {
	for _, node := range n.Nodes {
		if node.Name == label || node.HasLabel(label) {
			return node
		}
	}
	return nil
}

// Branch finds a branch by name.
func (n *Network) Branch(name string) *Branch {
	for _, b := range n.Branches {
		if b.Name() == name {
			return b
		}
	}
	return nil
}
