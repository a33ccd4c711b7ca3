package storage

import (
	"time"

	"rivernet/internal/datfile"
	"rivernet/internal/network"
)

// Model is the stored form of one parsed data file and its network.
type Model struct {
	Path            string
	Title           string
	NodeLabelLength int
	Valid           bool
	// Messages is the rendered diagnostic tree.
	Messages string
	SavedAt  time.Time

	Units    []Unit
	Nodes    []Node
	Branches []Branch
}

// Unit is a unit header in file order.
type Unit struct {
	Seq     int      `json:"seq"`
	Kind    string   `json:"kind"`
	Name    string   `json:"name"`
	Labels  []string `json:"labels"`
	Line    int      `json:"line"`
	Comment string   `json:"comment,omitempty"`
}

// Node is a network node with its boundary unit names.
type Node struct {
	ID         string
	Name       string
	Labels     []string
	Junction   string
	Boundaries []string
}

// Branch stores each layer as the names of its reaches.
type Branch struct {
	ID         string
	Name       string
	Upstream   string
	Downstream string
	Layers     [][]string
}

// UnitRef locates a unit across stored models.
type UnitRef struct {
	Path string
	Unit Unit
}

// NewModel captures a parsed file and the network built from it.
func NewModel(d *datfile.DataFile, n *network.Network) *Model {
	m := &Model{
		Path:            d.Path,
		NodeLabelLength: d.NodeLabelLength(),
		Valid:           d.Valid(),
		Messages:        d.Messages().String(),
	}
	if g := d.General(); g != nil {
		m.Title = g.Title
	}
	for i, u := range d.Units() {
		m.Units = append(m.Units, Unit{
			Seq:     i,
			Kind:    string(u.Kind()),
			Name:    u.Name(),
			Labels:  u.Connections(),
			Line:    u.Line(),
			Comment: u.Comment(),
		})
	}
	if n == nil {
		return m
	}
	if n.Messages != nil {
		if m.Messages != "" {
			m.Messages += "\n"
		}
		m.Messages += n.Messages.String()
	}
	for _, node := range n.Nodes {
		sn := Node{ID: node.ID, Name: node.Name, Labels: node.Labels}
		if node.Junction != nil {
			sn.Junction = string(node.Junction.Kind())
		}
		for _, b := range node.Boundaries {
			sn.Boundaries = append(sn.Boundaries, b.Name())
		}
		m.Nodes = append(m.Nodes, sn)
	}
	for _, b := range n.Branches {
		sb := Branch{ID: b.ID, Name: b.Name()}
		if b.Upstream != nil {
			sb.Upstream = b.Upstream.ID
		}
		if b.Downstream != nil {
			sb.Downstream = b.Downstream.ID
		}
		for _, l := range b.Layers {
			var layer []string
			for _, r := range l {
				layer = append(layer, r.String())
			}
			sb.Layers = append(sb.Layers, layer)
		}
		m.Branches = append(m.Branches, sb)
	}
	return m
}
