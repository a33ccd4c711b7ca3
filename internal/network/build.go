package network

import (
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"rivernet/internal/message"
	"rivernet/internal/units"
)

// Option configures Build.
type Option func(*builder)

// IncludePartialReaches controls whether reaches that end without a zero
// chainage take part in branch assembly. They are always reported.
func IncludePartialReaches(include bool) Option {
	return func(b *builder) { b.includePartial = include }
}

// WithLogger sets the logger used during assembly.
func WithLogger(l *slog.Logger) Option {
	return func(b *builder) { b.log = l }
}

// junction tracks the labels of a junction unit that still lead to
// separate branches.
type junction struct {
	unit     units.Unit
	labels   []string
	absorbed bool
}

func (j *junction) name() string { return strings.Join(j.unit.Connections(), "/") }

type builder struct {
	includePartial bool
	log            *slog.Logger

	// branches is an arena; removed branches are nil until compact.
	branches  []*Branch
	junctions []*junction
	msgs      []*message.Message
	warned    map[string]bool
}

// Build assembles the network from units in file order. The passes are
// order sensitive: where several joins are possible the first in list
// order wins, so the same input always gives the same network.
func Build(us []units.Unit, opts ...Option) *Network {
	b := newBuilder(opts...)
	reaches := b.seed(us)
	b.assemble()

	nodes := b.materialise(us)
	b.log.Debug("built network", "reaches", len(reaches), "branches", len(b.branches), "nodes", len(nodes))
	return &Network{
		Nodes:    nodes,
		Branches: b.branches,
		Reaches:  reaches,
		Messages: message.Group("network", b.msgs...),
	}
}

func newBuilder(opts ...Option) *builder {
	b := &builder{includePartial: true, log: slog.Default(), warned: map[string]bool{}}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// seed extracts the reaches and gives each its own branch.
func (b *builder) seed(us []units.Unit) []*Reach {
	reaches := b.extractReaches(us)
	for _, r := range reaches {
		if r.Partial && !b.includePartial {
			continue
		}
		b.branches = append(b.branches, &Branch{ID: uuid.NewString(), Layers: []Layer{{r}}})
	}
	for _, u := range us {
		if u.IsJunction() {
			b.junctions = append(b.junctions, &junction{unit: u, labels: u.Connections()})
		}
	}
	return reaches
}

// assemble runs the join passes to a fixed point and returns the number
// of joins made.
func (b *builder) assemble() int {
	total := b.chain()
	for {
		n := b.absorb()
		n += b.mergeParallel()
		n += b.chain()
		if n == 0 {
			return total
		}
		total += n
	}
}

func (b *builder) extractReaches(us []units.Unit) []*Reach {
	var out []*Reach
	var run []units.Unit

	closeRun := func(partial bool, next units.Unit) {
		r := &Reach{ID: uuid.NewString(), Units: run, Partial: partial}
		out = append(out, r)
		run = nil
		if !partial {
			return
		}
		var m *message.Message
		if next != nil {
			m = message.Newf(message.Error, "reach %s ends without a zero chainage before %s", r, next.Kind()).OnLine(next.Line())
		} else {
			m = message.Newf(message.Error, "reach %s ends without a zero chainage at end of file", r).OnLine(r.Units[len(r.Units)-1].Line())
		}
		b.msgs = append(b.msgs, m)
		b.log.Warn("partial reach", "reach", r.String())
	}

	for _, u := range us {
		switch {
		case u.IsReachComponent():
			run = append(run, u)
			if rc, ok := u.(units.ReachComponent); ok && rc.Chainage() == 0 {
				closeRun(false, nil)
			}
		case u.IsStructure():
			if len(run) > 0 {
				closeRun(true, u)
			}
			out = append(out, &Reach{ID: uuid.NewString(), Units: []units.Unit{u}, Structure: true})
		default:
			if len(run) > 0 {
				closeRun(true, u)
			}
		}
	}
	if len(run) > 0 {
		closeRun(true, nil)
	}
	return out
}

// chain joins a branch to the branch starting at its downstream label,
// in full passes until a pass joins nothing.
func (b *builder) chain() int {
	total := 0
	for {
		n := 0
		for _, up := range b.branches {
			if up == nil {
				continue
			}
			label := up.DownstreamLabel()
			if label == "" {
				continue
			}
			var candidates []*Branch
			for _, down := range b.branches {
				if down != nil && down != up && down.UpstreamLabel() == label {
					candidates = append(candidates, down)
				}
			}
			if len(candidates) == 0 {
				continue
			}
			if len(candidates) > 1 {
				b.warnOnce("chain:"+label, message.Newf(message.Warning,
					"%d branches start at %s; joined %s to the first", len(candidates), label, up.UpstreamLabel()))
			}
			b.splice(up, candidates[0], nil)
			n++
		}
		b.compact()
		total += n
		if n == 0 {
			return total
		}
	}
}

// absorb removes junctions that join exactly two labels, fusing the branch
// on one side with the branch on the other.
func (b *builder) absorb() int {
	n := 0
	for _, j := range b.junctions {
		if j.absorbed || len(j.labels) != 2 {
			continue
		}
		up, down := b.endingAt(j.labels[0]), b.startingAt(j.labels[1])
		if up == nil || down == nil || up == down {
			up, down = b.endingAt(j.labels[1]), b.startingAt(j.labels[0])
		}
		if up == nil || down == nil || up == down {
			continue
		}
		b.splice(up, down, j.unit)
		j.absorbed = true
		n++
	}
	b.compact()
	return n
}

// mergeParallel finds branches that all run from one junction to another
// and folds them into a single branch with one shared layer. It merges at
// most one group per call so absorption can run in between.
func (b *builder) mergeParallel() int {
	for _, j1 := range b.junctions {
		if j1.absorbed {
			continue
		}
		for _, j2 := range b.junctions {
			if j2 == j1 || j2.absorbed {
				continue
			}
			var group []*Branch
			for _, br := range b.branches {
				if br != nil && contains(j1.labels, br.UpstreamLabel()) && contains(j2.labels, br.DownstreamLabel()) {
					group = append(group, br)
				}
			}
			if len(group) < 2 {
				continue
			}
			if !singleLayer(group) {
				b.warnOnce("parallel:"+j1.name()+":"+j2.name(), message.Newf(message.Warning,
					"%d parallel branches between %s and %s span more than one layer and were not merged",
					len(group), j1.name(), j2.name()).OnLine(j1.unit.Line()))
				continue
			}
			kept := group[0]
			us, ds := kept.UpstreamLabel(), kept.DownstreamLabel()
			for _, br := range group[1:] {
				kept.Layers[0] = append(kept.Layers[0], br.Layers[0]...)
				kept.Junctions = append(kept.Junctions, br.Junctions...)
				if l := br.UpstreamLabel(); l != us {
					j1.labels = without(j1.labels, l)
				}
				if l := br.DownstreamLabel(); l != ds {
					j2.labels = without(j2.labels, l)
				}
				b.remove(br)
			}
			b.compact()
			b.log.Debug("merged parallel branches", "from", j1.name(), "to", j2.name(), "count", len(group))
			return 1
		}
	}
	return 0
}

func (b *builder) materialise(us []units.Unit) []*Node {
	var nodes []*Node
	for _, j := range b.junctions {
		if j.absorbed {
			continue
		}
		nodes = append(nodes, &Node{
			ID:       uuid.NewString(),
			Name:     j.name(),
			Labels:   j.unit.Connections(),
			Junction: j.unit,
		})
	}
	find := func(label string) *Node {
		for _, n := range nodes {
			if n.HasLabel(label) {
				return n
			}
		}
		return nil
	}
	ensure := func(label string) *Node {
		if n := find(label); n != nil {
			return n
		}
		n := &Node{ID: uuid.NewString(), Name: label, Labels: []string{label}}
		nodes = append(nodes, n)
		return n
	}

	for _, br := range b.branches {
		br.Upstream = ensure(br.UpstreamLabel())
		br.Upstream.Outgoing = append(br.Upstream.Outgoing, br)
		br.Downstream = ensure(br.DownstreamLabel())
		br.Downstream.Incoming = append(br.Downstream.Incoming, br)
	}

	for _, u := range us {
		if !u.IsBoundary() {
			continue
		}
		attached := false
		for _, l := range u.Connections() {
			if n := find(l); n != nil {
				n.Boundaries = append(n.Boundaries, u)
				attached = true
				break
			}
		}
		if !attached {
			n := ensure(u.Name())
			n.Boundaries = append(n.Boundaries, u)
		}
	}
	return nodes
}

// splice appends down to up, with an optional absorbed junction between.
func (b *builder) splice(up, down *Branch, via units.Unit) {
	up.Layers = append(up.Layers, down.Layers...)
	if via != nil {
		up.Junctions = append(up.Junctions, via)
	}
	up.Junctions = append(up.Junctions, down.Junctions...)
	b.remove(down)
}

func (b *builder) remove(br *Branch) {
	for i, x := range b.branches {
		if x == br {
			b.branches[i] = nil
			return
		}
	}
}

func (b *builder) compact() {
	live := b.branches[:0]
	for _, br := range b.branches {
		if br != nil {
			live = append(live, br)
		}
	}
	for i := len(live); i < len(b.branches); i++ {
		b.branches[i] = nil
	}
	b.branches = live
}

func (b *builder) endingAt(label string) *Branch {
	for _, br := range b.branches {
		if br != nil && br.DownstreamLabel() == label {
			return br
		}
	}
	return nil
}

func (b *builder) startingAt(label string) *Branch {
	for _, br := range b.branches {
		if br != nil && br.UpstreamLabel() == label {
			return br
		}
	}
	return nil
}

func (b *builder) warnOnce(key string, m *message.Message) {
	if b.warned[key] {
		return
	}
	b.warned[key] = true
	b.msgs = append(b.msgs, m)
	b.log.Warn(m.Text)
}

func singleLayer(group []*Branch) bool {
	for _, br := range group {
		if len(br.Layers) != 1 {
			return false
		}
	}
	return true
}

func contains(labels []string, label string) bool {
	for _, l := range labels {
		if l == label {
			return true
		}
	}
	return false
}

func without(labels []string, label string) []string {
	out := labels[:0:0]
	for _, l := range labels {
		if l != label {
			out = append(out, l)
		}
	}
	return out
}
