// Package report folds flat PathRecords into a hierarchical report and emits
// the ordered event sequence a reporting sink consumes.
package report

import (
	"fmt"
	"strings"

	"github.com/fjglira/specwalk/internal/domain"
)

// Node is a suite or case in the report tree.
type Node struct {
	Name        string
	Description string
	Kind        domain.NodeKind
	Identity    domain.Identity
	Outcome     *domain.Outcome // nil means no recorded outcome (an implicit pass)

	children []*Node
	index    map[nodeKey]*Node
}

// nodeKey distinguishes siblings: two blocks with the same name declared at
// different positions are different nodes.
type nodeKey struct {
	name       string
	identity   domain.Identity
	occurrence int
}

func newNode(name, description string, kind domain.NodeKind, id domain.Identity) *Node {
	return &Node{
		Name:        name,
		Description: description,
		Kind:        kind,
		Identity:    id,
		index:       make(map[nodeKey]*Node),
	}
}

// Children returns the children in first-seen order.
func (n *Node) Children() []*Node {
	return n.children
}

// Failed reports whether the node carries a failure outcome.
func (n *Node) Failed() bool {
	return n.Outcome != nil && n.Outcome.Failed
}

// child returns the child for seg, creating it on first reference.
func (n *Node) child(seg domain.Segment) *Node {
	key := nodeKey{name: seg.Name, identity: seg.Identity, occurrence: seg.Occurrence}
	if c, ok := n.index[key]; ok {
		return c
	}
	c := newNode(seg.Name, n.Description+"/"+seg.Name, domain.KindCase, seg.Identity)
	n.children = append(n.children, c)
	n.index[key] = c
	n.Kind = domain.KindSuite
	return c
}

// Find returns the node reached by following names from n, or nil.
func (n *Node) Find(names ...string) *Node {
	cur := n
	for _, name := range names {
		var next *Node
		for _, c := range cur.children {
			if c.Name == name {
				next = c
				break
			}
		}
		if next == nil {
			return nil
		}
		cur = next
	}
	return cur
}

// Walk visits n and its descendants depth-first in first-seen order.
func (n *Node) Walk(fn func(node *Node, depth int)) {
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(*Node, int), depth int) {
	fn(n, depth)
	for _, c := range n.children {
		c.walk(fn, depth+1)
	}
}

// Stats counts the case nodes below and including n.
type Stats struct {
	Cases  int
	Failed int
}

// Stats returns the number of cases and failed nodes in the tree.
func (n *Node) Stats() Stats {
	var s Stats
	n.Walk(func(node *Node, _ int) {
		if node.Kind == domain.KindCase {
			s.Cases++
		}
		if node.Failed() {
			s.Failed++
		}
	})
	return s
}

func (n *Node) String() string {
	var b strings.Builder
	n.Walk(func(node *Node, depth int) {
		status := "ok"
		if node.Failed() {
			status = "FAIL"
		}
		fmt.Fprintf(&b, "%s%s (%s, %s)\n", strings.Repeat("  ", depth), node.Name, node.Kind, status)
	})
	return b.String()
}

// Tree builds a report tree top-down from PathRecords.
type Tree struct {
	root *Node
}

// NewTree creates a Tree with a suite root named label.
func NewTree(label string) *Tree {
	return &Tree{root: newNode(label, label, domain.KindSuite, domain.Identity{})}
}

// Root returns the root node.
func (t *Tree) Root() *Node {
	return t.root
}

// AddEntry folds the records of one entry point under a child named entry.
// An entry without records still gets a case node with no outcome, so every
// declared entry point is represented.
func (t *Tree) AddEntry(entry string, records []domain.PathRecord) *Node {
	return t.root.AddEntry(entry, records)
}

// AddEntry is like Tree.AddEntry below n.
func (n *Node) AddEntry(entry string, records []domain.PathRecord) *Node {
	node := n.child(domain.Segment{Name: entry})
	foldRecords(node, records)
	return node
}

// Suite returns the child suite named name, creating it on first reference.
func (n *Node) Suite(name string) *Node {
	c := n.child(domain.Segment{Name: name})
	c.Kind = domain.KindSuite
	return c
}

// Aggregate builds a tree rooted at rootLabel from the records of a single
// entry point. Without records the root itself is a case with no outcome.
func Aggregate(rootLabel string, records []domain.PathRecord) *Node {
	root := newNode(rootLabel, rootLabel, domain.KindCase, domain.Identity{})
	foldRecords(root, records)
	return root
}

func foldRecords(root *Node, records []domain.PathRecord) {
	for _, rec := range records {
		fold(root, rec)
	}
}

// fold walks the record's path from root, creating nodes on first reference.
// The last node receives the outcome unless it already has one. A success on
// a node that already has children adds nothing; a failure is kept so that a
// suite failing after its children ran is still reported.
func fold(root *Node, rec domain.PathRecord) {
	cur := root
	for _, seg := range rec.Path {
		cur = cur.child(seg)
	}
	if cur.Outcome != nil {
		return
	}
	if len(cur.children) > 0 && !rec.Outcome.Failed {
		return
	}
	outcome := rec.Outcome
	cur.Outcome = &outcome
}
