package dawduction

import (
	"sort"

	"github.com/google/uuid"
)

type (
	// PatternNode is a node in a rhythm tree. Each node subdivides its
	// parent's time span proportionally to its Division weight relative to
	// the sum of its siblings' weights; a node without children is a trigger
	// point. The root node's Division additionally gives the pattern's total
	// length in beats, so there is no fixed meter anywhere: a node with five
	// children next to a sibling with seven simply plays 5 against 7.
	PatternNode struct {
		ID       string         `yaml:"id" json:"id"`
		Division float64        `yaml:"division" json:"division"`
		Children []*PatternNode `yaml:"children,omitempty" json:"children,omitempty"`

		// Velocity and Pitch are only meaningful on leaves. A node with
		// children carries neither.
		Velocity float64 `yaml:"velocity,omitempty" json:"velocity,omitempty"`
		Pitch    int     `yaml:"pitch,omitempty" json:"pitch,omitempty"`
	}

	// NoteEvent is a single trigger produced by flattening a pattern tree.
	// Time is in beats, absolute within the pattern (or within the timeline,
	// after clip placement). Events are immutable once scheduled.
	NoteEvent struct {
		Time         float64 `yaml:"time" json:"time"`
		Duration     float64 `yaml:"duration,omitempty" json:"duration,omitempty"`
		Velocity     float64 `yaml:"velocity" json:"velocity"`
		Pitch        int     `yaml:"pitch" json:"pitch"`
		InstrumentID string  `yaml:"instrumentId" json:"instrumentId"`
		PatternID    string  `yaml:"patternId,omitempty" json:"patternId,omitempty"`
		NodeID       string  `yaml:"nodeId,omitempty" json:"nodeId,omitempty"`
	}
)

// DefaultPatternLength is used whenever a pattern length cannot be resolved,
// e.g. the base meter track was removed mid-session.
const DefaultPatternLength = 4

// NewLeaf returns a leaf node with a fresh ID.
func NewLeaf(division, velocity float64, pitch int) *PatternNode {
	return &PatternNode{ID: uuid.NewString(), Division: division, Velocity: velocity, Pitch: pitch}
}

// NewBranch returns an inner node with a fresh ID, owning the given children.
func NewBranch(division float64, children ...*PatternNode) *PatternNode {
	return &PatternNode{ID: uuid.NewString(), Division: division, Children: children}
}

// IsLeaf reports whether the node is a terminal trigger point.
func (n *PatternNode) IsLeaf() bool {
	return len(n.Children) == 0
}

// Copy makes a deep copy of the subtree rooted at n.
func (n *PatternNode) Copy() *PatternNode {
	if n == nil {
		return nil
	}
	c := *n
	c.Children = make([]*PatternNode, len(n.Children))
	for i, child := range n.Children {
		c.Children[i] = child.Copy()
	}
	return &c
}

// NumNodes returns the number of nodes in the subtree rooted at n.
func (n *PatternNode) NumNodes() int {
	if n == nil {
		return 0
	}
	ret := 1
	for _, c := range n.Children {
		ret += c.NumNodes()
	}
	return ret
}

// Length returns the pattern length in beats: the root's division weight,
// falling back to DefaultPatternLength when the root is missing or its
// division is not positive.
func (n *PatternNode) Length() float64 {
	if n == nil || n.Division <= 0 {
		return DefaultPatternLength
	}
	return n.Division
}

// Flatten converts the rhythm tree rooted at root into a sorted list of note
// events for the given instrument. baseMeter is the time span, in beats, that
// the root occupies. A root with no children and no velocity or pitch is an
// empty pattern and produces no events. Flattening one tree is O(nodes) and
// touches nothing outside the returned slice, so re-flattening one instrument
// never disturbs the events of another.
func Flatten(root *PatternNode, baseMeter float64, instrumentID, patternID string) []NoteEvent {
	if root == nil {
		return nil
	}
	if root.IsLeaf() && root.Velocity == 0 && root.Pitch == 0 {
		return nil
	}
	events := make([]NoteEvent, 0, root.NumNodes())
	events = flattenNode(root, 0, baseMeter, instrumentID, patternID, events)
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Time < events[j].Time
	})
	return events
}

// flattenNode distributes the span [start, start+duration) across the node's
// children proportionally to their division weights. Leaves emit one event at
// their accumulated start offset.
func flattenNode(n *PatternNode, start, duration float64, instrumentID, patternID string, events []NoteEvent) []NoteEvent {
	if n.IsLeaf() {
		return append(events, NoteEvent{
			Time:         start,
			Duration:     duration,
			Velocity:     n.Velocity,
			Pitch:        n.Pitch,
			InstrumentID: instrumentID,
			PatternID:    patternID,
			NodeID:       n.ID,
		})
	}
	var total float64
	for _, c := range n.Children {
		if c.Division > 0 {
			total += c.Division
		}
	}
	if total <= 0 {
		return events
	}
	offset := start
	for _, c := range n.Children {
		if c.Division <= 0 {
			continue
		}
		childDuration := duration * c.Division / total
		events = flattenNode(c, offset, childDuration, instrumentID, patternID, events)
		offset += childDuration
	}
	return events
}

// FindNode returns the node with the given ID in the subtree rooted at n, or
// nil if absent.
func (n *PatternNode) FindNode(id string) *PatternNode {
	if n == nil {
		return nil
	}
	if n.ID == id {
		return n
	}
	for _, c := range n.Children {
		if found := c.FindNode(id); found != nil {
			return found
		}
	}
	return nil
}
