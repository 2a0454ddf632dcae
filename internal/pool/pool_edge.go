package pool

import (
	"fmt"
)

// PoolEdge is the lane outline: four partial edges and the corners derived
// from their pairwise intersections. It is not safe for concurrent use; a
// single owner serializes every read and mutation.
type PoolEdge struct {
	edges   EdgeSet
	corners Corners
}

// NewPoolEdge builds an outline from an axis-aligned rectangle. Corners map
// startRight to the origin, startLeft to (x, y+h), turnLeft to (x+w, y+h) and
// turnRight to (x+w, y). Each edge is inset by EdgeInset so the four partial
// edges never touch.
func NewPoolEdge(r Rect) *PoolEdge {
	x, y, w, h := r.Origin.X, r.Origin.Y, r.Width, r.Height
	d := EdgeInset

	c := Corners{
		StartRight: Pt(x, y),
		StartLeft:  Pt(x, y+h),
		TurnLeft:   Pt(x+w, y+h),
		TurnRight:  Pt(x+w, y),
	}

	return &PoolEdge{
		edges: EdgeSet{
			Right: Line{Pt(c.StartRight.X+d, c.StartRight.Y), Pt(c.TurnRight.X-d, c.TurnRight.Y)},
			Left:  Line{Pt(c.StartLeft.X+d, c.StartLeft.Y), Pt(c.TurnLeft.X-d, c.TurnLeft.Y)},
			Start: Line{Pt(c.StartLeft.X, c.StartLeft.Y-d), Pt(c.StartRight.X, c.StartRight.Y+d)},
			Turn:  Line{Pt(c.TurnLeft.X, c.TurnLeft.Y-d), Pt(c.TurnRight.X, c.TurnRight.Y+d)},
		},
		corners: c,
	}
}

// NewPoolEdgeInView builds the default outline for a view, inset from its bounds.
func NewPoolEdgeInView(bounds Rect) *PoolEdge {
	return NewPoolEdge(bounds.Inset(ViewInset, ViewInset))
}

func (pe *PoolEdge) Edges() EdgeSet {
	return pe.edges
}

func (pe *PoolEdge) Edge(e Edge) Line {
	return pe.edges.Get(e)
}

func (pe *PoolEdge) Corners() Corners {
	return pe.corners
}

func (pe *PoolEdge) Corner(c Corner) Point {
	return pe.corners.Get(c)
}

// PointForHandle returns the current position of a handle's endpoint.
func (pe *PoolEdge) PointForHandle(h Handle) Point {
	return pe.edges.Get(h.Edge())[h.End()]
}

// UpdateCorners recomputes all four corners from the current edges. Either
// every corner is updated or, on ErrDegenerateGeometry, none is.
func (pe *PoolEdge) UpdateCorners() error {
	corners, err := deriveCorners(pe.edges)
	if err != nil {
		return err
	}
	pe.corners = corners
	return nil
}

func deriveCorners(edges EdgeSet) (Corners, error) {
	var out Corners
	for _, c := range AllCorners() {
		pair := cornerEdges[c]
		p, err := Intersect(edges.Get(pair[0]), edges.Get(pair[1]))
		if err != nil {
			return Corners{}, fmt.Errorf("corner %s from %s/%s: %w", c, pair[0], pair[1], err)
		}
		out.set(c, p)
	}
	return out, nil
}

// UpdateEdge moves a handle's endpoint to endpoint - offset and recomputes the
// corners. If the moved edge leaves the outline degenerate the edge is restored
// and the error returned, so the last valid geometry is kept.
func (pe *PoolEdge) UpdateEdge(h Handle, offset Point) error {
	if !h.Valid() {
		return fmt.Errorf("pool: invalid handle %d", int(h))
	}
	if !offset.IsFinite() {
		return fmt.Errorf("pool: non-finite offset: %w", ErrDegenerateGeometry)
	}

	e := h.Edge()
	prev := pe.edges.Get(e)
	moved := prev
	moved[h.End()] = prev[h.End()].Sub(offset)
	pe.edges.Set(e, moved)

	if err := pe.UpdateCorners(); err != nil {
		pe.edges.Set(e, prev)
		return err
	}
	return nil
}

// ClampOffsetToFrame checks where a drag offset would put a handle. When the
// candidate endpoint stays inside frame it returns (true, zero). Otherwise it
// returns the per-axis correction that moves the candidate exactly onto the
// violated boundary; the caller subtracts it from offset before UpdateEdge.
func (pe *PoolEdge) ClampOffsetToFrame(h Handle, offset Point, frame Rect) (bool, Point) {
	candidate := pe.PointForHandle(h).Sub(offset)
	if frame.Contains(candidate) {
		return true, Point{}
	}

	lo, hi := frame.Min(), frame.Max()
	var adj Point
	switch {
	case candidate.X < lo.X:
		adj.X = lo.X - candidate.X
	case candidate.X > hi.X:
		adj.X = hi.X - candidate.X
	}
	switch {
	case candidate.Y < lo.Y:
		adj.Y = lo.Y - candidate.Y
	case candidate.Y > hi.Y:
		adj.Y = hi.Y - candidate.Y
	}
	return false, adj
}

// HandleContaining returns the first handle, in enumeration order, whose
// endpoint lies strictly within HandleRadius of p.
func (pe *PoolEdge) HandleContaining(p Point) (Handle, bool) {
	for _, h := range AllHandles() {
		if pe.PointForHandle(h).DistanceTo(p) < HandleRadius {
			return h, true
		}
	}
	return 0, false
}

// Label is a caption drawn along an edge.
type Label struct {
	Text   string  `json:"text"`
	Anchor Point   `json:"anchor"`
	Width  float64 `json:"width"`
	Angle  float64 `json:"angle"`
}

// Labels returns one caption per edge, anchored at the edge's first point and
// rotated to follow it.
func (pe *PoolEdge) Labels() []Label {
	labels := make([]Label, 0, 4)
	for _, e := range AllEdges() {
		l := pe.edges.Get(e)
		labels = append(labels, Label{
			Text:   e.String(),
			Anchor: l[0],
			Width:  l.Length(),
			Angle:  l[0].AngleTo(l[1]),
		})
	}
	return labels
}

type HandlePoint struct {
	Handle Handle `json:"handle"`
	Point  Point  `json:"point"`
}

// Outline is an immutable snapshot of the lane geometry for renderers.
type Outline struct {
	Edges        EdgeSet       `json:"edges"`
	Corners      Corners       `json:"corners"`
	Handles      []HandlePoint `json:"handles"`
	Labels       []Label       `json:"labels"`
	HandleRadius float64       `json:"handle_radius"`
	Active       *Handle       `json:"active_handle,omitempty"`
}

func (pe *PoolEdge) Outline() Outline {
	handles := make([]HandlePoint, 0, 8)
	for _, h := range AllHandles() {
		handles = append(handles, HandlePoint{Handle: h, Point: pe.PointForHandle(h)})
	}
	return Outline{
		Edges:        pe.edges,
		Corners:      pe.corners,
		Handles:      handles,
		Labels:       pe.Labels(),
		HandleRadius: HandleRadius,
	}
}
