package pool

import (
	"fmt"
	"strings"
)

// Line is a segment defined by exactly two points.
type Line [2]Point

func (l Line) Length() float64 {
	return l[0].DistanceTo(l[1])
}

// Direction is the vector from the first point to the second.
func (l Line) Direction() Point {
	return l[1].Sub(l[0])
}

// Edge names one of the four partial lines of the lane outline.
type Edge int

const (
	EdgeStart Edge = iota
	EdgeRight
	EdgeTurn
	EdgeLeft
)

// AllEdges lists every edge in outline order.
func AllEdges() []Edge {
	return []Edge{EdgeStart, EdgeRight, EdgeTurn, EdgeLeft}
}

func (e Edge) String() string {
	switch e {
	case EdgeStart:
		return "START"
	case EdgeRight:
		return "RIGHT"
	case EdgeTurn:
		return "TURN"
	case EdgeLeft:
		return "LEFT"
	}
	return fmt.Sprintf("Edge(%d)", int(e))
}

// EdgeSet holds the four partial edge lines. Start and turn are the short
// ends of the lane; left and right are the long sides.
type EdgeSet struct {
	Start Line `json:"start"`
	Right Line `json:"right"`
	Turn  Line `json:"turn"`
	Left  Line `json:"left"`
}

func (s EdgeSet) Get(e Edge) Line {
	switch e {
	case EdgeStart:
		return s.Start
	case EdgeRight:
		return s.Right
	case EdgeTurn:
		return s.Turn
	case EdgeLeft:
		return s.Left
	}
	panic(fmt.Sprintf("pool: unknown edge %d", int(e)))
}

func (s *EdgeSet) Set(e Edge, l Line) {
	switch e {
	case EdgeStart:
		s.Start = l
	case EdgeRight:
		s.Right = l
	case EdgeTurn:
		s.Turn = l
	case EdgeLeft:
		s.Left = l
	default:
		panic(fmt.Sprintf("pool: unknown edge %d", int(e)))
	}
}

// Corner names one of the four derived lane corners.
type Corner int

const (
	StartLeft Corner = iota
	StartRight
	TurnLeft
	TurnRight
)

func AllCorners() []Corner {
	return []Corner{StartLeft, StartRight, TurnLeft, TurnRight}
}

// cornerEdges is the fixed edge pair whose intersection defines each corner.
var cornerEdges = map[Corner][2]Edge{
	StartLeft:  {EdgeStart, EdgeLeft},
	StartRight: {EdgeStart, EdgeRight},
	TurnLeft:   {EdgeTurn, EdgeLeft},
	TurnRight:  {EdgeTurn, EdgeRight},
}

func (c Corner) String() string {
	switch c {
	case StartLeft:
		return "start_left"
	case StartRight:
		return "start_right"
	case TurnLeft:
		return "turn_left"
	case TurnRight:
		return "turn_right"
	}
	return fmt.Sprintf("Corner(%d)", int(c))
}

// Corners holds the four lane corners.
type Corners struct {
	StartLeft  Point `json:"start_left"`
	StartRight Point `json:"start_right"`
	TurnLeft   Point `json:"turn_left"`
	TurnRight  Point `json:"turn_right"`
}

func (c Corners) Get(corner Corner) Point {
	switch corner {
	case StartLeft:
		return c.StartLeft
	case StartRight:
		return c.StartRight
	case TurnLeft:
		return c.TurnLeft
	case TurnRight:
		return c.TurnRight
	}
	panic(fmt.Sprintf("pool: unknown corner %d", int(corner)))
}

func (c *Corners) set(corner Corner, p Point) {
	switch corner {
	case StartLeft:
		c.StartLeft = p
	case StartRight:
		c.StartRight = p
	case TurnLeft:
		c.TurnLeft = p
	case TurnRight:
		c.TurnRight = p
	}
}

// Handle identifies one of the eight draggable edge endpoints.
type Handle int

const (
	StartBegin Handle = iota
	StartEnd
	RightBegin
	RightEnd
	TurnBegin
	TurnEnd
	LeftBegin
	LeftEnd
)

// AllHandles lists every handle in hit-test order.
func AllHandles() []Handle {
	return []Handle{StartBegin, StartEnd, RightBegin, RightEnd, TurnBegin, TurnEnd, LeftBegin, LeftEnd}
}

var handleNames = map[Handle]string{
	StartBegin: "start_begin",
	StartEnd:   "start_end",
	RightBegin: "right_begin",
	RightEnd:   "right_end",
	TurnBegin:  "turn_begin",
	TurnEnd:    "turn_end",
	LeftBegin:  "left_begin",
	LeftEnd:    "left_end",
}

// Edge returns the edge the handle belongs to.
func (h Handle) Edge() Edge {
	return Edge(int(h) / 2)
}

// End returns which endpoint of the edge the handle moves (0 or 1).
func (h Handle) End() int {
	return int(h) % 2
}

func (h Handle) Valid() bool {
	return h >= StartBegin && h <= LeftEnd
}

func (h Handle) String() string {
	if name, ok := handleNames[h]; ok {
		return name
	}
	return fmt.Sprintf("Handle(%d)", int(h))
}

func (h Handle) MarshalText() ([]byte, error) {
	if !h.Valid() {
		return nil, fmt.Errorf("pool: invalid handle %d", int(h))
	}
	return []byte(h.String()), nil
}

func (h *Handle) UnmarshalText(text []byte) error {
	name := strings.ToLower(string(text))
	for handle, n := range handleNames {
		if n == name {
			*h = handle
			return nil
		}
	}
	return fmt.Errorf("pool: unknown handle %q", string(text))
}
