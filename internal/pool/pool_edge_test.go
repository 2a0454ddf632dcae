package pool

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

// 400x200 lane at (100,100): start edge at x=100, turn edge at x=500.
func testLane() *PoolEdge {
	return NewPoolEdge(NewRect(100, 100, 400, 200))
}

func TestNewPoolEdgeFromRect(t *testing.T) {
	pe := testLane()

	wantCorners := Corners{
		StartLeft:  Pt(100, 300),
		StartRight: Pt(100, 100),
		TurnLeft:   Pt(500, 300),
		TurnRight:  Pt(500, 100),
	}
	if diff := cmp.Diff(wantCorners, pe.Corners(), approx); diff != "" {
		t.Errorf("corners mismatch (-want +got):\n%s", diff)
	}

	wantEdges := EdgeSet{
		Start: Line{Pt(100, 240), Pt(100, 160)},
		Right: Line{Pt(160, 100), Pt(440, 100)},
		Turn:  Line{Pt(500, 240), Pt(500, 160)},
		Left:  Line{Pt(160, 300), Pt(440, 300)},
	}
	if diff := cmp.Diff(wantEdges, pe.Edges(), approx); diff != "" {
		t.Errorf("edges mismatch (-want +got):\n%s", diff)
	}
}

func TestNewPoolEdgeInViewInsetsBounds(t *testing.T) {
	pe := NewPoolEdgeInView(NewRect(0, 0, 640, 480))

	assert.Equal(t, Pt(100, 100), pe.Corner(StartRight))
	assert.Equal(t, Pt(540, 380), pe.Corner(TurnLeft))
}

func TestUpdateCornersMatchesConstruction(t *testing.T) {
	pe := testLane()
	before := pe.Corners()

	require.NoError(t, pe.UpdateCorners())
	if diff := cmp.Diff(before, pe.Corners(), approx); diff != "" {
		t.Errorf("corners changed (-before +after):\n%s", diff)
	}
}

func TestUpdateCornersIdempotent(t *testing.T) {
	pe := testLane()
	require.NoError(t, pe.UpdateEdge(TurnBegin, Pt(-30, 10)))

	first := pe.Corners()
	require.NoError(t, pe.UpdateCorners())
	assert.Equal(t, first, pe.Corners())
}

func TestUpdateEdgeMovesEndpointAndCorners(t *testing.T) {
	pe := testLane()

	// Drag turn-begin from (500,240) to (540,240): the turn edge tilts.
	require.NoError(t, pe.UpdateEdge(TurnBegin, Pt(-40, 0)))
	assert.Equal(t, Pt(540, 240), pe.PointForHandle(TurnBegin))

	// Turn now runs (540,240)->(500,160); it meets y=300 at x=570 and y=100 at x=470.
	want := Corners{
		StartLeft:  Pt(100, 300),
		StartRight: Pt(100, 100),
		TurnLeft:   Pt(570, 300),
		TurnRight:  Pt(470, 100),
	}
	if diff := cmp.Diff(want, pe.Corners(), approx); diff != "" {
		t.Errorf("corners mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdateEdgeRollsBackOnDegenerateGeometry(t *testing.T) {
	pe := testLane()
	edges, corners := pe.Edges(), pe.Corners()

	// Move right-end to (160,300): the right edge becomes parallel to start.
	err := pe.UpdateEdge(RightEnd, Pt(280, -200))
	require.ErrorIs(t, err, ErrDegenerateGeometry)

	assert.Equal(t, edges, pe.Edges())
	assert.Equal(t, corners, pe.Corners())
}

func TestUpdateEdgeRejectsInvalidInput(t *testing.T) {
	pe := testLane()

	assert.Error(t, pe.UpdateEdge(Handle(42), Pt(1, 1)))
	assert.ErrorIs(t, pe.UpdateEdge(StartBegin, Pt(math.NaN(), 0)), ErrDegenerateGeometry)
	assert.Equal(t, Pt(100, 240), pe.PointForHandle(StartBegin))
}

func TestClampOffsetToFrame(t *testing.T) {
	frame := NewRect(0, 0, 640, 480)

	tests := []struct {
		name     string
		handle   Handle
		offset   Point
		inBounds bool
		adj      Point
	}{
		{name: "inside", handle: StartBegin, offset: Pt(10, -10), inBounds: true},
		{name: "on boundary", handle: StartBegin, offset: Pt(100, 0), inBounds: true},
		{name: "past left", handle: StartBegin, offset: Pt(200, 0), adj: Pt(100, 0)},
		{name: "past bottom", handle: LeftEnd, offset: Pt(0, -250), adj: Pt(0, -70)},
		{name: "past right and top", handle: TurnEnd, offset: Pt(-200, 300), adj: Pt(-60, 140)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pe := testLane()
			inBounds, adj := pe.ClampOffsetToFrame(tt.handle, tt.offset, frame)
			assert.Equal(t, tt.inBounds, inBounds)
			assert.Equal(t, tt.adj, adj)

			if !inBounds {
				corrected := pe.PointForHandle(tt.handle).Sub(tt.offset.Sub(adj))
				onX := corrected.X == frame.Min().X || corrected.X == frame.Max().X
				onY := corrected.Y == frame.Min().Y || corrected.Y == frame.Max().Y
				assert.True(t, onX || onY, "corrected point %v not on boundary", corrected)
				assert.True(t, frame.Contains(corrected))
			}
		})
	}
}

func TestClampOffsetRespectsFrameOrigin(t *testing.T) {
	pe := testLane()
	frame := NewRect(50, 50, 500, 300)

	inBounds, adj := pe.ClampOffsetToFrame(StartBegin, Pt(60, 0), frame)
	assert.False(t, inBounds)
	assert.Equal(t, Pt(10, 0), adj)
}

func TestTwoPhaseDragLandsOnBoundary(t *testing.T) {
	pe := testLane()
	frame := NewRect(0, 0, 640, 480)

	offset := Pt(200, 0)
	if ok, adj := pe.ClampOffsetToFrame(StartBegin, offset, frame); !ok {
		offset = offset.Sub(adj)
	}
	require.NoError(t, pe.UpdateEdge(StartBegin, offset))
	assert.Equal(t, Pt(0, 240), pe.PointForHandle(StartBegin))
}

func TestHandleContaining(t *testing.T) {
	pe := testLane()

	h, ok := pe.HandleContaining(Pt(119, 240))
	require.True(t, ok)
	assert.Equal(t, StartBegin, h)

	h, ok = pe.HandleContaining(Pt(440, 310))
	require.True(t, ok)
	assert.Equal(t, LeftEnd, h)

	_, ok = pe.HandleContaining(Pt(120, 240))
	assert.False(t, ok, "radius is exclusive")

	_, ok = pe.HandleContaining(Pt(300, 200))
	assert.False(t, ok)
}

func TestHandleContainingPrefersEnumerationOrder(t *testing.T) {
	// A 120x120 lane collapses both right endpoints onto (60,0).
	pe := NewPoolEdge(NewRect(0, 0, 120, 120))
	require.Equal(t, pe.PointForHandle(RightBegin), pe.PointForHandle(RightEnd))

	h, ok := pe.HandleContaining(Pt(60, 0))
	require.True(t, ok)
	assert.Equal(t, RightBegin, h)
}

func TestLabels(t *testing.T) {
	labels := testLane().Labels()
	require.Len(t, labels, 4)

	want := []Label{
		{Text: "START", Anchor: Pt(100, 240), Width: 80, Angle: 3 * math.Pi / 2},
		{Text: "RIGHT", Anchor: Pt(160, 100), Width: 280, Angle: 0},
		{Text: "TURN", Anchor: Pt(500, 240), Width: 80, Angle: 3 * math.Pi / 2},
		{Text: "LEFT", Anchor: Pt(160, 300), Width: 280, Angle: 0},
	}
	if diff := cmp.Diff(want, labels, approx); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}
}

func TestOutlineJSON(t *testing.T) {
	out := testLane().Outline()
	require.Len(t, out.Handles, 8)
	assert.Equal(t, LeftEnd, out.Handles[7].Handle)

	active := TurnEnd
	out.Active = &active

	data, err := json.Marshal(out)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "turn_end", decoded["active_handle"])
	assert.EqualValues(t, HandleRadius, decoded["handle_radius"])

	first := decoded["handles"].([]any)[0].(map[string]any)
	assert.Equal(t, "start_begin", first["handle"])
}

func TestHandleEdgeAndEnd(t *testing.T) {
	assert.Equal(t, EdgeStart, StartEnd.Edge())
	assert.Equal(t, 1, StartEnd.End())
	assert.Equal(t, EdgeLeft, LeftBegin.Edge())
	assert.Equal(t, 0, LeftBegin.End())

	var h Handle
	require.NoError(t, h.UnmarshalText([]byte("TURN_BEGIN")))
	assert.Equal(t, TurnBegin, h)
	assert.Error(t, h.UnmarshalText([]byte("middle")))
}
