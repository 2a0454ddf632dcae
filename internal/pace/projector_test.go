package pace

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swimpace/backend/internal/pool"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

// 100 units in 100 s over a 50 unit pool: one length every 50 s.
func testConfig() Config {
	cfg := Defaults()
	cfg.RaceDistance = 100
	cfg.QualifyingTime = 100
	cfg.PoolLength = 50
	cfg.BarWidth = 20
	return cfg
}

// start wall at x=100, turn wall at x=500.
func testCorners() pool.Corners {
	return pool.NewPoolEdge(pool.NewRect(100, 100, 400, 200)).Corners()
}

func TestComputeProgress(t *testing.T) {
	tests := []struct {
		name    string
		elapsed float64
		want    Progress
	}{
		{"start", 0, Progress{Fraction: 0, Direction: Outbound}},
		{"negative clamps to start", -3, Progress{Fraction: 0, Direction: Outbound}},
		{"halfway out", 25, Progress{Fraction: 0.5, Direction: Outbound, DistanceSwam: 25}},
		{"at turn wall", 50, Progress{Fraction: 1, Direction: Outbound, DistanceSwam: 50}},
		{"halfway back", 75, Progress{Fraction: 0.5, Direction: Inbound, DistanceSwam: 75, LengthsCompleted: 1}},
		{"back at start", 100, Progress{Fraction: 0, Direction: Outbound, DistanceSwam: 100, LengthsCompleted: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeProgress(tt.elapsed, testConfig())
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got, approx); diff != "" {
				t.Errorf("progress mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestComputePaceBarAtStart(t *testing.T) {
	bar, err := ComputePaceBar(0, testConfig(), testCorners())
	require.NoError(t, err)
	require.True(t, bar.Visible)

	wantPolygon := [4]pool.Point{
		pool.Pt(90, 300), pool.Pt(110, 300), pool.Pt(110, 100), pool.Pt(90, 100),
	}
	if diff := cmp.Diff(wantPolygon, bar.Polygon, approx); diff != "" {
		t.Errorf("polygon mismatch (-want +got):\n%s", diff)
	}

	corners := testCorners()
	want := pool.Line{corners.StartLeft, corners.StartRight}
	if diff := cmp.Diff(want, bar.Centerline, approx); diff != "" {
		t.Errorf("centerline mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, pool.Pt(110, 100), bar.Caption.Anchor)
	assert.InDelta(t, math.Pi/2, bar.Caption.Angle, 1e-12)
	assert.InDelta(t, 200, bar.Caption.Width, 1e-12)
	assert.Equal(t, "qualifying pace", bar.Caption.Text)
	assert.Equal(t, "white", bar.Caption.Color)
	assert.Equal(t, "red", bar.Color)
}

func TestComputePaceBarAtTurnWall(t *testing.T) {
	bar, err := ComputePaceBar(50, testConfig(), testCorners())
	require.NoError(t, err)

	corners := testCorners()
	want := pool.Line{corners.TurnLeft, corners.TurnRight}
	if diff := cmp.Diff(want, bar.Centerline, approx); diff != "" {
		t.Errorf("centerline mismatch (-want +got):\n%s", diff)
	}
}

func TestComputePaceBarReversesAfterTurn(t *testing.T) {
	bar, err := ComputePaceBar(75, testConfig(), testCorners())
	require.NoError(t, err)

	assert.Equal(t, Inbound, bar.Direction)
	assert.Equal(t, 1, bar.LengthsCompleted)
	assert.InDelta(t, 0.5, bar.Fraction, 1e-12)

	want := pool.Line{pool.Pt(300, 300), pool.Pt(300, 100)}
	if diff := cmp.Diff(want, bar.Centerline, approx); diff != "" {
		t.Errorf("centerline mismatch (-want +got):\n%s", diff)
	}
}

func TestComputePaceBarSidesAreIndependent(t *testing.T) {
	// Left side is twice as long as the right side.
	corners := pool.Corners{
		StartRight: pool.Pt(0, 0),
		TurnRight:  pool.Pt(100, 0),
		StartLeft:  pool.Pt(0, 50),
		TurnLeft:   pool.Pt(200, 50),
	}
	bar, err := ComputePaceBar(25, testConfig(), corners)
	require.NoError(t, err)

	want := pool.Line{pool.Pt(100, 50), pool.Pt(50, 0)}
	if diff := cmp.Diff(want, bar.Centerline, approx); diff != "" {
		t.Errorf("centerline mismatch (-want +got):\n%s", diff)
	}
	// Bar width is measured along each side, not scaled by its length.
	assert.InDelta(t, 20, bar.Polygon[0].DistanceTo(bar.Polygon[1]), 1e-9)
	assert.InDelta(t, 20, bar.Polygon[2].DistanceTo(bar.Polygon[3]), 1e-9)
}

func TestComputePaceBarHiddenAfterQualifyingTime(t *testing.T) {
	bar, err := ComputePaceBar(100.5, testConfig(), testCorners())
	require.NoError(t, err)
	assert.False(t, bar.Visible)
	assert.Equal(t, [4]pool.Point{}, bar.Polygon)
}

func TestComputePaceBarErrors(t *testing.T) {
	cfg := testConfig()
	cfg.PoolLength = 0
	_, err := ComputePaceBar(10, cfg, testCorners())
	assert.ErrorIs(t, err, ErrInvalidConfig)

	corners := testCorners()
	corners.TurnLeft = corners.StartLeft
	_, err = ComputePaceBar(10, testConfig(), corners)
	assert.ErrorIs(t, err, pool.ErrDegenerateGeometry)
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, Defaults().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero distance", func(c *Config) { c.RaceDistance = 0 }},
		{"negative qualifying", func(c *Config) { c.QualifyingTime = -1 }},
		{"nan pool length", func(c *Config) { c.PoolLength = math.NaN() }},
		{"infinite width", func(c *Config) { c.BarWidth = math.Inf(1) }},
		{"unknown units", func(c *Config) { c.Units = "furlongs" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}
