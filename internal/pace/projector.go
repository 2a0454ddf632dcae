package pace

import (
	"fmt"
	"math"

	"github.com/swimpace/backend/internal/pool"
)

// Direction is the way the paced swimmer is heading along the lane.
type Direction int

const (
	Outbound Direction = iota // start -> turn
	Inbound                   // turn -> start
)

func (d Direction) String() string {
	if d == Inbound {
		return "inbound"
	}
	return "outbound"
}

func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(text []byte) error {
	switch string(text) {
	case "outbound":
		*d = Outbound
	case "inbound":
		*d = Inbound
	default:
		return fmt.Errorf("pace: unknown direction %q", text)
	}
	return nil
}

// Progress is where a swimmer at qualifying pace is after some elapsed time.
type Progress struct {
	Fraction         float64   `json:"fraction"` // 0 at the start wall, 1 at the turn wall
	Direction        Direction `json:"direction"`
	DistanceSwam     float64   `json:"distance_swam"`
	LengthsCompleted int       `json:"lengths_completed"`
}

// ComputeProgress folds the distance swum at qualifying pace onto a single
// pool length. Odd completed lengths run back from the turn wall. Negative
// elapsed is treated as zero.
func ComputeProgress(elapsed float64, cfg Config) (Progress, error) {
	if err := cfg.Validate(); err != nil {
		return Progress{}, err
	}
	if elapsed < 0 || math.IsNaN(elapsed) {
		elapsed = 0
	}

	L := cfg.PoolLength
	swam := elapsed * cfg.Speed()
	p := Progress{DistanceSwam: swam, Direction: Outbound}

	dist := swam
	if swam > L {
		partial := math.Mod(swam, L)
		p.LengthsCompleted = int(swam / L)
		if p.LengthsCompleted%2 == 0 {
			dist = partial
		} else {
			dist = L - partial
			p.Direction = Inbound
		}
	}

	p.Fraction = math.Min(math.Max(dist/L, 0), 1)
	return p, nil
}

// Caption is the text drawn along the pace bar.
type Caption struct {
	Text   string     `json:"text"`
	Color  string     `json:"color"`
	Anchor pool.Point `json:"anchor"`
	Angle  float64    `json:"angle"`
	Width  float64    `json:"width"`
}

// PaceBar is the drawable bar across the lane at the expected position.
type PaceBar struct {
	Visible bool `json:"visible"`
	Progress
	Polygon    [4]pool.Point `json:"polygon"`
	Centerline pool.Line     `json:"centerline"`
	Color      string        `json:"color"`
	Width      float64       `json:"width"`
	Caption    Caption       `json:"caption"`
}

type side struct {
	leading, trailing pool.Point
}

// barSide places one end of the bar: the point at fraction t between a side's
// start and turn corners, spread by width/2 along the side's direction.
func barSide(start, turn pool.Point, t, width float64) (side, error) {
	dir := turn.Sub(start)
	if dir.IsZero() || !dir.IsFinite() {
		return side{}, fmt.Errorf("start and turn corners coincide at %v: %w", start, pool.ErrDegenerateGeometry)
	}
	u := dir.Unit()
	p := pool.Lerp(start, turn, t)
	half := u.Scale(width / 2)
	return side{leading: p.Add(half), trailing: p.Sub(half)}, nil
}

// ComputePaceBar projects the qualifying pace onto the lane described by
// corners. Once elapsed passes the qualifying time the bar is returned hidden.
func ComputePaceBar(elapsed float64, cfg Config, corners pool.Corners) (PaceBar, error) {
	prog, err := ComputeProgress(elapsed, cfg)
	if err != nil {
		return PaceBar{}, err
	}
	if elapsed > cfg.QualifyingTime {
		return PaceBar{Visible: false, Progress: prog}, nil
	}

	t := prog.Fraction
	right, err := barSide(corners.StartRight, corners.TurnRight, t, cfg.BarWidth)
	if err != nil {
		return PaceBar{}, fmt.Errorf("right side: %w", err)
	}
	left, err := barSide(corners.StartLeft, corners.TurnLeft, t, cfg.BarWidth)
	if err != nil {
		return PaceBar{}, fmt.Errorf("left side: %w", err)
	}

	bar := PaceBar{
		Visible:  true,
		Progress: prog,
		Polygon:  [4]pool.Point{left.trailing, left.leading, right.leading, right.trailing},
		Centerline: pool.Line{
			left.trailing.Midpoint(left.leading),
			right.trailing.Midpoint(right.leading),
		},
		Color: cfg.BarColor,
		Width: cfg.BarWidth,
		Caption: Caption{
			Text:   cfg.Caption,
			Color:  cfg.CaptionColor,
			Anchor: right.leading,
			Angle:  right.leading.AngleTo(left.leading),
			Width:  left.trailing.DistanceTo(right.trailing),
		},
	}

	for _, p := range bar.Polygon {
		if !p.IsFinite() {
			return PaceBar{}, fmt.Errorf("non-finite bar vertex %v: %w", p, pool.ErrDegenerateGeometry)
		}
	}
	return bar, nil
}
