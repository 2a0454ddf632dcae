package camera

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/swimpace/backend/internal/logger"
	"github.com/swimpace/backend/internal/pool"
)

var (
	ErrInvalidTransition = errors.New("camera: invalid state transition")
	ErrInvalidFrame      = errors.New("camera: invalid frame size")
)

type State int

const (
	Unconfigured State = iota
	Configured
	Running
	Stopped
)

func (s State) String() string {
	switch s {
	case Unconfigured:
		return "unconfigured"
	case Configured:
		return "configured"
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	for st := Unconfigured; st <= Stopped; st++ {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("camera: unknown state %q", text)
}

// Info identifies a capture source. Renderers pick the id and display name;
// devices are never enumerated here.
type Info struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Device is a frame source a session drives.
type Device interface {
	Info() Info
	Open(ctx context.Context) error
	Close() error
}

// RemoteDevice stands for a camera opened by the renderer. The backend only
// tracks the selection, so opening and closing are bookkeeping.
type RemoteDevice struct {
	info Info
}

func NewRemoteDevice(info Info) *RemoteDevice {
	return &RemoteDevice{info: info}
}

func (d *RemoteDevice) Info() Info                 { return d.info }
func (d *RemoteDevice) Open(context.Context) error { return nil }
func (d *RemoteDevice) Close() error               { return nil }

// Session is one configure/start/stop cycle of a device. Switching cameras
// stops the old session and builds a new one; a stopped session is never
// restarted. Not safe for concurrent use.
type Session struct {
	state  State
	device Device
	frame  pool.Rect
	log    *zap.Logger
}

func NewSession() *Session {
	return &Session{log: logger.Named("camera")}
}

func (s *Session) State() State {
	return s.state
}

// Device returns the configured device, or nil before Configure.
func (s *Session) Device() Device {
	return s.device
}

// Frame returns the last reported frame bounds.
func (s *Session) Frame() pool.Rect {
	return s.frame
}

func (s *Session) transition(from []State, to State) error {
	for _, f := range from {
		if s.state == f {
			s.state = to
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.state, to)
}

func (s *Session) Configure(d Device) error {
	if d == nil {
		return fmt.Errorf("camera: nil device")
	}
	if err := s.transition([]State{Unconfigured}, Configured); err != nil {
		return err
	}
	s.device = d
	s.log.Info("camera configured", zap.String("id", d.Info().ID), zap.String("name", d.Info().Name))
	return nil
}

func (s *Session) Start(ctx context.Context) error {
	if s.state != Configured {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.state, Running)
	}
	if err := s.device.Open(ctx); err != nil {
		return fmt.Errorf("open camera %s: %w", s.device.Info().ID, err)
	}
	s.state = Running
	return nil
}

func (s *Session) Stop() error {
	if err := s.transition([]State{Configured, Running}, Stopped); err != nil {
		return err
	}
	if err := s.device.Close(); err != nil {
		s.log.Warn("camera close failed", logger.ErrorField(err))
	}
	return nil
}

// FrameArrived records the size of a delivered frame and reports whether the
// bounds differ from the previous frame.
func (s *Session) FrameArrived(width, height float64) (pool.Rect, bool, error) {
	if s.state != Running {
		return pool.Rect{}, false, fmt.Errorf("%w: frame while %s", ErrInvalidTransition, s.state)
	}
	if !(width > 0) || !(height > 0) || math.IsInf(width, 0) || math.IsInf(height, 0) {
		return pool.Rect{}, false, fmt.Errorf("%w: %vx%v", ErrInvalidFrame, width, height)
	}
	r := pool.NewRect(0, 0, width, height)
	changed := r != s.frame
	s.frame = r
	return r, changed, nil
}

// Switch tears down old (if any) and returns a new running session for d.
func Switch(ctx context.Context, old *Session, d Device) (*Session, error) {
	if old != nil && (old.State() == Configured || old.State() == Running) {
		if err := old.Stop(); err != nil {
			return nil, err
		}
	}
	s := NewSession()
	if err := s.Configure(d); err != nil {
		return nil, err
	}
	if err := s.Start(ctx); err != nil {
		return nil, err
	}
	return s, nil
}
