package session

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/swimpace/backend/internal/camera"
	"github.com/swimpace/backend/internal/logger"
	"github.com/swimpace/backend/internal/pace"
	"github.com/swimpace/backend/internal/pool"
	"github.com/swimpace/backend/internal/race"
)

var (
	ErrDragInProgress = errors.New("session: drag already in progress")
	ErrNotDragging    = errors.New("session: no active drag")
	ErrNotDragOwner   = errors.New("session: drag owned by another client")
	ErrNoView         = errors.New("session: view bounds not set")
	ErrInvalidBounds  = errors.New("session: invalid view bounds")
	ErrClosed         = errors.New("session: closed")
)

type Options struct {
	FPS       int
	Renderer  Renderer
	Publisher Publisher
	Recorder  Recorder
	ClockOpts []race.Option
}

type tick struct {
	generation uint64
	elapsed    float64
}

type dragState struct {
	active bool
	owner  string
	handle pool.Handle
	last   pool.Point
}

type raceRun struct {
	generation uint64
	running    bool
	completed  bool
	elapsed    float64
}

// Session owns the lane outline, settings, drag state, race state and camera
// session. Every mutation runs on the goroutine executing Run; the public
// methods post a command and wait for it to finish, so Run must be active
// for them to return.
type Session struct {
	cmds    chan func()
	ticks   chan tick
	done    chan struct{}
	started atomic.Bool

	clock     *race.Clock
	renderer  Renderer
	publisher Publisher
	recorder  Recorder
	log       *zap.Logger

	// Loop-owned state.
	ctx           context.Context
	store         *ConfigStore
	edge          *pool.PoolEdge
	view          pool.Rect
	drag          dragState
	run           raceRun
	cam           *camera.Session
	seq           uint64
	dirty         bool
	settingsDirty bool
}

func New(initial pace.Config, opts Options) (*Session, error) {
	store, err := NewConfigStore(initial)
	if err != nil {
		return nil, err
	}

	s := &Session{
		cmds:      make(chan func()),
		ticks:     make(chan tick),
		done:      make(chan struct{}),
		renderer:  opts.Renderer,
		publisher: opts.Publisher,
		recorder:  opts.Recorder,
		log:       logger.Named("session"),
		ctx:       context.Background(),
		store:     store,
		cam:       camera.NewSession(),
	}
	if s.renderer == nil {
		s.renderer = nopRenderer{}
	}
	if s.publisher == nil {
		s.publisher = nopPublisher{}
	}
	if s.recorder == nil {
		s.recorder = nopRecorder{}
	}
	s.clock = race.NewClock(opts.FPS, s.onTick, opts.ClockOpts...)

	changed := func() {
		s.dirty = true
		s.settingsDirty = true
	}
	store.OnPaceChanged(func(pace.Config) { changed() })
	store.OnPoolOutlineChanged(func(bool) { changed() })
	store.OnPaceBarVisibilityChanged(func(bool) { changed() })
	store.OnCameraChanged(func(camera.Info) { changed() })

	return s, nil
}

// Run processes commands and clock ticks until ctx is cancelled. A running
// race clock is stopped on the way out.
func (s *Session) Run(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return errors.New("session: already running")
	}
	defer close(s.done)

	s.ctx = ctx
	s.log.Info("session loop started")

	for {
		select {
		case <-ctx.Done():
			if s.clock.Running() {
				_ = s.clock.Stop()
			}
			s.log.Info("session loop stopped")
			return nil
		case fn := <-s.cmds:
			fn()
			s.flush()
		case t := <-s.ticks:
			s.handleTick(t)
			s.flush()
		}
	}
}

// onTick is the race clock callback. It only hands the tick to the loop.
func (s *Session) onTick(generation uint64, elapsed float64) {
	select {
	case s.ticks <- tick{generation: generation, elapsed: elapsed}:
	case <-s.done:
	}
}

func (s *Session) exec(fn func()) error {
	reply := make(chan struct{})
	select {
	case s.cmds <- func() {
		defer close(reply)
		fn()
	}:
	case <-s.done:
		return ErrClosed
	}
	<-reply
	return nil
}

func (s *Session) do(fn func() error) error {
	var err error
	if e := s.exec(func() { err = fn() }); e != nil {
		return e
	}
	return err
}

func call[T any](s *Session, fn func() (T, error)) (T, error) {
	var (
		out T
		err error
	)
	if e := s.exec(func() { out, err = fn() }); e != nil {
		return out, e
	}
	return out, err
}

func (s *Session) flush() {
	if s.settingsDirty {
		s.settingsDirty = false
		s.publisher.PublishSettings(s.store.Settings())
	}
	if s.dirty {
		s.dirty = false
		s.seq++
		s.renderer.Render(s.overlay())
	}
}

// Pointer input.

// PointerDown starts a drag owned by owner when p hits a handle. A miss
// returns false with no error. Only the owner may move or release the drag.
func (s *Session) PointerDown(owner string, p pool.Point) (pool.Handle, bool, error) {
	var (
		h  pool.Handle
		ok bool
	)
	err := s.do(func() error {
		var err error
		h, ok, err = s.pointerDown(owner, p)
		return err
	})
	return h, ok, err
}

func (s *Session) pointerDown(owner string, p pool.Point) (pool.Handle, bool, error) {
	if s.drag.active {
		return 0, false, ErrDragInProgress
	}
	if s.edge == nil {
		return 0, false, ErrNoView
	}
	h, ok := s.edge.HandleContaining(p)
	if !ok {
		return 0, false, nil
	}
	s.drag = dragState{active: true, owner: owner, handle: h, last: p}
	s.dirty = true
	s.log.Debug("drag started", zap.Stringer("handle", h), zap.String("owner", owner))
	return h, true, nil
}

// PointerDrag moves the active handle by the pointer delta, clamped so the
// endpoint stays inside the view. Degenerate results are rejected and the
// previous geometry kept.
func (s *Session) PointerDrag(owner string, p pool.Point) error {
	return s.do(func() error { return s.pointerDrag(owner, p) })
}

// checkOwner reports whether owner holds the active drag.
func (s *Session) checkOwner(owner string) error {
	if !s.drag.active {
		return ErrNotDragging
	}
	if s.drag.owner != owner {
		return ErrNotDragOwner
	}
	return nil
}

func (s *Session) pointerDrag(owner string, p pool.Point) error {
	if err := s.checkOwner(owner); err != nil {
		return err
	}
	h := s.drag.handle
	offset := s.drag.last.Sub(p)
	if inBounds, adj := s.edge.ClampOffsetToFrame(h, offset, s.view); !inBounds {
		offset = offset.Sub(adj)
	}
	s.drag.last = p

	if err := s.edge.UpdateEdge(h, offset); err != nil {
		s.log.Debug("drag rejected", zap.Stringer("handle", h), logger.ErrorField(err))
		return fmt.Errorf("drag %s: %w", h, err)
	}
	s.dirty = true
	return nil
}

func (s *Session) PointerUp(owner string) error {
	return s.do(func() error {
		if err := s.checkOwner(owner); err != nil {
			return err
		}
		s.log.Debug("drag finished", zap.Stringer("handle", s.drag.handle))
		s.drag = dragState{}
		s.dirty = true
		return nil
	})
}

// ReleaseDrag ends the active drag if owner holds it. It is a no-op
// otherwise, so a disconnecting client can call it unconditionally.
func (s *Session) ReleaseDrag(owner string) error {
	return s.do(func() error {
		if s.checkOwner(owner) != nil {
			return nil
		}
		s.log.Debug("drag released", zap.Stringer("handle", s.drag.handle), zap.String("owner", owner))
		s.drag = dragState{}
		s.dirty = true
		return nil
	})
}

// View and camera.

// validBounds rejects views that the outline inset would collapse.
func validBounds(r pool.Rect) bool {
	return r.Origin.IsFinite() &&
		!math.IsInf(r.Width, 0) && !math.IsInf(r.Height, 0) &&
		r.Width > 2*pool.ViewInset && r.Height > 2*pool.ViewInset
}

// SetViewBounds replaces the view rectangle. A new rectangle rebuilds the
// default outline and makes it visible.
func (s *Session) SetViewBounds(r pool.Rect) error {
	return s.do(func() error { return s.setView(r, false) })
}

// setView installs r as the view. Unless force is set, an unchanged view
// keeps the current outline.
func (s *Session) setView(r pool.Rect, force bool) error {
	if !validBounds(r) {
		return fmt.Errorf("%w: %+v", ErrInvalidBounds, r)
	}
	if !force && s.edge != nil && r == s.view {
		return nil
	}
	s.view = r
	s.edge = pool.NewPoolEdgeInView(r)
	s.drag = dragState{}
	s.store.SetShowPoolOutline(true)
	s.dirty = true
	s.log.Info("view bounds changed", zap.Float64("width", r.Width), zap.Float64("height", r.Height))
	return nil
}

// FrameArrived reports the size of a frame delivered to the renderer. The
// outline is rebuilt on the first frame of a camera session and whenever the
// frame size changes.
func (s *Session) FrameArrived(width, height float64) error {
	return s.do(func() error {
		if s.cam.State() != camera.Running {
			return s.setView(pool.NewRect(0, 0, width, height), false)
		}
		r, changed, err := s.cam.FrameArrived(width, height)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}
		return s.setView(r, true)
	})
}

func (s *Session) ResetOutline() error {
	return s.do(func() error {
		if s.edge == nil {
			return ErrNoView
		}
		s.edge = pool.NewPoolEdgeInView(s.view)
		s.drag = dragState{}
		s.dirty = true
		s.log.Info("outline reset")
		return nil
	})
}

// SelectCamera stops the current camera session and starts a new one for info.
// The outline is rebuilt when the new camera's first frame arrives.
func (s *Session) SelectCamera(info camera.Info) error {
	return s.do(func() error {
		if info.ID == "" {
			return fmt.Errorf("select camera: empty id")
		}
		next, err := camera.Switch(s.ctx, s.cam, camera.NewRemoteDevice(info))
		if err != nil {
			return fmt.Errorf("select camera %s: %w", info.ID, err)
		}
		s.cam = next
		s.store.SetCamera(info)
		s.dirty = true
		return nil
	})
}

// Race control.

// StartRace starts the clock and returns the new run's generation.
func (s *Session) StartRace() (uint64, error) {
	return call(s, func() (uint64, error) {
		gen, err := s.clock.Start()
		if err != nil {
			return 0, err
		}
		s.run = raceRun{generation: gen, running: true}
		s.recorder.RaceStarted(gen, s.store.Pace())
		s.dirty = true
		return gen, nil
	})
}

// StopRace stops the clock, resets elapsed time to zero and hides the pace bar.
func (s *Session) StopRace() error {
	return s.do(func() error {
		if err := s.clock.Stop(); err != nil {
			return err
		}
		if !s.run.completed {
			s.recorder.RaceFinished(s.run.generation, s.run.elapsed, false)
		}
		s.log.Info("race stopped", zap.Uint64("generation", s.run.generation), zap.Float64("elapsed", s.run.elapsed))
		s.run = raceRun{generation: s.run.generation}
		s.store.SetShowPaceBar(false)
		s.dirty = true
		return nil
	})
}

func (s *Session) handleTick(t tick) {
	// Ticks from a stopped generation can still be queued behind a restart.
	if !s.run.running || t.generation != s.clock.Generation() {
		return
	}
	s.run.elapsed = t.elapsed

	cfg := s.store.Pace()
	if t.elapsed > cfg.QualifyingTime {
		if !s.run.completed {
			s.run.completed = true
			s.store.SetShowPaceBar(false)
			s.recorder.RaceFinished(t.generation, t.elapsed, true)
			s.dirty = true
			s.log.Info("qualifying time reached", zap.Uint64("generation", t.generation), zap.Float64("elapsed", t.elapsed))
		}
		return
	}
	if s.store.Settings().ShowPaceBar {
		s.dirty = true
	}
}

// Settings.

func (s *Session) UpdatePace(cfg pace.Config) error {
	return s.do(func() error { return s.store.SetPace(cfg) })
}

func (s *Session) SetShowPoolOutline(show bool) error {
	return s.exec(func() { s.store.SetShowPoolOutline(show) })
}

func (s *Session) SetShowPaceBar(show bool) error {
	return s.exec(func() { s.store.SetShowPaceBar(show) })
}

// ApplySettings adopts settings received from another process. The camera
// selection is local to each process and is left alone.
func (s *Session) ApplySettings(in Settings) error {
	return s.do(func() error {
		if err := s.store.SetPace(in.Pace); err != nil {
			return err
		}
		s.store.SetShowPoolOutline(in.ShowPoolOutline)
		s.store.SetShowPaceBar(in.ShowPaceBar)
		return nil
	})
}

func (s *Session) Settings() (Settings, error) {
	return call(s, func() (Settings, error) { return s.store.Settings(), nil })
}

// Snapshot returns the current overlay without emitting it.
func (s *Session) Snapshot() (Overlay, error) {
	return call(s, func() (Overlay, error) { return s.overlay(), nil })
}

func (s *Session) raceState() RaceState {
	st := RaceState{
		Status:      RaceIdle,
		Generation:  s.run.generation,
		Elapsed:     s.run.elapsed,
		ElapsedText: pace.FormatRaceTime(s.run.elapsed),
	}
	switch {
	case s.run.running && s.run.completed:
		st.Status = RaceCompleted
	case s.run.running:
		st.Status = RaceRunning
	}
	return st
}

func (s *Session) overlay() Overlay {
	settings := s.store.Settings()
	o := Overlay{
		Seq:             s.seq,
		ShowPoolOutline: settings.ShowPoolOutline,
		ShowPaceBar:     settings.ShowPaceBar,
		View:            s.view,
		Race:            s.raceState(),
		Camera:          s.cam.State(),
	}
	if d := s.cam.Device(); d != nil {
		o.CameraID = d.Info().ID
	}
	if f := s.cam.Frame(); f.Width > 0 && f.Height > 0 {
		o.CameraFrame = &f
	}
	if s.edge == nil {
		return o
	}

	if settings.ShowPoolOutline {
		out := s.edge.Outline()
		if s.drag.active {
			h := s.drag.handle
			out.Active = &h
		}
		o.Outline = &out
	}

	if settings.ShowPaceBar {
		bar, err := pace.ComputePaceBar(s.run.elapsed, settings.Pace, s.edge.Corners())
		switch {
		case err != nil:
			s.log.Warn("pace bar skipped", logger.ErrorField(err))
		case bar.Visible:
			o.PaceBar = &bar
		}
	}
	return o
}
