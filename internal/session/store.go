package session

import (
	"slices"

	"github.com/swimpace/backend/internal/camera"
	"github.com/swimpace/backend/internal/pace"
)

// Settings is everything an operator can change from the control UI.
type Settings struct {
	Pace            pace.Config `json:"pace"`
	ShowPoolOutline bool        `json:"show_pool_outline"`
	ShowPaceBar     bool        `json:"show_pace_bar"`
	Camera          camera.Info `json:"camera"`
}

type listener[T any] struct {
	id int
	fn func(T)
}

type listeners[T any] struct {
	next    int
	entries []listener[T]
}

func (l *listeners[T]) add(fn func(T)) func() {
	id := l.next
	l.next++
	l.entries = append(l.entries, listener[T]{id: id, fn: fn})
	return func() {
		l.entries = slices.DeleteFunc(l.entries, func(e listener[T]) bool { return e.id == id })
	}
}

func (l *listeners[T]) notify(v T) {
	for _, e := range slices.Clone(l.entries) {
		e.fn(v)
	}
}

// ConfigStore holds the current Settings and notifies subscribers when a value
// actually changes. Notifications run synchronously on the caller's goroutine;
// the store has no locking and belongs to the session loop.
type ConfigStore struct {
	settings Settings

	pace    listeners[pace.Config]
	outline listeners[bool]
	paceBar listeners[bool]
	camera  listeners[camera.Info]
}

func NewConfigStore(initial pace.Config) (*ConfigStore, error) {
	if err := initial.Validate(); err != nil {
		return nil, err
	}
	return &ConfigStore{settings: Settings{Pace: initial}}, nil
}

func (s *ConfigStore) Settings() Settings {
	return s.settings
}

func (s *ConfigStore) Pace() pace.Config {
	return s.settings.Pace
}

// SetPace validates cfg and replaces the pace settings. An invalid cfg leaves
// the previous settings in place.
func (s *ConfigStore) SetPace(cfg pace.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg == s.settings.Pace {
		return nil
	}
	s.settings.Pace = cfg
	s.pace.notify(cfg)
	return nil
}

func (s *ConfigStore) SetShowPoolOutline(show bool) {
	if show == s.settings.ShowPoolOutline {
		return
	}
	s.settings.ShowPoolOutline = show
	s.outline.notify(show)
}

func (s *ConfigStore) SetShowPaceBar(show bool) {
	if show == s.settings.ShowPaceBar {
		return
	}
	s.settings.ShowPaceBar = show
	s.paceBar.notify(show)
}

func (s *ConfigStore) SetCamera(info camera.Info) {
	if info == s.settings.Camera {
		return
	}
	s.settings.Camera = info
	s.camera.notify(info)
}

// The On* methods register a listener and return a function that removes it.

func (s *ConfigStore) OnPaceChanged(fn func(pace.Config)) func() {
	return s.pace.add(fn)
}

func (s *ConfigStore) OnPoolOutlineChanged(fn func(bool)) func() {
	return s.outline.add(fn)
}

func (s *ConfigStore) OnPaceBarVisibilityChanged(fn func(bool)) func() {
	return s.paceBar.add(fn)
}

func (s *ConfigStore) OnCameraChanged(fn func(camera.Info)) func() {
	return s.camera.add(fn)
}
