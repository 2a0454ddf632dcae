package session

import (
	"github.com/swimpace/backend/internal/camera"
	"github.com/swimpace/backend/internal/pace"
	"github.com/swimpace/backend/internal/pool"
)

type RaceStatus string

const (
	RaceIdle      RaceStatus = "idle"
	RaceRunning   RaceStatus = "running"
	RaceCompleted RaceStatus = "completed"
)

// RaceState describes the current run for renderers and the API.
type RaceState struct {
	Status      RaceStatus `json:"status"`
	Generation  uint64     `json:"generation"`
	Elapsed     float64    `json:"elapsed"`
	ElapsedText string     `json:"elapsed_text"`
}

// Overlay is one immutable frame of drawing instructions. Outline and PaceBar
// are nil when the corresponding layer is hidden.
type Overlay struct {
	Seq             uint64        `json:"seq"`
	ShowPoolOutline bool          `json:"show_pool_outline"`
	ShowPaceBar     bool          `json:"show_pace_bar"`
	View            pool.Rect     `json:"view"`
	Outline         *pool.Outline `json:"outline,omitempty"`
	PaceBar         *pace.PaceBar `json:"pace_bar,omitempty"`
	Race            RaceState     `json:"race"`
	Camera          camera.State  `json:"camera_state"`
	CameraID        string        `json:"camera_id,omitempty"`
	CameraFrame     *pool.Rect    `json:"camera_frame,omitempty"`
}

// Renderer receives every overlay the session emits. Render is called on the
// session goroutine and must not block.
type Renderer interface {
	Render(Overlay)
}

// Publisher fans settings changes out to other processes and clients.
type Publisher interface {
	PublishSettings(Settings)
}

// Recorder keeps race history. Calls come from the session goroutine, so
// implementations must hand slow work off.
type Recorder interface {
	RaceStarted(generation uint64, cfg pace.Config)
	RaceFinished(generation uint64, elapsed float64, completed bool)
}

type nopRenderer struct{}

func (nopRenderer) Render(Overlay) {}

type nopPublisher struct{}

func (nopPublisher) PublishSettings(Settings) {}

type nopRecorder struct{}

func (nopRecorder) RaceStarted(uint64, pace.Config)    {}
func (nopRecorder) RaceFinished(uint64, float64, bool) {}
