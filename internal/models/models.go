package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// RaceRun is one started pace run and, once stopped or finished, its outcome.
type RaceRun struct {
	ID             uuid.UUID       `db:"id" json:"id"`
	Generation     int64           `db:"generation" json:"generation"`
	RaceDistance   int             `db:"race_distance" json:"race_distance"`
	QualifyingTime float64         `db:"qualifying_time" json:"qualifying_time"`
	PoolLength     float64         `db:"pool_length" json:"pool_length"`
	Units          string          `db:"units" json:"units"`
	StartedAt      time.Time       `db:"started_at" json:"started_at"`
	StoppedAt      sql.NullTime    `db:"stopped_at" json:"stopped_at,omitempty"`
	ElapsedSeconds sql.NullFloat64 `db:"elapsed_seconds" json:"elapsed_seconds,omitempty"`
	Completed      bool            `db:"completed" json:"completed"`
}

// OperatorAccount holds the credentials allowed to edit the overlay.
type OperatorAccount struct {
	Name      string    `db:"name" json:"name"`
	PinHash   string    `db:"pin_hash" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
