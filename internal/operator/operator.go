package operator

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/swimpace/backend/internal/logger"
	"github.com/swimpace/backend/internal/models"
)

var (
	ErrNotFound           = errors.New("operator account not found")
	ErrInvalidCredentials = errors.New("invalid operator credentials")
)

// DefaultName is the account name used when credentials come from the
// environment instead of the database.
const DefaultName = "operator"

const minPINLength = 4

// Directory looks up operator accounts by name.
type Directory interface {
	Lookup(ctx context.Context, name string) (*models.OperatorAccount, error)
}

// PostgresDirectory reads operator_accounts.
type PostgresDirectory struct {
	db *sqlx.DB
}

func NewPostgresDirectory(db *sqlx.DB) *PostgresDirectory {
	return &PostgresDirectory{db: db}
}

func (d *PostgresDirectory) Lookup(ctx context.Context, name string) (*models.OperatorAccount, error) {
	var acct models.OperatorAccount
	err := d.db.GetContext(ctx, &acct, `SELECT name, pin_hash, created_at, updated_at FROM operator_accounts WHERE name=$1`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup operator: %w", err)
	}
	return &acct, nil
}

// CreateOrUpdate stores a bcrypt hash of pin for name.
func (d *PostgresDirectory) CreateOrUpdate(ctx context.Context, name, pin string) error {
	hash, err := HashPIN(pin)
	if err != nil {
		return err
	}
	_, err = d.db.ExecContext(ctx, `
		INSERT INTO operator_accounts (name, pin_hash, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		ON CONFLICT (name) DO UPDATE SET
			pin_hash = EXCLUDED.pin_hash,
			updated_at = NOW()
	`, name, hash)
	if err != nil {
		return fmt.Errorf("upsert operator: %w", err)
	}
	return nil
}

// StaticDirectory serves a single account whose hash comes from configuration.
type StaticDirectory struct {
	Name    string
	PINHash string
}

func (d StaticDirectory) Lookup(_ context.Context, name string) (*models.OperatorAccount, error) {
	if d.PINHash == "" || name != d.Name {
		return nil, ErrNotFound
	}
	return &models.OperatorAccount{Name: d.Name, PinHash: d.PINHash}, nil
}

func HashPIN(pin string) (string, error) {
	if len(pin) < minPINLength {
		return "", fmt.Errorf("pin must be at least %d characters", minPINLength)
	}
	h, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash pin: %w", err)
	}
	return string(h), nil
}

// VerifyPIN checks pin against a stored bcrypt hash.
func VerifyPIN(hash, pin string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)) == nil
}

// ValidateNameAndPIN returns the account when pin matches. Unknown names and
// wrong PINs both yield ErrInvalidCredentials.
func ValidateNameAndPIN(ctx context.Context, dir Directory, name, pin string) (*models.OperatorAccount, error) {
	log := logger.Named("operator")
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultName
	}

	acct, err := dir.Lookup(ctx, name)
	if errors.Is(err, ErrNotFound) {
		log.Info("login for unknown operator", zap.String("name", name))
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !VerifyPIN(acct.PinHash, pin) {
		log.Info("pin verification failed", zap.String("name", name))
		return nil, ErrInvalidCredentials
	}
	return acct, nil
}

// Directories consults each directory in order and returns the first account
// found.
type Directories []Directory

func (ds Directories) Lookup(ctx context.Context, name string) (*models.OperatorAccount, error) {
	for _, d := range ds {
		acct, err := d.Lookup(ctx, name)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		return acct, err
	}
	return nil, ErrNotFound
}
