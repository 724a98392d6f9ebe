package session

//go:generate mockgen -package mocks -destination mocks/mock_session.go github.com/ethpandaops/raid-crawler/internal/session Session

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	// ScarletTitleID is the title id reported by Pokemon Scarlet.
	ScarletTitleID = "0100A3D008C5C000"
	// VioletTitleID is the title id reported by Pokemon Violet.
	VioletTitleID = "01008F6008C5E000"
)

// ErrNotConnected is returned when a command is issued without a connection.
var ErrNotConnected = errors.New("session not connected")

// ProgressFunc receives percentage updates while a long command runs.
type ProgressFunc func(percent int)

// Session is the remote debug link to the console. Implementations allow a
// single outstanding request; callers must not issue calls concurrently.
type Session interface {
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	Connected() bool

	TitleID(ctx context.Context) (string, error)
	StoryProgress(ctx context.Context) (int, error)

	ReadAbsolute(ctx context.Context, address uint64, length int) ([]byte, error)
	ResolvePointer(ctx context.Context, offsets []int64) (uint64, error)
	ReadSaveBlock(ctx context.Context, key uint32, size int) ([]byte, error)

	AdvanceDate(ctx context.Context, skips int, progress ProgressFunc) error
	SaveGame(ctx context.Context) error
	CloseGame(ctx context.Context) error
	StartGame(ctx context.Context) error
	CurrentTime(ctx context.Context) (time.Time, error)
	Screenshot(ctx context.Context) ([]byte, error)
}

// TransportError wraps a failed remote call. The connection is presumed lost.
type TransportError struct {
	Op  string
	Err error
}

// Error implements error.
func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Wrap marks err as a transport failure of op. Cancellation passes through
// unchanged so callers can tell a manual stop from a dropped link.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var te *TransportError
	if errors.As(err, &te) {
		return err
	}

	return &TransportError{Op: op, Err: err}
}

// IsTransport reports whether err came from the remote link.
func IsTransport(err error) bool {
	var te *TransportError

	return errors.As(err, &te)
}

// GameName maps a title id to the game name, or "" when unsupported.
func GameName(titleID string) string {
	switch titleID {
	case ScarletTitleID:
		return "Scarlet"
	case VioletTitleID:
		return "Violet"
	default:
		return ""
	}
}
