package sessions

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no live session exists for the user.
var ErrNotFound = errors.New("session not found")

// Repo stores at most one live session per user. Implementations must keep
// Set/Delete atomic per key so a concurrent login and logout resolve to one
// of the two outcomes, never a blend.
type Repo interface {
	// Set creates or overwrites the session for session.UserID.
	Set(ctx context.Context, session Session) error

	// Get returns the live session for userID, or ErrNotFound if there is
	// none. Expired sessions are treated as absent and may be removed as a
	// side effect of the read.
	Get(ctx context.Context, userID string) (Session, error)

	// Delete removes the session for userID. Deleting a missing session is
	// not an error.
	Delete(ctx context.Context, userID string) error

	// Cleanup removes expired sessions so memory stays bounded even when
	// nothing reads them.
	Cleanup(ctx context.Context) error

	// Close stops any background maintenance owned by the repo.
	Close() error
}
