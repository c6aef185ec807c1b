package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/go-ddd-without-cqrs/internal/domain/entity"
)

var (
	ErrClubNotFound      = errors.New("club not found")
	ErrClubAlreadyExists = errors.New("club already exists")
	// ErrNoPriorState is returned by Save for a club that was never persisted.
	ErrNoPriorState = errors.New("club has no persisted prior state")
)

// ClubRepository maps the Club aggregate to and from storage.
type ClubRepository interface {
	// Get returns ErrClubNotFound when no club has the id.
	Get(ctx context.Context, id entity.ClubID) (*entity.Club, error)
	// Save upserts the club row and reassigns the roster as it was persisted
	// before the call. The club must already exist.
	Save(ctx context.Context, club *entity.Club) error
	// Create persists a club that does not exist yet, with its current roster.
	Create(ctx context.Context, club *entity.Club) error
}
