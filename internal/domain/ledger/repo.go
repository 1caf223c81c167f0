package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// BuildFunc constructs the next chain entry given the current tip hash and
// the append time. The repository calls it while holding the append lock, so
// the hash it computes over previousHash cannot be invalidated by a
// concurrent writer.
type BuildFunc func(previousHash string, now time.Time) (*Transaction, error)

// Repository defines storage operations for the transaction ledger. There is
// no update or delete: the chain only grows.
type Repository interface {
	// AppendLinked reads the current tip and inserts the entry returned by
	// build, as one atomic unit. Concurrent calls serialize.
	AppendLinked(ctx context.Context, build BuildFunc) (*Transaction, error)
	ListAsc(ctx context.Context) ([]*Transaction, error)
	ListByActor(ctx context.Context, actorID uuid.UUID, limit, offset int) ([]*Transaction, int, error)
	ListByResource(ctx context.Context, resourceID string) ([]*Transaction, error)
	CountByActor(ctx context.Context, actorID uuid.UUID) (int, error)
}
