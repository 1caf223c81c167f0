package ledger

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Service provides business logic for the transaction ledger.
type Service struct {
	ledger Repository
}

// NewService creates a new ledger service.
func NewService(r Repository) *Service {
	return &Service{ledger: r}
}

// hashPayload is the structure digested into a transaction hash. Field order
// is fixed so the JSON encoding is deterministic.
type hashPayload struct {
	ActorID      uuid.UUID              `json:"actor_id"`
	ActionType   string                 `json:"action_type"`
	ResourceType string                 `json:"resource_type"`
	ResourceID   string                 `json:"resource_id"`
	Metadata     map[string]interface{} `json:"metadata"`
	PreviousHash string                 `json:"previous_hash"`
	Timestamp    time.Time              `json:"timestamp"`
}

// saltedHash returns the hex SHA-256 of v's JSON encoding concatenated with
// 16 random bytes (hex). The salt makes every digest unique, including for
// identical payloads; it is discarded, so the hash cannot be recomputed
// later. Integrity comes from the previous_hash links, not from re-deriving
// stored hashes.
func saltedHash(v interface{}) (string, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal hash payload: %w", err)
	}
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("read salt: %w", err)
	}
	sum := sha256.Sum256(append(payload, []byte(hex.EncodeToString(salt))...))
	return hex.EncodeToString(sum[:]), nil
}

// Append records one action in the ledger, linked to the current tip. The
// tip read and the insert run as one serialized unit, so concurrent appends
// cannot fork the chain. When the context carries an open transaction the
// entry joins it and commits with the caller's mutation.
func (s *Service) Append(ctx context.Context, actorID uuid.UUID, actionType, resourceType, resourceID string, metadata map[string]interface{}) (*Transaction, error) {
	if actorID == uuid.Nil {
		return nil, fmt.Errorf("actor_id is required")
	}
	if !ValidAction(actionType) {
		return nil, fmt.Errorf("unknown action type %q", actionType)
	}
	if !ValidResource(resourceType) {
		return nil, fmt.Errorf("unknown resource type %q", resourceType)
	}
	if resourceID == "" {
		return nil, fmt.Errorf("resource_id is required")
	}
	if metadata == nil {
		metadata = map[string]interface{}{}
	}

	return s.ledger.AppendLinked(ctx, func(previousHash string, now time.Time) (*Transaction, error) {
		hash, err := saltedHash(hashPayload{
			ActorID:      actorID,
			ActionType:   actionType,
			ResourceType: resourceType,
			ResourceID:   resourceID,
			Metadata:     metadata,
			PreviousHash: previousHash,
			Timestamp:    now,
		})
		if err != nil {
			return nil, err
		}
		return &Transaction{
			TransactionHash: hash,
			ActorID:         actorID,
			ActionType:      actionType,
			ResourceType:    resourceType,
			ResourceID:      resourceID,
			Metadata:        metadata,
			PreviousHash:    previousHash,
			Timestamp:       now,
		}, nil
	})
}

// ResourceHash returns a salted digest of the given data, used to stamp
// prescriptions and claims at creation time. The value is not reproducible;
// callers store it alongside the resource.
func (s *Service) ResourceHash(data interface{}) (string, error) {
	return saltedHash(data)
}

// VerifyIntegrity walks the chain in timestamp order and checks that each
// entry's previous_hash matches its predecessor's transaction_hash. A chain
// with zero or one entries is trivially valid. Stored hashes are never
// recomputed.
func (s *Service) VerifyIntegrity(ctx context.Context) (bool, error) {
	entries, err := s.ledger.ListAsc(ctx)
	if err != nil {
		return false, err
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].PreviousHash != entries[i-1].TransactionHash {
			return false, nil
		}
	}
	return true, nil
}

// ListForActor returns the given actor's entries, newest first.
func (s *Service) ListForActor(ctx context.Context, actorID uuid.UUID, limit, offset int) ([]*Transaction, int, error) {
	return s.ledger.ListByActor(ctx, actorID, limit, offset)
}

// ListForResource returns every entry touching the given resource, oldest
// first, for audit display.
func (s *Service) ListForResource(ctx context.Context, resourceID string) ([]*Transaction, error) {
	return s.ledger.ListByResource(ctx, resourceID)
}

// CountForActor returns how many entries the given actor has produced.
func (s *Service) CountForActor(ctx context.Context, actorID uuid.UUID) (int, error) {
	return s.ledger.CountByActor(ctx, actorID)
}
