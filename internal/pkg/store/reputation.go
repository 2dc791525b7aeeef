package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"meridian/kudos_credit_ledger/internal/pkg/consts"
	"meridian/kudos_credit_ledger/internal/pkg/models"
)

// ReputationStore persists borrower scores and default badges in Mongo. An
// unknown borrower reads as score zero without a badge.
type ReputationStore struct {
	repo *MongoRepository[models.ReputationRecord]
}

func NewReputationStore(database *mongo.Database) *ReputationStore {
	return &ReputationStore{
		repo: NewMongoRepository[models.ReputationRecord](database.Collection(consts.ReputationCollection)),
	}
}

func (s *ReputationStore) ScoreOf(ctx context.Context, borrower string) (uint64, error) {
	record, err := s.repo.Read(ctx, bson.M{"borrower": borrower})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return record.Score, nil
}

func (s *ReputationStore) SetScore(ctx context.Context, borrower string, score uint64) error {
	return s.repo.Upsert(ctx, bson.M{"borrower": borrower}, bson.M{
		"borrower":  borrower,
		"score":     score,
		"updatedAt": time.Now(),
	})
}

func (s *ReputationStore) HasBadge(ctx context.Context, borrower string) (bool, error) {
	record, err := s.repo.Read(ctx, bson.M{"borrower": borrower})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return record.Defaulted, nil
}

// MintBadge marks the borrower as a defaulter. The badge is permanent; there
// is no corresponding removal.
func (s *ReputationStore) MintBadge(ctx context.Context, borrower string) error {
	return s.repo.Upsert(ctx, bson.M{"borrower": borrower}, bson.M{
		"borrower":  borrower,
		"defaulted": true,
		"updatedAt": time.Now(),
	})
}
