package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"meridian/kudos_credit_ledger/internal/pkg/consts"
	"meridian/kudos_credit_ledger/internal/pkg/models"
)

// LoanArchiveStore mirrors ledger loan records into Mongo for reporting. The
// in-memory ledger remains the source of truth; the archive is written after
// every lifecycle transition.
type LoanArchiveStore struct {
	repo *MongoRepository[models.LoanArchive]
}

func NewLoanArchiveStore(database *mongo.Database) *LoanArchiveStore {
	return &LoanArchiveStore{
		repo: NewMongoRepository[models.LoanArchive](database.Collection(consts.LoanArchiveCollection)),
	}
}

func (s *LoanArchiveStore) Archive(ctx context.Context, record models.LoanArchive) error {
	return s.repo.Upsert(ctx, bson.M{"loanId": record.LoanID}, record)
}

func (s *LoanArchiveStore) FindByLoanID(ctx context.Context, loanID uint64) (models.LoanArchive, error) {
	return s.repo.Read(ctx, bson.M{"loanId": loanID})
}

func (s *LoanArchiveStore) FindByBorrower(ctx context.Context, borrower string) ([]models.LoanArchive, error) {
	return s.repo.FindAll(ctx, bson.M{"borrower": borrower})
}

func (s *LoanArchiveStore) CountByStatus(ctx context.Context, status models.LoanStatus) (int64, error) {
	return s.repo.CountDocuments(ctx, bson.M{"status": status})
}
