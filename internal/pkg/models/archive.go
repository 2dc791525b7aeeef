package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LoanArchive is the persisted shape of a loan record. Amounts are decimal
// strings so arbitrary-precision values survive the round trip.
type LoanArchive struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	LoanID           uint64             `bson:"loanId" json:"loanId"`
	GUID             string             `bson:"guid" json:"guid"`
	Borrower         string             `bson:"borrower" json:"borrower"`
	Asset            string             `bson:"asset" json:"asset"`
	CollateralAsset  string             `bson:"collateralAsset,omitempty" json:"collateralAsset,omitempty"`
	Principal        string             `bson:"principal" json:"principal"`
	PrincipalRepaid  string             `bson:"principalRepaid" json:"principalRepaid"`
	CollateralAmount string             `bson:"collateralAmount" json:"collateralAmount"`
	StartTs          int64              `bson:"startTs" json:"startTs"`
	DueTs            int64              `bson:"dueTs" json:"dueTs"`
	Status           LoanStatus         `bson:"status" json:"status"`
	ArchivedAt       time.Time          `bson:"archivedAt" json:"archivedAt"`
}

// ReputationRecord is the persisted reputation state of one borrower.
type ReputationRecord struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Borrower  string             `bson:"borrower"`
	Score     uint64             `bson:"score"`
	Defaulted bool               `bson:"defaulted"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}
