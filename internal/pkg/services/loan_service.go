package services

import (
	"context"
	"encoding/json"
	"math/big"

	"meridian/kudos_credit_ledger/internal/pkg/common"
	"meridian/kudos_credit_ledger/internal/pkg/logger"
	"meridian/kudos_credit_ledger/internal/pkg/models"
	"meridian/kudos_credit_ledger/internal/pkg/utils/worker"
)

// LoanService orchestrates ledger operations with the archive and the event
// stream. The ledger commit is authoritative; archive and publish failures are
// logged and never roll a committed operation back.
type LoanService struct {
	ledger     LedgerOperations
	archive    LoanArchiver
	publisher  EventPublisher
	workerPool *worker.WorkerPool
}

func NewLoanService(ledger LedgerOperations, archive LoanArchiver, publisher EventPublisher, workerPool *worker.WorkerPool) *LoanService {
	return &LoanService{
		ledger:     ledger,
		archive:    archive,
		publisher:  publisher,
		workerPool: workerPool,
	}
}

func (s *LoanService) OpenLoan(ctx context.Context, borrower string, req *models.BorrowRequest) (*models.Loan, error) {
	loanID, err := s.ledger.Open(ctx, borrower, req)
	if err != nil {
		return nil, err
	}

	loan, err := s.ledger.GetLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	s.archiveLoan(ctx, loan)
	s.publishEvent(ctx, common.SerializeLoanEvent(models.LoanOpenedEvent, loan, nil))
	return loan, nil
}

func (s *LoanService) RepayLoan(ctx context.Context, caller string, loanID uint64, amount *big.Int) (*models.RepayReceipt, error) {
	receipt, err := s.ledger.Repay(ctx, caller, loanID, amount)
	if err != nil {
		return nil, err
	}

	loan, err := s.ledger.GetLoan(ctx, loanID)
	if err != nil {
		return receipt, err
	}

	s.archiveLoan(ctx, loan)
	s.publishEvent(ctx, common.SerializeLoanEvent(models.LoanRepaidEvent, loan, receipt))
	return receipt, nil
}

func (s *LoanService) DefaultLoan(ctx context.Context, caller string, loanID uint64) error {
	if err := s.ledger.MarkDefault(ctx, caller, loanID); err != nil {
		return err
	}

	loan, err := s.ledger.GetLoan(ctx, loanID)
	if err != nil {
		return err
	}

	s.archiveLoan(ctx, loan)
	s.publishEvent(ctx, common.SerializeLoanEvent(models.LoanDefaultedEvent, loan, nil))
	return nil
}

// LoanStatus returns the loan record plus its live debt.
func (s *LoanService) LoanStatus(ctx context.Context, loanID uint64) (*models.Loan, *big.Int, error) {
	loan, err := s.ledger.GetLoan(ctx, loanID)
	if err != nil {
		return nil, nil, err
	}
	return loan, s.ledger.GetDebt(ctx, loanID), nil
}

func (s *LoanService) ActiveLoanOf(borrower string) (uint64, bool) {
	return s.ledger.ActiveLoanOf(borrower)
}

func (s *LoanService) LockedCollateral(asset string) *big.Int {
	return s.ledger.LockedCollateral(asset)
}

// BorrowerHistory reads archived loans, including closed ones.
func (s *LoanService) BorrowerHistory(ctx context.Context, borrower string) ([]models.LoanArchive, error) {
	if s.archive == nil {
		return nil, nil
	}
	return s.archive.FindByBorrower(ctx, borrower)
}

func (s *LoanService) archiveLoan(ctx context.Context, loan *models.Loan) {
	if s.archive == nil {
		return
	}
	if err := s.archive.Archive(ctx, common.SerializeLoanArchive(loan)); err != nil {
		logger.Error(ctx, "failed to archive loan %d: %v", loan.ID, err)
	}
}

// publishEvent marshals and ships the event, on the worker pool when one is
// configured. Delivery uses a fresh context so it outlives the request.
func (s *LoanService) publishEvent(ctx context.Context, event models.LoanEvent) {
	if s.publisher == nil {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		logger.Error(ctx, "failed to marshal %s event for loan %d: %v", event.Type, event.LoanID, err)
		return
	}

	send := func() {
		if err := s.publisher.Publish(context.Background(), event.GUID, payload); err != nil {
			logger.Error("failed to publish %s event for loan %d: %v", event.Type, event.LoanID, err)
		}
	}

	if s.workerPool != nil {
		s.workerPool.Submit(send)
		return
	}
	send()
}
