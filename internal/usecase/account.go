package usecase

import (
	"context"

	"github.com/polkiloo/cryptopay/internal/domain/model"
	"github.com/polkiloo/cryptopay/internal/domain/repository"
)

// AccountUseCase exposes balances and their history.
type AccountUseCase struct {
	accounts repository.AccountRepository
	ledger   repository.LedgerRepository
}

// NewAccountUseCase constructs AccountUseCase.
func NewAccountUseCase(accounts repository.AccountRepository, ledger repository.LedgerRepository) *AccountUseCase {
	return &AccountUseCase{accounts: accounts, ledger: ledger}
}

// Account returns current balances of userID.
func (u *AccountUseCase) Account(ctx context.Context, userID int64) (*model.Account, error) {
	return u.accounts.Account(ctx, userID)
}

// Ledger returns ledger entries of userID, newest first.
func (u *AccountUseCase) Ledger(ctx context.Context, userID int64) ([]model.LedgerEntry, error) {
	return u.ledger.ListByUser(ctx, userID)
}
