package repository

// Factory describes access to different domain repositories.
type Factory interface {
	Users() UserRepository
	Orders() OrderRepository
	Accounts() AccountRepository
	Ledger() LedgerRepository
	Commissions() CommissionRepository
	Outbox() OutboxRepository
}
