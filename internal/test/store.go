package test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/cryptopay/internal/domain/errors"
	"github.com/polkiloo/cryptopay/internal/domain/model"
	"github.com/polkiloo/cryptopay/internal/domain/repository"
)

// MemoryStore is an in-memory implementation of every repository with the
// same atomicity guarantees as the PostgreSQL storage.
type MemoryStore struct {
	mu sync.Mutex

	users       map[int64]*model.User
	orders      map[string]*model.Order
	ledger      []model.LedgerEntry
	commissions map[string]model.Commission
	outbox      []model.OutboxEvent
	nextUser    int64

	// Failure injection hooks consulted before the matching operation.
	CreateOrderErr error
	TransitionErr  error
	ApplyErr       error
	CreditErr      func(*model.Commission) error
	ExpireErr      error

	TransitionCalls int
	ApplyCalls      int
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:       make(map[int64]*model.User),
		orders:      make(map[string]*model.Order),
		commissions: make(map[string]model.Commission),
		nextUser:    1,
	}
}

func (s *MemoryStore) Users() repository.UserRepository             { return memUsers{s} }
func (s *MemoryStore) Orders() repository.OrderRepository           { return memOrders{s} }
func (s *MemoryStore) Accounts() repository.AccountRepository       { return memAccounts{s} }
func (s *MemoryStore) Ledger() repository.LedgerRepository          { return memLedger{s} }
func (s *MemoryStore) Commissions() repository.CommissionRepository { return memCommissions{s} }
func (s *MemoryStore) Outbox() repository.OutboxRepository          { return memOutbox{s} }

var _ repository.Factory = (*MemoryStore)(nil)

// AddUser inserts a user directly and returns it.
func (s *MemoryStore) AddUser(login string, referrerID *int64) *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &model.User{ID: s.nextUser, Login: login, PasswordHash: "hash:secret", ReferrerID: referrerID, CreatedAt: time.Now()}
	s.nextUser++
	s.users[u.ID] = u
	copied := *u
	return &copied
}

// AddOrder inserts an order directly.
func (s *MemoryStore) AddOrder(order model.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o := order
	s.orders[o.OrderID] = &o
}

// User returns a copy of the stored user.
func (s *MemoryStore) User(id int64) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.users[id]
}

// Order returns a copy of the stored order and whether it exists.
func (s *MemoryStore) Order(id string) (model.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return model.Order{}, false
	}
	return *o, true
}

// LedgerEntries returns all ledger entries in insertion order.
func (s *MemoryStore) LedgerEntries() []model.LedgerEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.LedgerEntry(nil), s.ledger...)
}

// Events returns queued outbox events.
func (s *MemoryStore) Events() []model.OutboxEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.OutboxEvent(nil), s.outbox...)
}

// CommissionRecords returns all credited commissions.
func (s *MemoryStore) CommissionRecords() []model.Commission {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Commission, 0, len(s.commissions))
	for _, c := range s.commissions {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Level < out[j].Level })
	return out
}

func (s *MemoryStore) hasPurchaseEntry(orderID string) bool {
	for _, e := range s.ledger {
		if e.OrderID == orderID && (e.Type == model.LedgerTypePointsPurchase || e.Type == model.LedgerTypeVIPPurchase) {
			return true
		}
	}
	return false
}

func (s *MemoryStore) appendLedger(entry *model.LedgerEntry) error {
	for _, e := range s.ledger {
		if e.OrderID == entry.OrderID && e.Type == entry.Type && e.UserID == entry.UserID {
			return domainErrors.ErrAlreadyFulfilled
		}
	}
	entry.ID = int64(len(s.ledger) + 1)
	s.ledger = append(s.ledger, *entry)
	return nil
}

func (s *MemoryStore) appendEvent(order *model.Order) {
	s.outbox = append(s.outbox, model.OutboxEvent{
		ID:        int64(len(s.outbox) + 1),
		EventType: model.EventOrderFulfilled,
		Payload:   []byte(fmt.Sprintf(`{"order_id":%q}`, order.OrderID)),
		CreatedAt: time.Now(),
	})
}

type memUsers struct{ s *MemoryStore }

func (r memUsers) Create(_ context.Context, login, passwordHash string, referrerID *int64) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Login == login {
			return nil, domainErrors.ErrAlreadyExists
		}
	}
	if referrerID != nil {
		if _, ok := r.s.users[*referrerID]; !ok {
			return nil, domainErrors.ErrNotFound
		}
	}
	u := &model.User{ID: r.s.nextUser, Login: login, PasswordHash: passwordHash, ReferrerID: referrerID, CreatedAt: time.Now()}
	r.s.nextUser++
	r.s.users[u.ID] = u
	copied := *u
	return &copied, nil
}

func (r memUsers) GetByLogin(_ context.Context, login string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Login == login {
			copied := *u
			return &copied, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

func (r memUsers) GetByID(_ context.Context, id int64) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, domainErrors.ErrNotFound
}

type memOrders struct{ s *MemoryStore }

func (r memOrders) Create(_ context.Context, order *model.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.CreateOrderErr != nil {
		return r.s.CreateOrderErr
	}
	if _, ok := r.s.orders[order.OrderID]; ok {
		return domainErrors.ErrAlreadyExists
	}
	order.CreatedAt = time.Now()
	copied := *order
	r.s.orders[order.OrderID] = &copied
	return nil
}

func (r memOrders) GetByOrderID(_ context.Context, orderID string) (*model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if o, ok := r.s.orders[orderID]; ok {
		copied := *o
		return &copied, nil
	}
	return nil, domainErrors.ErrNotFound
}

func (r memOrders) ListByUser(_ context.Context, userID int64) ([]model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Order
	for _, o := range r.s.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r memOrders) TransitionToPaid(_ context.Context, orderID, txHash string, blockNumber int64, now time.Time) (bool, *model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.TransitionCalls++
	if r.s.TransitionErr != nil {
		return false, nil, r.s.TransitionErr
	}
	o, ok := r.s.orders[orderID]
	if !ok {
		return false, nil, domainErrors.ErrNotFound
	}
	if o.Status != model.OrderStatusPending {
		copied := *o
		return false, &copied, nil
	}
	paidAt := now
	o.Status = model.OrderStatusPaid
	o.TxHash = txHash
	o.BlockNumber = blockNumber
	o.PaidAt = &paidAt
	copied := *o
	return true, &copied, nil
}

func (r memOrders) ExpirePending(_ context.Context, now time.Time) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.ExpireErr != nil {
		return nil, r.s.ExpireErr
	}
	var ids []string
	for id, o := range r.s.orders {
		if o.Status == model.OrderStatusPending && o.ExpireAt.Before(now) {
			o.Status = model.OrderStatusExpired
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r memOrders) ListPaidUnfulfilled(_ context.Context, limit int) ([]model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Order
	for _, o := range r.s.orders {
		if o.Status == model.OrderStatusPaid && !r.s.hasPurchaseEntry(o.OrderID) {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderID < out[j].OrderID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memAccounts struct{ s *MemoryStore }

func (r memAccounts) ApplyPoints(_ context.Context, order *model.Order, now time.Time) (*model.LedgerEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.ApplyCalls++
	if r.s.ApplyErr != nil {
		return nil, r.s.ApplyErr
	}
	u, ok := r.s.users[order.UserID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	entry := &model.LedgerEntry{
		UserID:        u.ID,
		Type:          model.LedgerTypePointsPurchase,
		Currency:      model.LedgerUnitPoints,
		Amount:        decimal.NewFromInt(order.Points),
		BalanceBefore: decimal.NewFromInt(u.Points),
		BalanceAfter:  decimal.NewFromInt(u.Points + order.Points),
		OrderID:       order.OrderID,
		CreatedAt:     now,
	}
	if err := r.s.appendLedger(entry); err != nil {
		return nil, err
	}
	u.Points += order.Points
	r.s.appendEvent(order)
	return entry, nil
}

func (r memAccounts) ExtendVIP(_ context.Context, order *model.Order, now time.Time) (*model.LedgerEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.ApplyCalls++
	if r.s.ApplyErr != nil {
		return nil, r.s.ApplyErr
	}
	u, ok := r.s.users[order.UserID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	next := model.ExtendVIP(u.VIPExpireAt, now, order.VIPDays)
	entry := &model.LedgerEntry{
		UserID:      u.ID,
		Type:        model.LedgerTypeVIPPurchase,
		Currency:    model.LedgerUnitVIP,
		OrderID:     order.OrderID,
		Description: order.VIPPackageName,
		CreatedAt:   now,
	}
	if err := r.s.appendLedger(entry); err != nil {
		return nil, err
	}
	u.VIPExpireAt = &next
	r.s.appendEvent(order)
	return entry, nil
}

func (r memAccounts) Account(_ context.Context, userID int64) (*model.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[userID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return &model.Account{
		UserID:            u.ID,
		Login:             u.Login,
		Points:            u.Points,
		VIPExpireAt:       u.VIPExpireAt,
		CommissionBalance: u.CommissionBalance,
	}, nil
}

type memLedger struct{ s *MemoryStore }

func (r memLedger) ListByUser(_ context.Context, userID int64) ([]model.LedgerEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.LedgerEntry
	for i := len(r.s.ledger) - 1; i >= 0; i-- {
		if r.s.ledger[i].UserID == userID {
			out = append(out, r.s.ledger[i])
		}
	}
	return out, nil
}

func (r memLedger) ListByOrder(_ context.Context, orderID string) ([]model.LedgerEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.LedgerEntry
	for _, e := range r.s.ledger {
		if e.OrderID == orderID {
			out = append(out, e)
		}
	}
	return out, nil
}

type memCommissions struct{ s *MemoryStore }

func (r memCommissions) ReferrerChain(_ context.Context, userID int64, depth int) ([]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	seen := map[int64]bool{userID: true}
	var chain []int64
	current := r.s.users[userID]
	for len(chain) < depth && current != nil && current.ReferrerID != nil {
		next := *current.ReferrerID
		if seen[next] {
			break
		}
		seen[next] = true
		chain = append(chain, next)
		current = r.s.users[next]
	}
	return chain, nil
}

func (r memCommissions) Credit(_ context.Context, c *model.Commission) (*model.LedgerEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.CreditErr != nil {
		if err := r.s.CreditErr(c); err != nil {
			return nil, err
		}
	}
	key := fmt.Sprintf("%s/%d", c.OrderID, c.Level)
	if _, ok := r.s.commissions[key]; ok {
		return nil, domainErrors.ErrAlreadyExists
	}
	u, ok := r.s.users[c.ReferrerID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	entry := &model.LedgerEntry{
		UserID:        u.ID,
		Type:          model.LedgerTypeReferralCommission,
		Currency:      c.Currency,
		Amount:        c.Amount,
		BalanceBefore: u.CommissionBalance,
		BalanceAfter:  u.CommissionBalance.Add(c.Amount),
		OrderID:       c.OrderID,
	}
	if err := r.s.appendLedger(entry); err != nil {
		return nil, domainErrors.ErrAlreadyExists
	}
	u.CommissionBalance = entry.BalanceAfter
	r.s.commissions[key] = *c
	return entry, nil
}

type memOutbox struct{ s *MemoryStore }

func (r memOutbox) Lock(_ context.Context, limit int, _ time.Duration) ([]model.OutboxEvent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if limit > len(r.s.outbox) {
		limit = len(r.s.outbox)
	}
	return append([]model.OutboxEvent(nil), r.s.outbox[:limit]...), nil
}

func (r memOutbox) MarkSent(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, e := range r.s.outbox {
		if e.ID == id {
			r.s.outbox = append(r.s.outbox[:i], r.s.outbox[i+1:]...)
			return nil
		}
	}
	return domainErrors.ErrNotFound
}

func (r memOutbox) MarkFailed(_ context.Context, id int64, _ time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.outbox {
		if r.s.outbox[i].ID == id {
			r.s.outbox[i].Attempts++
			return nil
		}
	}
	return domainErrors.ErrNotFound
}
