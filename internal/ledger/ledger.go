package ledger

import (
	"fmt"
	"sync"
	"time"

	"auction-engine/internal/auctionerrors"
	"auction-engine/internal/models"
	"auction-engine/utils"
)

// Ledger owns all connects balances. Every mutation appends a transaction;
// read-then-write on an account happens under that account's own lock, so
// concurrent debits for one user serialize while different users never
// contend.
type Ledger struct {
	mu       sync.RWMutex
	accounts map[string]*account
}

type account struct {
	mu           sync.Mutex
	balance      int64
	transactions []models.ConnectsTransaction
}

func NewLedger() *Ledger {
	return &Ledger{accounts: make(map[string]*account)}
}

// acct returns the account for userID, creating it with a zero balance.
func (l *Ledger) acct(userID string) *account {
	l.mu.RLock()
	a, ok := l.accounts[userID]
	l.mu.RUnlock()
	if ok {
		return a
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if a, ok = l.accounts[userID]; ok {
		return a
	}
	a = &account{}
	l.accounts[userID] = a
	return a
}

// Credit adds amount to the user's balance and records a transaction.
func (l *Ledger) Credit(userID string, amount int64, reason string) (models.ConnectsTransaction, error) {
	if amount <= 0 {
		return models.ConnectsTransaction{}, fmt.Errorf("ledger: credit %d for user %s: %w", amount, userID, auctionerrors.ErrInvalidAmount)
	}

	a := l.acct(userID)
	a.mu.Lock()
	defer a.mu.Unlock()

	a.balance += amount
	txn := models.ConnectsTransaction{
		TransactionID: utils.GenerateID(),
		UserID:        userID,
		Delta:         amount,
		Reason:        reason,
		CreatedAt:     time.Now().UTC(),
	}
	a.transactions = append(a.transactions, txn)
	return txn, nil
}

// Debit removes amount from the user's balance and records a transaction.
// Fails with ErrInsufficientBalance if the balance would go negative; the
// check and the mutation happen under the same account lock.
func (l *Ledger) Debit(userID string, amount int64, reason string) (models.ConnectsTransaction, error) {
	if amount <= 0 {
		return models.ConnectsTransaction{}, fmt.Errorf("ledger: debit %d for user %s: %w", amount, userID, auctionerrors.ErrInvalidAmount)
	}

	a := l.acct(userID)
	a.mu.Lock()
	defer a.mu.Unlock()

	if amount > a.balance {
		return models.ConnectsTransaction{}, fmt.Errorf("ledger: debit %d for user %s with balance %d: %w", amount, userID, a.balance, auctionerrors.ErrInsufficientBalance)
	}

	a.balance -= amount
	txn := models.ConnectsTransaction{
		TransactionID: utils.GenerateID(),
		UserID:        userID,
		Delta:         -amount,
		Reason:        reason,
		CreatedAt:     time.Now().UTC(),
	}
	a.transactions = append(a.transactions, txn)
	return txn, nil
}

// Balance returns the user's current balance. Unknown users have balance 0.
func (l *Ledger) Balance(userID string) int64 {
	a := l.acct(userID)
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.balance
}

// History returns the user's transactions in append order.
func (l *Ledger) History(userID string) []models.ConnectsTransaction {
	a := l.acct(userID)
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]models.ConnectsTransaction(nil), a.transactions...)
}

// Reconcile verifies the conservation invariant: the sum of a user's
// transaction deltas must equal the live balance.
func (l *Ledger) Reconcile(userID string) error {
	a := l.acct(userID)
	a.mu.Lock()
	defer a.mu.Unlock()

	var sum int64
	for _, txn := range a.transactions {
		sum += txn.Delta
	}
	if sum != a.balance {
		return fmt.Errorf("ledger: user %s balance %d does not match transaction sum %d", userID, a.balance, sum)
	}
	return nil
}
