package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ruralpay/investflow/internal/models"
)

// Ledger is the payment collaborator: debits and credits a wallet and returns
// the new balance. A debit larger than the balance fails without side effects.
type Ledger interface {
	Debit(ctx context.Context, accountID, reference string, amount models.Money) (models.Money, error)
	Credit(ctx context.Context, accountID, reference string, amount models.Money) (models.Money, error)
}

// SessionLedger keeps the balance in the session store itself.
type SessionLedger struct {
	store *SessionStore
}

func NewSessionLedger(store *SessionStore) *SessionLedger {
	return &SessionLedger{store: store}
}

func (l *SessionLedger) Debit(_ context.Context, _, _ string, amount models.Money) (models.Money, error) {
	return l.store.Debit(amount)
}

func (l *SessionLedger) Credit(_ context.Context, _, _ string, amount models.Money) (models.Money, error) {
	return l.store.Credit(amount)
}

// WalletAccountID is the ledger account holding one session's wallet.
func WalletAccountID(sessionID string) string {
	return "wallet-" + sessionID
}

// WalletLedger pins every call of an account-keyed ledger to one wallet
// account, whatever account the caller names.
type WalletLedger struct {
	ledger  Ledger
	account string
}

func NewWalletLedger(ledger Ledger, account string) *WalletLedger {
	return &WalletLedger{ledger: ledger, account: account}
}

func (l *WalletLedger) Account() string { return l.account }

func (l *WalletLedger) Debit(ctx context.Context, _, reference string, amount models.Money) (models.Money, error) {
	return l.ledger.Debit(ctx, l.account, reference, amount)
}

func (l *WalletLedger) Credit(ctx context.Context, _, reference string, amount models.Money) (models.Money, error) {
	return l.ledger.Credit(ctx, l.account, reference, amount)
}

// DoubleLedgerService moves money between wallet accounts and the platform's
// custody and cashback accounts in Postgres.
type DoubleLedgerService struct {
	db              *sql.DB
	custodyAccount  string
	cashbackAccount string
}

func NewDoubleLedgerService(db *sql.DB) *DoubleLedgerService {
	custodyAccount := "0000000001"
	if envAccount := os.Getenv("INVESTMENT_CUSTODY_ACCOUNT"); envAccount != "" {
		custodyAccount = envAccount
	}
	cashbackAccount := "0000000002"
	if envAccount := os.Getenv("CASHBACK_FUNDING_ACCOUNT"); envAccount != "" {
		cashbackAccount = envAccount
	}
	return &DoubleLedgerService{
		db:              db,
		custodyAccount:  custodyAccount,
		cashbackAccount: cashbackAccount,
	}
}

func (s *DoubleLedgerService) CustodyAccount() string { return s.custodyAccount }

func (s *DoubleLedgerService) CashbackAccount() string { return s.cashbackAccount }

// Debit moves amount from the wallet into the investment custody account.
func (s *DoubleLedgerService) Debit(ctx context.Context, accountID, reference string, amount models.Money) (models.Money, error) {
	from, _, err := s.Transfer(ctx, accountID, s.custodyAccount, reference, amount)
	return from, err
}

// Credit pays amount into the wallet from the cashback funding account.
func (s *DoubleLedgerService) Credit(ctx context.Context, accountID, reference string, amount models.Money) (models.Money, error) {
	_, to, err := s.Transfer(ctx, s.cashbackAccount, accountID, reference, amount)
	return to, err
}

// Transfer returns the resulting balances of the source and destination accounts.
func (s *DoubleLedgerService) Transfer(ctx context.Context, fromAccountID, toAccountID, reference string, amount models.Money) (models.Money, models.Money, error) {
	if amount <= 0 {
		return 0, 0, ErrInvalidAmount
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, err
	}
	defer tx.Rollback()

	if err := s.appendPaymentState(ctx, tx, reference, "PENDING"); err != nil {
		return 0, 0, err
	}

	from, to, err := s.TransferTx(ctx, tx, fromAccountID, toAccountID, reference, amount)
	if err != nil {
		return 0, 0, err
	}

	if err := s.appendPaymentState(ctx, tx, reference, "SUCCESS"); err != nil {
		return 0, 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, err
	}
	return from, to, nil
}

func (s *DoubleLedgerService) TransferTx(ctx context.Context, tx *sql.Tx, fromAccountID, toAccountID, reference string, amount models.Money) (models.Money, models.Money, error) {
	// Lock accounts in consistent order to prevent deadlocks
	firstLock, secondLock := fromAccountID, toAccountID
	if fromAccountID > toAccountID {
		firstLock, secondLock = toAccountID, fromAccountID
	}

	fromAccount, err := s.lockAccount(ctx, tx, firstLock)
	if err != nil {
		return 0, 0, err
	}

	toAccount, err := s.lockAccount(ctx, tx, secondLock)
	if err != nil {
		return 0, 0, err
	}

	if firstLock != fromAccountID {
		fromAccount, toAccount = toAccount, fromAccount
	}

	if fromAccount.Balance < amount {
		return 0, 0, ErrInsufficientBalance
	}

	fromBalance := fromAccount.Balance - amount
	toBalance := toAccount.Balance + amount

	if err := s.createLedgerEntry(ctx, tx, reference, fromAccount.ID, -amount, "DEBIT", fromBalance); err != nil {
		return 0, 0, err
	}

	if err := s.createLedgerEntry(ctx, tx, reference, toAccount.ID, amount, "CREDIT", toBalance); err != nil {
		return 0, 0, err
	}

	if err := s.updateAccountBalance(ctx, tx, fromAccount.ID, fromBalance, fromAccount.Version); err != nil {
		return 0, 0, err
	}

	if err := s.updateAccountBalance(ctx, tx, toAccount.ID, toBalance, toAccount.Version); err != nil {
		return 0, 0, err
	}

	return fromBalance, toBalance, nil
}

func (s *DoubleLedgerService) appendPaymentState(ctx context.Context, tx *sql.Tx, reference, state string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO payment_states (transaction_id, state, created_at)
		VALUES ($1, $2, $3)`,
		reference, state, time.Now())
	return err
}

func (s *DoubleLedgerService) lockAccount(ctx context.Context, tx *sql.Tx, accountID string) (*models.Account, error) {
	var account models.Account
	err := tx.QueryRowContext(ctx, `
		SELECT id, balance, version, updated_at
		FROM accounts
		WHERE id = $1
		FOR UPDATE`, accountID).Scan(&account.ID, &account.Balance, &account.Version, &account.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("account %s not found", accountID)
	}
	return &account, err
}

func (s *DoubleLedgerService) createLedgerEntry(ctx context.Context, tx *sql.Tx, reference, accountID string, amount models.Money, entryType string, balance models.Money) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO ledger_entries (transaction_id, account_id, amount, entry_type, balance, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		reference, accountID, int64(amount), entryType, int64(balance), time.Now())
	return err
}

func (s *DoubleLedgerService) updateAccountBalance(ctx context.Context, tx *sql.Tx, accountID string, newBalance models.Money, version int) error {
	result, err := tx.ExecContext(ctx, `
		UPDATE accounts
		SET balance = $1, version = version + 1, updated_at = $2
		WHERE id = $3 AND version = $4`,
		int64(newBalance), time.Now(), accountID, version)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return fmt.Errorf("optimistic lock failed for account %s", accountID)
	}

	return nil
}

// OpenWallet creates the wallet account with an opening balance unless it
// already exists, and returns its current balance.
func (s *DoubleLedgerService) OpenWallet(ctx context.Context, accountID string, opening models.Money) (models.Money, error) {
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (id, balance, version, updated_at)
		VALUES ($1, $2, 0, $3)
		ON CONFLICT (id) DO NOTHING`,
		accountID, int64(opening), time.Now()); err != nil {
		return 0, fmt.Errorf("open wallet %s: %w", accountID, err)
	}

	var balance int64
	if err := s.db.QueryRowContext(ctx, `SELECT balance FROM accounts WHERE id = $1`, accountID).Scan(&balance); err != nil {
		return 0, fmt.Errorf("read wallet %s: %w", accountID, err)
	}
	return models.Money(balance), nil
}
