package model

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AccountSeparator separates the levels of a hierarchical account name.
const AccountSeparator = ":"

// Account is one side of a transaction. Rules compare against Name only.
type Account struct {
	Name string
	Path []string
}

// NewAccount builds an account from a colon-separated path such as "Expenses:Food:Groceries".
func NewAccount(path string) Account {
	var parts []string
	for _, p := range strings.Split(path, AccountSeparator) {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	switch len(parts) {
	case 0:
		return Account{}
	case 1:
		return Account{Name: parts[0]}
	}
	return Account{
		Name: parts[len(parts)-1],
		Path: parts[:len(parts)-1],
	}
}

// FullName returns the account name including its parents.
func (a Account) FullName() string {
	if len(a.Path) == 0 {
		return a.Name
	}
	return strings.Join(append(append([]string{}, a.Path...), a.Name), AccountSeparator)
}

// Transaction represents a single imported ledger transaction.
// A positive amount is money coming in, a negative amount money going out.
type Transaction struct {
	Date       time.Time
	ID         string
	Payee      string
	Memo       string
	Hash       string
	Source     string // file the transaction was imported from
	Withdrawal Account
	Deposit    Account
	Amount     decimal.Decimal
}

// TransferAmount is the magnitude of the transaction, the value summed into actual amounts.
func (t Transaction) TransferAmount() decimal.Decimal {
	return t.Amount.Abs()
}

// IsIncome reports whether money flowed in.
func (t Transaction) IsIncome() bool {
	return t.Amount.IsPositive()
}

// FieldText renders the given field for rule matching. Unknown fields render as "".
func (t Transaction) FieldText(field Field) string {
	switch field {
	case FieldAny:
		return t.Memo + "," + t.Payee + "," + t.Withdrawal.Name + "," + t.Deposit.Name
	case FieldMemo:
		return t.Memo
	case FieldPayee:
		return t.Payee
	case FieldWithdrawal:
		return t.Withdrawal.Name
	case FieldDeposit:
		return t.Deposit.Name
	default:
		return ""
	}
}

// GenerateHash creates a unique hash for duplicate detection.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%s:%s:%s:%s:%s",
		t.Date.Format("2006-01-02"),
		t.Amount.StringFixed(2),
		t.Payee,
		t.Memo,
		t.Withdrawal.FullName(),
		t.Deposit.FullName())
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// RepeatHash derives the hash of the nth repeat of an identical row within one
// statement. The first occurrence (n == 0) keeps the base hash.
func RepeatHash(base string, n int) string {
	if n == 0 {
		return base
	}
	hash := sha256.Sum256([]byte(fmt.Sprintf("%s#%d", base, n)))
	return fmt.Sprintf("%x", hash)
}
