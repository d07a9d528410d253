// Package financial reads the backend's financial records on behalf of the
// signed-in user and prepares them for the dashboard pages.
package financial

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// Date is a calendar day as exchanged with the backend (YYYY-MM-DD).
type Date struct {
	time.Time
}

// NewDate builds the Date for a calendar day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(raw string) (Date, error) {
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return Date{}, fmt.Errorf("financial: parse date %q: %w", raw, err)
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler. Full timestamps are accepted and
// truncated to their day.
func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*d = Date{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		*d = Date{}
		return nil
	}
	if len(raw) > len(dateLayout) {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return fmt.Errorf("financial: parse date %q: %w", raw, err)
		}
		*d = NewDate(t.Date())
		return nil
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DaysUntil returns whole days from today to d; negative when d has passed.
func (d Date) DaysUntil(today Date) int {
	return int(d.Sub(today.Time).Hours() / 24)
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

// Today returns the calendar day of now in its location.
func Today(now time.Time) Date {
	return NewDate(now.Date())
}

// Tone is the visual class of a status badge.
type Tone string

const (
	ToneInfo    Tone = "info"
	ToneSuccess Tone = "success"
	ToneWarning Tone = "warning"
	ToneDanger  Tone = "danger"
	ToneMuted   Tone = "muted"
)

const unknownLabel = "نامشخص"

// DiscrepancyStatus is the review state of a discrepancy.
type DiscrepancyStatus string

const (
	DiscrepancyPending  DiscrepancyStatus = "pending"
	DiscrepancyResolved DiscrepancyStatus = "resolved"
	DiscrepancyRejected DiscrepancyStatus = "rejected"
)

// DiscrepancyStatuses lists the filterable discrepancy states.
var DiscrepancyStatuses = []DiscrepancyStatus{DiscrepancyPending, DiscrepancyResolved, DiscrepancyRejected}

func (s DiscrepancyStatus) Label() string {
	switch s {
	case DiscrepancyPending:
		return "در انتظار بررسی"
	case DiscrepancyResolved:
		return "حل شده"
	case DiscrepancyRejected:
		return "رد شده"
	default:
		return unknownLabel
	}
}

func (s DiscrepancyStatus) Tone() Tone {
	switch s {
	case DiscrepancyPending:
		return ToneWarning
	case DiscrepancyResolved:
		return ToneSuccess
	case DiscrepancyRejected:
		return ToneDanger
	default:
		return ToneMuted
	}
}

// FollowUpStatus is the progress of a follow-up.
type FollowUpStatus string

const (
	FollowUpPending    FollowUpStatus = "pending"
	FollowUpInProgress FollowUpStatus = "in_progress"
	FollowUpCompleted  FollowUpStatus = "completed"
)

// FollowUpStatuses lists the filterable follow-up states.
var FollowUpStatuses = []FollowUpStatus{FollowUpPending, FollowUpInProgress, FollowUpCompleted}

func (s FollowUpStatus) Label() string {
	switch s {
	case FollowUpPending:
		return "در انتظار"
	case FollowUpInProgress:
		return "در حال انجام"
	case FollowUpCompleted:
		return "تکمیل شده"
	default:
		return unknownLabel
	}
}

func (s FollowUpStatus) Tone() Tone {
	switch s {
	case FollowUpPending:
		return ToneWarning
	case FollowUpInProgress:
		return ToneInfo
	case FollowUpCompleted:
		return ToneSuccess
	default:
		return ToneMuted
	}
}

// PayableCheckStatus is the state of an issued check.
type PayableCheckStatus string

const (
	PayableIssued   PayableCheckStatus = "issued"
	PayablePaid     PayableCheckStatus = "paid"
	PayableReturned PayableCheckStatus = "returned"
)

func (s PayableCheckStatus) Label() string {
	switch s {
	case PayableIssued:
		return "صادر شده"
	case PayablePaid:
		return "پرداخت شده"
	case PayableReturned:
		return "برگشتی"
	default:
		return unknownLabel
	}
}

func (s PayableCheckStatus) Tone() Tone {
	switch s {
	case PayableIssued:
		return ToneInfo
	case PayablePaid:
		return ToneSuccess
	case PayableReturned:
		return ToneDanger
	default:
		return ToneMuted
	}
}

// ReceivableCheckStatus is the state of a received check.
type ReceivableCheckStatus string

const (
	ReceivableReceived  ReceivableCheckStatus = "received"
	ReceivableDeposited ReceivableCheckStatus = "deposited"
	ReceivableReturned  ReceivableCheckStatus = "returned"
)

func (s ReceivableCheckStatus) Label() string {
	switch s {
	case ReceivableReceived:
		return "دریافت شده"
	case ReceivableDeposited:
		return "واریز شده"
	case ReceivableReturned:
		return "برگشتی"
	default:
		return unknownLabel
	}
}

func (s ReceivableCheckStatus) Tone() Tone {
	switch s {
	case ReceivableReceived:
		return ToneInfo
	case ReceivableDeposited:
		return ToneSuccess
	case ReceivableReturned:
		return ToneDanger
	default:
		return ToneMuted
	}
}

// DebtStatus is the repayment state of an ongoing debt.
type DebtStatus string

const (
	DebtPending     DebtStatus = "pending"
	DebtPartialPaid DebtStatus = "partial_paid"
	DebtPaid        DebtStatus = "paid"
)

// DebtStatuses lists the filterable debt states.
var DebtStatuses = []DebtStatus{DebtPending, DebtPartialPaid, DebtPaid}

func (s DebtStatus) Label() string {
	switch s {
	case DebtPending:
		return "در انتظار"
	case DebtPartialPaid:
		return "پرداخت جزئی"
	case DebtPaid:
		return "پرداخت شده"
	default:
		return unknownLabel
	}
}

func (s DebtStatus) Tone() Tone {
	switch s {
	case DebtPending:
		return ToneWarning
	case DebtPartialPaid:
		return ToneInfo
	case DebtPaid:
		return ToneSuccess
	default:
		return ToneMuted
	}
}

// Account is a customer account.
type Account struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	AccountNumber string          `json:"account_number"`
	Balance       decimal.Decimal `json:"balance"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
}

// OverdueAccount is an account balance past its due date.
type OverdueAccount struct {
	ID            int64           `json:"id"`
	Account       int64           `json:"account"`
	AccountName   string          `json:"account_name"`
	CustomerName  string          `json:"customer_name"`
	OverdueAmount decimal.Decimal `json:"overdue_amount"`
	DueDate       Date            `json:"due_date"`
	ContactInfo   string          `json:"contact_info"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Discrepancy is a reported mismatch on an account.
type Discrepancy struct {
	ID            int64             `json:"id"`
	Title         string            `json:"title"`
	Description   string            `json:"description"`
	Amount        decimal.Decimal   `json:"amount"`
	Account       int64             `json:"account"`
	AccountName   string            `json:"account_name"`
	Status        DiscrepancyStatus `json:"status"`
	CreatedBy     int64             `json:"created_by"`
	CreatedByName string            `json:"created_by_name"`
	CreatedAt     time.Time         `json:"created_at"`
}

// FollowUp is a scheduled customer follow-up.
type FollowUp struct {
	ID            int64          `json:"id"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	CustomerName  string         `json:"customer_name"`
	FollowUpDate  Date           `json:"follow_up_date"`
	Status        FollowUpStatus `json:"status"`
	CreatedBy     int64          `json:"created_by"`
	CreatedByName string         `json:"created_by_name"`
	CreatedAt     time.Time      `json:"created_at"`
}

// PayableCheck is a check issued by the business.
type PayableCheck struct {
	ID          int64              `json:"id"`
	CheckNumber string             `json:"check_number"`
	Amount      decimal.Decimal    `json:"amount"`
	Payee       string             `json:"payee"`
	DueDate     Date               `json:"due_date"`
	BankName    string             `json:"bank_name"`
	Status      PayableCheckStatus `json:"status"`
	CreatedAt   time.Time          `json:"created_at"`
}

// ReceivableCheck is a check received by the business.
type ReceivableCheck struct {
	ID          int64                 `json:"id"`
	CheckNumber string                `json:"check_number"`
	Amount      decimal.Decimal       `json:"amount"`
	Payer       string                `json:"payer"`
	DueDate     Date                  `json:"due_date"`
	BankName    string                `json:"bank_name"`
	Status      ReceivableCheckStatus `json:"status"`
	CreatedAt   time.Time             `json:"created_at"`
}

// OngoingDebt is money owed to a creditor.
type OngoingDebt struct {
	ID           int64           `json:"id"`
	CreditorName string          `json:"creditor_name"`
	Amount       decimal.Decimal `json:"amount"`
	Description  string          `json:"description"`
	DueDate      Date            `json:"due_date"`
	Status       DebtStatus      `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Summary aggregates the headline figures shown on the dashboard.
type Summary struct {
	TotalAccounts         int             `json:"total_accounts"`
	TotalBalance          decimal.Decimal `json:"total_balance"`
	OverdueAccountsCount  int             `json:"overdue_accounts_count"`
	OverdueAmount         decimal.Decimal `json:"overdue_amount"`
	PendingDiscrepancies  int             `json:"pending_discrepancies"`
	PayableChecksCount    int             `json:"payable_checks_count"`
	ReceivableChecksCount int             `json:"receivable_checks_count"`
	OngoingDebtsCount     int             `json:"ongoing_debts_count"`
	OngoingDebtsAmount    decimal.Decimal `json:"ongoing_debts_amount"`
}

// Resource names a backend financial collection.
type Resource string

const (
	ResourceAccounts         Resource = "accounts"
	ResourceOverdueAccounts  Resource = "overdue-accounts"
	ResourceDiscrepancies    Resource = "discrepancies"
	ResourceFollowUps        Resource = "follow-ups"
	ResourcePayableChecks    Resource = "payable-checks"
	ResourceReceivableChecks Resource = "receivable-checks"
	ResourceOngoingDebts     Resource = "ongoing-debts"
	ResourceSummary          Resource = "summary"
)

// Path returns the backend path of the collection.
func (r Resource) Path() string {
	return "/financial/" + string(r) + "/"
}
