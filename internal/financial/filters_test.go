package financial

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestFilterAccounts(t *testing.T) {
	items := []Account{
		{ID: 1, Name: "Tehran Trading", AccountNumber: "ACC001"},
		{ID: 2, Name: "شرکت پارس", AccountNumber: "ACC002"},
	}
	assert.Len(t, FilterAccounts(items, Query{}), 2)
	assert.Equal(t, int64(1), FilterAccounts(items, Query{Search: "  tehran "})[0].ID)
	assert.Equal(t, int64(2), FilterAccounts(items, Query{Search: "acc002"})[0].ID)
	assert.Equal(t, int64(2), FilterAccounts(items, Query{Search: "پارس"})[0].ID)
	assert.Empty(t, FilterAccounts(items, Query{Search: "missing"}))
}

func TestFilterDiscrepanciesByStatusAndSearch(t *testing.T) {
	items := []Discrepancy{
		{ID: 1, Title: "Bank fee", Status: DiscrepancyPending, CreatedByName: "admin"},
		{ID: 2, Title: "Double entry", Status: DiscrepancyResolved, AccountName: "Bank"},
		{ID: 3, Title: "Rounding", Status: DiscrepancyRejected},
	}
	assert.Len(t, FilterDiscrepancies(items, Query{Status: "all"}), 3)
	assert.Len(t, FilterDiscrepancies(items, Query{Search: "bank"}), 2)
	got := FilterDiscrepancies(items, Query{Search: "bank", Status: "resolved"})
	assert.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].ID)
	assert.Len(t, FilterDiscrepancies(items, Query{Search: "ADMIN"}), 1)
}

func TestFilterChecksAndDebts(t *testing.T) {
	payable := []PayableCheck{{CheckNumber: "P-1", Payee: "Supplier", BankName: "Melli"}, {CheckNumber: "P-2", Payee: "Landlord", BankName: "Saderat"}}
	receivable := []ReceivableCheck{{CheckNumber: "R-1", Payer: "Client", BankName: "Melli"}}
	debts := []OngoingDebt{{CreditorName: "Bank loan", Status: DebtPending}, {CreditorName: "Supplier", Description: "raw material", Status: DebtPaid}}

	assert.Len(t, FilterPayableChecks(payable, Query{Search: "melli"}), 1)
	assert.Len(t, FilterReceivableChecks(receivable, Query{Search: "client"}), 1)
	assert.Len(t, FilterOngoingDebts(debts, Query{Search: "material"}), 1)
	assert.Len(t, FilterOngoingDebts(debts, Query{Status: string(DebtPending)}), 1)
	assert.Len(t, FilterOverdueAccounts([]OverdueAccount{{ContactInfo: "021-555"}}, Query{Search: "555"}), 1)
	assert.Len(t, FilterFollowUps([]FollowUp{{CustomerName: "Ali", Status: FollowUpCompleted}}, Query{Search: "ali", Status: "pending"}), 0)
}

func TestSummaries(t *testing.T) {
	today := NewDate(2024, time.June, 1)

	acc := SummarizeAccounts([]Account{
		{Balance: dec("100.50"), IsActive: true},
		{Balance: dec("-20"), IsActive: false},
	})
	assert.Equal(t, 2, acc.Total)
	assert.Equal(t, 1, acc.Active)
	assert.Equal(t, 1, acc.Negative)
	assert.Equal(t, "80.5", acc.TotalBalance.String())

	overdue := SummarizeOverdue([]OverdueAccount{
		{OverdueAmount: dec("10"), DueDate: NewDate(2024, time.May, 20)},
		{OverdueAmount: dec("5"), DueDate: NewDate(2024, time.March, 1)},
		{OverdueAmount: dec("1"), DueDate: NewDate(2024, time.April, 15)},
	}, today)
	assert.Equal(t, 3, overdue.Total)
	assert.Equal(t, "16", overdue.Amount.String())
	assert.Equal(t, 1, overdue.Within30)
	assert.Equal(t, 1, overdue.Beyond60)

	assert.Equal(t, 0, OverdueAccount{DueDate: NewDate(2024, time.July, 1)}.DaysOverdue(today))

	debts := SummarizeDebts([]OngoingDebt{
		{Amount: dec("100"), Status: DebtPending, DueDate: NewDate(2024, time.May, 1)},
		{Amount: dec("50"), Status: DebtPartialPaid, DueDate: NewDate(2024, time.July, 1)},
		{Amount: dec("70"), Status: DebtPaid, DueDate: NewDate(2024, time.January, 1)},
	}, today)
	assert.Equal(t, 3, debts.Total)
	assert.Equal(t, "150", debts.Outstanding.String())
	assert.Equal(t, 1, debts.Pending)
	assert.Equal(t, 1, debts.Late)

	follow := SummarizeFollowUps([]FollowUp{
		{Status: FollowUpPending, FollowUpDate: NewDate(2024, time.May, 1)},
		{Status: FollowUpInProgress, FollowUpDate: NewDate(2024, time.June, 2)},
		{Status: FollowUpCompleted, FollowUpDate: NewDate(2024, time.January, 1)},
	}, today)
	assert.Equal(t, FollowUpStats{Pending: 1, InProgress: 1, Late: 1}, follow)

	checks := SummarizeChecks([]PayableCheck{{Amount: dec("1")}, {Amount: dec("2")}}, []ReceivableCheck{{Amount: dec("5")}})
	assert.Equal(t, 2, checks.Payable)
	assert.Equal(t, "3", checks.PayableAmount.String())
	assert.Equal(t, "5", checks.ReceivableAmount.String())

	disc := SummarizeDiscrepancies([]Discrepancy{{Status: DiscrepancyPending}, {Status: DiscrepancyPending}, {Status: DiscrepancyRejected}})
	assert.Equal(t, DiscrepancyStats{Pending: 2, Rejected: 1}, disc)
}

func TestCheckOverdue(t *testing.T) {
	today := NewDate(2024, time.May, 10)
	past := NewDate(2024, time.May, 1)

	assert.True(t, PayableCheck{Status: PayableIssued, DueDate: past}.Overdue(today))
	assert.False(t, PayableCheck{Status: PayablePaid, DueDate: past}.Overdue(today))
	assert.False(t, PayableCheck{Status: PayableIssued, DueDate: today}.Overdue(today))
	assert.True(t, ReceivableCheck{Status: ReceivableReceived, DueDate: past}.Overdue(today))
	assert.False(t, ReceivableCheck{Status: ReceivableDeposited, DueDate: past}.Overdue(today))
}
