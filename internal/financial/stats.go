package financial

import "github.com/shopspring/decimal"

// AccountStats are the headline figures of the accounts page.
type AccountStats struct {
	Total        int
	Active       int
	Negative     int
	TotalBalance decimal.Decimal
}

// SummarizeAccounts computes AccountStats over all accounts.
func SummarizeAccounts(items []Account) AccountStats {
	var st AccountStats
	for _, a := range items {
		st.Total++
		if a.IsActive {
			st.Active++
		}
		if a.Balance.IsNegative() {
			st.Negative++
		}
		st.TotalBalance = st.TotalBalance.Add(a.Balance)
	}
	return st
}

// OverdueStats are the headline figures of the overdue accounts page.
type OverdueStats struct {
	Total    int
	Amount   decimal.Decimal
	Within30 int
	Beyond60 int
}

// DaysOverdue returns how many days past due a is on today, never negative.
func (a OverdueAccount) DaysOverdue(today Date) int {
	days := -a.DueDate.DaysUntil(today)
	if days < 0 {
		return 0
	}
	return days
}

// SummarizeOverdue computes OverdueStats relative to today.
func SummarizeOverdue(items []OverdueAccount, today Date) OverdueStats {
	var st OverdueStats
	for _, a := range items {
		st.Total++
		st.Amount = st.Amount.Add(a.OverdueAmount)
		switch days := a.DaysOverdue(today); {
		case days <= 30:
			st.Within30++
		case days > 60:
			st.Beyond60++
		}
	}
	return st
}

// DiscrepancyStats counts discrepancies per status.
type DiscrepancyStats struct {
	Pending  int
	Resolved int
	Rejected int
}

// SummarizeDiscrepancies computes DiscrepancyStats.
func SummarizeDiscrepancies(items []Discrepancy) DiscrepancyStats {
	var st DiscrepancyStats
	for _, d := range items {
		switch d.Status {
		case DiscrepancyPending:
			st.Pending++
		case DiscrepancyResolved:
			st.Resolved++
		case DiscrepancyRejected:
			st.Rejected++
		}
	}
	return st
}

// FollowUpStats are the headline figures of the follow-ups page.
type FollowUpStats struct {
	Pending    int
	InProgress int
	Late       int
}

// Late reports whether an open follow-up is past its date.
func (f FollowUp) Late(today Date) bool {
	return f.Status != FollowUpCompleted && f.FollowUpDate.Before(today)
}

// SummarizeFollowUps computes FollowUpStats relative to today.
func SummarizeFollowUps(items []FollowUp, today Date) FollowUpStats {
	var st FollowUpStats
	for _, f := range items {
		switch f.Status {
		case FollowUpPending:
			st.Pending++
		case FollowUpInProgress:
			st.InProgress++
		}
		if f.Late(today) {
			st.Late++
		}
	}
	return st
}

// CheckStats are the headline figures of the checks page.
type CheckStats struct {
	Payable          int
	Receivable       int
	PayableAmount    decimal.Decimal
	ReceivableAmount decimal.Decimal
}

// SummarizeChecks computes CheckStats over both check kinds.
func SummarizeChecks(payable []PayableCheck, receivable []ReceivableCheck) CheckStats {
	var st CheckStats
	for _, c := range payable {
		st.Payable++
		st.PayableAmount = st.PayableAmount.Add(c.Amount)
	}
	for _, c := range receivable {
		st.Receivable++
		st.ReceivableAmount = st.ReceivableAmount.Add(c.Amount)
	}
	return st
}

// DebtStats are the headline figures of the ongoing debts page.
type DebtStats struct {
	Total       int
	Pending     int
	Outstanding decimal.Decimal
	Late        int
}

// Late reports whether an unpaid debt is past due.
func (d OngoingDebt) Late(today Date) bool {
	return d.Status != DebtPaid && d.DueDate.Before(today)
}

// SummarizeDebts computes DebtStats relative to today. Outstanding sums every
// debt not fully paid.
func SummarizeDebts(items []OngoingDebt, today Date) DebtStats {
	var st DebtStats
	for _, d := range items {
		st.Total++
		if d.Status == DebtPending {
			st.Pending++
		}
		if d.Status != DebtPaid {
			st.Outstanding = st.Outstanding.Add(d.Amount)
		}
		if d.Late(today) {
			st.Late++
		}
	}
	return st
}

// Overdue reports whether an issued check is past its due date.
func (c PayableCheck) Overdue(today Date) bool {
	return c.Status == PayableIssued && c.DueDate.Before(today)
}

// Overdue reports whether a received check is past its due date and still
// not deposited.
func (c ReceivableCheck) Overdue(today Date) bool {
	return c.Status == ReceivableReceived && c.DueDate.Before(today)
}
