package financial

import "strings"

// Query is the search input of a list page. Status is empty or "all" for
// every status.
type Query struct {
	Search string
	Status string
}

func (q Query) term() string {
	return strings.ToLower(strings.TrimSpace(q.Search))
}

func (q Query) statusMatches(status string) bool {
	return q.Status == "" || q.Status == "all" || q.Status == status
}

func matches(term string, fields ...string) bool {
	if term == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

func filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

// FilterAccounts matches name or account number.
func FilterAccounts(items []Account, q Query) []Account {
	term := q.term()
	return filter(items, func(a Account) bool {
		return matches(term, a.Name, a.AccountNumber)
	})
}

// FilterOverdueAccounts matches customer, account name or contact info.
func FilterOverdueAccounts(items []OverdueAccount, q Query) []OverdueAccount {
	term := q.term()
	return filter(items, func(a OverdueAccount) bool {
		return matches(term, a.CustomerName, a.AccountName, a.ContactInfo)
	})
}

// FilterDiscrepancies matches title, description, account or author, and the
// status.
func FilterDiscrepancies(items []Discrepancy, q Query) []Discrepancy {
	term := q.term()
	return filter(items, func(d Discrepancy) bool {
		return q.statusMatches(string(d.Status)) &&
			matches(term, d.Title, d.Description, d.AccountName, d.CreatedByName)
	})
}

// FilterFollowUps matches title, description, customer or author, and the
// status.
func FilterFollowUps(items []FollowUp, q Query) []FollowUp {
	term := q.term()
	return filter(items, func(f FollowUp) bool {
		return q.statusMatches(string(f.Status)) &&
			matches(term, f.Title, f.Description, f.CustomerName, f.CreatedByName)
	})
}

// FilterPayableChecks matches check number, payee or bank.
func FilterPayableChecks(items []PayableCheck, q Query) []PayableCheck {
	term := q.term()
	return filter(items, func(c PayableCheck) bool {
		return q.statusMatches(string(c.Status)) && matches(term, c.CheckNumber, c.Payee, c.BankName)
	})
}

// FilterReceivableChecks matches check number, payer or bank.
func FilterReceivableChecks(items []ReceivableCheck, q Query) []ReceivableCheck {
	term := q.term()
	return filter(items, func(c ReceivableCheck) bool {
		return q.statusMatches(string(c.Status)) && matches(term, c.CheckNumber, c.Payer, c.BankName)
	})
}

// FilterOngoingDebts matches creditor or description, and the status.
func FilterOngoingDebts(items []OngoingDebt, q Query) []OngoingDebt {
	term := q.term()
	return filter(items, func(d OngoingDebt) bool {
		return q.statusMatches(string(d.Status)) && matches(term, d.CreditorName, d.Description)
	})
}
