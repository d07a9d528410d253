package financialhttp

import (
	"context"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/finboard/finboard/internal/financial"
	"github.com/finboard/finboard/internal/session"
)

const (
	tabPayable    = "payable"
	tabReceivable = "receivable"
)

type dashboardPage struct {
	Greeting  string
	RoleLabel string
	Summary   financial.Summary
}

type statusOption struct {
	Value string
	Label string
}

func statusOptions[S interface {
	~string
	Label() string
}](all []S) []statusOption {
	out := make([]statusOption, 0, len(all))
	for _, s := range all {
		out = append(out, statusOption{Value: string(s), Label: s.Label()})
	}
	return out
}

// listPage is the payload of every single-resource list page. Stats cover
// every record; Items only those matching Query.
type listPage[T, S any] struct {
	Query    financial.Query
	Items    []T
	Total    int
	Stats    S
	Statuses []statusOption
	Today    financial.Date
}

type listSpec[T, S any] struct {
	template string
	title    string
	fetch    func(context.Context, financial.Viewer) ([]T, error)
	filter   func([]T, financial.Query) []T
	stats    func([]T, financial.Date) S
	statuses []statusOption
}

func queryFrom(r *http.Request) financial.Query {
	q := r.URL.Query()
	return financial.Query{Search: strings.TrimSpace(q.Get("q")), Status: q.Get("status")}
}

func serveList[T, S any](h *Handler, w http.ResponseWriter, r *http.Request, spec listSpec[T, S]) {
	v, ok := h.viewer(w, r)
	if !ok {
		return
	}
	page := listPage[T, S]{Query: queryFrom(r), Statuses: spec.statuses, Today: h.today()}
	items, err := spec.fetch(r.Context(), v)
	if err != nil {
		h.fail(w, r, spec.template, spec.title, page, err)
		return
	}
	page.Total = len(items)
	page.Stats = spec.stats(items, page.Today)
	page.Items = spec.filter(items, page.Query)
	h.render(w, r, http.StatusOK, spec.template, spec.title, page, "")
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	v, ok := h.viewer(w, r)
	if !ok {
		return
	}
	var page dashboardPage
	if user := session.FromContext(r.Context()).User(); user != nil {
		page.Greeting = user.DisplayName()
		page.RoleLabel = user.Role.Label()
	}
	summary, err := h.reader.Summary(r.Context(), v)
	if err != nil {
		h.fail(w, r, "pages/dashboard.html", titleDashboard, page, err)
		return
	}
	page.Summary = summary
	h.render(w, r, http.StatusOK, "pages/dashboard.html", titleDashboard, page, "")
}

func (h *Handler) accounts(w http.ResponseWriter, r *http.Request) {
	serveList(h, w, r, listSpec[financial.Account, financial.AccountStats]{
		template: "pages/accounts.html",
		title:    titleAccounts,
		fetch:    h.reader.Accounts,
		filter:   financial.FilterAccounts,
		stats: func(items []financial.Account, _ financial.Date) financial.AccountStats {
			return financial.SummarizeAccounts(items)
		},
	})
}

func (h *Handler) overdueAccounts(w http.ResponseWriter, r *http.Request) {
	serveList(h, w, r, listSpec[financial.OverdueAccount, financial.OverdueStats]{
		template: "pages/overdue_accounts.html",
		title:    titleOverdue,
		fetch:    h.reader.OverdueAccounts,
		filter:   financial.FilterOverdueAccounts,
		stats:    financial.SummarizeOverdue,
	})
}

func (h *Handler) discrepancies(w http.ResponseWriter, r *http.Request) {
	serveList(h, w, r, listSpec[financial.Discrepancy, financial.DiscrepancyStats]{
		template: "pages/discrepancies.html",
		title:    titleDiscrepancies,
		fetch:    h.reader.Discrepancies,
		filter:   financial.FilterDiscrepancies,
		stats: func(items []financial.Discrepancy, _ financial.Date) financial.DiscrepancyStats {
			return financial.SummarizeDiscrepancies(items)
		},
		statuses: statusOptions(financial.DiscrepancyStatuses),
	})
}

func (h *Handler) followUps(w http.ResponseWriter, r *http.Request) {
	serveList(h, w, r, listSpec[financial.FollowUp, financial.FollowUpStats]{
		template: "pages/follow_ups.html",
		title:    titleFollowUps,
		fetch:    h.reader.FollowUps,
		filter:   financial.FilterFollowUps,
		stats:    financial.SummarizeFollowUps,
		statuses: statusOptions(financial.FollowUpStatuses),
	})
}

func (h *Handler) ongoingDebts(w http.ResponseWriter, r *http.Request) {
	serveList(h, w, r, listSpec[financial.OngoingDebt, financial.DebtStats]{
		template: "pages/ongoing_debts.html",
		title:    titleDebts,
		fetch:    h.reader.OngoingDebts,
		filter:   financial.FilterOngoingDebts,
		stats:    financial.SummarizeDebts,
		statuses: statusOptions(financial.DebtStatuses),
	})
}

type checksPage struct {
	Query      financial.Query
	Tab        string
	Payable    []financial.PayableCheck
	Receivable []financial.ReceivableCheck
	Stats      financial.CheckStats
	Today      financial.Date
}

// checks serves both check kinds; tab fixes the visible table, an empty tab
// reads it from the query string.
func (h *Handler) checks(tab string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, ok := h.viewer(w, r)
		if !ok {
			return
		}
		page := checksPage{Query: queryFrom(r), Tab: tab, Today: h.today()}
		if page.Tab == "" {
			page.Tab = tabPayable
			if r.URL.Query().Get("tab") == tabReceivable {
				page.Tab = tabReceivable
			}
		}

		var (
			payable    []financial.PayableCheck
			receivable []financial.ReceivableCheck
		)
		g, ctx := errgroup.WithContext(r.Context())
		g.Go(func() error {
			var err error
			payable, err = h.reader.PayableChecks(ctx, v)
			return err
		})
		g.Go(func() error {
			var err error
			receivable, err = h.reader.ReceivableChecks(ctx, v)
			return err
		})
		if err := g.Wait(); err != nil {
			h.fail(w, r, "pages/checks.html", titleChecks, page, err)
			return
		}

		page.Stats = financial.SummarizeChecks(payable, receivable)
		page.Payable = financial.FilterPayableChecks(payable, page.Query)
		page.Receivable = financial.FilterReceivableChecks(receivable, page.Query)
		h.render(w, r, http.StatusOK, "pages/checks.html", titleChecks, page, "")
	}
}
