package financial

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finboard/finboard/internal/platform/backend"
)

const accountsJSON = `[{"id":1,"name":"شرکت الف","account_number":"ACC001","balance":"1500000.50","is_active":true,"created_at":"2024-03-01T10:00:00.123456+03:30"}]`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(backend.NewClient(srv.URL, time.Second))
}

func TestClientAcceptsBareAndPaginatedLists(t *testing.T) {
	for name, body := range map[string]string{
		"bare":      accountsJSON,
		"paginated": `{"count":1,"next":null,"previous":null,"results":` + accountsJSON + `}`,
	} {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/financial/accounts/", r.URL.Path)
				assert.Equal(t, "Bearer t1", r.Header.Get("Authorization"))
				_, _ = w.Write([]byte(body))
			})
			accounts, err := c.Accounts(context.Background(), "t1")
			require.NoError(t, err)
			require.Len(t, accounts, 1)
			assert.Equal(t, "ACC001", accounts[0].AccountNumber)
			assert.True(t, decimal.RequireFromString("1500000.50").Equal(accounts[0].Balance))
		})
	}
}

func TestClientRejectsUnknownListShape(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items":[]}`))
	})
	_, err := c.Discrepancies(context.Background(), "t1")
	assert.Error(t, err)
}

func TestClientEmptyPaginatedList(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"count":0,"results":[]}`))
	})
	debts, err := c.OngoingDebts(context.Background(), "t1")
	require.NoError(t, err)
	assert.Empty(t, debts)
}

func TestClientDecodesDatesAndStatuses(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":3,"check_number":"CHK-9","amount":"250000","payer":"x","due_date":"2024-06-30","bank_name":"ملت","status":"deposited","created_at":"2024-01-01T00:00:00Z"}]`))
	})
	checks, err := c.ReceivableChecks(context.Background(), "t1")
	require.NoError(t, err)
	require.Len(t, checks, 1)
	assert.Equal(t, NewDate(2024, time.June, 30), checks[0].DueDate)
	assert.Equal(t, ReceivableDeposited, checks[0].Status)
	assert.Equal(t, "واریز شده", checks[0].Status.Label())
}

func TestClientSummaryAndErrors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/financial/summary/" {
			_, _ = w.Write([]byte(`{"total_accounts":5,"total_balance":"100.25","overdue_accounts_count":2,"overdue_amount":"10","pending_discrepancies":1,"payable_checks_count":3,"receivable_checks_count":4,"ongoing_debts_count":2,"ongoing_debts_amount":7}`))
			return
		}
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"detail":"You do not have permission to perform this action."}`))
	})

	sum, err := c.Summary(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, 5, sum.TotalAccounts)
	assert.True(t, decimal.NewFromInt(7).Equal(sum.OngoingDebtsAmount))

	_, err = c.FollowUps(context.Background(), "t1")
	var apiErr *backend.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
}

func TestDateJSON(t *testing.T) {
	var d Date
	require.NoError(t, d.UnmarshalJSON([]byte(`"2024-02-29"`)))
	assert.Equal(t, "2024-02-29", d.String())
	raw, err := d.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"2024-02-29"`, string(raw))

	require.NoError(t, d.UnmarshalJSON([]byte(`"2024-02-29T23:00:00Z"`)))
	assert.Equal(t, "2024-02-29", d.String())

	require.NoError(t, d.UnmarshalJSON([]byte(`null`)))
	assert.True(t, d.IsZero())
	assert.Error(t, d.UnmarshalJSON([]byte(`"29/02/2024"`)))
}
