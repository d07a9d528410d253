package devapi_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/finboard/finboard/internal/auth"
	"github.com/finboard/finboard/internal/devapi"
	"github.com/finboard/finboard/internal/financial"
	"github.com/finboard/finboard/internal/platform/backend"
)

var fixedNow = time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC)

type stack struct {
	server  *devapi.Server
	backend *backend.Client
	gateway *auth.HTTPGateway
	client  *financial.Client
}

func newStack(t *testing.T) stack {
	t.Helper()
	srv, err := devapi.NewServer(devapi.Config{
		SigningKey: "test-key",
		AccessTTL:  time.Hour,
		RefreshTTL: 24 * time.Hour,
	}, devapi.Options{BcryptCost: bcrypt.MinCost, Now: func() time.Time { return fixedNow }})
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	b := backend.NewClient(ts.URL+"/api", 2*time.Second)
	return stack{server: srv, backend: b, gateway: auth.NewGateway(b), client: financial.NewClient(b)}
}

func TestLoginIssuesTokensAndProfile(t *testing.T) {
	s := newStack(t)
	res, err := s.gateway.Login(context.Background(), "admin", "admin123")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Credentials.Access)
	assert.NotEmpty(t, res.Credentials.Refresh)
	assert.Equal(t, auth.RoleManagement, res.Profile.Role)
	assert.Equal(t, "مدیر سیستم", res.Profile.FullName)
	assert.True(t, res.Profile.IsActive)
	assert.False(t, res.Profile.DateJoined.IsZero())
}

func TestLoginRejectsBadPassword(t *testing.T) {
	s := newStack(t)
	_, err := s.gateway.Login(context.Background(), "admin", "wrong")
	var authErr *auth.AuthenticationError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "نام کاربری یا رمز عبور اشتباه است.", authErr.Message)
	assert.Equal(t, http.StatusBadRequest, authErr.Status)
}

func TestProfileRoundTrip(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	res, err := s.gateway.Login(ctx, "accounting", "acc123")
	require.NoError(t, err)

	p, err := s.gateway.FetchProfile(ctx, res.Credentials.Access)
	require.NoError(t, err)
	assert.Equal(t, "accounting", p.Username)
	assert.True(t, p.DateJoined.IsZero(), "profile endpoint omits date_joined")

	phone := "09120000000"
	updated, err := s.gateway.UpdateProfile(ctx, res.Credentials.Access, auth.ProfilePatch{PhoneNumber: &phone})
	require.NoError(t, err)
	assert.Equal(t, phone, updated.PhoneNumber)
	assert.Equal(t, "حسابدار ارشد", updated.FullName)
}

func TestChangePassword(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	res, err := s.gateway.Login(ctx, "accounting", "acc123")
	require.NoError(t, err)

	err = s.gateway.ChangePassword(ctx, res.Credentials.Access, auth.PasswordChange{
		OldPassword: "nope", NewPassword: "newpass1", ConfirmPassword: "newpass1",
	})
	var apiErr *backend.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Contains(t, string(apiErr.Body), "old_password")

	err = s.gateway.ChangePassword(ctx, res.Credentials.Access, auth.PasswordChange{
		OldPassword: "acc123", NewPassword: "newpass1", ConfirmPassword: "other",
	})
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "رمز عبور جدید و تایید آن مطابقت ندارد.", apiErr.Message)

	require.NoError(t, s.gateway.ChangePassword(ctx, res.Credentials.Access, auth.PasswordChange{
		OldPassword: "acc123", NewPassword: "newpass1", ConfirmPassword: "newpass1",
	}))
	_, err = s.gateway.Login(ctx, "accounting", "newpass1")
	require.NoError(t, err)
}

func TestLogoutBlacklistsRefreshToken(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	res, err := s.gateway.Login(ctx, "admin", "admin123")
	require.NoError(t, err)

	require.NoError(t, s.gateway.Logout(ctx, res.Credentials.Refresh))

	err = s.gateway.Logout(ctx, res.Credentials.Refresh)
	var apiErr *backend.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "خطا در خروج", apiErr.Message)
}

func TestLogoutRejectsAccessToken(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	res, err := s.gateway.Login(ctx, "admin", "admin123")
	require.NoError(t, err)

	err = s.gateway.Logout(ctx, res.Credentials.Access)
	var apiErr *backend.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
}

func TestFinancialRequiresToken(t *testing.T) {
	s := newStack(t)
	_, err := s.client.Accounts(context.Background(), "")
	var apiErr *backend.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)

	_, err = s.client.Accounts(context.Background(), "garbage")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Given token not valid for any token type", apiErr.Message)
}

func TestFinancialListsAndSummary(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	res, err := s.gateway.Login(ctx, "accounting", "acc123")
	require.NoError(t, err)
	token := res.Credentials.Access

	accounts, err := s.client.Accounts(ctx, token)
	require.NoError(t, err)
	assert.Len(t, accounts, 5)

	overdue, err := s.client.OverdueAccounts(ctx, token)
	require.NoError(t, err)
	require.Len(t, overdue, 2)
	assert.Equal(t, financial.NewDate(2024, time.January, 25), overdue[0].DueDate)

	summary, err := s.client.Summary(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, 5, summary.TotalAccounts)
	assert.True(t, decimal.RequireFromString("3150000").Equal(summary.TotalBalance))
	assert.Equal(t, 2, summary.OverdueAccountsCount)
	assert.Equal(t, 2, summary.PendingDiscrepancies)
	assert.Equal(t, 2, summary.PayableChecksCount)
	assert.Equal(t, 2, summary.ReceivableChecksCount)
	assert.Equal(t, 2, summary.OngoingDebtsCount)
	assert.True(t, decimal.RequireFromString("6200000").Equal(summary.OngoingDebtsAmount))
}

func TestListPaginatedShape(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	res, err := s.gateway.Login(ctx, "admin", "admin123")
	require.NoError(t, err)

	var raw struct {
		Count   int                      `json:"count"`
		Results []financial.OngoingDebt `json:"results"`
	}
	err = s.backend.Do(ctx, backend.Request{
		Op:     "test.debts",
		Method: http.MethodGet,
		Path:   "/financial/ongoing-debts/?paginated=1",
		Token:  res.Credentials.Access,
	}, &raw)
	require.NoError(t, err)
	assert.Equal(t, 3, raw.Count)
	assert.Len(t, raw.Results, 3)

	var debts []financial.OngoingDebt
	require.NoError(t, s.client.List(ctx, res.Credentials.Access, financial.ResourceOngoingDebts, &debts))
	assert.Len(t, debts, 3)
}

func TestSetDatasetReplacesRecords(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	res, err := s.gateway.Login(ctx, "admin", "admin123")
	require.NoError(t, err)

	s.server.SetDataset(devapi.Dataset{Accounts: []financial.Account{{ID: 9, Name: "x"}}})
	accounts, err := s.client.Accounts(ctx, res.Credentials.Access)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, int64(9), accounts[0].ID)
}

func TestNewServerRequiresSigningKey(t *testing.T) {
	_, err := devapi.NewServer(devapi.Config{}, devapi.Options{BcryptCost: bcrypt.MinCost})
	require.Error(t, err)
}
