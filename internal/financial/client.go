package financial

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/finboard/finboard/internal/platform/backend"
)

// Client reads financial collections from the backend.
type Client struct {
	backend *backend.Client
}

// NewClient constructs a Client.
func NewClient(b *backend.Client) *Client {
	return &Client{backend: b}
}

type paginated struct {
	Results json.RawMessage `json:"results"`
}

// List fetches resource into dest, a pointer to a slice. The backend answers
// either with a bare array or with an object carrying a results array.
func (c *Client) List(ctx context.Context, access string, resource Resource, dest any) error {
	var raw json.RawMessage
	err := c.backend.Do(ctx, backend.Request{
		Op:     "financial." + string(resource),
		Method: http.MethodGet,
		Path:   resource.Path(),
		Token:  access,
	}, &raw)
	if err != nil {
		return err
	}
	if err := decodeList(raw, dest); err != nil {
		return fmt.Errorf("financial: %s: %w", resource, err)
	}
	return nil
}

func decodeList(raw json.RawMessage, dest any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return errors.New("empty list response")
	}
	if trimmed[0] == '[' {
		return json.Unmarshal(trimmed, dest)
	}
	var page paginated
	if err := json.Unmarshal(trimmed, &page); err != nil {
		return err
	}
	if len(page.Results) == 0 {
		return errors.New("list response has neither an array nor results")
	}
	return json.Unmarshal(page.Results, dest)
}

func list[T any](ctx context.Context, c *Client, access string, resource Resource) ([]T, error) {
	var out []T
	if err := c.List(ctx, access, resource, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Summary fetches the dashboard aggregates.
func (c *Client) Summary(ctx context.Context, access string) (Summary, error) {
	var out Summary
	err := c.backend.Do(ctx, backend.Request{
		Op:     "financial.summary",
		Method: http.MethodGet,
		Path:   ResourceSummary.Path(),
		Token:  access,
	}, &out)
	return out, err
}

// Accounts lists customer accounts.
func (c *Client) Accounts(ctx context.Context, access string) ([]Account, error) {
	return list[Account](ctx, c, access, ResourceAccounts)
}

// OverdueAccounts lists overdue balances.
func (c *Client) OverdueAccounts(ctx context.Context, access string) ([]OverdueAccount, error) {
	return list[OverdueAccount](ctx, c, access, ResourceOverdueAccounts)
}

// Discrepancies lists reported discrepancies.
func (c *Client) Discrepancies(ctx context.Context, access string) ([]Discrepancy, error) {
	return list[Discrepancy](ctx, c, access, ResourceDiscrepancies)
}

// FollowUps lists customer follow-ups.
func (c *Client) FollowUps(ctx context.Context, access string) ([]FollowUp, error) {
	return list[FollowUp](ctx, c, access, ResourceFollowUps)
}

// PayableChecks lists issued checks.
func (c *Client) PayableChecks(ctx context.Context, access string) ([]PayableCheck, error) {
	return list[PayableCheck](ctx, c, access, ResourcePayableChecks)
}

// ReceivableChecks lists received checks.
func (c *Client) ReceivableChecks(ctx context.Context, access string) ([]ReceivableCheck, error) {
	return list[ReceivableCheck](ctx, c, access, ResourceReceivableChecks)
}

// OngoingDebts lists debts to creditors.
func (c *Client) OngoingDebts(ctx context.Context, access string) ([]OngoingDebt, error) {
	return list[OngoingDebt](ctx, c, access, ResourceOngoingDebts)
}
