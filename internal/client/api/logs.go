package api

import (
	"context"
	"net/url"
	"strings"

	"github.com/atinyakov/medstock/internal/models"
)

// Logs returns the withdrawal log.
func (c *Client) Logs(ctx context.Context) ([]models.WithdrawalLog, error) {
	var out []models.WithdrawalLog
	if err := c.get(ctx, "/api/logs", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteLog removes a withdrawal log entry.
func (c *Client) DeleteLog(ctx context.Context, id models.ID) error {
	return c.delete(ctx, "/api/logs/"+escapeID(id))
}

// RecordWithdrawal appends an entry to the withdrawal log.
func (c *Client) RecordWithdrawal(ctx context.Context, l models.WithdrawalLog) error {
	return c.post(ctx, "/api/logs/withdraw", l, nil)
}

// Stats returns the withdrawal statistics of the current month.
func (c *Client) Stats(ctx context.Context) (models.WithdrawalStats, error) {
	var out models.WithdrawalStats
	err := c.get(ctx, "/api/logs/stats", nil, &out)
	return out, err
}

// MedicineNames returns the names that appear in the withdrawal log.
func (c *Client) MedicineNames(ctx context.Context) ([]string, error) {
	var out []string
	if err := c.get(ctx, "/api/logs/med-names", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MonthlyWithdrawals returns the per-month series, restricted to names
// when any are given.
func (c *Client) MonthlyWithdrawals(ctx context.Context, names []string) (models.MonthlyWithdrawals, error) {
	var q url.Values
	if len(names) > 0 {
		q = url.Values{"med_names": {strings.Join(names, ",")}}
	}
	var out models.MonthlyWithdrawals
	err := c.get(ctx, "/api/logs/monthly-withdrawals", q, &out)
	return out, err
}
