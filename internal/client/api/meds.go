package api

import (
	"context"

	"github.com/atinyakov/medstock/internal/models"
)

// WithdrawRequest moves stock from the main to the secondary stock.
type WithdrawRequest struct {
	MedID   models.ID     `json:"med_id"`
	MedName string        `json:"med_name"`
	Amount  models.Amount `json:"amount"`
	Type    string        `json:"type"`
	Expire  models.Date   `json:"expire"`
	LotNo   string        `json:"lotno"`
}

// ReturnRequest moves stock from the secondary back to the main stock.
type ReturnRequest struct {
	MedID   models.ID     `json:"med_id"`
	MedName string        `json:"med_name"`
	Amount  models.Amount `json:"amount"`
	Expire  models.Date   `json:"expire"`
	Type    string        `json:"type"`
}

// ListMedicines returns the main stock.
func (c *Client) ListMedicines(ctx context.Context) ([]models.Medicine, error) {
	var out []models.Medicine
	if err := c.get(ctx, "/api/meds", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateMedicine adds a row to the main stock.
func (c *Client) CreateMedicine(ctx context.Context, m models.Medicine) error {
	in := struct {
		Name   string        `json:"med_name"`
		Amount models.Amount `json:"amount"`
		Type   string        `json:"type"`
		Expire models.Date   `json:"expire"`
		LotNo  string        `json:"lotno,omitempty"`
	}{m.Name, m.Amount, m.Type, m.Expire, m.LotNo}
	return c.post(ctx, "/api/adddata", in, nil)
}

// UpdateMedicine replaces the editable fields of a main stock row.
func (c *Client) UpdateMedicine(ctx context.Context, m models.Medicine) error {
	return c.put(ctx, "/api/meds/"+escapeID(m.ID), m, nil)
}

// DeleteMedicine removes a main stock row.
func (c *Client) DeleteMedicine(ctx context.Context, id models.ID) error {
	return c.delete(ctx, "/api/meds/"+escapeID(id))
}

// Expiration returns the medicines the expiration report covers.
func (c *Client) Expiration(ctx context.Context) ([]models.Medicine, error) {
	var out []models.Medicine
	if err := c.get(ctx, "/api/meds/expiration", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// LowStock returns the medicines under the backend's low-stock threshold.
func (c *Client) LowStock(ctx context.Context) ([]models.Medicine, error) {
	var out []models.Medicine
	if err := c.get(ctx, "/api/meds/low-stock", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// NotifyExpiry asks the backend to send the expiry notification.
func (c *Client) NotifyExpiry(ctx context.Context) (string, error) {
	var out models.Message
	if err := c.post(ctx, "/api/meds/notify", nil, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// NotifyLowStock asks the backend to send the low-stock notification.
func (c *Client) NotifyLowStock(ctx context.Context) (string, error) {
	var out models.Message
	if err := c.post(ctx, "/api/meds/notify-low-stock", nil, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// Withdraw moves stock from the main to the secondary stock.
func (c *Client) Withdraw(ctx context.Context, r WithdrawRequest) error {
	return c.post(ctx, "/api/withdraw", r, nil)
}

// SecondaryStock returns the secondary stock.
func (c *Client) SecondaryStock(ctx context.Context) ([]models.Medicine, error) {
	var out []models.Medicine
	if err := c.get(ctx, "/api/min_meds", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteSecondary removes a secondary stock row.
func (c *Client) DeleteSecondary(ctx context.Context, id models.ID) error {
	return c.delete(ctx, "/api/min_meds/"+escapeID(id))
}

// Return moves stock from the secondary back to the main stock.
func (c *Client) Return(ctx context.Context, r ReturnRequest) error {
	return c.post(ctx, "/api/return", r, nil)
}

// Quantities returns the on-hand totals per location.
func (c *Client) Quantities(ctx context.Context) (models.StockQuantity, error) {
	var out models.StockQuantity
	err := c.get(ctx, "/api/quantity/med-stats", nil, &out)
	return out, err
}

// Vaccines returns the vaccine stock.
func (c *Client) Vaccines(ctx context.Context) ([]models.Vaccine, error) {
	var out []models.Vaccine
	if err := c.get(ctx, "/api/vaccines", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
