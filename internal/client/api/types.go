package api

import (
	"context"

	"github.com/atinyakov/medstock/internal/models"
)

// Types returns the medicine type catalog.
func (c *Client) Types(ctx context.Context) ([]models.MedicineType, error) {
	var out []models.MedicineType
	if err := c.get(ctx, "/api/types", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddType adds a medicine type.
func (c *Client) AddType(ctx context.Context, name string) error {
	return c.post(ctx, "/api/types", models.MedicineType{Name: name}, nil)
}

// DeleteType removes a medicine type.
func (c *Client) DeleteType(ctx context.Context, id models.ID) error {
	return c.delete(ctx, "/api/types/"+escapeID(id))
}
