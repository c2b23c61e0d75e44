package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/atinyakov/medstock/internal/client/api"
	"github.com/atinyakov/medstock/internal/inventory"
	"github.com/atinyakov/medstock/internal/models"
)

// StockAPI defines the remote operations required by the stock service.
type StockAPI interface {
	ListMedicines(ctx context.Context) ([]models.Medicine, error)
	CreateMedicine(ctx context.Context, m models.Medicine) error
	UpdateMedicine(ctx context.Context, m models.Medicine) error
	DeleteMedicine(ctx context.Context, id models.ID) error
	Withdraw(ctx context.Context, r api.WithdrawRequest) error
	SecondaryStock(ctx context.Context) ([]models.Medicine, error)
	DeleteSecondary(ctx context.Context, id models.ID) error
	Return(ctx context.Context, r api.ReturnRequest) error
	Expiration(ctx context.Context) ([]models.Medicine, error)
	LowStock(ctx context.Context) ([]models.Medicine, error)
	NotifyExpiry(ctx context.Context) (string, error)
	NotifyLowStock(ctx context.Context) (string, error)
	Quantities(ctx context.Context) (models.StockQuantity, error)
	Vaccines(ctx context.Context) ([]models.Vaccine, error)
}

// StockService implements the main stock, secondary stock and expiration
// screens.
type StockService struct {
	api StockAPI
	log *zap.Logger
}

// NewStockService constructs a StockService.
func NewStockService(client StockAPI, log *zap.Logger) *StockService {
	if log == nil {
		log = zap.NewNop()
	}
	return &StockService{api: client, log: log}
}

// Medicines returns the main stock.
func (s *StockService) Medicines(ctx context.Context) ([]models.Medicine, error) {
	return s.api.ListMedicines(ctx)
}

// AddMedicine validates and creates a main stock row.
func (s *StockService) AddMedicine(ctx context.Context, m models.Medicine) error {
	if err := inventory.ValidateNewMedicine(m); err != nil {
		return err
	}
	return s.api.CreateMedicine(ctx, m)
}

// UpdateMedicine validates and saves an edited row, returning meds with the
// row replaced.
func (s *StockService) UpdateMedicine(ctx context.Context, meds []models.Medicine, m models.Medicine) ([]models.Medicine, error) {
	if _, ok := inventory.FindMedicine(meds, m.ID); !ok {
		return meds, fmt.Errorf("medicine %s: %w", m.ID, ErrNotFound)
	}
	if err := inventory.ValidateMedicineEdit(m); err != nil {
		return meds, err
	}
	if err := s.api.UpdateMedicine(ctx, m); err != nil {
		return meds, err
	}
	return inventory.ReplaceMedicine(meds, m), nil
}

// DeleteMedicine removes a main stock row, returning meds without it.
func (s *StockService) DeleteMedicine(ctx context.Context, meds []models.Medicine, id models.ID) ([]models.Medicine, error) {
	if err := s.api.DeleteMedicine(ctx, id); err != nil {
		return meds, err
	}
	return inventory.RemoveMedicine(meds, id), nil
}

// Withdraw moves amount of the row id from the main to the secondary stock.
// The amount is checked against the row before any call is made.
func (s *StockService) Withdraw(ctx context.Context, meds []models.Medicine, id models.ID, amount int) ([]models.Medicine, error) {
	m, ok := inventory.FindMedicine(meds, id)
	if !ok {
		return meds, fmt.Errorf("medicine %s: %w", id, ErrNotFound)
	}
	if err := inventory.ValidateWithdrawAmount(amount, m.Amount.Int()); err != nil {
		return meds, err
	}
	err := s.api.Withdraw(ctx, api.WithdrawRequest{
		MedID:   m.ID,
		MedName: m.Name,
		Amount:  models.Amount(amount),
		Type:    m.Type,
		Expire:  m.Expire,
		LotNo:   m.LotNo,
	})
	if err != nil {
		return meds, err
	}
	return inventory.ApplyWithdrawal(meds, id, amount), nil
}

// SecondaryStock returns the secondary stock. Rows with a zero amount are
// deleted remotely and left out of the result.
func (s *StockService) SecondaryStock(ctx context.Context) ([]models.Medicine, error) {
	meds, err := s.api.SecondaryStock(ctx)
	if err != nil {
		return nil, err
	}
	for _, m := range inventory.ZeroAmount(meds) {
		if err := s.api.DeleteSecondary(ctx, m.ID); err != nil {
			s.log.Warn("failed to delete empty secondary stock row",
				zap.String("med_id", m.ID.String()), zap.Error(err))
		}
	}
	out := meds[:0:0]
	for _, m := range meds {
		if m.Amount != 0 {
			out = append(out, m)
		}
	}
	return out, nil
}

// Return moves amount of the secondary row id back to the main stock.
func (s *StockService) Return(ctx context.Context, meds []models.Medicine, id models.ID, amount int) ([]models.Medicine, error) {
	m, ok := inventory.FindMedicine(meds, id)
	if !ok {
		return meds, fmt.Errorf("medicine %s: %w", id, ErrNotFound)
	}
	if err := inventory.ValidateWithdrawAmount(amount, m.Amount.Int()); err != nil {
		return meds, err
	}
	err := s.api.Return(ctx, api.ReturnRequest{
		MedID:   m.ID,
		MedName: m.Name,
		Amount:  models.Amount(amount),
		Expire:  m.Expire,
		Type:    m.Type,
	})
	if err != nil {
		return meds, err
	}
	return inventory.ApplyReturn(meds, id, amount), nil
}

// ExpirationReport is the content of the expiration screen.
type ExpirationReport struct {
	inventory.ExpiryReport
	LowStock []models.Medicine
}

// ExpirationReport loads the expiration list and the low-stock list and
// buckets the former relative to today.
func (s *StockService) ExpirationReport(ctx context.Context, today models.Date) (ExpirationReport, error) {
	meds, err := s.api.Expiration(ctx)
	if err != nil {
		return ExpirationReport{}, fmt.Errorf("load expiration list: %w", err)
	}
	low, err := s.api.LowStock(ctx)
	if err != nil {
		return ExpirationReport{}, fmt.Errorf("load low stock: %w", err)
	}
	return ExpirationReport{
		ExpiryReport: inventory.BucketMedicines(meds, today),
		LowStock:     low,
	}, nil
}

// NotifyExpiry triggers the expiry notification.
func (s *StockService) NotifyExpiry(ctx context.Context) (string, error) {
	return s.api.NotifyExpiry(ctx)
}

// NotifyLowStock triggers the low-stock notification.
func (s *StockService) NotifyLowStock(ctx context.Context) (string, error) {
	return s.api.NotifyLowStock(ctx)
}

// Quantities returns the on-hand totals per location.
func (s *StockService) Quantities(ctx context.Context) (models.StockQuantity, error) {
	return s.api.Quantities(ctx)
}

// Vaccines returns the vaccine stock.
func (s *StockService) Vaccines(ctx context.Context) ([]models.Vaccine, error) {
	return s.api.Vaccines(ctx)
}
