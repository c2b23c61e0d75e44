package service

import (
	"context"
	"slices"
	"strings"

	"github.com/atinyakov/medstock/internal/inventory"
	"github.com/atinyakov/medstock/internal/models"
)

// UnspecifiedActor is recorded when the signed-in user has no name.
const UnspecifiedActor = "unspecified"

// LogAPI defines the remote operations required by the log service.
type LogAPI interface {
	Logs(ctx context.Context) ([]models.WithdrawalLog, error)
	DeleteLog(ctx context.Context, id models.ID) error
	RecordWithdrawal(ctx context.Context, l models.WithdrawalLog) error
	Stats(ctx context.Context) (models.WithdrawalStats, error)
	MedicineNames(ctx context.Context) ([]string, error)
	MonthlyWithdrawals(ctx context.Context, names []string) (models.MonthlyWithdrawals, error)
}

// LogService implements the withdrawal log and statistics screens.
type LogService struct {
	api      LogAPI
	identity Identity
}

// NewLogService constructs a LogService.
func NewLogService(client LogAPI, identity Identity) *LogService {
	return &LogService{api: client, identity: identity}
}

// Logs returns the withdrawal log.
func (s *LogService) Logs(ctx context.Context) ([]models.WithdrawalLog, error) {
	return s.api.Logs(ctx)
}

// DeleteLog removes an entry, returning logs without it.
func (s *LogService) DeleteLog(ctx context.Context, logs []models.WithdrawalLog, id models.ID) ([]models.WithdrawalLog, error) {
	if err := s.api.DeleteLog(ctx, id); err != nil {
		return logs, err
	}
	return slices.DeleteFunc(slices.Clone(logs), func(l models.WithdrawalLog) bool {
		return l.ID == id
	}), nil
}

// RecordWithdrawal logs medicine dispensed from the secondary stock row med.
// Amount, date and recipient come from form; the actor is the signed-in user.
func (s *LogService) RecordWithdrawal(ctx context.Context, med models.Medicine, form models.WithdrawalLog) (models.WithdrawalLog, error) {
	if err := inventory.ValidateWithdrawalLog(form, med.Amount.Int()); err != nil {
		return models.WithdrawalLog{}, err
	}
	entry := models.WithdrawalLog{
		MedID:     med.ID,
		MedName:   med.Name,
		Amount:    form.Amount,
		Date:      form.Date,
		Action:    models.ActionWithdraw,
		Actor:     s.actor(),
		Recipient: strings.TrimSpace(form.Recipient),
		Note:      strings.TrimSpace(form.Note),
	}
	if err := s.api.RecordWithdrawal(ctx, entry); err != nil {
		return models.WithdrawalLog{}, err
	}
	return entry, nil
}

func (s *LogService) actor() string {
	if s.identity == nil {
		return UnspecifiedActor
	}
	claims, err := s.identity.Claims()
	if err != nil || claims.DisplayName() == "" {
		return UnspecifiedActor
	}
	return claims.DisplayName()
}

// Stats is the content of the statistics panel.
type Stats struct {
	models.WithdrawalStats
	Cards inventory.Summary
}

// Stats returns the withdrawal statistics and their headline cards.
func (s *LogService) Stats(ctx context.Context) (Stats, error) {
	st, err := s.api.Stats(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Stats{WithdrawalStats: st, Cards: inventory.SummaryFromStats(st)}, nil
}

// MedicineNames returns the names available to the monthly chart filter.
func (s *LogService) MedicineNames(ctx context.Context) ([]string, error) {
	return s.api.MedicineNames(ctx)
}

// MonthlyWithdrawals returns the monthly series, filtered by names. Blank
// and duplicate names are dropped.
func (s *LogService) MonthlyWithdrawals(ctx context.Context, names []string) (models.MonthlyWithdrawals, error) {
	var filter []string
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n != "" && !slices.Contains(filter, n) {
			filter = append(filter, n)
		}
	}
	return s.api.MonthlyWithdrawals(ctx, filter)
}
