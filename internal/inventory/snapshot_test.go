package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/atinyakov/medstock/internal/models"
)

func sampleMeds() []models.Medicine {
	return []models.Medicine{
		{ID: "1", Name: "Paracetamol", Amount: 10},
		{ID: "2", Name: "Ibuprofen", Amount: 3},
		{ID: "3", Name: "Saline", Amount: 1},
	}
}

func TestApplyWithdrawal(t *testing.T) {
	meds := sampleMeds()

	got := ApplyWithdrawal(meds, "2", 1)
	assert.Len(t, got, 3)
	assert.Equal(t, models.Amount(2), got[1].Amount)
	assert.Equal(t, models.Amount(3), meds[1].Amount, "input untouched")

	got = ApplyWithdrawal(meds, "3", 1)
	assert.Len(t, got, 2, "row reaching zero is dropped")
	_, ok := FindMedicine(got, "3")
	assert.False(t, ok)
}

func TestApplyReturn(t *testing.T) {
	got := ApplyReturn(sampleMeds(), "1", 10)
	assert.Len(t, got, 2)
}

func TestRemoveAndReplaceMedicine(t *testing.T) {
	meds := sampleMeds()

	got := RemoveMedicine(meds, "1")
	assert.Len(t, got, 2)
	assert.Len(t, meds, 3)

	got = ReplaceMedicine(meds, models.Medicine{ID: "2", Name: "Ibuprofen 400", Amount: 7})
	assert.Equal(t, "Ibuprofen 400", got[1].Name)
	assert.Equal(t, "Ibuprofen", meds[1].Name)
}

func TestZeroAmount(t *testing.T) {
	meds := []models.Medicine{{ID: "1", Amount: 0}, {ID: "2", Amount: 4}, {ID: "3"}}
	zero := ZeroAmount(meds)
	assert.Len(t, zero, 2)
}

func TestSummaryFromStats(t *testing.T) {
	empty := SummaryFromStats(models.WithdrawalStats{})
	assert.Equal(t, Summary{MostWithdrawn: "-", BusiestDate: "-", LeastWithdrawn: "-"}, empty)

	s := SummaryFromStats(models.WithdrawalStats{
		TopMeds:    []models.MedicineTotal{{Name: "Paracetamol", Total: 40}, {Name: "Saline", Total: 2}},
		BottomMeds: []models.MedicineTotal{{Name: "Saline", Total: 2}},
		Summary:    models.StatsSummary{TotalWithdraw: 42, TopDate: "2025-05-03"},
	})
	assert.Equal(t, 42, s.TotalWithdrawn)
	assert.Equal(t, "Paracetamol", s.MostWithdrawn)
	assert.Equal(t, "Saline", s.LeastWithdrawn)
	assert.Equal(t, "03/05/2025", s.BusiestDate)
}
