package inventory

import (
	"slices"

	"github.com/atinyakov/medstock/internal/models"
)

// ApplyWithdrawal subtracts amount from the row with the given id and drops
// rows whose amount reaches zero. The input slice is not modified.
func ApplyWithdrawal(meds []models.Medicine, id models.ID, amount int) []models.Medicine {
	out := make([]models.Medicine, 0, len(meds))
	for _, m := range meds {
		if m.ID == id {
			m.Amount -= models.Amount(amount)
		}
		if m.Amount > 0 {
			out = append(out, m)
		}
	}
	return out
}

// ApplyReturn subtracts a returned amount from a secondary stock row. Rows
// reaching zero are dropped, matching the server-side cleanup.
func ApplyReturn(meds []models.Medicine, id models.ID, amount int) []models.Medicine {
	return ApplyWithdrawal(meds, id, amount)
}

// RemoveMedicine returns meds without the row with the given id.
func RemoveMedicine(meds []models.Medicine, id models.ID) []models.Medicine {
	return slices.DeleteFunc(slices.Clone(meds), func(m models.Medicine) bool {
		return m.ID == id
	})
}

// ReplaceMedicine swaps the row with the same id for updated.
func ReplaceMedicine(meds []models.Medicine, updated models.Medicine) []models.Medicine {
	out := slices.Clone(meds)
	for i := range out {
		if out[i].ID == updated.ID {
			out[i] = updated
		}
	}
	return out
}

// ZeroAmount returns the rows whose amount is zero.
func ZeroAmount(meds []models.Medicine) []models.Medicine {
	var out []models.Medicine
	for _, m := range meds {
		if m.Amount == 0 {
			out = append(out, m)
		}
	}
	return out
}

// FindMedicine returns the row with the given id.
func FindMedicine(meds []models.Medicine, id models.ID) (models.Medicine, bool) {
	i := slices.IndexFunc(meds, func(m models.Medicine) bool { return m.ID == id })
	if i < 0 {
		return models.Medicine{}, false
	}
	return meds[i], true
}

// Placeholder is shown for a summary card without data.
const Placeholder = "-"

// Summary holds the headline cards of the statistics panel.
type Summary struct {
	TotalWithdrawn int
	MostWithdrawn  string
	BusiestDate    string
	LeastWithdrawn string
}

// SummaryFromStats derives the headline cards from the stats aggregate.
func SummaryFromStats(s models.WithdrawalStats) Summary {
	out := Summary{
		TotalWithdrawn: s.Summary.TotalWithdraw.Int(),
		MostWithdrawn:  Placeholder,
		BusiestDate:    Placeholder,
		LeastWithdrawn: Placeholder,
	}
	if len(s.TopMeds) > 0 && s.TopMeds[0].Name != "" {
		out.MostWithdrawn = s.TopMeds[0].Name
	}
	if len(s.BottomMeds) > 0 && s.BottomMeds[0].Name != "" {
		out.LeastWithdrawn = s.BottomMeds[0].Name
	}
	if s.Summary.TopDate != "" {
		out.BusiestDate = s.Summary.TopDate
		if d, err := models.ParseDate(s.Summary.TopDate); err == nil && !d.IsZero() {
			out.BusiestDate = d.Display()
		}
	}
	return out
}
