package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/atinyakov/medstock/internal/inventory"
	"github.com/atinyakov/medstock/internal/models"
	"github.com/atinyakov/medstock/internal/service"
)

const secondaryPath = "/stock/secondary"

type secondaryData struct {
	tableData[models.Medicine]
	Today models.Date
}

// Secondary shows a page of the secondary stock. Empty rows are removed
// remotely while loading.
func (h *Handler) Secondary(w http.ResponseWriter, r *http.Request) {
	meds, err := h.Stock.SecondaryStock(r.Context())
	if err != nil {
		h.loadFailed(w, r, err)
		return
	}
	p := h.pager(r, len(meds))
	h.render(w, r, "secondary", "Secondary stock", secondaryData{
		tableData: tableData[models.Medicine]{
			Rows:  inventory.Paginate(p, meds),
			Pager: newPageView(secondaryPath, p, len(meds)),
		},
		Today: h.today(),
	})
}

// ReturnMed moves an amount of a secondary row back to the main stock.
func (h *Handler) ReturnMed(w http.ResponseWriter, r *http.Request) {
	back := pageURL(secondaryPath, formPage(r))
	amount, err := inventory.ParseAmount(r.PostFormValue("amount"))
	if err != nil {
		h.fail(w, r, err, back)
		return
	}
	meds, err := h.Stock.SecondaryStock(r.Context())
	if err != nil {
		h.fail(w, r, err, back)
		return
	}
	p := h.pager(r, len(meds))
	left, err := h.Stock.Return(r.Context(), meds, models.ID(chi.URLParam(r, "id")), amount)
	if err != nil {
		h.fail(w, r, err, back)
		return
	}
	p.AfterDelete(len(left))
	h.done(w, r, fmt.Sprintf("Returned %d to the main stock", amount), pageURL(secondaryPath, p.Page))
}

// LogWithdrawal records medicine dispensed from a secondary row.
func (h *Handler) LogWithdrawal(w http.ResponseWriter, r *http.Request) {
	back := pageURL(secondaryPath, formPage(r))
	meds, err := h.Stock.SecondaryStock(r.Context())
	if err != nil {
		h.fail(w, r, err, back)
		return
	}
	id := chi.URLParam(r, "id")
	med, ok := inventory.FindMedicine(meds, models.ID(id))
	if !ok {
		h.fail(w, r, fmt.Errorf("medicine %s: %w", id, service.ErrNotFound), back)
		return
	}
	form, err := withdrawalForm(r)
	if err != nil {
		h.fail(w, r, err, back)
		return
	}
	if _, err := h.Logs.RecordWithdrawal(r.Context(), med, form); err != nil {
		h.fail(w, r, err, back)
		return
	}
	h.done(w, r, "Withdrawal recorded", back)
}

// SecondaryQR serves the QR label of a secondary stock row.
func (h *Handler) SecondaryQR(w http.ResponseWriter, r *http.Request) {
	meds, err := h.Stock.SecondaryStock(r.Context())
	if err != nil {
		h.loadFailed(w, r, err)
		return
	}
	h.serveQR(w, r, meds, models.SecondaryStock)
}

func withdrawalForm(r *http.Request) (models.WithdrawalLog, error) {
	l := models.WithdrawalLog{
		Recipient: r.PostFormValue("recip"),
		Note:      r.PostFormValue("note"),
	}
	if s := strings.TrimSpace(r.PostFormValue("amount")); s != "" {
		amount, err := inventory.ParseAmount(s)
		if err != nil {
			return l, err
		}
		l.Amount = models.Amount(amount)
	}
	if s := strings.TrimSpace(r.PostFormValue("wd_date")); s != "" {
		d, err := models.ParseDate(s)
		if err != nil {
			return l, fmt.Errorf("%w: wd_date must be a date", inventory.ErrRequired)
		}
		l.Date = d
	}
	return l, nil
}
