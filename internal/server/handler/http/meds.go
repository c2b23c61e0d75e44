package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/atinyakov/medstock/internal/export"
	"github.com/atinyakov/medstock/internal/inventory"
	"github.com/atinyakov/medstock/internal/models"
	"github.com/atinyakov/medstock/internal/service"
)

type tableData[T any] struct {
	Rows  []T
	Pager pageView
}

type medData struct {
	Med      models.Medicine
	Types    []models.MedicineType
	Location models.Location
}

// Meds shows a page of the main stock.
func (h *Handler) Meds(w http.ResponseWriter, r *http.Request) {
	meds, err := h.Stock.Medicines(r.Context())
	if err != nil {
		h.loadFailed(w, r, err)
		return
	}
	p := h.pager(r, len(meds))
	h.render(w, r, "meds", "Main stock", tableData[models.Medicine]{
		Rows:  inventory.Paginate(p, meds),
		Pager: newPageView("/meds", p, len(meds)),
	})
}

// NewMedForm shows the add-medicine form.
func (h *Handler) NewMedForm(w http.ResponseWriter, r *http.Request) {
	types, err := h.Users.Types(r.Context())
	if err != nil {
		h.loadFailed(w, r, err)
		return
	}
	h.render(w, r, "med_new", "Add medicine", medData{Types: types})
}

// CreateMed handles the add-medicine form.
func (h *Handler) CreateMed(w http.ResponseWriter, r *http.Request) {
	m, err := medicineForm(r)
	if err != nil {
		h.fail(w, r, err, "/meds/new")
		return
	}
	if err := h.Stock.AddMedicine(r.Context(), m); err != nil {
		h.fail(w, r, err, "/meds/new")
		return
	}
	h.done(w, r, "Medicine added", "/meds")
}

// Med shows one main stock row with its edit, withdraw and delete forms.
func (h *Handler) Med(w http.ResponseWriter, r *http.Request) {
	meds, err := h.Stock.Medicines(r.Context())
	if err != nil {
		h.loadFailed(w, r, err)
		return
	}
	m, ok := inventory.FindMedicine(meds, models.ID(chi.URLParam(r, "id")))
	if !ok {
		h.fail(w, r, fmt.Errorf("medicine %s: %w", chi.URLParam(r, "id"), service.ErrNotFound), "/meds")
		return
	}
	types, err := h.Users.Types(r.Context())
	if err != nil {
		h.loadFailed(w, r, err)
		return
	}
	h.render(w, r, "med", m.Name, medData{Med: m, Types: types, Location: models.MainStock})
}

// UpdateMed handles the edit form of a main stock row.
func (h *Handler) UpdateMed(w http.ResponseWriter, r *http.Request) {
	id := models.ID(chi.URLParam(r, "id"))
	back := "/meds/" + id.String()
	m, err := medicineForm(r)
	if err != nil {
		h.fail(w, r, err, back)
		return
	}
	m.ID = id
	meds, err := h.Stock.Medicines(r.Context())
	if err != nil {
		h.fail(w, r, err, back)
		return
	}
	if _, err := h.Stock.UpdateMedicine(r.Context(), meds, m); err != nil {
		h.fail(w, r, err, back)
		return
	}
	h.done(w, r, "Medicine updated", back)
}

// DeleteMed removes a main stock row.
func (h *Handler) DeleteMed(w http.ResponseWriter, r *http.Request) {
	id := models.ID(chi.URLParam(r, "id"))
	meds, err := h.Stock.Medicines(r.Context())
	if err != nil {
		h.fail(w, r, err, "/meds")
		return
	}
	p := h.pager(r, len(meds))
	left, err := h.Stock.DeleteMedicine(r.Context(), meds, id)
	if err != nil {
		h.fail(w, r, err, "/meds/"+id.String())
		return
	}
	p.AfterDelete(len(left))
	h.done(w, r, "Medicine deleted", pageURL("/meds", p.Page))
}

// WithdrawMed moves an amount of a main stock row to the secondary stock.
func (h *Handler) WithdrawMed(w http.ResponseWriter, r *http.Request) {
	id := models.ID(chi.URLParam(r, "id"))
	back := "/meds/" + id.String()
	amount, err := inventory.ParseAmount(r.PostFormValue("amount"))
	if err != nil {
		h.fail(w, r, err, back)
		return
	}
	meds, err := h.Stock.Medicines(r.Context())
	if err != nil {
		h.fail(w, r, err, back)
		return
	}
	left, err := h.Stock.Withdraw(r.Context(), meds, id, amount)
	if err != nil {
		h.fail(w, r, err, back)
		return
	}
	if _, ok := inventory.FindMedicine(left, id); !ok {
		back = "/meds"
	}
	h.done(w, r, fmt.Sprintf("Withdrew %d to the secondary stock", amount), back)
}

// MedQR serves the QR label of a main stock row as a PNG. With ?download=1
// it is sent as an attachment.
func (h *Handler) MedQR(w http.ResponseWriter, r *http.Request) {
	meds, err := h.Stock.Medicines(r.Context())
	if err != nil {
		h.loadFailed(w, r, err)
		return
	}
	h.serveQR(w, r, meds, models.MainStock)
}

func (h *Handler) serveQR(w http.ResponseWriter, r *http.Request, meds []models.Medicine, loc models.Location) {
	id := models.ID(chi.URLParam(r, "id"))
	m, ok := inventory.FindMedicine(meds, id)
	if !ok {
		http.NotFound(w, r)
		return
	}
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	if size > 1024 {
		size = 1024
	}
	png, err := export.QRCode(m, loc, size)
	if err != nil {
		h.loadFailed(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if r.URL.Query().Get("download") != "" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.QRFilename(id)))
	}
	_, _ = w.Write(png)
}

// medicineForm reads the add and edit medicine forms.
func medicineForm(r *http.Request) (models.Medicine, error) {
	m := models.Medicine{
		Name:  strings.TrimSpace(r.PostFormValue("med_name")),
		Type:  strings.TrimSpace(r.PostFormValue("type")),
		LotNo: strings.TrimSpace(r.PostFormValue("lotno")),
	}
	amount, err := inventory.ParseAmount(r.PostFormValue("amount"))
	if err != nil {
		return m, err
	}
	m.Amount = models.Amount(amount)
	if s := strings.TrimSpace(r.PostFormValue("expire")); s != "" {
		d, err := models.ParseDate(s)
		if err != nil {
			return m, fmt.Errorf("%w: expire must be a date", inventory.ErrRequired)
		}
		m.Expire = d
	}
	return m, nil
}
