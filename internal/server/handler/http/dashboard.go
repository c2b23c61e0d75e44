package http

import (
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/atinyakov/medstock/internal/models"
	"github.com/atinyakov/medstock/internal/service"
)

type dashboardData struct {
	Quantities models.StockQuantity
	Stats      service.Stats
	Expiration service.ExpirationReport
}

// Dashboard shows stock totals, the withdrawal headline cards and the
// expiration bucket counts. The three panels load concurrently.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	var d dashboardData
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		d.Quantities, err = h.Stock.Quantities(ctx)
		return err
	})
	g.Go(func() (err error) {
		d.Stats, err = h.Logs.Stats(ctx)
		return err
	})
	g.Go(func() (err error) {
		d.Expiration, err = h.Stock.ExpirationReport(ctx, h.today())
		return err
	})
	if err := g.Wait(); err != nil {
		h.loadFailed(w, r, err)
		return
	}
	h.render(w, r, "dashboard", "Dashboard", d)
}

type statsData struct {
	Stats    service.Stats
	Names    []string
	Selected []string
	Monthly  models.MonthlyWithdrawals
}

// Stats shows the withdrawal statistics and the monthly series, filtered by
// the med_names query parameter (comma separated or repeated).
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	var selected []string
	for _, v := range r.URL.Query()["med_names"] {
		selected = append(selected, strings.Split(v, ",")...)
	}

	d := statsData{Selected: selected}
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		d.Stats, err = h.Logs.Stats(ctx)
		return err
	})
	g.Go(func() (err error) {
		d.Names, err = h.Logs.MedicineNames(ctx)
		return err
	})
	g.Go(func() (err error) {
		d.Monthly, err = h.Logs.MonthlyWithdrawals(ctx, selected)
		return err
	})
	if err := g.Wait(); err != nil {
		h.loadFailed(w, r, err)
		return
	}
	h.render(w, r, "stats", "Statistics", d)
}

// Expiration shows every expiry bucket and the low-stock list.
func (h *Handler) Expiration(w http.ResponseWriter, r *http.Request) {
	report, err := h.Stock.ExpirationReport(r.Context(), h.today())
	if err != nil {
		h.loadFailed(w, r, err)
		return
	}
	h.render(w, r, "expiration", "Expiration", report)
}

// NotifyExpiry triggers the expiry notification.
func (h *Handler) NotifyExpiry(w http.ResponseWriter, r *http.Request) {
	msg, err := h.Stock.NotifyExpiry(r.Context())
	if err != nil {
		h.fail(w, r, err, "/expiration")
		return
	}
	h.done(w, r, orDefault(msg, "Expiry notification sent"), "/expiration")
}

// NotifyLowStock triggers the low-stock notification.
func (h *Handler) NotifyLowStock(w http.ResponseWriter, r *http.Request) {
	msg, err := h.Stock.NotifyLowStock(r.Context())
	if err != nil {
		h.fail(w, r, err, "/expiration")
		return
	}
	h.done(w, r, orDefault(msg, "Low stock notification sent"), "/expiration")
}

// Vaccines shows the vaccine stock.
func (h *Handler) Vaccines(w http.ResponseWriter, r *http.Request) {
	vaccines, err := h.Stock.Vaccines(r.Context())
	if err != nil {
		h.loadFailed(w, r, err)
		return
	}
	h.render(w, r, "vaccines", "Vaccines", vaccines)
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
