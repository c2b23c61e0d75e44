package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/atinyakov/medstock/internal/inventory"
	"github.com/atinyakov/medstock/internal/models"
)

// WithdrawalLogs shows a page of the withdrawal log.
func (h *Handler) WithdrawalLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := h.Logs.Logs(r.Context())
	if err != nil {
		h.loadFailed(w, r, err)
		return
	}
	p := h.pager(r, len(logs))
	h.render(w, r, "logs", "Withdrawal log", tableData[models.WithdrawalLog]{
		Rows:  inventory.Paginate(p, logs),
		Pager: newPageView("/logs", p, len(logs)),
	})
}

// DeleteLog removes a log entry. When it was the only entry on the last
// page the browser lands on the new last page.
func (h *Handler) DeleteLog(w http.ResponseWriter, r *http.Request) {
	logs, err := h.Logs.Logs(r.Context())
	if err != nil {
		h.fail(w, r, err, "/logs")
		return
	}
	p := h.pager(r, len(logs))
	left, err := h.Logs.DeleteLog(r.Context(), logs, models.ID(chi.URLParam(r, "id")))
	if err != nil {
		h.fail(w, r, err, pageURL("/logs", p.Page))
		return
	}
	p.AfterDelete(len(left))
	h.done(w, r, "Log entry deleted", pageURL("/logs", p.Page))
}

func formPage(r *http.Request) int {
	page, _ := strconv.Atoi(r.FormValue("page"))
	return page
}
