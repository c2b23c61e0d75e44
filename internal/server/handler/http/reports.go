package http

import (
	"bytes"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/medstock/internal/export"
)

// WithdrawalReport downloads the monthly withdrawal report as PDF.
func (h *Handler) WithdrawalReport(w http.ResponseWriter, r *http.Request) {
	st, err := h.Logs.Stats(r.Context())
	if err != nil {
		h.fail(w, r, err, "/stats")
		return
	}
	var buf bytes.Buffer
	if err := h.Reports.WithdrawalReport(&buf, st.WithdrawalStats); err != nil {
		h.Log.Error("failed to render withdrawal report", zap.Error(err))
		http.Error(w, "failed to render report", http.StatusInternalServerError)
		return
	}
	servePDF(w, &buf, export.WithdrawalReportFilename(h.now()))
}

// ExpirationPDF downloads the expiration report as PDF.
func (h *Handler) ExpirationPDF(w http.ResponseWriter, r *http.Request) {
	report, err := h.Stock.ExpirationReport(r.Context(), h.today())
	if err != nil {
		h.fail(w, r, err, "/expiration")
		return
	}
	var buf bytes.Buffer
	if err := h.Reports.ExpirationReport(&buf, report.ExpiryReport, report.LowStock); err != nil {
		h.Log.Error("failed to render expiration report", zap.Error(err))
		http.Error(w, "failed to render report", http.StatusInternalServerError)
		return
	}
	servePDF(w, &buf, export.ExpirationReportFilename(h.now()))
}

func servePDF(w http.ResponseWriter, buf *bytes.Buffer, filename string) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	_, _ = buf.WriteTo(w)
}
