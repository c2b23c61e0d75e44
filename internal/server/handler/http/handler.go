// Package http provides the dashboard web UI: HTML handlers for every
// inventory screen and the router that wires them with the session guard,
// request logging, metrics and login throttling.
package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/medstock/internal/client/api"
	"github.com/atinyakov/medstock/internal/client/session"
	"github.com/atinyakov/medstock/internal/inventory"
	"github.com/atinyakov/medstock/internal/middleware"
	"github.com/atinyakov/medstock/internal/models"
	"github.com/atinyakov/medstock/internal/service"
)

// AuthService defines the sign-in operations used by the handlers.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*session.Claims, error)
	Logout() error
	RegisterMember(ctx context.Context, u models.User) (string, error)
}

// StockService defines the stock operations used by the handlers.
type StockService interface {
	Medicines(ctx context.Context) ([]models.Medicine, error)
	AddMedicine(ctx context.Context, m models.Medicine) error
	UpdateMedicine(ctx context.Context, meds []models.Medicine, m models.Medicine) ([]models.Medicine, error)
	DeleteMedicine(ctx context.Context, meds []models.Medicine, id models.ID) ([]models.Medicine, error)
	Withdraw(ctx context.Context, meds []models.Medicine, id models.ID, amount int) ([]models.Medicine, error)
	SecondaryStock(ctx context.Context) ([]models.Medicine, error)
	Return(ctx context.Context, meds []models.Medicine, id models.ID, amount int) ([]models.Medicine, error)
	ExpirationReport(ctx context.Context, today models.Date) (service.ExpirationReport, error)
	NotifyExpiry(ctx context.Context) (string, error)
	NotifyLowStock(ctx context.Context) (string, error)
	Quantities(ctx context.Context) (models.StockQuantity, error)
	Vaccines(ctx context.Context) ([]models.Vaccine, error)
}

// LogService defines the withdrawal log operations used by the handlers.
type LogService interface {
	Logs(ctx context.Context) ([]models.WithdrawalLog, error)
	DeleteLog(ctx context.Context, logs []models.WithdrawalLog, id models.ID) ([]models.WithdrawalLog, error)
	RecordWithdrawal(ctx context.Context, med models.Medicine, form models.WithdrawalLog) (models.WithdrawalLog, error)
	Stats(ctx context.Context) (service.Stats, error)
	MedicineNames(ctx context.Context) ([]string, error)
	MonthlyWithdrawals(ctx context.Context, names []string) (models.MonthlyWithdrawals, error)
}

// UserService defines the account and catalog operations used by the handlers.
type UserService interface {
	Users(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, users []models.User, u models.User) ([]models.User, error)
	DeleteUser(ctx context.Context, users []models.User, id models.ID) ([]models.User, error)
	Profile(ctx context.Context) (models.User, error)
	UpdateProfile(ctx context.Context, current, form models.User) (models.User, error)
	Types(ctx context.Context) ([]models.MedicineType, error)
	AddType(ctx context.Context, name string) error
	DeleteType(ctx context.Context, types []models.MedicineType, id models.ID) ([]models.MedicineType, error)
}

// ReportRenderer renders the PDF downloads.
type ReportRenderer interface {
	WithdrawalReport(w io.Writer, st models.WithdrawalStats) error
	ExpirationReport(w io.Writer, report inventory.ExpiryReport, lowStock []models.Medicine) error
}

// Handler serves the dashboard pages.
type Handler struct {
	// Auth performs sign-in, sign-out and member registration.
	Auth AuthService
	// Stock serves the main stock, secondary stock and expiration screens.
	Stock StockService
	// Logs serves the withdrawal log and statistics screens.
	Logs LogService
	// Users serves user management, settings and medicine types.
	Users UserService
	// Reports renders PDF downloads.
	Reports ReportRenderer
	// PageSize is the number of rows per table page.
	PageSize int
	// Log receives handler errors.
	Log *zap.Logger

	pages pageSet
	now   func() time.Time
}

// NewHandler constructs a Handler and parses the page templates.
func NewHandler(
	auth AuthService,
	stock StockService,
	logs LogService,
	users UserService,
	reports ReportRenderer,
	pageSize int,
	log *zap.Logger,
) (*Handler, error) {
	pages, err := parsePages()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		Auth:     auth,
		Stock:    stock,
		Logs:     logs,
		Users:    users,
		Reports:  reports,
		PageSize: pageSize,
		Log:      log,
		pages:    pages,
		now:      time.Now,
	}, nil
}

func (h *Handler) today() models.Date {
	return models.DateOf(h.now())
}

// view is the data passed to every page template.
type view struct {
	Title string
	User  *session.Claims
	Flash *flash
	Data  any
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, page, title string, data any) {
	h.write(w, r, http.StatusOK, page, view{Title: title, Flash: popFlash(w, r), Data: data})
}

func (h *Handler) write(w http.ResponseWriter, r *http.Request, status int, page string, v view) {
	v.User = middleware.ClaimsFromContext(r.Context())
	var buf bytes.Buffer
	if err := h.pages.execute(&buf, page, v); err != nil {
		h.Log.Error("failed to render page", zap.String("page", page), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// loadFailed handles an error while loading a page. Redirecting back would
// loop, so an error page carrying the message is rendered instead.
func (h *Handler) loadFailed(w http.ResponseWriter, r *http.Request, err error) {
	if isSessionError(err) || errors.Is(err, service.ErrForbidden) {
		h.fail(w, r, err, "/")
		return
	}
	h.write(w, r, http.StatusBadGateway, "error", view{
		Title: "Error",
		Flash: &flash{Kind: flashError, Message: h.message(err)},
	})
}

func isSessionError(err error) bool {
	return errors.Is(err, api.ErrUnauthorized) || errors.Is(err, session.ErrNoSession)
}

// fail reports err to the user. Lost sessions go to the login page and
// missing permissions get 403; everything else is flashed and the browser
// is sent back to the given location.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, back string) {
	switch {
	case isSessionError(err):
		setFlash(w, flashError, "Your session has expired, please sign in again")
		http.Redirect(w, r, middleware.LoginPath, http.StatusSeeOther)
		return
	case errors.Is(err, service.ErrForbidden):
		http.Error(w, "administrator role required", http.StatusForbidden)
		return
	}
	setFlash(w, flashError, h.message(err))
	http.Redirect(w, r, back, http.StatusSeeOther)
}

func (h *Handler) message(err error) string {
	switch {
	case errors.Is(err, inventory.ErrRequired),
		errors.Is(err, inventory.ErrInvalidAmount),
		errors.Is(err, inventory.ErrWeakPassword),
		errors.Is(err, inventory.ErrNothingToUpdate),
		errors.Is(err, service.ErrNotFound):
		return capitalize(err.Error())
	}
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		return api.Message(err, "Request failed")
	}
	h.Log.Error("request failed", zap.Error(err))
	return "Something went wrong, please try again"
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	if c := s[0]; c >= 'a' && c <= 'z' {
		return string(c-'a'+'A') + s[1:]
	}
	return s
}

func (h *Handler) done(w http.ResponseWriter, r *http.Request, msg, to string) {
	setFlash(w, flashSuccess, msg)
	http.Redirect(w, r, to, http.StatusSeeOther)
}

// pageView is the pagination state of a table.
type pageView struct {
	Path  string
	Page  int
	Pages int
	Total int
}

func (p pageView) HasPrev() bool { return p.Page > 1 }
func (p pageView) HasNext() bool { return p.Page < p.Pages }
func (p pageView) Prev() int     { return p.Page - 1 }
func (p pageView) Next() int     { return p.Page + 1 }

func (h *Handler) pager(r *http.Request, n int) *inventory.Pager {
	p := inventory.NewPager(h.PageSize)
	page, _ := strconv.Atoi(r.FormValue("page"))
	p.Go(page, n)
	return p
}

func newPageView(path string, p *inventory.Pager, n int) pageView {
	return pageView{Path: path, Page: p.Page, Pages: p.PageCount(n), Total: n}
}

func pageURL(path string, page int) string {
	if page <= 1 {
		return path
	}
	return fmt.Sprintf("%s?page=%d", path, page)
}
