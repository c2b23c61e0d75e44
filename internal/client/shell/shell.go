// Package shell implements the interactive command line front end of the
// inventory: a line-oriented REPL over the same services as the dashboard.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/medstock/internal/client/api"
	"github.com/atinyakov/medstock/internal/client/session"
	"github.com/atinyakov/medstock/internal/inventory"
	"github.com/atinyakov/medstock/internal/models"
	"github.com/atinyakov/medstock/internal/service"
)

// AuthService defines the sign-in operations used by the shell.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*session.Claims, error)
	Logout() error
	RegisterMember(ctx context.Context, u models.User) (string, error)
}

// StockService defines the stock operations used by the shell.
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

// LogService defines the withdrawal log operations used by the shell.
type LogService interface {
	Logs(ctx context.Context) ([]models.WithdrawalLog, error)
	DeleteLog(ctx context.Context, logs []models.WithdrawalLog, id models.ID) ([]models.WithdrawalLog, error)
	RecordWithdrawal(ctx context.Context, med models.Medicine, form models.WithdrawalLog) (models.WithdrawalLog, error)
	Stats(ctx context.Context) (service.Stats, error)
	MonthlyWithdrawals(ctx context.Context, names []string) (models.MonthlyWithdrawals, error)
}

// UserService defines the account and catalog operations used by the shell.
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

// ReportRenderer renders the PDF reports.
type ReportRenderer interface {
	WithdrawalReport(w io.Writer, st models.WithdrawalStats) error
	ExpirationReport(w io.Writer, report inventory.ExpiryReport, lowStock []models.Medicine) error
}

// Services groups the collaborators of the shell.
type Services struct {
	Auth    AuthService
	Stock   StockService
	Logs    LogService
	Users   UserService
	Reports ReportRenderer
}

// Shell is the interactive command loop.
type Shell struct {
	Services
	// PageSize is the number of rows per listing page.
	PageSize int
	// Dir is where reports and QR labels are written when no file is given.
	Dir string

	in   *Prompter
	out  io.Writer
	log  *zap.Logger
	now  func() time.Time
	cmds map[string]command
}

type command struct {
	usage string
	help  string
	run   func(ctx context.Context, args []string) error
}

var errUsage = errors.New("usage")

// New returns a Shell reading commands from in and printing to out.
func New(svc Services, in io.Reader, out io.Writer, pageSize int, log *zap.Logger) *Shell {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Shell{
		Services: svc,
		PageSize: pageSize,
		Dir:      ".",
		in:       NewPrompter(in, out),
		out:      out,
		log:      log,
		now:      time.Now,
	}
	s.cmds = s.commands()
	return s
}

func (s *Shell) commands() map[string]command {
	return map[string]command{
		"dashboard":   {"dashboard", "stock totals, this month's withdrawals and expiry counts", s.dashboard},
		"meds":        {"meds [page]", "list the main stock", s.listMeds},
		"med":         {"med <id>", "show one medicine", s.showMed},
		"add":         {"add", "add a medicine to the main stock", s.addMed},
		"edit":        {"edit <id>", "edit a medicine", s.editMed},
		"delete":      {"delete <id>", "delete a medicine", s.deleteMed},
		"withdraw":    {"withdraw <id>", "move medicine to the secondary stock", s.withdraw},
		"expiring":    {"expiring", "expiration report and low stock", s.expiring},
		"secondary":   {"secondary [page]", "list the secondary stock", s.listSecondary},
		"return":      {"return <id>", "return secondary stock to the main stock", s.returnMed},
		"logwithdraw": {"logwithdraw <id>", "record medicine dispensed from the secondary stock", s.logWithdrawal},
		"logs":        {"logs [page]", "list the withdrawal log", s.listLogs},
		"dellog":      {"dellog <id>", "delete a withdrawal log entry", s.deleteLog},
		"stats":       {"stats", "withdrawal statistics", s.stats},
		"monthly":     {"monthly [names]", "monthly withdrawals, optionally for comma separated names", s.monthly},
		"report":      {"report [file]", "write the withdrawal report PDF", s.withdrawalReport},
		"expreport":   {"expreport [file]", "write the expiration report PDF", s.expirationReport},
		"qr":          {"qr <id> [file]", "write the QR label of a medicine as PNG", s.qr},
		"notify":      {"notify", "send the expiry notification", s.notifyExpiry},
		"notifylow":   {"notifylow", "send the low stock notification", s.notifyLowStock},
		"vaccines":    {"vaccines", "list vaccines", s.vaccines},
		"types":       {"types", "list medicine types", s.listTypes},
		"addtype":     {"addtype", "add a medicine type", s.addType},
		"deltype":     {"deltype <id>", "delete a medicine type", s.deleteType},
		"users":       {"users [page]", "list users (admin)", s.listUsers},
		"adduser":     {"adduser", "register a member (admin)", s.addUser},
		"edituser":    {"edituser <id>", "edit a user (admin)", s.editUser},
		"deluser":     {"deluser <id>", "delete a user (admin)", s.deleteUser},
		"me":          {"me", "show your profile", s.me},
		"settings":    {"settings", "update your profile", s.settings},
	}
}

// Run reads and executes commands until exit, end of input or ctx is done.
func (s *Shell) Run(ctx context.Context) error {
	fmt.Fprintln(s.out, "Type 'help' for a list of commands.")
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(s.out, "medstock> ")
		line, ok := s.in.Line()
		if !ok {
			fmt.Fprintln(s.out)
			return nil
		}
		if s.Exec(ctx, line) {
			return nil
		}
	}
}

// Exec runs one command line and reports whether the shell should exit.
func (s *Shell) Exec(ctx context.Context, line string) (quit bool) {
	args := strings.Fields(line)
	if len(args) == 0 {
		return false
	}
	switch args[0] {
	case "exit", "quit":
		fmt.Fprintln(s.out, "Bye")
		return true
	case "help":
		s.help()
		return false
	}
	cmd, ok := s.cmds[args[0]]
	if !ok {
		fmt.Fprintln(s.out, "Unknown command. Type 'help' for a list of commands.")
		return false
	}
	if err := cmd.run(ctx, args[1:]); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintf(s.out, "Usage: %s\n", cmd.usage)
			return false
		}
		fmt.Fprintf(s.out, "Error: %s\n", s.describe(err))
	}
	return false
}

func (s *Shell) help() {
	names := make([]string, 0, len(s.cmds))
	for name := range s.cmds {
		names = append(names, name)
	}
	slices.Sort(names)
	tw := s.table()
	for _, name := range names {
		fmt.Fprintf(tw, "  %s\t%s\n", s.cmds[name].usage, s.cmds[name].help)
	}
	fmt.Fprintf(tw, "  help\tthis list\n  exit\tleave the shell\n")
	_ = tw.Flush()
}

// describe turns err into the line shown to the user.
func (s *Shell) describe(err error) string {
	switch {
	case errors.Is(err, api.ErrUnauthorized), errors.Is(err, session.ErrNoSession):
		return "your session has expired, run with -cmd login"
	case errors.Is(err, service.ErrForbidden),
		errors.Is(err, service.ErrNotFound),
		errors.Is(err, inventory.ErrRequired),
		errors.Is(err, inventory.ErrInvalidAmount),
		errors.Is(err, inventory.ErrWeakPassword),
		errors.Is(err, inventory.ErrNothingToUpdate):
		return err.Error()
	}
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		return api.Message(err, "request failed")
	}
	s.log.Error("command failed", zap.Error(err))
	return "something went wrong, please try again"
}

// Login prompts for credentials and signs in.
func (s *Shell) Login(ctx context.Context) error {
	email := s.in.Ask("Email")
	password := s.in.Ask("Password")
	claims, err := s.Auth.Login(ctx, email, password)
	if err != nil {
		return errors.New(s.describe(err))
	}
	fmt.Fprintf(s.out, "Welcome, %s\n", claims.DisplayName())
	return nil
}

// Logout clears the stored session.
func (s *Shell) Logout() error {
	if err := s.Auth.Logout(); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "Signed out")
	return nil
}

func (s *Shell) table() *tabwriter.Writer {
	return tabwriter.NewWriter(s.out, 0, 0, 2, ' ', 0)
}

func (s *Shell) today() models.Date {
	return models.DateOf(s.now())
}

func idArg(args []string) (models.ID, error) {
	if len(args) < 1 {
		return "", errUsage
	}
	return models.ID(args[0]), nil
}

func pageArg(args []string) (int, error) {
	if len(args) < 1 {
		return 1, nil
	}
	page, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, errUsage
	}
	return page, nil
}

// page slices rows to the requested page and prints the pager line after
// print has rendered them.
func page[T any](s *Shell, rows []T, n int, print func([]T)) {
	p := inventory.NewPager(s.PageSize)
	p.Go(n, len(rows))
	print(inventory.Paginate(p, rows))
	if pages := p.PageCount(len(rows)); pages > 1 {
		fmt.Fprintf(s.out, "Page %d of %d (%d rows)\n", p.Page, pages, len(rows))
	}
}

func (s *Shell) cancelled() error {
	fmt.Fprintln(s.out, "Cancelled")
	return nil
}
