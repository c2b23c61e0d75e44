package shell

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/atinyakov/medstock/internal/export"
	"github.com/atinyakov/medstock/internal/models"
)

func (s *Shell) listLogs(ctx context.Context, args []string) error {
	n, err := pageArg(args)
	if err != nil {
		return err
	}
	logs, err := s.Logs.Logs(ctx)
	if err != nil {
		return err
	}
	page(s, logs, n, func(rows []models.WithdrawalLog) {
		if len(rows) == 0 {
			fmt.Fprintln(s.out, "No withdrawals recorded")
			return
		}
		tw := s.table()
		fmt.Fprintln(tw, "ID\tDATE\tMEDICINE\tAMOUNT\tACTION\tBY\tRECIPIENT\tNOTE")
		for _, l := range rows {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\t%s\t%s\n",
				l.ID, l.Date.Display(), l.MedName, l.Amount, l.Action, l.Actor, l.Recipient, l.Note)
		}
		_ = tw.Flush()
	})
	return nil
}

func (s *Shell) deleteLog(ctx context.Context, args []string) error {
	id, err := idArg(args)
	if err != nil {
		return err
	}
	logs, err := s.Logs.Logs(ctx)
	if err != nil {
		return err
	}
	if !s.in.Confirm(fmt.Sprintf("Delete log entry %s?", id)) {
		return s.cancelled()
	}
	if _, err := s.Logs.DeleteLog(ctx, logs, id); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "Log entry deleted")
	return nil
}

func (s *Shell) stats(ctx context.Context, _ []string) error {
	st, err := s.Logs.Stats(ctx)
	if err != nil {
		return err
	}
	c := st.Cards
	tw := s.table()
	fmt.Fprintf(tw, "Total withdrawn\t%d\nMost withdrawn\t%s\nBusiest date\t%s\nLeast withdrawn\t%s\n",
		c.TotalWithdrawn, c.MostWithdrawn, c.BusiestDate, c.LeastWithdrawn)
	_ = tw.Flush()
	s.ranking("Most withdrawn", st.TopMeds)
	s.ranking("Least withdrawn", st.BottomMeds)
	return nil
}

func (s *Shell) ranking(title string, rows []models.MedicineTotal) {
	fmt.Fprintf(s.out, "\n%s\n", title)
	if len(rows) == 0 {
		fmt.Fprintln(s.out, "  none")
		return
	}
	tw := s.table()
	for i, r := range rows {
		fmt.Fprintf(tw, "  %d.\t%s\t%d\n", i+1, r.Name, r.Total)
	}
	_ = tw.Flush()
}

func (s *Shell) monthly(ctx context.Context, args []string) error {
	var names []string
	for _, a := range args {
		names = append(names, strings.Split(a, ",")...)
	}
	names = slices.DeleteFunc(names, func(n string) bool { return strings.TrimSpace(n) == "" })
	series, err := s.Logs.MonthlyWithdrawals(ctx, names)
	if err != nil {
		return err
	}
	if len(series.Datasets) == 0 {
		fmt.Fprintln(s.out, "No withdrawals")
		return nil
	}
	tw := s.table()
	fmt.Fprintf(tw, "MEDICINE\t%s\n", strings.Join(series.Labels, "\t"))
	for _, d := range series.Datasets {
		cells := make([]string, len(d.Data))
		for i, v := range d.Data {
			cells[i] = fmt.Sprint(v.Int())
		}
		fmt.Fprintf(tw, "%s\t%s\n", d.Label, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

func (s *Shell) withdrawalReport(ctx context.Context, args []string) error {
	st, err := s.Logs.Stats(ctx)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := s.Reports.WithdrawalReport(&buf, st.WithdrawalStats); err != nil {
		return fmt.Errorf("render withdrawal report: %w", err)
	}
	return s.writeFile(args, export.WithdrawalReportFilename(s.now()), buf.Bytes())
}

func (s *Shell) expirationReport(ctx context.Context, args []string) error {
	report, err := s.Stock.ExpirationReport(ctx, s.today())
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := s.Reports.ExpirationReport(&buf, report.ExpiryReport, report.LowStock); err != nil {
		return fmt.Errorf("render expiration report: %w", err)
	}
	return s.writeFile(args, export.ExpirationReportFilename(s.now()), buf.Bytes())
}
