package shell

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/atinyakov/medstock/internal/export"
	"github.com/atinyakov/medstock/internal/inventory"
	"github.com/atinyakov/medstock/internal/models"
	"github.com/atinyakov/medstock/internal/service"
)

func (s *Shell) dashboard(ctx context.Context, _ []string) error {
	q, err := s.Stock.Quantities(ctx)
	if err != nil {
		return err
	}
	st, err := s.Logs.Stats(ctx)
	if err != nil {
		return err
	}
	report, err := s.Stock.ExpirationReport(ctx, s.today())
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Stock: %d on hand (main %d, secondary %d)\n", q.Total, q.Main, q.Secondary)
	c := st.Cards
	fmt.Fprintf(s.out, "This month: %d withdrawn, most %s, busiest %s, least %s\n",
		c.TotalWithdrawn, c.MostWithdrawn, c.BusiestDate, c.LeastWithdrawn)
	s.bucketCounts(report)
	return nil
}

func (s *Shell) bucketCounts(report service.ExpirationReport) {
	tw := s.table()
	for _, b := range inventory.Buckets {
		fmt.Fprintf(tw, "  %s\t%d\n", b, report.Count(b))
	}
	fmt.Fprintf(tw, "  low stock\t%d\n", len(report.LowStock))
	_ = tw.Flush()
}

func (s *Shell) printMeds(rows []models.Medicine) {
	if len(rows) == 0 {
		fmt.Fprintln(s.out, "No medicines")
		return
	}
	tw := s.table()
	fmt.Fprintln(tw, "ID\tNAME\tAMOUNT\tTYPE\tLOT\tEXPIRES")
	for _, m := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n", m.ID, m.Name, m.Amount, m.Type, m.LotNo, m.Expire.Display())
	}
	_ = tw.Flush()
}

func (s *Shell) listMeds(ctx context.Context, args []string) error {
	n, err := pageArg(args)
	if err != nil {
		return err
	}
	meds, err := s.Stock.Medicines(ctx)
	if err != nil {
		return err
	}
	page(s, meds, n, s.printMeds)
	return nil
}

// findMed loads the main stock and looks up the medicine named by args.
func (s *Shell) findMed(ctx context.Context, args []string) ([]models.Medicine, models.Medicine, error) {
	id, err := idArg(args)
	if err != nil {
		return nil, models.Medicine{}, err
	}
	meds, err := s.Stock.Medicines(ctx)
	if err != nil {
		return nil, models.Medicine{}, err
	}
	m, ok := inventory.FindMedicine(meds, id)
	if !ok {
		return nil, models.Medicine{}, fmt.Errorf("medicine %s: %w", id, service.ErrNotFound)
	}
	return meds, m, nil
}

func (s *Shell) showMed(ctx context.Context, args []string) error {
	_, m, err := s.findMed(ctx, args)
	if err != nil {
		return err
	}
	tw := s.table()
	fmt.Fprintf(tw, "ID\t%s\nName\t%s\nAmount\t%d\nType\t%s\nLot\t%s\nExpires\t%s\n",
		m.ID, m.Name, m.Amount, m.Type, m.LotNo, m.Expire.Display())
	return tw.Flush()
}

// askMedicine prompts for every field of a medicine, offering cur's values
// as defaults.
func (s *Shell) askMedicine(cur models.Medicine) (models.Medicine, error) {
	m := cur
	m.Name = s.in.AskDefault("Name", cur.Name)
	amount := ""
	if cur.ID != "" {
		amount = fmt.Sprint(cur.Amount)
	}
	n, err := inventory.ParseAmount(s.in.AskDefault("Amount", amount))
	if err != nil {
		return m, err
	}
	m.Amount = models.Amount(n)
	m.Type = s.in.AskDefault("Type", cur.Type)
	expire := ""
	if !cur.Expire.IsZero() {
		expire = cur.Expire.String()
	}
	if e := s.in.AskDefault("Expires (YYYY-MM-DD)", expire); e != "" {
		d, err := models.ParseDate(e)
		if err != nil {
			return m, fmt.Errorf("%w: expire must be a date", inventory.ErrRequired)
		}
		m.Expire = d
	}
	m.LotNo = s.in.AskDefault("Lot", cur.LotNo)
	return m, nil
}

func (s *Shell) addMed(ctx context.Context, _ []string) error {
	m, err := s.askMedicine(models.Medicine{})
	if err != nil {
		return err
	}
	if err := s.Stock.AddMedicine(ctx, m); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "Medicine added")
	return nil
}

func (s *Shell) editMed(ctx context.Context, args []string) error {
	meds, cur, err := s.findMed(ctx, args)
	if err != nil {
		return err
	}
	m, err := s.askMedicine(cur)
	if err != nil {
		return err
	}
	if _, err := s.Stock.UpdateMedicine(ctx, meds, m); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "Medicine updated")
	return nil
}

func (s *Shell) deleteMed(ctx context.Context, args []string) error {
	meds, m, err := s.findMed(ctx, args)
	if err != nil {
		return err
	}
	if !s.in.Confirm(fmt.Sprintf("Delete %s (%s)?", m.Name, m.ID)) {
		return s.cancelled()
	}
	if _, err := s.Stock.DeleteMedicine(ctx, meds, m.ID); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "Medicine deleted")
	return nil
}

func (s *Shell) withdraw(ctx context.Context, args []string) error {
	meds, m, err := s.findMed(ctx, args)
	if err != nil {
		return err
	}
	amount, err := inventory.ParseAmount(s.in.Ask(fmt.Sprintf("Amount (available %d)", m.Amount)))
	if err != nil {
		return err
	}
	if err := inventory.ValidateWithdrawAmount(amount, m.Amount.Int()); err != nil {
		return err
	}
	if !s.in.Confirm(fmt.Sprintf("Withdraw %d of %s to the secondary stock?", amount, m.Name)) {
		return s.cancelled()
	}
	if _, err := s.Stock.Withdraw(ctx, meds, m.ID, amount); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Withdrew %d of %s to the secondary stock\n", amount, m.Name)
	return nil
}

func (s *Shell) expiring(ctx context.Context, _ []string) error {
	report, err := s.Stock.ExpirationReport(ctx, s.today())
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Expiration as of %s\n", report.Today.Display())
	for _, b := range inventory.Buckets {
		rows := report.Buckets[b]
		if len(rows) == 0 {
			continue
		}
		fmt.Fprintf(s.out, "\n%s (%d)\n", b, len(rows))
		s.printMeds(rows)
	}
	fmt.Fprintf(s.out, "\nlow stock (%d)\n", len(report.LowStock))
	s.printMeds(report.LowStock)
	return nil
}

func (s *Shell) listSecondary(ctx context.Context, args []string) error {
	n, err := pageArg(args)
	if err != nil {
		return err
	}
	meds, err := s.Stock.SecondaryStock(ctx)
	if err != nil {
		return err
	}
	page(s, meds, n, s.printMeds)
	return nil
}

func (s *Shell) findSecondary(ctx context.Context, args []string) ([]models.Medicine, models.Medicine, error) {
	id, err := idArg(args)
	if err != nil {
		return nil, models.Medicine{}, err
	}
	meds, err := s.Stock.SecondaryStock(ctx)
	if err != nil {
		return nil, models.Medicine{}, err
	}
	m, ok := inventory.FindMedicine(meds, id)
	if !ok {
		return nil, models.Medicine{}, fmt.Errorf("medicine %s: %w", id, service.ErrNotFound)
	}
	return meds, m, nil
}

func (s *Shell) returnMed(ctx context.Context, args []string) error {
	meds, m, err := s.findSecondary(ctx, args)
	if err != nil {
		return err
	}
	amount, err := inventory.ParseAmount(s.in.Ask(fmt.Sprintf("Amount (available %d)", m.Amount)))
	if err != nil {
		return err
	}
	if !s.in.Confirm(fmt.Sprintf("Return %d of %s to the main stock?", amount, m.Name)) {
		return s.cancelled()
	}
	if _, err := s.Stock.Return(ctx, meds, m.ID, amount); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Returned %d of %s to the main stock\n", amount, m.Name)
	return nil
}

func (s *Shell) logWithdrawal(ctx context.Context, args []string) error {
	_, m, err := s.findSecondary(ctx, args)
	if err != nil {
		return err
	}
	var form models.WithdrawalLog
	amount, err := inventory.ParseAmount(s.in.Ask(fmt.Sprintf("Amount (available %d)", m.Amount)))
	if err != nil {
		return err
	}
	form.Amount = models.Amount(amount)
	d, err := models.ParseDate(s.in.AskDefault("Date (YYYY-MM-DD)", s.today().String()))
	if err != nil {
		return fmt.Errorf("%w: wd_date must be a date", inventory.ErrRequired)
	}
	form.Date = d
	form.Recipient = s.in.Ask("Recipient")
	form.Note = s.in.Ask("Note")
	if _, err := s.Logs.RecordWithdrawal(ctx, m, form); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "Withdrawal recorded")
	return nil
}

func (s *Shell) qr(ctx context.Context, args []string) error {
	_, m, err := s.findMed(ctx, args)
	if err != nil {
		return err
	}
	png, err := export.QRCode(m, models.MainStock, export.DefaultQRSize)
	if err != nil {
		return err
	}
	return s.writeFile(args[1:], export.QRFilename(m.ID), png)
}

// writeFile writes data to the path in args, or to name under Dir.
func (s *Shell) writeFile(args []string, name string, data []byte) error {
	path := filepath.Join(s.Dir, name)
	if len(args) > 0 {
		path = args[0]
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(s.out, "Saved %s\n", path)
	return nil
}

func (s *Shell) notifyExpiry(ctx context.Context, _ []string) error {
	msg, err := s.Stock.NotifyExpiry(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, orDefault(msg, "Expiry notification sent"))
	return nil
}

func (s *Shell) notifyLowStock(ctx context.Context, _ []string) error {
	msg, err := s.Stock.NotifyLowStock(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, orDefault(msg, "Low stock notification sent"))
	return nil
}

func (s *Shell) vaccines(ctx context.Context, _ []string) error {
	vs, err := s.Stock.Vaccines(ctx)
	if err != nil {
		return err
	}
	if len(vs) == 0 {
		fmt.Fprintln(s.out, "No vaccines")
		return nil
	}
	tw := s.table()
	fmt.Fprintln(tw, "NAME\tAMOUNT\tEXPIRES\tLOCATION")
	for _, v := range vs {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", v.Name, v.Amount, v.Expire.Display(), v.Location)
	}
	return tw.Flush()
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
