package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/atinyakov/medstock/internal/inventory"
	"github.com/atinyakov/medstock/internal/models"
)

// RankedRows is the number of medicines listed in each ranking table.
const RankedRows = 10

var rankColumns = []column{
	{title: "Rank", width: 20, align: "C"},
	{title: "Medicine", align: "L"},
	{title: "Withdrawn (units)", width: 40, align: "R"},
}

// WithdrawalReportFilename returns the download name of the withdrawal
// report generated at t.
func WithdrawalReportFilename(t time.Time) string {
	return "withdrawal_report_" + t.Format(models.DateLayout) + ".pdf"
}

// ExpirationReportFilename returns the download name of the expiration
// report generated at t.
func ExpirationReportFilename(t time.Time) string {
	return "expiration_report_" + t.Format(models.DateLayout) + ".pdf"
}

// WithdrawalReport writes the monthly withdrawal summary: headline cards
// and the most and least withdrawn medicines.
func (r *Renderer) WithdrawalReport(w io.Writer, st models.WithdrawalStats) error {
	now := r.now()
	cards := inventory.SummaryFromStats(st)

	d := r.newDocument("Medicine withdrawal report", now)
	d.pdf.Ln(4)
	d.centered(20, "Medicine withdrawal report")
	d.centered(16, "Month: "+now.Format("January 2006"))
	d.pdf.Ln(6)

	d.keyValues([][2]string{
		{"Total withdrawn this month:", strconv.Itoa(cards.TotalWithdrawn)},
		{"Most withdrawn medicine:", cards.MostWithdrawn},
		{"Busiest date:", cards.BusiestDate},
		{"Least withdrawn medicine:", cards.LeastWithdrawn},
	})

	d.heading(fmt.Sprintf("Top %d most withdrawn medicines", RankedRows))
	d.table(rankColumns, rankRows(st.TopMeds), blue)

	d.heading(fmt.Sprintf("Top %d least withdrawn medicines", RankedRows))
	d.table(rankColumns, rankRows(st.BottomMeds), red)

	return d.output(w)
}

func rankRows(meds []models.MedicineTotal) [][]string {
	if len(meds) > RankedRows {
		meds = meds[:RankedRows]
	}
	rows := make([][]string, 0, len(meds))
	for i, m := range meds {
		rows = append(rows, []string{strconv.Itoa(i + 1), m.Name, strconv.Itoa(m.Total.Int())})
	}
	return rows
}

var expiryColumns = []column{
	{title: "ID", width: 22, align: "C"},
	{title: "Medicine"},
	{title: "Type", width: 35},
	{title: "Lot", width: 35},
	{title: "Amount", width: 25, align: "R"},
	{title: "Expires", width: 30, align: "C"},
	{title: "Days left", width: 25, align: "R"},
}

// ExpirationReport writes one table per non-empty expiry bucket followed by
// the low-stock list.
func (r *Renderer) ExpirationReport(w io.Writer, report inventory.ExpiryReport, lowStock []models.Medicine) error {
	d := r.newDocument("Medicine expiration report", r.now())
	d.pdf.Ln(4)
	d.centered(20, "Medicine expiration report")
	d.centered(14, "As of "+report.Today.Display())

	for _, b := range inventory.Buckets {
		meds := report.Buckets[b]
		if len(meds) == 0 {
			continue
		}
		head := amber
		if b == inventory.Expired {
			head = red
		}
		d.heading(fmt.Sprintf("%s (%d)", bucketTitle(b), len(meds)))
		rows := make([][]string, 0, len(meds))
		for _, m := range meds {
			days := "-"
			if !m.Expire.IsZero() {
				days = strconv.Itoa(m.Expire.DaysUntil(report.Today))
			}
			rows = append(rows, []string{
				m.ID.String(), m.Name, m.Type, m.LotNo,
				strconv.Itoa(m.Amount.Int()), m.Expire.Display(), days,
			})
		}
		d.table(expiryColumns, rows, head)
	}
	if report.Total() == 0 {
		d.heading("No medicines on the expiration list")
	}

	d.heading(fmt.Sprintf("Low stock (%d)", len(lowStock)))
	rows := make([][]string, 0, len(lowStock))
	for _, m := range lowStock {
		rows = append(rows, []string{
			m.ID.String(), m.Name, m.Type, m.LotNo,
			strconv.Itoa(m.Amount.Int()), m.Expire.Display(), "",
		})
	}
	d.table(expiryColumns[:6], rows, blue)

	return d.output(w)
}

func bucketTitle(b inventory.Bucket) string {
	s := b.String()
	return strings.ToUpper(s[:1]) + s[1:]
}
