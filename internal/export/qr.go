package export

import (
	"fmt"
	"strings"

	"github.com/skip2/go-qrcode"

	"github.com/atinyakov/medstock/internal/models"
)

// DefaultQRSize is the side of a QR label in pixels.
const DefaultQRSize = 180

// QRFilename returns the download name of the label of medicine id.
func QRFilename(id models.ID) string {
	return "qrcode-med-" + id.String() + ".png"
}

// QRText returns the label content of m. Main stock labels carry the id and
// lot number; secondary stock labels do not.
func QRText(m models.Medicine, loc models.Location) string {
	var b strings.Builder
	if loc != models.SecondaryStock {
		fmt.Fprintf(&b, "ID: %s\n", m.ID)
	}
	fmt.Fprintf(&b, "Name: %s\nAmount: %d\nType: %s\n", m.Name, m.Amount.Int(), m.Type)
	if loc != models.SecondaryStock {
		fmt.Fprintf(&b, "Lot: %s\n", m.LotNo)
	}
	fmt.Fprintf(&b, "Expire: %s", m.Expire.Display())
	return b.String()
}

// QRCode encodes the label of m as a PNG of size pixels. A non-positive size
// selects DefaultQRSize.
func QRCode(m models.Medicine, loc models.Location, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultQRSize
	}
	png, err := qrcode.Encode(QRText(m, loc), qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr code for medicine %s: %w", m.ID, err)
	}
	return png, nil
}
