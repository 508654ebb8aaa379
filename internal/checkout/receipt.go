package checkout

import (
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/five82/presser/internal/api"
)

// Receipt is a paid booking as shown on the confirmation screen.
type Receipt struct {
	api.Receipt
}

// QRPayload is the string encoded in the confirmation QR code. The cleaner
// scans it at pickup.
func (r Receipt) QRPayload() string {
	return fmt.Sprintf("presser:booking:%s:%s", r.BookingID, r.ConfirmationCode)
}

// QR renders the confirmation code as terminal block characters.
func (r Receipt) QR() (string, error) {
	if strings.TrimSpace(r.BookingID) == "" {
		return "", fmt.Errorf("receipt has no booking id")
	}
	q, err := qrcode.New(r.QRPayload(), qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("encode qr: %w", err)
	}
	return halfBlocks(q.Bitmap()), nil
}

// halfBlocks packs two bitmap rows into each text line using upper/lower
// half block glyphs, so the code stays roughly square in a terminal.
func halfBlocks(bitmap [][]bool) string {
	var b strings.Builder
	for y := 0; y < len(bitmap); y += 2 {
		for x := range bitmap[y] {
			top := bitmap[y][x]
			bottom := y+1 < len(bitmap) && bitmap[y+1][x]
			switch {
			case top && bottom:
				b.WriteRune('█')
			case top:
				b.WriteRune('▀')
			case bottom:
				b.WriteRune('▄')
			default:
				b.WriteRune(' ')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// WriteQR saves the confirmation code as a PNG.
func (r Receipt) WriteQR(path string, size int) error {
	if size <= 0 {
		size = 256
	}
	if err := qrcode.WriteFile(r.QRPayload(), qrcode.Medium, size, path); err != nil {
		return fmt.Errorf("write qr: %w", err)
	}
	return nil
}
