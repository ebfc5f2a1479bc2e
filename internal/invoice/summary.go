package invoice

import (
	"strings"
	"unicode"
)

// QRPayload builds the plain-text summary encoded in the document's QR code.
func QRPayload(doc Document) string {
	inv := doc.Invoice
	lines := []string{
		"Ref: " + inv.Reference,
		"Client: " + strings.TrimSpace(inv.Client),
		"Total: " + doc.Totals.NetDisplay() + " Ar",
		"Sejour: " + FormatStayDate(inv.StayStart) + " au " + FormatStayDate(inv.StayEnd),
	}
	return strings.Join(lines, "\n")
}

// FileName returns the download name for a client's invoice, e.g.
// Facture_Dupont.pdf. Path separators and control characters become '_'.
func FileName(client string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\' || r == ':':
			return '_'
		case unicode.IsControl(r):
			return '_'
		}
		return r
	}, strings.TrimSpace(client))
	cleaned = strings.Trim(cleaned, ".")
	if cleaned == "" {
		cleaned = "client"
	}
	return "Facture_" + cleaned + ".pdf"
}
