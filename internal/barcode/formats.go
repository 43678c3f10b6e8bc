package barcode

import (
	"fmt"
	"strings"
)

// ParseFormat maps a user-facing symbology name to a Format.
func ParseFormat(s string) (Format, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "qr", "qrcode", "qr-code":
		return FormatQR, true
	case "datamatrix", "data-matrix":
		return FormatDataMatrix, true
	case "aztec":
		return FormatAztec, true
	case "code128", "code-128":
		return FormatCode128, true
	case "code39", "code-39":
		return FormatCode39, true
	case "ean8", "ean-8":
		return FormatEAN8, true
	case "ean13", "ean-13":
		return FormatEAN13, true
	case "upca", "upc-a":
		return FormatUPCA, true
	case "upce", "upc-e":
		return FormatUPCE, true
	case "itf", "interleaved2of5", "i2/5":
		return FormatITF, true
	case "codabar":
		return FormatCodabar, true
	default:
		return FormatUnknown, false
	}
}

// ParseFormats parses a list of names, failing on the first unknown one.
func ParseFormats(names []string) ([]Format, error) {
	out := make([]Format, 0, len(names))
	for _, n := range names {
		if strings.TrimSpace(n) == "" {
			continue
		}
		f, ok := ParseFormat(n)
		if !ok {
			return nil, fmt.Errorf("unknown barcode format: %s", n)
		}
		out = append(out, f)
	}
	return out, nil
}

func (f Format) String() string {
	switch f {
	case FormatQR:
		return "qr"
	case FormatDataMatrix:
		return "datamatrix"
	case FormatAztec:
		return "aztec"
	case FormatCode128:
		return "code128"
	case FormatCode39:
		return "code39"
	case FormatEAN8:
		return "ean8"
	case FormatEAN13:
		return "ean13"
	case FormatUPCA:
		return "upca"
	case FormatUPCE:
		return "upce"
	case FormatITF:
		return "itf"
	case FormatCodabar:
		return "codabar"
	default:
		return "unknown"
	}
}
