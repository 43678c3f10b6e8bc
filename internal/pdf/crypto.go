package pdf

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// ErrPasswordRequired is returned for encrypted files opened without the
// right password.
var ErrPasswordRequired = errors.New("pdf: file is password protected (use --pdf-password)")

// IsPasswordError checks if an error is related to password/encryption issues.
func IsPasswordError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrPasswordRequired) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	for _, keyword := range []string{"password", "encrypted", "decrypt", "authentication"} {
		if strings.Contains(errStr, keyword) {
			return true
		}
	}
	return false
}

// checkPage verifies that page exists in an unencrypted document. Encrypted
// documents are reported as ErrPasswordRequired.
func checkPage(filename string, page int) error {
	n, err := api.PageCountFile(filename)
	if err != nil {
		if IsPasswordError(err) {
			return fmt.Errorf("%w: %v", ErrPasswordRequired, err)
		}
		return fmt.Errorf("failed to read PDF: %w", err)
	}
	if page > n {
		return fmt.Errorf("page %d out of range (document has %d)", page, n)
	}
	return nil
}
