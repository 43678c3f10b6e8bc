package support

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/MeKo-Tech/qrlocal/internal/testutil"
	"github.com/cucumber/godog"
)

// splitContents turns `a | b` into the codes placed side by side.
func splitContents(s string) []string {
	parts := strings.Split(s, "|")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}

func (testCtx *TestContext) writeQRImage(name string, contents ...string) (string, error) {
	path := testCtx.TempPath(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory for %s: %w", name, err)
	}
	img, err := testutil.ComposeQRs(testutil.DefaultQRSize, contents...)
	if err != nil {
		return "", err
	}
	if err := testutil.WritePNG(path, img); err != nil {
		return "", err
	}
	return path, nil
}

func (testCtx *TestContext) aQRImageContaining(name, contents string) error {
	_, err := testCtx.writeQRImage(name, splitContents(contents)...)
	return err
}

func (testCtx *TestContext) aBlankImage(name string) error {
	_, err := testCtx.writeQRImage(name)
	return err
}

func (testCtx *TestContext) aPDFWithAQRCodeContaining(name, contents string) error {
	png, err := testCtx.writeQRImage(strings.TrimSuffix(name, filepath.Ext(name))+".png", splitContents(contents)...)
	if err != nil {
		return err
	}
	return testutil.WritePDF(testCtx.TempPath(name), png)
}

func (testCtx *TestContext) anEmptyDirectory(name string) error {
	if err := os.MkdirAll(testCtx.TempPath(name), 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", name, err)
	}
	return nil
}

func (testCtx *TestContext) aConfigFileWith(name string, body *godog.DocString) error {
	path := testCtx.TempPath(name)
	if err := os.WriteFile(path, []byte(body.Content), 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// RegisterQRSteps registers fixture generation steps.
func (testCtx *TestContext) RegisterQRSteps(sc *godog.ScenarioContext) {
	sc.Step(`^a QR image "([^"]*)" containing "([^"]*)"$`, testCtx.aQRImageContaining)
	sc.Step(`^a blank image "([^"]*)"$`, testCtx.aBlankImage)
	sc.Step(`^a PDF "([^"]*)" with a QR code containing "([^"]*)"$`, testCtx.aPDFWithAQRCodeContaining)
	sc.Step(`^an empty directory "([^"]*)"$`, testCtx.anEmptyDirectory)
	sc.Step(`^a config file "([^"]*)" with:$`, testCtx.aConfigFileWith)
}
