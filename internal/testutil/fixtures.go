package testutil

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// QRFixture describes a generated test image and the texts expected from it
// in output order.
type QRFixture struct {
	Name     string   `json:"name"`
	File     string   `json:"file"`
	Contents []string `json:"contents"`
	Expected []string `json:"expected"`
}

// DefaultFixtures returns the fixture set written to testdata/.
func DefaultFixtures() []QRFixture {
	return []QRFixture{
		{
			Name:     "url",
			File:     "url.png",
			Contents: []string{"https://example.com/hello"},
			Expected: []string{"https://example.com/hello"},
		},
		{
			Name:     "text",
			File:     "text.png",
			Contents: []string{"plain text payload"},
			Expected: []string{"plain text payload"},
		},
		{
			Name:     "mixed",
			File:     "mixed.png",
			Contents: []string{"WIFI:S:home;T:WPA;P:secret;;", "www.example.org"},
			Expected: []string{"www.example.org", "WIFI:S:home;T:WPA;P:secret;;"},
		},
		{
			Name: "blank",
			File: "blank.png",
		},
	}
}

// WriteFixtures renders every fixture into dir and writes fixtures.json
// next to them.
func WriteFixtures(dir string, fixtures []QRFixture) error {
	if err := EnsureDir(dir); err != nil {
		return fmt.Errorf("create fixture dir: %w", err)
	}
	for _, fx := range fixtures {
		img, err := ComposeQRs(DefaultQRSize, fx.Contents...)
		if err != nil {
			return fmt.Errorf("fixture %s: %w", fx.Name, err)
		}
		if err := WritePNG(filepath.Join(dir, fx.File), img); err != nil {
			return fmt.Errorf("fixture %s: %w", fx.Name, err)
		}
	}
	data, err := json.MarshalIndent(fixtures, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "fixtures.json"), data, 0o600)
}
