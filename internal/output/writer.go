package output

import (
	"fmt"
	"os"
)

// WriteScript writes the generated script to the output path, or to stdout
// when the path is "-". A failure here is fatal to the run: analysis already
// succeeded, but no partial output is left behind.
func WriteScript(script, path string) error {
	if path == "-" {
		_, err := os.Stdout.WriteString(script)
		return err
	}
	if err := os.WriteFile(path, []byte(script), 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
