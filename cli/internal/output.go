package cli

import (
	"encoding/json"
	"fmt"
	"os"
)

// printJSON writes data as indented JSON to stdout. All listing/get commands
// go through here so output stays machine-parseable.
func printJSON(data any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
