// Package output serializes the accumulated xref result set as one
// indented UTF-8 JSON document.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/smith-xyz/binary-xref-generator/pkg/models"
	"github.com/smith-xyz/binary-xref-generator/pkg/utils"
)

// Write renders the result set to w, indented, with non-ASCII text and
// symbol characters like & preserved verbatim.
func Write(w io.Writer, results *models.ResultSet) error {
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(results); err != nil {
		return fmt.Errorf("failed to encode xref data: %w", err)
	}
	return nil
}

// WriteFile writes the result set to path, overwriting any existing file.
// A path of "-" writes to stdout instead. A write failure here is the
// run's only fatal outcome: the run has no value without its output.
func WriteFile(path string, results *models.ResultSet) error {
	if path == "-" {
		return Write(os.Stdout, results)
	}

	file, err := utils.SafeCreateFile(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %s: %w", path, err)
	}

	if err := Write(file, results); err != nil {
		file.Close()
		return fmt.Errorf("failed to write output file %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close output file %s: %w", path, err)
	}
	return nil
}
