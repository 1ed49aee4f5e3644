package surface

import (
	"encoding/json"
	"io"
)

// JSONRenderer marshals the underlying result to indented JSON.
type JSONRenderer struct{}

func (r *JSONRenderer) Render(w io.Writer, report *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report.Raw)
}
