package writers

import (
	"encoding/json"
	"io"

	"github.com/cxd309/stopping-engine/internal/engine"
)

func init() {
	Register("json", writeJSON)
	Register("jsonl", writeJSONL)
}

// writeJSON emits the whole response as one indented document.
func writeJSON(w io.Writer, resp engine.Response) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

// writeJSONL streams one compact JSON object per point.
func writeJSONL(w io.Writer, resp engine.Response) error {
	enc := json.NewEncoder(w)
	for _, r := range rows(resp) {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}
