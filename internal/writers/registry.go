// internal/writers/registry.go
package writers

import (
	"fmt"
	"io"
	"sort"

	"github.com/cxd309/stopping-engine/internal/engine"
)

// WriteFunc renders one response to w.
type WriteFunc func(w io.Writer, resp engine.Response) error

// Writers maps format name to handler. Formats register themselves in init().
var Writers = map[string]WriteFunc{}

// Register adds or replaces the writer for format (last wins).
func Register(format string, fn WriteFunc) { Writers[format] = fn }

// Formats lists registered format names in sorted order.
func Formats() []string {
	out := make([]string, 0, len(Writers))
	for name := range Writers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Write dispatches resp to the writer registered for format.
func Write(format string, w io.Writer, resp engine.Response) error {
	fn, ok := Writers[format]
	if !ok {
		return fmt.Errorf("unknown output format %q (no writer registered)", format)
	}
	return fn(w, resp)
}

// row is one flattened (variant, speed, distance) record shared by the
// line-oriented formats.
type row struct {
	Variant   string  `json:"variant"`
	Group     string  `json:"group,omitempty"`
	SpeedKmh  float64 `json:"speed_kmh"`
	DistanceM float64 `json:"distance_m"`
	Defined   bool    `json:"defined"`
	Reason    string  `json:"reason,omitempty"`
}

// baselineVariant labels the single-speed result when no sweep was requested.
const baselineVariant = "baseline"

func rows(resp engine.Response) []row {
	if resp.Sweep == nil {
		r := resp.Result
		return []row{{
			Variant:   baselineVariant,
			SpeedKmh:  r.SpeedKmh,
			DistanceM: r.TotalDistance,
			Defined:   r.Defined(),
			Reason:    r.Reason,
		}}
	}
	var out []row
	for _, c := range resp.Sweep.Curves {
		for _, p := range c.Points {
			out = append(out, row{
				Variant:   c.Label,
				Group:     c.Group,
				SpeedKmh:  p.SpeedKmh,
				DistanceM: p.DistanceM,
				Defined:   p.Defined,
				Reason:    p.Reason,
			})
		}
	}
	return out
}
