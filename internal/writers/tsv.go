package writers

import (
	"bufio"
	"io"
	"strconv"

	"github.com/cxd309/stopping-engine/internal/engine"
)

func init() { Register("tsv", writeTSV) }

// TSVHeader is the first line of TSV output.
const TSVHeader = "variant\tspeed_kmh\tdistance_m\tdefined"

// writeTSV writes a header and one row per point. Gaps keep their row with an
// empty distance cell so plotting tools see a break in the line.
func writeTSV(w io.Writer, resp engine.Response) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(TSVHeader)
	bw.WriteByte('\n')
	for _, r := range rows(resp) {
		dist := ""
		if r.Defined {
			dist = strconv.FormatFloat(r.DistanceM, 'f', 2, 64)
		}
		bw.WriteString(r.Variant)
		bw.WriteByte('\t')
		bw.WriteString(strconv.FormatFloat(r.SpeedKmh, 'f', -1, 64))
		bw.WriteByte('\t')
		bw.WriteString(dist)
		bw.WriteByte('\t')
		bw.WriteString(strconv.FormatBool(r.Defined))
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
