package writers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"strings"
	"syscall"
	"testing"

	"github.com/cxd309/stopping-engine/internal/engine"
)

func sweepResponse() engine.Response {
	return engine.Response{
		RunID:  "r1",
		Result: engine.Result{SpeedKmh: 50, TotalDistance: 27.5, Status: engine.StatusOK},
		Sweep: &engine.SweepResult{
			Speeds: []float64{30, 50},
			Curves: []engine.Curve{
				{Label: "Dry | Alert (1s)", Group: engine.GroupSurfaceReaction, Points: []engine.Point{
					{SpeedKmh: 30, DistanceM: 12.346, Defined: true},
					{SpeedKmh: 50, DistanceM: 27.5, Defined: true},
				}},
				{Label: "Steep decline (-8.0%)", Group: engine.GroupSlope, Points: []engine.Point{
					{SpeedKmh: 30, Reason: "undefined stopping"},
					{SpeedKmh: 50, Reason: "undefined stopping"},
				}},
			},
		},
	}
}

func TestFormatsRegistered(t *testing.T) {
	want := []string{"json", "jsonl", "tsv"}
	if got := Formats(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Formats() = %v, want %v", got, want)
	}
}

func TestUnknownFormatError(t *testing.T) {
	var b bytes.Buffer
	err := Write("yaml", &b, engine.Response{})
	if err == nil || !strings.Contains(err.Error(), "unknown output format") {
		t.Fatalf("want 'unknown output format' error, got: %v", err)
	}
}

func TestJSONRoundTripsResponse(t *testing.T) {
	var b bytes.Buffer
	if err := Write("json", &b, sweepResponse()); err != nil {
		t.Fatalf("Write json: %v", err)
	}
	if !strings.Contains(b.String(), "\n  \"run_id\": \"r1\"") {
		t.Fatalf("json output not indented: %s", b.String())
	}
	var got engine.Response
	if err := json.Unmarshal(b.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Sweep == nil || len(got.Sweep.Curves) != 2 || got.Sweep.Gaps() != 2 {
		t.Fatalf("sweep lost in json output: %+v", got.Sweep)
	}
}

func TestJSONLOneLinePerPoint(t *testing.T) {
	var b bytes.Buffer
	if err := Write("jsonl", &b, sweepResponse()); err != nil {
		t.Fatalf("Write jsonl: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(b.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4:\n%s", len(lines), b.String())
	}
	var last row
	if err := json.Unmarshal([]byte(lines[3]), &last); err != nil {
		t.Fatalf("unmarshal line: %v", err)
	}
	if last.Variant != "Steep decline (-8.0%)" || last.Group != engine.GroupSlope || last.Defined || last.Reason == "" {
		t.Fatalf("last row = %+v", last)
	}
}

func TestJSONLWithoutSweepEmitsBaseline(t *testing.T) {
	var b bytes.Buffer
	resp := engine.Response{Result: engine.Result{SpeedKmh: 80, TotalDistance: 60.1, Status: engine.StatusOK}}
	if err := Write("jsonl", &b, resp); err != nil {
		t.Fatalf("Write jsonl: %v", err)
	}
	var r row
	if err := json.Unmarshal(b.Bytes(), &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if r.Variant != baselineVariant || r.SpeedKmh != 80 || r.DistanceM != 60.1 || !r.Defined {
		t.Fatalf("baseline row = %+v", r)
	}
}

func TestTSV(t *testing.T) {
	var b bytes.Buffer
	if err := Write("tsv", &b, sweepResponse()); err != nil {
		t.Fatalf("Write tsv: %v", err)
	}
	want := TSVHeader + "\n" +
		"Dry | Alert (1s)\t30\t12.35\ttrue\n" +
		"Dry | Alert (1s)\t50\t27.50\ttrue\n" +
		"Steep decline (-8.0%)\t30\t\tfalse\n" +
		"Steep decline (-8.0%)\t50\t\tfalse\n"
	if got := b.String(); got != want {
		t.Fatalf("tsv output:\n%q\nwant:\n%q", got, want)
	}
}

type failWriter struct{ err error }

func (f failWriter) Write([]byte) (int, error) { return 0, f.err }

func TestWriterErrorsPropagate(t *testing.T) {
	for _, format := range Formats() {
		err := Write(format, failWriter{err: syscall.EPIPE}, sweepResponse())
		if !IsBrokenPipe(err) {
			t.Fatalf("%s: err = %v, want broken pipe", format, err)
		}
	}
}

func TestIsBrokenPipe(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{io.EOF, false},
		{io.ErrClosedPipe, true},
		{fmt.Errorf("write stdout: %w", syscall.EPIPE), true},
	}
	for _, tc := range cases {
		if got := IsBrokenPipe(tc.err); got != tc.want {
			t.Fatalf("IsBrokenPipe(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}
