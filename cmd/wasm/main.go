//go:build js && wasm

// Command wasm exposes the stopping-distance engine to the browser. Once the
// module has started it registers one global function:
//
//	calculateStopping(requestJSON) -> responseJSON | {error, field?}
//
// requestJSON is an engine.Request, the same document the CLI reads with
// -input. On success the return value is an engine.Response encoded as JSON:
//
//	run_id   caller-supplied or generated UUID
//	summary  resolved vehicle, friction, μ, reaction time, slope and speed
//	result   the baseline calculation; result.status is "ok", or "undefined"
//	         with result.reason when the vehicle has no net deceleration
//	sweep    present when "sweep" was set: speeds_kmh plus ten curves. A point
//	         with defined=false is a gap and carries a reason instead of a
//	         distance. With profile_dt set, defined surface-reaction points
//	         also carry a profile trace.
//	profile  present when profile_dt was set and result.status is "ok"
//
// An undefined result is not an error. Rejected input returns a plain object
// whose error property holds the message and, for a bad parameter, whose
// field property names it.
package main

import (
	"errors"
	"syscall/js"

	"github.com/cxd309/stopping-engine/internal/engine"
)

func main() {
	js.Global().Set("calculateStopping", js.FuncOf(calculateStopping))
	select {}
}

func calculateStopping(_ js.Value, args []js.Value) any {
	if len(args) < 1 || args[0].Type() != js.TypeString {
		return errorObject(errors.New("calculateStopping expects a JSON request string"))
	}
	out, err := engine.RunJSON(args[0].String())
	if err != nil {
		return errorObject(err)
	}
	return out
}

func errorObject(err error) map[string]any {
	obj := map[string]any{"error": err.Error()}
	var pe *engine.ParamError
	if errors.As(err, &pe) {
		obj["field"] = pe.Field
	}
	return obj
}
