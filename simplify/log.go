package simplify

import "github.com/btcsuite/btclog"

// clog is the subsystem logger for this package, following the same
// UseLogger hook every lnd subpackage exposes. It defaults to disabled so
// importing this package never produces unwanted output; an embedder wires
// a real backend with UseLogger.
var clog = btclog.Disabled

// UseLogger sets the subsystem logger used to report pruned branches.
func UseLogger(logger btclog.Logger) {
	clog = logger
}
