package motioncore

import "log"

// debugLogf is the single logging seam for the core, in the voice of
// comboat's logDebug/logError helpers: a thin wrapper, not a logging
// framework, gated by Core.SetDebug so it costs nothing on a target
// where step-ISR timing is tight.
func debugLogf(format string, args ...any) {
	log.Printf("[motioncore] "+format, args...)
}
