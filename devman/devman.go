// Package devman is a placeholder for the original's experimental device
// driver manager (ST_DevMan.c), explicitly out of scope for this port.
// The error kinds it would report already
// exist in kernel.ErrKind (ErrDevManNotRunning, ErrDevManAlreadyRunning)
// so that a future implementation slots in without an ABI break; nothing
// in this package is implemented or exercised.
package devman

import "github.com/mmoczala/siriusrtos/kernel"

// Start would launch the device manager task; unimplemented.
func Start(*kernel.Kernel) kernel.ErrKind {
	return kernel.ErrDevManNotRunning
}
