// Package soft implements a deterministic, non-blocking software platform
// port for tests and the demo application. It has no hardware dependency:
// HWInit/HWDeinit are no-ops, CPUIdle yields the Go scheduler briefly
// rather than halting a CPU, and BusyUnit likewise yields the Go scheduler
// once so Kernel.CheckPreempt has somewhere to land.
package soft

import "runtime"

// Port is a platform.Platform implementation suitable for unit tests and
// the bundled demo. It carries no state of its own; ticks are driven
// externally by calling Kernel.OnTick (see platform/soft/driver.go).
type Port struct{}

// New constructs a Port.
func New() *Port { return &Port{} }

func (p *Port) HWInit() bool { return true }

func (p *Port) HWDeinit() {}

func (p *Port) CPUIdle() { runtime.Gosched() }

func (p *Port) BusyUnit() {
	runtime.Gosched()
}
