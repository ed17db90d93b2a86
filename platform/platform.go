// Package platform defines the contract between the kernel and a concrete
// target port. Implementing a real port -- wiring an actual context
// switch, CPU idle instruction, and tick interrupt -- is explicitly out of
// scope; this package only fixes the interface
// the kernel calls through, plus a deterministic software reference port
// (see platform/soft) used by tests and the demo application.
package platform

// Infinite is the sentinel timeout value meaning "block forever",
// mirroring OS_INFINITE from the original header.
const Infinite uint32 = 0xFFFFFFFF

// Platform is everything the kernel needs from the underlying target. A
// bare-metal port backs HWInit/HWDeinit with real hardware setup and
// BusyUnit/CPUIdle with the appropriate architecture instructions; the
// kernel never assumes anything about their cost beyond "BusyUnit
// represents a bounded unit of CPU-bound work".
type Platform interface {
	// HWInit prepares the target for scheduling (clocks, the tick timer,
	// interrupt vectors). Returning false aborts Kernel construction.
	HWInit() bool
	// HWDeinit reverses HWInit, called from Kernel.Deinit.
	HWDeinit()
	// CPUIdle is invoked by the idle task whenever no task is ready; a
	// bare-metal port typically executes a low-power wait instruction
	// here. It must return promptly so the idle task can re-check
	// preemption.
	CPUIdle()
	// BusyUnit represents one unit of simulated CPU-bound work, used by
	// TaskContext.Busy to let a compute-heavy task remain preemptible
	// without an explicit Sleep or wait call.
	BusyUnit()
}
