// Package kernel implements the SiriusRTOS core: the ready-queue scheduler,
// the wait-object / multi-wait signalling engine, the tick-driven timer and
// statistics subsystem, the handle table, and the synchronization
// primitives whose semantics are entangled with the wait engine. These
// form one tightly-coupled subsystem and are deliberately
// kept in a single package rather than split along Mutex/Semaphore/Event
// lines.
package kernel

import (
	"sync"

	"github.com/mmoczala/siriusrtos/internal/klog"
	"github.com/mmoczala/siriusrtos/platform"
)

const numPriorities = 256

// Kernel is the process-wide RTOS singleton: a
// single kernel instance with initialization in New and shutdown in
// Stop; all mutation is gated by the interrupt lock. A Kernel value
// must be created with New and must not be copied after use.
type Kernel struct {
	cfg *config
	log klog.Logger
	plat platform.Platform

	// mu is the kernel's global interrupt-mask lock. Every
	// mutation of scheduler state, the handle table, and wait/delta lists
	// happens while mu is held. It supports nesting via lockDepth, mirroring
	// the original's save/restore interrupt-mask contract: lock() saves and
	// masks, restore(prev) restores, never unconditionally enables.
	mu        sync.Mutex
	lockDepth int

	handles *handleTable

	ready       [numPriorities]readyLevel
	readyBitmap [4]uint64 // 256 bits, one per priority level

	current *task
	idle    *task

	tick uint32

	deltaHead *waitDescriptor // sorted delta list, keyed by absolute tick deadline

	handoff     chan struct{} // task goroutine -> driver: "I yielded"
	driverDone  chan struct{}
	stopping    bool
	started     bool

	statsWindowStart uint32

	// preemptFlag is set by OnTick when the running task's quantum expires
	// or a higher-priority task becomes ready; CheckPreempt observes and
	// clears it. Go provides no way to forcibly suspend a running goroutine
	// at an arbitrary instruction, so preemption takes effect only where
	// CheckPreempt runs: inside TaskContext.Busy and the idle task's loop.
	// Other kernel calls do not check the flag, so a task that neither
	// calls Busy nor blocks keeps the CPU.
	preemptFlag bool
}

type readyLevel struct {
	head, tail *task
}

// New constructs a Kernel bound to the given platform port. The kernel is
// idle until Start is called.
func New(plat platform.Platform, opts ...Option) (*Kernel, error) {
	if plat == nil {
		return nil, &kernelError{ErrInvalidParameter}
	}
	cfg := resolveOptions(opts)
	k := &Kernel{
		cfg:     cfg,
		log:     klog.Global(),
		plat:    plat,
		handles: newHandleTable(cfg.maxTasks*4, cfg.objectNames, cfg.nameMaxLen),
		handoff: make(chan struct{}, 1),
	}
	if !plat.HWInit() {
		return nil, &kernelError{ErrNotEnoughMemory}
	}
	idleCfg := TaskConfig{
		Proc:     idleTaskProc,
		Priority: numPriorities - 1,
		Quantum:  0,
	}
	// The idle task is named only where the name table accepts "idle".
	if cfg.objectNames && (cfg.nameMaxLen == 0 || cfg.nameMaxLen >= len("idle")) {
		idleCfg.Name = "idle"
	}
	idleHandle, ek := k.createTaskLocked(idleCfg)
	if ek != NoError {
		return nil, &kernelError{ek}
	}
	obj, _ := k.handles.resolve(idleHandle, TypeTask)
	k.idle = obj.(*task)
	return k, nil
}

func idleTaskProc(ctx *TaskContext, _ any) int {
	for {
		ctx.k.plat.CPUIdle()
		ctx.k.CheckPreempt(ctx.t)
	}
}

// lock acquires the global interrupt lock, returning the previous nesting
// depth so it can be handed to restore. Mirrors osEnterISR / the original's
// interrupt_lock() contract.
func (k *Kernel) lock() int {
	k.mu.Lock()
	prev := k.lockDepth
	k.lockDepth = prev + 1
	return prev
}

// restore releases the lock down to the given previous depth. It never
// unconditionally re-enables interrupts; nesting is supported.
func (k *Kernel) restore(prev int) {
	k.lockDepth = prev
	k.mu.Unlock()
}

// Deinit tears down the kernel. Only meaningful once Start's driver loop
// has returned (Stop was called). Gated by WithObjectDeletion +
// WithReadWriteAPI in the original (OS_DEINIT_FUNC); here it is always
// available but documented as such.
func (k *Kernel) Deinit() {
	k.plat.HWDeinit()
}

// LastError is a convenience accessor mirroring osGetLastError, scoped to
// the given task rather than "the calling task", since Go callers are not
// necessarily calling from within a task's own goroutine.
func (k *Kernel) LastError(h Handle) (ErrKind, bool) {
	prev := k.lock()
	defer k.restore(prev)
	obj, ek := k.handles.resolve(h, TypeTask)
	if ek != NoError {
		return ErrInvalidHandle, false
	}
	t := obj.(*task)
	return t.lastErr, true
}

func (k *Kernel) setLastError(t *task, kind ErrKind) {
	t.lastErr = kind
}
