package kernel

// ProtectionMode is the per-IPC-object bitmask selected at create time,
// the Go rendering of the original protection-mode byte shared by pointer
// queues, byte streams, message queues, and mailboxes. Create validates the
// discipline bits and stores the mode, but only DirectReadWrite changes
// behaviour (it gates the Lease*/Commit* surface): every object's payload
// is guarded by the kernel's global lock whichever discipline is selected,
// and whether a post/pend blocks is decided by the call's own arguments.
// Unsupported bit combinations are rejected by the object's Create call
// with ErrInvalidParameter.
type ProtectionMode uint8

const (
	// ProtectInterruptLock protects the object's payload with the kernel's
	// global interrupt lock alone -- the short-critical-section fast path,
	// and the default for every object created via the single-mode-less
	// constructors.
	ProtectInterruptLock ProtectionMode = 1 << iota
	// ProtectAutoResetEvent selects the auto-reset-event discipline. It is
	// accepted and stored; no internal event is created, and the payload
	// stays under the global lock.
	ProtectAutoResetEvent
	// ProtectMutex selects the mutex discipline. It is accepted and
	// stored; no internal mutex is created, and the payload stays under
	// the global lock.
	ProtectMutex
	// WaitIfEmpty marks blocking reads/pends as allowed. It is stored but
	// not consulted; Pend-style calls take their own waitIfEmpty argument.
	WaitIfEmpty
	// WaitIfFull marks blocking writes/posts as allowed. It is stored but
	// not consulted; Post-style calls take their own waitIfFull argument.
	WaitIfFull
	// DirectReadWrite permits the zero-copy lease/commit surface (Lease*/
	// Commit*) in place of copying through a caller-supplied buffer.
	DirectReadWrite
)

// protectionDisciplineMask isolates the three mutually-exclusive
// protection-discipline bits from the independent blocking/direct-I/O
// bits.
const protectionDisciplineMask = ProtectInterruptLock | ProtectAutoResetEvent | ProtectMutex

// DefaultProtectionMode is used by every Create call that doesn't take an
// explicit mode: interrupt-lock protection with both blocking directions
// enabled, matching the original header's compiled-in default
// (OS_PROTECT_DISABLE_INT | OS_WAIT_IF_EMPTY | OS_WAIT_IF_FULL).
const DefaultProtectionMode = ProtectInterruptLock | WaitIfEmpty | WaitIfFull

// validateProtectionMode enforces the one hard rule on the mode byte:
// exactly one protection discipline must be selected. Direct read/write
// and the wait-if-* bits are independent and may combine freely with any
// discipline.
func validateProtectionMode(mode ProtectionMode) ErrKind {
	switch mode & protectionDisciplineMask {
	case ProtectInterruptLock, ProtectAutoResetEvent, ProtectMutex:
		return NoError
	default:
		return ErrInvalidParameter
	}
}
