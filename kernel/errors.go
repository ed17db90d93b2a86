package kernel

import "fmt"

// ErrKind is an integer error kind returned directly by kernel operations.
// The ABI never carries string payloads for errors — callers that want a
// human-readable name can call ErrKind.String(), which exists for logging
// only. Each task has a last-error slot, read by Kernel.LastError, but no
// kernel operation writes to it.
type ErrKind int

const (
	// NoError indicates the previous operation succeeded.
	NoError ErrKind = iota
	ErrInvalidHandle
	ErrInvalidParameter
	ErrNotEnoughMemory
	ErrTimedOut
	ErrCancelled
	ErrQueueFull
	ErrQueueEmpty
	ErrNotOwner
	ErrCountOverflow
	ErrNameInUse
	ErrNameNotFound
	ErrObjectDeleted
	ErrDevManNotRunning
	ErrDevManAlreadyRunning
	ErrNotifyAlreadyUsed
	// ErrNotCompiled is returned when a caller exercises a surface disabled
	// by a kernel Option (the Go rendering of the original's compile-time
	// OS_*_FUNC switches).
	ErrNotCompiled
)

func (k ErrKind) String() string {
	switch k {
	case NoError:
		return "NO_ERROR"
	case ErrInvalidHandle:
		return "INVALID_HANDLE"
	case ErrInvalidParameter:
		return "INVALID_PARAMETER"
	case ErrNotEnoughMemory:
		return "NOT_ENOUGH_MEMORY"
	case ErrTimedOut:
		return "TIMED_OUT"
	case ErrCancelled:
		return "CANCELLED"
	case ErrQueueFull:
		return "QUEUE_FULL"
	case ErrQueueEmpty:
		return "QUEUE_EMPTY"
	case ErrNotOwner:
		return "NOT_OWNER"
	case ErrCountOverflow:
		return "COUNT_OVERFLOW"
	case ErrNameInUse:
		return "NAME_IN_USE"
	case ErrNameNotFound:
		return "NAME_NOT_FOUND"
	case ErrObjectDeleted:
		return "OBJECT_DELETED"
	case ErrDevManNotRunning:
		return "DEVMAN_NOT_RUNNING"
	case ErrDevManAlreadyRunning:
		return "DEVMAN_ALREADY_RUNNING"
	case ErrNotifyAlreadyUsed:
		return "NOTIFY_ALREADY_USED"
	case ErrNotCompiled:
		return "NOT_COMPILED"
	default:
		return fmt.Sprintf("ERR(%d)", int(k))
	}
}

// kernelError lets internal plumbing use errors.Is/errors.As where that's
// the natural Go idiom (fatal boot failures from the platform port); it is
// never returned across the kernel's public, last-error-slot based ABI.
type kernelError struct{ kind ErrKind }

func (e *kernelError) Error() string { return "kernel: " + e.kind.String() }

func (e *kernelError) Kind() ErrKind { return e.kind }
