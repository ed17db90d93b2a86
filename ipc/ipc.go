// Package ipc is the user-facing surface for the kernel's bulk-transfer
// IPC objects: pointer queues, byte streams, message queues, mailboxes,
// and shared memory. The objects themselves live in package kernel
// alongside the wait engine they're built on (see kernel/ptrqueue.go,
// bytestream.go, msgqueue.go, mailbox.go, sharedmem.go); this package
// re-exports them under names that read naturally at a call site that
// already imports "kernel" for task/scheduling concerns, without forcing
// every IPC call to spell out the kernel package name twice.
package ipc

import "github.com/mmoczala/siriusrtos/kernel"

type (
	Handle         = kernel.Handle
	ErrKind        = kernel.ErrKind
	IORequest      = kernel.IORequest
	TaskContext    = kernel.TaskContext
	ProtectionMode = kernel.ProtectionMode
)

const (
	ProtectInterruptLock  = kernel.ProtectInterruptLock
	ProtectAutoResetEvent = kernel.ProtectAutoResetEvent
	ProtectMutex          = kernel.ProtectMutex
	WaitIfEmpty           = kernel.WaitIfEmpty
	WaitIfFull            = kernel.WaitIfFull
	DirectReadWrite       = kernel.DirectReadWrite
	DefaultProtectionMode = kernel.DefaultProtectionMode
)

// CreatePtrQueue creates a bounded FIFO of pointers using
// DefaultProtectionMode.
func CreatePtrQueue(k *kernel.Kernel, name string, capacity int) (Handle, ErrKind) {
	return k.CreatePtrQueue(name, capacity)
}

// CreatePtrQueueMode creates a bounded FIFO of pointers with an explicit
// protection mode.
func CreatePtrQueueMode(k *kernel.Kernel, name string, capacity int, mode ProtectionMode) (Handle, ErrKind) {
	return k.CreatePtrQueueMode(name, capacity, mode)
}

// Post enqueues p onto a pointer queue, see kernel.TaskContext.Post.
func Post(c *TaskContext, h Handle, p any, waitIfFull bool, timeout uint32, infinite bool) ErrKind {
	return c.Post(h, p, waitIfFull, timeout, infinite)
}

// Pend dequeues the head of a pointer queue, see kernel.TaskContext.Pend.
func Pend(c *TaskContext, h Handle, waitIfEmpty bool, timeout uint32, infinite bool) (any, ErrKind) {
	return c.Pend(h, waitIfEmpty, timeout, infinite)
}

// CreateByteStream creates a bounded ring buffer of bytes using
// DefaultProtectionMode.
func CreateByteStream(k *kernel.Kernel, name string, capacity int) (Handle, ErrKind) {
	return k.CreateByteStream(name, capacity)
}

// CreateByteStreamMode creates a bounded ring buffer of bytes with an
// explicit protection mode; DirectReadWrite enables LeaseWrite/CommitWrite
// and LeaseRead/CommitRead.
func CreateByteStreamMode(k *kernel.Kernel, name string, capacity int, mode ProtectionMode) (Handle, ErrKind) {
	return k.CreateByteStreamMode(name, capacity, mode)
}

// LeaseWrite returns a zero-copy write lease into a byte stream, see
// kernel.Kernel.LeaseWrite.
func LeaseWrite(k *kernel.Kernel, h Handle, n int) ([]byte, ErrKind) {
	return k.LeaseWrite(h, n)
}

// CommitWrite finalizes a byte stream write lease, see
// kernel.Kernel.CommitWrite.
func CommitWrite(k *kernel.Kernel, h Handle, n int) ErrKind {
	return k.CommitWrite(h, n)
}

// LeaseRead returns a zero-copy read lease into a byte stream, see
// kernel.Kernel.LeaseRead.
func LeaseRead(k *kernel.Kernel, h Handle, n int) ([]byte, ErrKind) {
	return k.LeaseRead(h, n)
}

// CommitRead finalizes a byte stream read lease, see
// kernel.Kernel.CommitRead.
func CommitRead(k *kernel.Kernel, h Handle, n int) ErrKind {
	return k.CommitRead(h, n)
}

// CreateMsgQueue creates a bounded queue of fixed-size messages using
// DefaultProtectionMode.
func CreateMsgQueue(k *kernel.Kernel, name string, capacity, msgSize int) (Handle, ErrKind) {
	return k.CreateMsgQueue(name, capacity, msgSize)
}

// CreateMsgQueueMode creates a bounded queue of fixed-size messages with
// an explicit protection mode; DirectReadWrite enables LeaseWriteMsg/
// CommitWriteMsg and LeaseReadMsg/CommitReadMsg.
func CreateMsgQueueMode(k *kernel.Kernel, name string, capacity, msgSize int, mode ProtectionMode) (Handle, ErrKind) {
	return k.CreateMsgQueueMode(name, capacity, msgSize, mode)
}

// LeaseWriteMsg returns a zero-copy write lease into a message queue, see
// kernel.Kernel.LeaseWriteMsg.
func LeaseWriteMsg(k *kernel.Kernel, h Handle) ([]byte, ErrKind) {
	return k.LeaseWriteMsg(h)
}

// CommitWriteMsg finalizes a message queue write lease, see
// kernel.Kernel.CommitWriteMsg.
func CommitWriteMsg(k *kernel.Kernel, h Handle) ErrKind {
	return k.CommitWriteMsg(h)
}

// LeaseReadMsg returns a zero-copy read lease into a message queue, see
// kernel.Kernel.LeaseReadMsg.
func LeaseReadMsg(k *kernel.Kernel, h Handle) ([]byte, ErrKind) {
	return k.LeaseReadMsg(h)
}

// CommitReadMsg finalizes a message queue read lease, see
// kernel.Kernel.CommitReadMsg.
func CommitReadMsg(k *kernel.Kernel, h Handle) ErrKind {
	return k.CommitReadMsg(h)
}

// CreateMailbox creates a bounded queue of variable-size messages using
// DefaultProtectionMode.
func CreateMailbox(k *kernel.Kernel, name string, capacity int) (Handle, ErrKind) {
	return k.CreateMailbox(name, capacity)
}

// CreateMailboxMode creates a bounded queue of variable-size messages
// with an explicit protection mode.
func CreateMailboxMode(k *kernel.Kernel, name string, capacity int, mode ProtectionMode) (Handle, ErrKind) {
	return k.CreateMailboxMode(name, capacity, mode)
}

// CreateSharedMem creates a named, optionally mutex-protected region.
func CreateSharedMem(k *kernel.Kernel, name string, size int, protected bool) (Handle, ErrKind) {
	return k.CreateSharedMem(name, size, protected)
}
