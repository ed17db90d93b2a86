package kernel

import "github.com/mmoczala/siriusrtos/internal/ring"

// msgQueueObject is a bounded FIFO
// of fixed-size messages, copied in and out.
type msgQueueObject struct {
	msgSize      int
	buf          *ring.Buffer[[]byte]
	notEmptyWait []*waitDescriptor
	notFullWait  []*waitDescriptor
	mode         ProtectionMode

	// writeLease is the in-flight direct-write slot awaiting CommitWriteMsg,
	// nil when no lease is outstanding. readLeaseOut mirrors it for
	// LeaseReadMsg/CommitReadMsg.
	writeLease   []byte
	readLeaseOut bool
}

// CreateMsgQueue creates a message queue of capacity elements, each
// msgSize bytes (osCreateMsgQueue), using DefaultProtectionMode.
func (k *Kernel) CreateMsgQueue(name string, capacity, msgSize int) (Handle, ErrKind) {
	return k.CreateMsgQueueMode(name, capacity, msgSize, DefaultProtectionMode)
}

// CreateMsgQueueMode creates a message queue with an explicit protection
// mode, failing with ErrInvalidParameter if mode selects an unsupported
// combination of protection disciplines. DirectReadWrite enables
// LeaseWriteMsg/CommitWriteMsg and LeaseReadMsg/CommitReadMsg.
func (k *Kernel) CreateMsgQueueMode(name string, capacity, msgSize int, mode ProtectionMode) (Handle, ErrKind) {
	prev := k.lock()
	defer k.restore(prev)
	if capacity <= 0 || msgSize <= 0 {
		return InvalidHandle, ErrInvalidParameter
	}
	if ek := validateProtectionMode(mode); ek != NoError {
		return InvalidHandle, ek
	}
	var owner Handle
	if k.current != nil {
		owner = k.current.handle
	}
	return k.handles.allocate(&msgQueueObject{msgSize: msgSize, buf: ring.New[[]byte](capacity), mode: mode}, TypeQueue, owner, name)
}

// LeaseWriteMsg returns a zero-copy msgSize-byte slot for h's next message
// (osDirectPostMsg): the caller fills it in place instead of passing a
// pre-filled buffer to PostMsg, and finalizes with CommitWriteMsg. Fails
// with ErrQueueFull if h has no room right now. Requires the
// DirectReadWrite protection bit.
func (k *Kernel) LeaseWriteMsg(h Handle) ([]byte, ErrKind) {
	prev := k.lock()
	defer k.restore(prev)
	obj, ek := k.handles.resolve(h, TypeQueue)
	if ek != NoError {
		return nil, ek
	}
	q := obj.(*msgQueueObject)
	if q.mode&DirectReadWrite == 0 {
		return nil, ErrNotCompiled
	}
	if q.writeLease != nil {
		return nil, ErrInvalidParameter
	}
	if q.buf.Full() {
		return nil, ErrQueueFull
	}
	q.writeLease = make([]byte, q.msgSize)
	return q.writeLease, NoError
}

// CommitWriteMsg finalizes h's outstanding write lease, enqueuing it and
// waking any blocked readers.
func (k *Kernel) CommitWriteMsg(h Handle) ErrKind {
	prev := k.lock()
	defer k.restore(prev)
	obj, ek := k.handles.resolve(h, TypeQueue)
	if ek != NoError {
		return ek
	}
	q := obj.(*msgQueueObject)
	if q.mode&DirectReadWrite == 0 {
		return ErrNotCompiled
	}
	if q.writeLease == nil {
		return ErrInvalidParameter
	}
	msg := q.writeLease
	q.writeLease = nil
	if !q.buf.PushBack(msg) {
		return ErrQueueFull
	}
	k.wakeQueueWaiters(&q.notEmptyWait)
	return NoError
}

// LeaseReadMsg returns a zero-copy view of h's head message without
// removing it (osDirectPendMsg). The caller finalizes with
// CommitReadMsg. Fails with ErrQueueEmpty if h has nothing pending.
// Requires the DirectReadWrite protection bit.
func (k *Kernel) LeaseReadMsg(h Handle) ([]byte, ErrKind) {
	prev := k.lock()
	defer k.restore(prev)
	obj, ek := k.handles.resolve(h, TypeQueue)
	if ek != NoError {
		return nil, ek
	}
	q := obj.(*msgQueueObject)
	if q.mode&DirectReadWrite == 0 {
		return nil, ErrNotCompiled
	}
	if q.readLeaseOut {
		return nil, ErrInvalidParameter
	}
	msg, ok := q.buf.PeekFront()
	if !ok {
		return nil, ErrQueueEmpty
	}
	q.readLeaseOut = true
	return msg, NoError
}

// CommitReadMsg finalizes h's outstanding read lease, removing the head
// message and waking any blocked writers.
func (k *Kernel) CommitReadMsg(h Handle) ErrKind {
	prev := k.lock()
	defer k.restore(prev)
	obj, ek := k.handles.resolve(h, TypeQueue)
	if ek != NoError {
		return ek
	}
	q := obj.(*msgQueueObject)
	if q.mode&DirectReadWrite == 0 {
		return ErrNotCompiled
	}
	if !q.readLeaseOut {
		return ErrInvalidParameter
	}
	q.readLeaseOut = false
	q.buf.PopFront()
	k.wakeQueueWaiters(&q.notFullWait)
	return NoError
}

// PostMsg copies buf (which must be msgSize bytes) onto h (osPostMsg).
func (c *TaskContext) PostMsg(h Handle, buf []byte, waitIfFull bool, timeout uint32, infinite bool) ErrKind {
	k := c.k
	prev := k.lock()
	obj, ek := k.handles.resolve(h, TypeQueue)
	if ek != NoError {
		k.restore(prev)
		return ek
	}
	q := obj.(*msgQueueObject)
	if len(buf) != q.msgSize {
		k.restore(prev)
		return ErrInvalidParameter
	}
	msg := append([]byte(nil), buf...)

	if q.buf.PushBack(msg) {
		k.wakeQueueWaiters(&q.notEmptyWait)
		k.restore(prev)
		return NoError
	}
	if !waitIfFull {
		k.restore(prev)
		return ErrQueueFull
	}
	if timeout == 0 && !infinite {
		k.restore(prev)
		return ErrTimedOut
	}
	wd := k.blockOnQueueLocked(&q.notFullWait, timeout, infinite)
	status := wd.status
	if status == NoError {
		q.buf.PushBack(msg)
		k.wakeQueueWaiters(&q.notEmptyWait)
	}
	k.restore(prev)
	return status
}

// PendMsg copies the head message of h into buf (osPendMsg); buf must be
// msgSize bytes.
func (c *TaskContext) PendMsg(h Handle, buf []byte, waitIfEmpty bool, timeout uint32, infinite bool) ErrKind {
	k := c.k
	prev := k.lock()
	obj, ek := k.handles.resolve(h, TypeQueue)
	if ek != NoError {
		k.restore(prev)
		return ek
	}
	q := obj.(*msgQueueObject)
	if len(buf) != q.msgSize {
		k.restore(prev)
		return ErrInvalidParameter
	}

	if msg, ok := q.buf.PopFront(); ok {
		copy(buf, msg)
		k.wakeQueueWaiters(&q.notFullWait)
		k.restore(prev)
		return NoError
	}
	if !waitIfEmpty {
		k.restore(prev)
		return ErrQueueEmpty
	}
	if timeout == 0 && !infinite {
		k.restore(prev)
		return ErrTimedOut
	}
	wd := k.blockOnQueueLocked(&q.notEmptyWait, timeout, infinite)
	status := wd.status
	if status == NoError {
		if msg, ok := q.buf.PopFront(); ok {
			copy(buf, msg)
		}
		k.wakeQueueWaiters(&q.notFullWait)
	}
	k.restore(prev)
	return status
}
