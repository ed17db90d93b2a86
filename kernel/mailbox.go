package kernel

import "github.com/mmoczala/siriusrtos/internal/ring"

// mailboxObject is a bounded queue of
// variable-size messages, each carrying its own length.
type mailboxObject struct {
	buf          *ring.Buffer[[]byte]
	notEmptyWait []*waitDescriptor
	notFullWait  []*waitDescriptor
	mode         ProtectionMode
}

// CreateMailbox creates a mailbox able to hold up to capacity pending
// messages of any size (osCreateMailbox), using DefaultProtectionMode.
func (k *Kernel) CreateMailbox(name string, capacity int) (Handle, ErrKind) {
	return k.CreateMailboxMode(name, capacity, DefaultProtectionMode)
}

// CreateMailboxMode creates a mailbox with an explicit protection mode,
// failing with ErrInvalidParameter if mode selects an unsupported
// combination of protection disciplines.
func (k *Kernel) CreateMailboxMode(name string, capacity int, mode ProtectionMode) (Handle, ErrKind) {
	prev := k.lock()
	defer k.restore(prev)
	if capacity <= 0 {
		return InvalidHandle, ErrInvalidParameter
	}
	if ek := validateProtectionMode(mode); ek != NoError {
		return InvalidHandle, ek
	}
	var owner Handle
	if k.current != nil {
		owner = k.current.handle
	}
	return k.handles.allocate(&mailboxObject{buf: ring.New[[]byte](capacity), mode: mode}, TypeMailbox, owner, name)
}

// PostMailbox copies buf as one message onto h (osPostMailbox).
func (c *TaskContext) PostMailbox(h Handle, buf []byte, waitIfFull bool, timeout uint32, infinite bool) ErrKind {
	k := c.k
	prev := k.lock()
	obj, ek := k.handles.resolve(h, TypeMailbox)
	if ek != NoError {
		k.restore(prev)
		return ek
	}
	m := obj.(*mailboxObject)
	msg := append([]byte(nil), buf...)

	if m.buf.PushBack(msg) {
		k.wakeQueueWaiters(&m.notEmptyWait)
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
	wd := k.blockOnQueueLocked(&m.notFullWait, timeout, infinite)
	status := wd.status
	if status == NoError {
		m.buf.PushBack(msg)
		k.wakeQueueWaiters(&m.notEmptyWait)
	}
	k.restore(prev)
	return status
}

// PendMailbox copies the head message of h into buf, returning its
// length; the message is truncated if buf is smaller (osPendMailbox).
func (c *TaskContext) PendMailbox(h Handle, buf []byte, waitIfEmpty bool, timeout uint32, infinite bool) (int, ErrKind) {
	k := c.k
	prev := k.lock()
	obj, ek := k.handles.resolve(h, TypeMailbox)
	if ek != NoError {
		k.restore(prev)
		return 0, ek
	}
	m := obj.(*mailboxObject)

	if msg, ok := m.buf.PopFront(); ok {
		n := copy(buf, msg)
		k.wakeQueueWaiters(&m.notFullWait)
		k.restore(prev)
		return n, NoError
	}
	if !waitIfEmpty {
		k.restore(prev)
		return 0, ErrQueueEmpty
	}
	if timeout == 0 && !infinite {
		k.restore(prev)
		return 0, ErrTimedOut
	}
	wd := k.blockOnQueueLocked(&m.notEmptyWait, timeout, infinite)
	status := wd.status
	var n int
	if status == NoError {
		if msg, ok := m.buf.PopFront(); ok {
			n = copy(buf, msg)
		}
		k.wakeQueueWaiters(&m.notFullWait)
	}
	k.restore(prev)
	return n, status
}

// PeekMailbox copies the head message of h into buf without consuming it.
func (k *Kernel) PeekMailbox(h Handle, buf []byte) (int, ErrKind) {
	prev := k.lock()
	defer k.restore(prev)
	obj, ek := k.handles.resolve(h, TypeMailbox)
	if ek != NoError {
		return 0, ek
	}
	msg, ok := obj.(*mailboxObject).buf.PeekFront()
	if !ok {
		return 0, ErrQueueEmpty
	}
	return copy(buf, msg), NoError
}

// MailboxInfo reports the size of the next pending message and the
// number of pending messages (osGetMailboxInfo).
func (k *Kernel) MailboxInfo(h Handle) (nextSize, count int, ek ErrKind) {
	prev := k.lock()
	defer k.restore(prev)
	obj, ek := k.handles.resolve(h, TypeMailbox)
	if ek != NoError {
		return 0, 0, ek
	}
	m := obj.(*mailboxObject)
	count = m.buf.Len()
	if msg, ok := m.buf.PeekFront(); ok {
		nextSize = len(msg)
	}
	return nextSize, count, NoError
}
