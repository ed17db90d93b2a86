package kernel

import "github.com/mmoczala/siriusrtos/internal/ring"

// ptrQueueObject is a bounded FIFO
// of opaque pointers (any in Go) with independent wait-if-full and
// wait-if-empty blocking, which is why it does not implement the generic
// waitable interface used by mutex/semaphore/event (those have exactly
// one satisfaction condition; a queue has two).
type ptrQueueObject struct {
	buf          *ring.Buffer[any]
	notEmptyWait []*waitDescriptor
	notFullWait  []*waitDescriptor
	mode         ProtectionMode
}

// CreatePtrQueue creates a pointer queue of the given capacity
// (osCreatePtrQueue), using DefaultProtectionMode.
func (k *Kernel) CreatePtrQueue(name string, capacity int) (Handle, ErrKind) {
	return k.CreatePtrQueueMode(name, capacity, DefaultProtectionMode)
}

// CreatePtrQueueMode creates a pointer queue with an explicit protection
// mode, failing with ErrInvalidParameter if mode selects an unsupported
// combination of protection disciplines.
func (k *Kernel) CreatePtrQueueMode(name string, capacity int, mode ProtectionMode) (Handle, ErrKind) {
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
	return k.handles.allocate(&ptrQueueObject{buf: ring.New[any](capacity), mode: mode}, TypePtrQueue, owner, name)
}

// Post enqueues p onto h (osPostPtrQueue), blocking per timeout/infinite
// if the queue is full and waitIfFull is set, else failing with
// ErrQueueFull.
func (c *TaskContext) Post(h Handle, p any, waitIfFull bool, timeout uint32, infinite bool) ErrKind {
	k := c.k
	prev := k.lock()
	obj, ek := k.handles.resolve(h, TypePtrQueue)
	if ek != NoError {
		k.restore(prev)
		return ek
	}
	q := obj.(*ptrQueueObject)

	if q.buf.PushBack(p) {
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

	pending := p
	wd := k.blockOnQueueLocked(&q.notFullWait, timeout, infinite)
	status := wd.status
	if status == NoError {
		q.buf.PushBack(pending)
		k.wakeQueueWaiters(&q.notEmptyWait)
	}
	k.restore(prev)
	return status
}

// Pend dequeues the head of h (osPendPtrQueue), blocking per
// timeout/infinite if empty and waitIfEmpty is set, else failing with
// ErrQueueEmpty.
func (c *TaskContext) Pend(h Handle, waitIfEmpty bool, timeout uint32, infinite bool) (any, ErrKind) {
	k := c.k
	prev := k.lock()
	obj, ek := k.handles.resolve(h, TypePtrQueue)
	if ek != NoError {
		k.restore(prev)
		return nil, ek
	}
	q := obj.(*ptrQueueObject)

	if v, ok := q.buf.PopFront(); ok {
		k.wakeQueueWaiters(&q.notFullWait)
		k.restore(prev)
		return v, NoError
	}
	if !waitIfEmpty {
		k.restore(prev)
		return nil, ErrQueueEmpty
	}
	if timeout == 0 && !infinite {
		k.restore(prev)
		return nil, ErrTimedOut
	}

	wd := k.blockOnQueueLocked(&q.notEmptyWait, timeout, infinite)
	status := wd.status
	var v any
	if status == NoError {
		v, _ = q.buf.PopFront()
		k.wakeQueueWaiters(&q.notFullWait)
	}
	k.restore(prev)
	return v, status
}

// PeekPtrQueue returns the head of h without removing it.
func (k *Kernel) PeekPtrQueue(h Handle) (any, ErrKind) {
	prev := k.lock()
	defer k.restore(prev)
	obj, ek := k.handles.resolve(h, TypePtrQueue)
	if ek != NoError {
		return nil, ek
	}
	v, ok := obj.(*ptrQueueObject).buf.PeekFront()
	if !ok {
		return nil, ErrQueueEmpty
	}
	return v, NoError
}

// ClearPtrQueue drains h of all pending elements (osClearPtrQueue).
func (k *Kernel) ClearPtrQueue(h Handle) ErrKind {
	prev := k.lock()
	defer k.restore(prev)
	obj, ek := k.handles.resolve(h, TypePtrQueue)
	if ek != NoError {
		return ek
	}
	q := obj.(*ptrQueueObject)
	for {
		if _, ok := q.buf.PopFront(); !ok {
			break
		}
	}
	k.wakeQueueWaiters(&q.notFullWait)
	return NoError
}

// blockOnQueueLocked is the shared blocking primitive for every bounded
// IPC object: append the calling task to waiters, honor the timeout,
// park it, and return the resolved descriptor. Caller must hold the lock.
func (k *Kernel) blockOnQueueLocked(waiters *[]*waitDescriptor, timeout uint32, infinite bool) *waitDescriptor {
	t := k.current
	wd := &waitDescriptor{owner: t, finite: !infinite}
	if !infinite {
		wd.deadline = k.tick + timeout
	}
	*waiters = append(*waiters, wd)
	if wd.finite {
		k.deltaListInsert(wd)
	}
	t.state = TaskBlocked
	t.waitDesc = wd
	k.blockCurrentTask(t)
	return wd
}

// wakeQueueWaiters wakes the FIFO-head waiter of *waiters, if any, in
// strict arrival order (the caller is responsible for having already
// mutated the shared state the waiter was blocked on).
func (k *Kernel) wakeQueueWaiters(waiters *[]*waitDescriptor) {
	for len(*waiters) > 0 {
		wd := (*waiters)[0]
		*waiters = (*waiters)[1:]
		if wd.woken {
			continue
		}
		k.wakeWaitDescriptor(wd, -1, NoError)
		return
	}
}
