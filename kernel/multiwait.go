package kernel

// This file implements the generic wait-for-object(s) surface, built
// entirely on the waitable capability set (wait.go) so it works
// across every object type that implements it (mutex, semaphore,
// counting semaphore, event, timer). Pointer/message/mailbox queues and
// byte streams have two independent wait conditions (space vs data) and
// so expose their own Post/Pend/Read/Write blocking surfaces instead.

func (k *Kernel) resolveWaitable(h Handle) (waitable, ErrKind) {
	slot, ok := k.handles.slotFor(h)
	if !ok {
		return nil, ErrInvalidHandle
	}
	w, ok := slot.object.(waitable)
	if !ok {
		return nil, ErrInvalidHandle
	}
	return w, NoError
}

// WaitForObject blocks the calling task on a single waitable object until
// it is satisfied, timeout ticks elapse, or infinite is set and it is
// satisfied or cancelled (osWaitForObject). MaxWait==1 configurations
// still support this single-object form; only the fan-out form is gated
// by WithMaxWait.
func (c *TaskContext) WaitForObject(h Handle, timeout uint32, infinite bool) ErrKind {
	k := c.k
	prev := k.lock()
	w, ek := k.resolveWaitable(h)
	k.restore(prev)
	if ek != NoError {
		return ek
	}
	return k.waitOne(c.t, w, nil, timeout, infinite)
}

// WaitForObjects blocks on a fan-out of waitable objects per policy
// (osWaitForObjects). Returns the index of the satisfying object for
// WaitAny (or -1 once all are satisfied for WaitAll), and an ErrKind
// status. Fails with ErrNotCompiled if the kernel was configured with
// WithMaxWait(1) (the original's OS_MAX_WAIT_FOR_OBJECTS == 1 disables
// this surface entirely).
func (c *TaskContext) WaitForObjects(handles []Handle, policy waitPolicy, timeout uint32, infinite bool) (int, ErrKind) {
	k := c.k
	if k.cfg.maxWait <= 1 {
		return -1, ErrNotCompiled
	}
	if len(handles) == 0 || len(handles) > k.cfg.maxWait {
		return -1, ErrInvalidParameter
	}

	prev := k.lock()
	branches := make([]waitBranch, len(handles))
	for i, h := range handles {
		w, ek := k.resolveWaitable(h)
		if ek != NoError {
			k.restore(prev)
			return -1, ek
		}
		branches[i] = waitBranch{obj: w}
	}
	k.restore(prev)

	return k.waitMany(c.t, branches, policy, timeout, infinite)
}
