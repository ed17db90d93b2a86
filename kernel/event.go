package kernel

// eventObject is a single boolean signal,
// either auto-reset (cleared the instant one waiter consumes it) or
// manual-reset (stays set until explicitly cleared).
type eventObject struct {
	signaled bool
	autoRst  bool
	waiters  []*waitDescriptor
}

func (e *eventObject) satisfyProbe() bool { return e.signaled }

func (e *eventObject) consumeOne(_ any, _ *task) bool {
	if !e.signaled {
		return false
	}
	if e.autoRst {
		e.signaled = false
	}
	return true
}

func (e *eventObject) enqueueWaiter(wd *waitDescriptor) { e.waiters = append(e.waiters, wd) }

func (e *eventObject) dequeueWaiter(wd *waitDescriptor) {
	for i, w := range e.waiters {
		if w == wd {
			e.waiters = append(e.waiters[:i], e.waiters[i+1:]...)
			return
		}
	}
}

// CreateEvent creates an Event (osCreateEvent).
func (k *Kernel) CreateEvent(name string, autoReset bool) (Handle, ErrKind) {
	prev := k.lock()
	defer k.restore(prev)
	var owner Handle
	if k.current != nil {
		owner = k.current.handle
	}
	return k.handles.allocate(&eventObject{autoRst: autoReset}, TypeEvent, owner, name)
}

// SetEvent signals h (osSetEvent).
func (k *Kernel) SetEvent(h Handle) ErrKind {
	prev := k.lock()
	defer k.restore(prev)
	obj, ek := k.handles.resolve(h, TypeEvent)
	if ek != NoError {
		return ek
	}
	e := obj.(*eventObject)
	e.signaled = true
	k.notifyWaiters(e, e.waiters)
	return NoError
}

// ClearEvent un-signals h (osClearEvent); meaningful mainly for
// manual-reset events.
func (k *Kernel) ClearEvent(h Handle) ErrKind {
	prev := k.lock()
	defer k.restore(prev)
	obj, ek := k.handles.resolve(h, TypeEvent)
	if ek != NoError {
		return ek
	}
	obj.(*eventObject).signaled = false
	return NoError
}

// WaitEvent blocks the calling task until h is signaled (osWaitEvent).
func (c *TaskContext) WaitEvent(h Handle, timeout uint32, infinite bool) ErrKind {
	k := c.k
	prev := k.lock()
	obj, ek := k.handles.resolve(h, TypeEvent)
	k.restore(prev)
	if ek != NoError {
		return ek
	}
	return k.waitOne(c.t, obj.(*eventObject), nil, timeout, infinite)
}
