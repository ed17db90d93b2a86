package kernel

// mutexObject is a recursive, owner-tracked lock
// with an optional priority-ceiling protocol (WithPriorityCeiling).
type mutexObject struct {
	k        *Kernel
	owner    *task
	recurse  int
	ceiling  uint8
	useCeil  bool
	waiters  []*waitDescriptor
}

func newMutexObject(k *Kernel, ceiling uint8, useCeil bool) *mutexObject {
	return &mutexObject{k: k, ceiling: ceiling, useCeil: useCeil}
}

func (m *mutexObject) satisfyProbe() bool { return m.owner == nil }

func (m *mutexObject) consumeOne(_ any, t *task) bool {
	if m.owner != nil {
		return false
	}
	m.owner = t
	m.recurse = 1
	if m.useCeil && t != nil && m.ceiling < t.priority {
		t.basePrio = t.priority
		t.ceilBoosted = true
		m.k.setEffectivePriorityLocked(t, m.ceiling)
	}
	return true
}

func (m *mutexObject) enqueueWaiter(wd *waitDescriptor) { m.waiters = append(m.waiters, wd) }

func (m *mutexObject) dequeueWaiter(wd *waitDescriptor) {
	for i, w := range m.waiters {
		if w == wd {
			m.waiters = append(m.waiters[:i], m.waiters[i+1:]...)
			return
		}
	}
}

// CreateMutex creates a Mutex (osCreateMutex). The ceiling applies only when
// useCeiling is set and the kernel was built WithPriorityCeiling(true).
func (k *Kernel) CreateMutex(name string, ceiling uint8, useCeiling bool) (Handle, ErrKind) {
	prev := k.lock()
	defer k.restore(prev)
	var owner Handle
	if k.current != nil {
		owner = k.current.handle
	}
	return k.handles.allocate(newMutexObject(k, ceiling, useCeiling && k.cfg.priorityCeiling), TypeMutex, owner, name)
}

// LockMutex acquires h, blocking per timeout/infinite (osLockMutex).
// Recursive acquisition by the current owner succeeds immediately.
func (c *TaskContext) LockMutex(h Handle, timeout uint32, infinite bool) ErrKind {
	k := c.k
	prev := k.lock()
	obj, ek := k.handles.resolve(h, TypeMutex)
	if ek != NoError {
		k.restore(prev)
		return ek
	}
	m := obj.(*mutexObject)
	if m.owner == c.t {
		m.recurse++
		k.restore(prev)
		return NoError
	}
	k.restore(prev)
	return k.waitOne(c.t, m, nil, timeout, infinite)
}

// UnlockMutex releases one level of recursion on h (osUnlockMutex); the
// caller must be the current owner.
func (c *TaskContext) UnlockMutex(h Handle) ErrKind {
	k := c.k
	prev := k.lock()
	defer k.restore(prev)
	obj, ek := k.handles.resolve(h, TypeMutex)
	if ek != NoError {
		return ek
	}
	m := obj.(*mutexObject)
	if m.owner != c.t {
		return ErrNotOwner
	}
	m.recurse--
	if m.recurse > 0 {
		return NoError
	}
	if m.useCeil && c.t.ceilBoosted {
		c.t.ceilBoosted = false
		k.setEffectivePriorityLocked(c.t, c.t.basePrio)
	}
	m.owner = nil
	k.notifyWaiters(m, m.waiters)
	return NoError
}
