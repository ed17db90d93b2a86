package kernel

// semaphoreObject is a binary semaphore: at most one
// outstanding "give" is ever pending, unlike the counting semaphore.
type semaphoreObject struct {
	available bool
	waiters   []*waitDescriptor
}

func (s *semaphoreObject) satisfyProbe() bool { return s.available }

func (s *semaphoreObject) consumeOne(_ any, _ *task) bool {
	if !s.available {
		return false
	}
	s.available = false
	return true
}

func (s *semaphoreObject) enqueueWaiter(wd *waitDescriptor) { s.waiters = append(s.waiters, wd) }

func (s *semaphoreObject) dequeueWaiter(wd *waitDescriptor) {
	for i, w := range s.waiters {
		if w == wd {
			s.waiters = append(s.waiters[:i], s.waiters[i+1:]...)
			return
		}
	}
}

// CreateSemaphore creates a binary semaphore (osCreateSemaphore).
func (k *Kernel) CreateSemaphore(name string, initiallyAvailable bool) (Handle, ErrKind) {
	prev := k.lock()
	defer k.restore(prev)
	var owner Handle
	if k.current != nil {
		owner = k.current.handle
	}
	return k.handles.allocate(&semaphoreObject{available: initiallyAvailable}, TypeSemaphore, owner, name)
}

// GiveSemaphore releases h (osGiveSemaphore); giving an already-available
// binary semaphore is a no-op, unlike the counting semaphore's overflow
// error.
func (k *Kernel) GiveSemaphore(h Handle) ErrKind {
	prev := k.lock()
	defer k.restore(prev)
	obj, ek := k.handles.resolve(h, TypeSemaphore)
	if ek != NoError {
		return ek
	}
	s := obj.(*semaphoreObject)
	if s.available {
		return NoError
	}
	s.available = true
	k.notifyWaiters(s, s.waiters)
	return NoError
}

// TakeSemaphore blocks the calling task until h is available (osTakeSemaphore).
func (c *TaskContext) TakeSemaphore(h Handle, timeout uint32, infinite bool) ErrKind {
	k := c.k
	prev := k.lock()
	obj, ek := k.handles.resolve(h, TypeSemaphore)
	k.restore(prev)
	if ek != NoError {
		return ek
	}
	return k.waitOne(c.t, obj.(*semaphoreObject), nil, timeout, infinite)
}
