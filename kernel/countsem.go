package kernel

// countSemObject is a counting semaphore: a bounded
// non-negative count, with Give reporting ErrCountOverflow rather than
// saturating or wrapping when the configured maximum is exceeded.
type countSemObject struct {
	count   uint32
	max     uint32
	waiters []*waitDescriptor
}

func (s *countSemObject) satisfyProbe() bool { return s.count > 0 }

func (s *countSemObject) consumeOne(_ any, _ *task) bool {
	if s.count == 0 {
		return false
	}
	s.count--
	return true
}

func (s *countSemObject) enqueueWaiter(wd *waitDescriptor) { s.waiters = append(s.waiters, wd) }

func (s *countSemObject) dequeueWaiter(wd *waitDescriptor) {
	for i, w := range s.waiters {
		if w == wd {
			s.waiters = append(s.waiters[:i], s.waiters[i+1:]...)
			return
		}
	}
}

// CreateCountSem creates a counting semaphore (osCreateCountSem).
func (k *Kernel) CreateCountSem(name string, initial, max uint32) (Handle, ErrKind) {
	prev := k.lock()
	defer k.restore(prev)
	if max == 0 || initial > max {
		return InvalidHandle, ErrInvalidParameter
	}
	var owner Handle
	if k.current != nil {
		owner = k.current.handle
	}
	return k.handles.allocate(&countSemObject{count: initial, max: max}, TypeCountSem, owner, name)
}

// ReleaseCountSem increments h's count by n (osReleaseCountSem), failing
// atomically with ErrCountOverflow (count left unchanged, prev untouched)
// if count+n would exceed the configured maximum. On success, prev (if
// non-nil) receives the count immediately before the release, and up to n
// FIFO-head waiters are woken, each consuming one of the released units.
func (k *Kernel) ReleaseCountSem(h Handle, n uint32, prev *uint32) ErrKind {
	lockPrev := k.lock()
	defer k.restore(lockPrev)
	obj, ek := k.handles.resolve(h, TypeCountSem)
	if ek != NoError {
		return ek
	}
	s := obj.(*countSemObject)
	if n > s.max-s.count {
		return ErrCountOverflow
	}
	if prev != nil {
		*prev = s.count
	}
	s.count += n
	k.notifyWaiters(s, s.waiters)
	return NoError
}

// GiveCountSem increments h's count by one (osGiveCountSem), a convenience
// wrapper over ReleaseCountSem for the common single-unit release.
func (k *Kernel) GiveCountSem(h Handle) ErrKind {
	return k.ReleaseCountSem(h, 1, nil)
}

// TakeCountSem blocks the calling task until h's count is non-zero, then
// decrements it (osTakeCountSem).
func (c *TaskContext) TakeCountSem(h Handle, timeout uint32, infinite bool) ErrKind {
	k := c.k
	prev := k.lock()
	obj, ek := k.handles.resolve(h, TypeCountSem)
	k.restore(prev)
	if ek != NoError {
		return ek
	}
	return k.waitOne(c.t, obj.(*countSemObject), nil, timeout, infinite)
}
