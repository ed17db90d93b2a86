package kernel

// sharedMemObject is a named
// region exposed as a Go slice (in a single-address-space RTOS, sharing
// the slice's backing array across every holder already gives every
// holder the same "mapping"), with an optional embedded mutex providing
// exclusive-holder serialization.
type sharedMemObject struct {
	data      []byte
	protected bool
	mu        *mutexObject
}

// CreateSharedMem creates a named region of size bytes (osCreateSharedMem).
// When protected is true, AcquireSharedMem/ReleaseSharedMem serialize
// exclusive access via an embedded mutex.
func (k *Kernel) CreateSharedMem(name string, size int, protected bool) (Handle, ErrKind) {
	prev := k.lock()
	defer k.restore(prev)
	if size <= 0 {
		return InvalidHandle, ErrInvalidParameter
	}
	obj := &sharedMemObject{data: make([]byte, size), protected: protected}
	if protected {
		obj.mu = newMutexObject(k, 0, false)
	}
	var owner Handle
	if k.current != nil {
		owner = k.current.handle
	}
	return k.handles.allocate(obj, TypeSharedMem, owner, name)
}

// GetAddress returns the shared slice backing h. Every holder of h
// observes writes made through this slice by any other holder.
func (k *Kernel) GetAddress(h Handle) ([]byte, ErrKind) {
	prev := k.lock()
	defer k.restore(prev)
	obj, ek := k.handles.resolve(h, TypeSharedMem)
	if ek != NoError {
		return nil, ek
	}
	return obj.(*sharedMemObject).data, NoError
}

// AcquireSharedMem blocks until exclusive access to h is granted
// (osAcquireSharedMem); a no-op success if h was not created with
// protection enabled.
func (c *TaskContext) AcquireSharedMem(h Handle, timeout uint32, infinite bool) ErrKind {
	k := c.k
	prev := k.lock()
	obj, ek := k.handles.resolve(h, TypeSharedMem)
	if ek != NoError {
		k.restore(prev)
		return ek
	}
	sm := obj.(*sharedMemObject)
	if !sm.protected {
		k.restore(prev)
		return NoError
	}
	m := sm.mu
	if m.owner == c.t {
		m.recurse++
		k.restore(prev)
		return NoError
	}
	k.restore(prev)
	return k.waitOne(c.t, m, nil, timeout, infinite)
}

// ReleaseSharedMem releases exclusive access previously acquired via
// AcquireSharedMem (osReleaseSharedMem).
func (c *TaskContext) ReleaseSharedMem(h Handle) ErrKind {
	k := c.k
	prev := k.lock()
	defer k.restore(prev)
	obj, ek := k.handles.resolve(h, TypeSharedMem)
	if ek != NoError {
		return ek
	}
	sm := obj.(*sharedMemObject)
	if !sm.protected {
		return NoError
	}
	m := sm.mu
	if m.owner != c.t {
		return ErrNotOwner
	}
	m.recurse--
	if m.recurse > 0 {
		return NoError
	}
	m.owner = nil
	k.notifyWaiters(m, m.waiters)
	return NoError
}
