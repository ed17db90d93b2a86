package kernel

// flagsObject is a flag group: a 32-bit word tasks
// set, clear, and wait on with an any-bits or all-bits match policy
// supplied per wait call (not per object), optionally auto-clearing the
// matched bits on wake. Because the match mask varies per waiter, flag
// groups do not participate in the generic waitable fan-in used by
// WaitForObject/WaitForObjects; they use their own bespoke waiter list.
type flagsObject struct {
	bits    uint32
	waiters []*flagWaiter
}

type flagWaiter struct {
	wd       *waitDescriptor
	mask     uint32
	matchAll bool
	autoClr  bool
}

func matches(bits, mask uint32, all bool) bool {
	if all {
		return bits&mask == mask
	}
	return bits&mask != 0
}

// CreateFlags creates a flag group (osCreateFlags).
func (k *Kernel) CreateFlags(name string, initial uint32) (Handle, ErrKind) {
	prev := k.lock()
	defer k.restore(prev)
	var owner Handle
	if k.current != nil {
		owner = k.current.handle
	}
	return k.handles.allocate(&flagsObject{bits: initial}, TypeFlags, owner, name)
}

// SetFlags ORs mask into h's bits and wakes any now-satisfied waiters
// (osSetFlags).
func (k *Kernel) SetFlags(h Handle, mask uint32) ErrKind {
	prev := k.lock()
	defer k.restore(prev)
	obj, ek := k.handles.resolve(h, TypeFlags)
	if ek != NoError {
		return ek
	}
	f := obj.(*flagsObject)
	f.bits |= mask
	k.wakeFlagWaitersLocked(f)
	return NoError
}

// ClearFlags ANDs out mask from h's bits (osClearFlags).
func (k *Kernel) ClearFlags(h Handle, mask uint32) ErrKind {
	prev := k.lock()
	defer k.restore(prev)
	obj, ek := k.handles.resolve(h, TypeFlags)
	if ek != NoError {
		return ek
	}
	obj.(*flagsObject).bits &^= mask
	return NoError
}

func (k *Kernel) wakeFlagWaitersLocked(f *flagsObject) {
	remaining := f.waiters[:0]
	for _, fw := range f.waiters {
		if fw.wd.woken {
			continue
		}
		if matches(f.bits, fw.mask, fw.matchAll) {
			if fw.autoClr {
				f.bits &^= fw.mask
			}
			k.wakeWaitDescriptor(fw.wd, -1, NoError)
			continue
		}
		remaining = append(remaining, fw)
	}
	f.waiters = remaining
}

// WaitFlags blocks the calling task until h's bits satisfy mask under the
// given policy (osWaitFlags). When autoClear is set, the matched bits are
// cleared atomically with the wake.
func (c *TaskContext) WaitFlags(h Handle, mask uint32, matchAll, autoClear bool, timeout uint32, infinite bool) (uint32, ErrKind) {
	k := c.k
	t := c.t
	prev := k.lock()
	obj, ek := k.handles.resolve(h, TypeFlags)
	if ek != NoError {
		k.restore(prev)
		return 0, ek
	}
	f := obj.(*flagsObject)

	if matches(f.bits, mask, matchAll) {
		snapshot := f.bits
		if autoClear {
			f.bits &^= mask
		}
		k.restore(prev)
		return snapshot, NoError
	}
	if timeout == 0 && !infinite {
		k.restore(prev)
		return 0, ErrTimedOut
	}

	wd := &waitDescriptor{owner: t, finite: !infinite}
	if !infinite {
		wd.deadline = k.tick + timeout
	}
	fw := &flagWaiter{wd: wd, mask: mask, matchAll: matchAll, autoClr: autoClear}
	f.waiters = append(f.waiters, fw)
	if wd.finite {
		k.deltaListInsert(wd)
	}
	t.state = TaskBlocked
	t.waitDesc = wd

	k.blockCurrentTask(t)
	status := wd.status
	var snapshot uint32
	if status == NoError {
		snapshot = f.bits
	}
	k.restore(prev)
	return snapshot, status
}
