package kernel

// OnTick is the tick-ISR handler: it advances the tick
// counter, expires due delta-list entries (sleeps, timed waits, and
// re-arming Timer objects), decrements the running task's quantum, and
// rotates the statistics window. The platform port calls this from its
// hardware tick interrupt; it must not block.
func (k *Kernel) OnTick() {
	prev := k.lock()
	k.tick++

	for k.deltaHead != nil && k.deltaHead.deadline <= k.tick {
		wd := k.deltaHead
		if wd.owner != nil {
			k.wakeWaitDescriptor(wd, -1, ErrTimedOut)
			continue
		}
		// Timer re-arm nodes (no owning task) carry their own expiry hook.
		k.deltaHead = wd.deltaNext
		wd.deltaNext = nil
		if wd.timerFire != nil {
			wd.timerFire()
		}
	}

	if k.current != nil {
		t := k.current
		t.cpuTicks++
		t.windowTicks[t.windowIdx]++
		if t.quantum > 0 {
			if t.quantumRemaining > 0 {
				t.quantumRemaining--
			}
			if t.quantumRemaining == 0 {
				k.preemptFlag = true
			}
		}
	}

	if p, ok := k.lowestNonEmptyLevel(); ok && k.current != nil {
		if p < k.current.priority {
			k.preemptFlag = true
		}
	}

	if k.cfg.systemStats && k.tick-k.statsWindowStart >= k.cfg.tickInterval {
		k.rotateStatsWindowLocked()
	}

	k.restore(prev)
}

// timerObject is a standalone Timer synchronization
// object: a one-shot or periodic deadline that satisfies one waiter (or,
// for OS_WAIT_ALL fan-ins, contributes its branch) each time it fires.
type timerObject struct {
	k          *Kernel
	periodic   bool
	periodTick uint32
	pending    uint32 // satisfaction count available to consumeOne
	waiters    []*waitDescriptor
	node       *waitDescriptor // delta-list node driving this timer's re-arm
}

func newTimerObject(k *Kernel) *timerObject {
	return &timerObject{k: k}
}

// Set arms the timer to fire after delay ticks, once (periodic == false)
// or every period ticks thereafter.
func (t *timerObject) Set(delay uint32, periodic bool, period uint32) {
	t.periodic = periodic
	t.periodTick = period
	if t.node != nil {
		t.k.deltaListRemove(t.node)
	}
	t.node = &waitDescriptor{
		deadline:  t.k.tick + delay,
		finite:    true,
		timerFire: t.fire,
	}
	t.k.deltaListInsert(t.node)
}

// Cancel disarms the timer; it will not fire again until Set is called.
func (t *timerObject) Cancel() {
	if t.node != nil {
		t.k.deltaListRemove(t.node)
		t.node = nil
	}
}

func (t *timerObject) fire() {
	t.pending++
	t.k.notifyWaiters(t, t.waiters)
	if t.periodic && t.periodTick > 0 {
		t.node = &waitDescriptor{
			deadline:  t.k.tick + t.periodTick,
			finite:    true,
			timerFire: t.fire,
		}
		t.k.deltaListInsert(t.node)
	} else {
		t.node = nil
	}
}

func (t *timerObject) satisfyProbe() bool { return t.pending > 0 }

func (t *timerObject) consumeOne(_ any, _ *task) bool {
	if t.pending == 0 {
		return false
	}
	t.pending--
	return true
}

func (t *timerObject) enqueueWaiter(wd *waitDescriptor) {
	t.waiters = append(t.waiters, wd)
}

func (t *timerObject) dequeueWaiter(wd *waitDescriptor) {
	for i, w := range t.waiters {
		if w == wd {
			t.waiters = append(t.waiters[:i], t.waiters[i+1:]...)
			return
		}
	}
}

// CreateTimer creates an unarmed Timer object.
func (k *Kernel) CreateTimer(name string) (Handle, ErrKind) {
	prev := k.lock()
	defer k.restore(prev)
	obj := newTimerObject(k)
	var owner Handle
	if k.current != nil {
		owner = k.current.handle
	}
	return k.handles.allocate(obj, TypeTimer, owner, name)
}

// SetTimer arms h (osSetTimer).
func (k *Kernel) SetTimer(h Handle, delay uint32, periodic bool, period uint32) ErrKind {
	prev := k.lock()
	defer k.restore(prev)
	obj, ek := k.handles.resolve(h, TypeTimer)
	if ek != NoError {
		return ek
	}
	obj.(*timerObject).Set(delay, periodic, period)
	return NoError
}

// CancelTimer disarms h.
func (k *Kernel) CancelTimer(h Handle) ErrKind {
	prev := k.lock()
	defer k.restore(prev)
	obj, ek := k.handles.resolve(h, TypeTimer)
	if ek != NoError {
		return ek
	}
	obj.(*timerObject).Cancel()
	return NoError
}

// WaitTimer blocks the calling task until h next fires (osWaitTimer).
func (c *TaskContext) WaitTimer(h Handle, timeout uint32, infinite bool) ErrKind {
	k := c.k
	prev := k.lock()
	obj, ek := k.handles.resolve(h, TypeTimer)
	k.restore(prev)
	if ek != NoError {
		return ek
	}
	return k.waitOne(c.t, obj.(*timerObject), nil, timeout, infinite)
}
