package kernel

import "github.com/mmoczala/siriusrtos/platform"

// This file implements the wait-object / multi-wait
// signalling engine shared by every synchronization primitive. A waitable
// object implements the waiter capability set (satisfyProbe/consumeOne/
// enqueueWaiter/dequeueWaiter); WaitForObject and WaitForObjects are built
// entirely on top of that interface, never on the concrete object types.

// waitable is the capability set a kernel object must implement to
// participate in WaitForObject / WaitForObjects.
type waitable interface {
	// satisfyProbe reports whether the object is currently in a state that
	// would satisfy a waiter, without consuming anything.
	satisfyProbe() bool
	// consumeOne atomically consumes one unit of satisfaction (decrements a
	// semaphore, clears an auto-reset event, pops a queue element into dst,
	// ...) on behalf of t, the task that will own the result (needed by
	// mutexObject, whose consumer becomes the new owner; ignored by
	// objects with no owner concept). Called only when satisfyProbe() is
	// true and only by the one waiter chosen to receive it.
	consumeOne(dst any, t *task) bool
	// enqueueWaiter registers wd as blocked on this object.
	enqueueWaiter(wd *waitDescriptor)
	// dequeueWaiter removes wd from this object's waiter set, used on
	// timeout/cancellation/early satisfaction by another branch of a
	// multi-wait. Safe to call even if wd is not currently enqueued.
	dequeueWaiter(wd *waitDescriptor)
}

// waitBranch is one object in a WaitForObjects fan-out.
type waitBranch struct {
	obj waitable
	out any // destination for consumeOne, when applicable (queues, streams)
}

// waitPolicy selects all-of vs any-of semantics for WaitForObjects,
// mirroring the original's OS_WAIT_ANY / OS_WAIT_ALL.
type waitPolicy uint8

const (
	WaitAny waitPolicy = iota
	WaitAll
)

// waitDescriptor is the kernel's bookkeeping record for one blocked call,
// shared between the single-object Sleep/WaitForObject path and the
// multi-wait fan-out, and also reused as the delta-list node for anything
// with a deadline: every pending deadline, sleep or timed wait alike, is
// one delta-list node.
type waitDescriptor struct {
	owner *task

	// branches holds every object this waiter is blocked on; len==1 for a
	// plain WaitForObject call, empty for Sleep and for the queue, stream
	// and flag-group waits, which keep their own waiter lists.
	branches []waitBranch
	policy   waitPolicy
	satisfied []bool // per-branch, for WaitAll bookkeeping
	woken     bool   // set once the waiter has been resolved (woken exactly once)

	// status/result carry the outcome back to the caller: which branch (or
	// none) resolved the wait, and why.
	status      ErrKind
	readyBranch int

	// delta-list linkage; deadline is an absolute tick
	// count, finite tells OnTick whether this node is a real deadline or
	// a no-timeout (OS_INFINITE) wait that never expires on its own.
	deltaNext *waitDescriptor
	deadline  uint32
	finite    bool

	// timerFire is set only on delta-list nodes that belong to a Timer
	// object rather than a blocked task (owner == nil); OnTick invokes it
	// instead of waking a task.
	timerFire func()
}

// deltaListInsert inserts wd into the sorted delta list, keyed by absolute
// deadline. Caller must hold the lock. Storing
// relative deltas internally would also be valid, but we key nodes by
// absolute tick and let OnTick compare against k.tick directly -- this is
// simpler and preserves the same testable invariant (non-negative,
// monotonically summing gaps) when converted for inspection, since the
// list remains sorted by deadline by construction.
func (k *Kernel) deltaListInsert(wd *waitDescriptor) {
	if !wd.finite {
		return
	}
	if k.deltaHead == nil || wd.deadline < k.deltaHead.deadline {
		wd.deltaNext = k.deltaHead
		k.deltaHead = wd
		return
	}
	cur := k.deltaHead
	for cur.deltaNext != nil && cur.deltaNext.deadline <= wd.deadline {
		cur = cur.deltaNext
	}
	wd.deltaNext = cur.deltaNext
	cur.deltaNext = wd
}

// deltaListRemove unlinks wd if present. Caller must hold the lock.
func (k *Kernel) deltaListRemove(wd *waitDescriptor) {
	if !wd.finite {
		return
	}
	if k.deltaHead == wd {
		k.deltaHead = wd.deltaNext
		wd.deltaNext = nil
		return
	}
	cur := k.deltaHead
	for cur != nil && cur.deltaNext != wd {
		cur = cur.deltaNext
	}
	if cur != nil {
		cur.deltaNext = wd.deltaNext
		wd.deltaNext = nil
	}
}

// waitOne blocks the calling task on a single waitable object until it is
// satisfied, ticks timeout ticks elapse, or the wait is cancelled.
// timeout == platform.Infinite blocks forever. Returns NoError (object was
// consumed), ErrTimedOut, or ErrCancelled.
func (k *Kernel) waitOne(t *task, obj waitable, dst any, timeout uint32, infinite bool) ErrKind {
	if timeout == platform.Infinite {
		infinite = true
	}
	prev := k.lock()

	if obj.satisfyProbe() {
		obj.consumeOne(dst, t)
		k.restore(prev)
		return NoError
	}
	if timeout == 0 && !infinite {
		k.restore(prev)
		return ErrTimedOut
	}

	wd := &waitDescriptor{
		owner:    t,
		branches: []waitBranch{{obj: obj, out: dst}},
		policy:   WaitAny,
		satisfied: []bool{false},
		finite:   !infinite,
	}
	if !infinite {
		wd.deadline = k.tick + timeout
	}
	t.state = TaskBlocked
	t.waitDesc = wd
	obj.enqueueWaiter(wd)
	if wd.finite {
		k.deltaListInsert(wd)
	}

	k.blockCurrentTask(t)
	status := wd.status
	k.restore(prev)
	return status
}

// waitMany is the WaitForObjects fan-out: blocks until the policy is
// satisfied (any one branch, or all branches), a shared timeout elapses,
// or the wait is cancelled.
func (k *Kernel) waitMany(t *task, branches []waitBranch, policy waitPolicy, timeout uint32, infinite bool) (int, ErrKind) {
	prev := k.lock()

	if policy == WaitAny {
		for i, b := range branches {
			if b.obj.satisfyProbe() {
				b.obj.consumeOne(b.out, t)
				k.restore(prev)
				return i, NoError
			}
		}
	} else {
		allReady := true
		for _, b := range branches {
			if !b.obj.satisfyProbe() {
				allReady = false
				break
			}
		}
		if allReady {
			for _, b := range branches {
				b.obj.consumeOne(b.out, t)
			}
			k.restore(prev)
			return -1, NoError
		}
	}

	if timeout == 0 && !infinite {
		k.restore(prev)
		return -1, ErrTimedOut
	}

	wd := &waitDescriptor{
		owner:     t,
		branches:  branches,
		policy:    policy,
		satisfied: make([]bool, len(branches)),
		finite:    !infinite,
		readyBranch: -1,
	}
	if !infinite {
		wd.deadline = k.tick + timeout
	}
	t.state = TaskBlocked
	t.waitDesc = wd
	for _, b := range branches {
		b.obj.enqueueWaiter(wd)
	}
	if wd.finite {
		k.deltaListInsert(wd)
	}

	k.blockCurrentTask(t)
	status := wd.status
	branch := wd.readyBranch
	k.restore(prev)
	return branch, status
}

// notifyWaiters is called by a waitable object's producer side (Give,
// Signal, enqueue, ...) whenever its state might now satisfy a blocked
// waiter. candidates is the object's own waiter list, in FIFO arrival
// order. Caller must hold the lock, and must have already mutated the
// object's state such that satisfyProbe()/consumeOne() reflect it.
//
// For the any-of policy this keeps waking FIFO-head waiters, one unit per
// waiter, for as long as satisfyProbe() stays true: a single-unit signal
// (binary semaphore, auto-reset event) naturally wakes exactly one waiter,
// since consumeOne flips satisfyProbe false again; a manual-reset event
// (whose consumeOne never clears the signal) wakes every blocked waiter; a
// multi-unit counting-semaphore release wakes up to as many waiters as
// units were added.
func (k *Kernel) notifyWaiters(obj waitable, candidates []*waitDescriptor) {
	// Waking a descriptor dequeues it from this same list, so walk a copy.
	candidates = append([]*waitDescriptor(nil), candidates...)
	for _, wd := range candidates {
		if wd.woken {
			continue
		}
		if !obj.satisfyProbe() {
			continue
		}
		branchIdx := -1
		for i, b := range wd.branches {
			if b.obj == obj {
				branchIdx = i
				break
			}
		}
		if branchIdx < 0 {
			continue
		}

		if wd.policy == WaitAny {
			obj.consumeOne(wd.branches[branchIdx].out, wd.owner)
			k.wakeWaitDescriptor(wd, branchIdx, NoError)
			continue
		}

		// WaitAll: mark this branch satisfied; only wake (and consume
		// across every branch) once all are ready.
		wd.satisfied[branchIdx] = true
		allReady := true
		for i, b := range wd.branches {
			if i == branchIdx {
				continue
			}
			if !wd.satisfied[i] && !b.obj.satisfyProbe() {
				allReady = false
				break
			}
		}
		if allReady {
			for _, b := range wd.branches {
				b.obj.consumeOne(b.out, wd.owner)
			}
			k.wakeWaitDescriptor(wd, -1, NoError)
			return
		}
	}
}

// wakeWaitDescriptor resolves a blocked wait with the given outcome,
// dequeues it from every branch and the delta list, moves its owner back
// to READY (honoring a deferred SuspendTask), and lets the scheduler know
// a reschedule may be warranted. Caller must hold the lock. Safe to call
// at most meaningfully once per descriptor; later calls are no-ops.
func (k *Kernel) wakeWaitDescriptor(wd *waitDescriptor, branch int, status ErrKind) {
	if wd == nil || wd.woken {
		return
	}
	wd.woken = true
	wd.status = status
	wd.readyBranch = branch

	for _, b := range wd.branches {
		b.obj.dequeueWaiter(wd)
	}
	k.deltaListRemove(wd)

	t := wd.owner
	t.waitDesc = nil
	if t.suspendPending {
		t.suspendPending = false
		t.state = TaskSuspended
		return
	}
	t.state = TaskReady
	k.readyEnqueue(t)
	if t.priority < currentPriorityOrMax(k) {
		k.preemptFlag = true
	}
}

func currentPriorityOrMax(k *Kernel) uint8 {
	if k.current == nil {
		return numPriorities - 1
	}
	return k.current.priority
}
