package kernel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmoczala/siriusrtos/platform/soft"
)

func newTestKernel(t *testing.T, opts ...Option) *Kernel {
	t.Helper()
	k, err := New(soft.New(), opts...)
	require.NoError(t, err)
	return k
}

func runAndJoin(t *testing.T, k *Kernel, h Handle) int {
	t.Helper()
	go k.Start()
	ec, ek := k.Join(h)
	require.Equal(t, NoError, ek)
	k.Stop()
	return ec
}

func TestCreateTaskRunsAndExits(t *testing.T) {
	k := newTestKernel(t)
	h, ek := k.CreateTask(TaskConfig{
		Proc: func(ctx *TaskContext, arg any) int {
			return 42
		},
		Priority: 10,
	})
	require.Equal(t, NoError, ek)
	ec := runAndJoin(t, k, h)
	assert.Equal(t, 42, ec)
}

func TestMutexRecursiveLockUnlock(t *testing.T) {
	k := newTestKernel(t)
	mh, ek := k.CreateMutex("m", 0, false)
	require.Equal(t, NoError, ek)

	order := make(chan string, 4)

	lowPrioBody := func(ctx *TaskContext, arg any) int {
		if ek := ctx.LockMutex(mh, 0, true); ek != NoError {
			t.Errorf("lock failed: %v", ek)
		}
		order <- "low-acquired"
		if ek := ctx.LockMutex(mh, 0, true); ek != NoError { // recursive
			t.Errorf("recursive lock failed: %v", ek)
		}
		if ek := ctx.UnlockMutex(mh); ek != NoError {
			t.Errorf("inner unlock failed: %v", ek)
		}
		order <- "low-recursion-released"
		if ek := ctx.UnlockMutex(mh); ek != NoError {
			t.Errorf("outer unlock failed: %v", ek)
		}
		order <- "low-released"
		return 0
	}

	lh, ek := k.CreateTask(TaskConfig{Proc: lowPrioBody, Priority: 50})
	require.Equal(t, NoError, ek)

	_ = runAndJoin(t, k, lh)
	close(order)
	var got []string
	for s := range order {
		got = append(got, s)
	}
	assert.Equal(t, []string{"low-acquired", "low-recursion-released", "low-released"}, got)
}

func TestMutexUnlockByNonOwnerFails(t *testing.T) {
	k := newTestKernel(t)
	mh, _ := k.CreateMutex("m", 0, false)

	body := func(ctx *TaskContext, arg any) int {
		ctx.LockMutex(mh, 0, true)
		// fabricate a second context bound to the same task to simulate
		// a cross-task unlock attempt would be out of scope here; instead
		// verify a fresh (unrelated) resolve path still enforces ownership
		// by checking the owner bookkeeping directly is exercised through
		// the public API: unlocking twice should fail the second time.
		ctx.UnlockMutex(mh)
		ek := ctx.UnlockMutex(mh)
		if ek != ErrNotOwner {
			t.Errorf("expected ErrNotOwner, got %v", ek)
		}
		return 0
	}
	h, _ := k.CreateTask(TaskConfig{Proc: body, Priority: 50})
	runAndJoin(t, k, h)
}

func TestSemaphoreSignalWakesBlockedWaiter(t *testing.T) {
	k := newTestKernel(t)
	sh, _ := k.CreateSemaphore("s", false)

	results := make(chan ErrKind, 1)

	waiter := func(ctx *TaskContext, arg any) int {
		ek := ctx.TakeSemaphore(sh, 0, true)
		results <- ek
		return 0
	}
	signaler := func(ctx *TaskContext, arg any) int {
		// lower numeric priority value = higher priority, runs first
		return 0
	}

	wh, _ := k.CreateTask(TaskConfig{Proc: waiter, Priority: 60})
	_, _ = k.CreateTask(TaskConfig{Proc: signaler, Priority: 10})

	go k.Start()
	// give the blocked waiter a moment, then signal from outside the
	// cooperative task model (as an ISR / external producer would).
	time.Sleep(10 * time.Millisecond)
	require.Equal(t, NoError, k.GiveSemaphore(sh))

	ec, ek := k.Join(wh)
	k.Stop()
	require.Equal(t, NoError, ek)
	assert.Equal(t, 0, ec)
	assert.Equal(t, NoError, <-results)
}

func TestCountingSemaphoreOverflow(t *testing.T) {
	k := newTestKernel(t)
	h, _ := k.CreateCountSem("cs", 2, 2)
	assert.Equal(t, ErrCountOverflow, k.GiveCountSem(h))

	body := func(ctx *TaskContext, arg any) int {
		ctx.TakeCountSem(h, 0, true)
		return 0
	}
	th, _ := k.CreateTask(TaskConfig{Proc: body, Priority: 50})
	runAndJoin(t, k, th)
	assert.Equal(t, NoError, k.GiveCountSem(h))
}

func TestEventAutoVsManualReset(t *testing.T) {
	k := newTestKernel(t)
	auto, _ := k.CreateEvent("auto", true)
	manual, _ := k.CreateEvent("manual", false)

	require.Equal(t, NoError, k.SetEvent(auto))
	require.Equal(t, NoError, k.SetEvent(manual))

	body := func(ctx *TaskContext, arg any) int {
		if ek := ctx.WaitEvent(auto, 0, true); ek != NoError {
			return 1
		}
		if ek := ctx.WaitEvent(manual, 0, true); ek != NoError {
			return 2
		}
		return 0
	}
	h, _ := k.CreateTask(TaskConfig{Proc: body, Priority: 50})
	ec := runAndJoin(t, k, h)
	assert.Equal(t, 0, ec)

	obj, ek := k.handles.resolve(auto, TypeEvent)
	require.Equal(t, NoError, ek)
	assert.False(t, obj.(*eventObject).signaled, "auto-reset event should clear on consume")

	obj, ek = k.handles.resolve(manual, TypeEvent)
	require.Equal(t, NoError, ek)
	assert.True(t, obj.(*eventObject).signaled, "manual-reset event should stay signaled")
}

func TestPtrQueueBlockingPostPend(t *testing.T) {
	k := newTestKernel(t)
	qh, _ := k.CreatePtrQueue("q", 1)

	results := make(chan any, 1)
	consumer := func(ctx *TaskContext, arg any) int {
		v, ek := ctx.Pend(qh, true, 0, true)
		if ek != NoError {
			return 1
		}
		results <- v
		return 0
	}
	producer := func(ctx *TaskContext, arg any) int {
		ek := ctx.Post(qh, "hello", true, 0, true)
		if ek != NoError {
			return 1
		}
		ek = ctx.Post(qh, "world", true, 0, true) // blocks until consumer drains
		if ek != NoError {
			return 2
		}
		return 0
	}

	ch, _ := k.CreateTask(TaskConfig{Proc: consumer, Priority: 20})
	ph, _ := k.CreateTask(TaskConfig{Proc: producer, Priority: 50})

	go k.Start()
	ec1 := mustJoin(t, k, ph)
	ec2 := mustJoin(t, k, ch)
	k.Stop()
	assert.Equal(t, 0, ec1)
	assert.Equal(t, 0, ec2)
	assert.Equal(t, "hello", <-results)
}

func mustJoin(t *testing.T, k *Kernel, h Handle) int {
	t.Helper()
	ec, ek := k.Join(h)
	require.Equal(t, NoError, ek)
	return ec
}

func TestByteStreamPartialTransferThenTimeout(t *testing.T) {
	k := newTestKernel(t, WithTickInterval(1000))
	sh, _ := k.CreateByteStream("bs", 4)

	results := make(chan IORequest, 1)
	writer := func(ctx *TaskContext, arg any) int {
		req := IORequest{Timeout: 5}
		ek := ctx.Write(sh, []byte{1, 2, 3, 4, 5, 6}, &req)
		results <- req
		if ek != ErrTimedOut {
			return 1
		}
		return 0
	}
	wh, _ := k.CreateTask(TaskConfig{Proc: writer, Priority: 50})

	go k.Start()
	for i := 0; i < 10; i++ {
		time.Sleep(time.Millisecond)
		k.OnTick()
	}
	ec := mustJoin(t, k, wh)
	k.Stop()
	assert.Equal(t, 0, ec)
	req := <-results
	assert.Equal(t, 4, req.Transferred, "only the first 4 bytes fit in the 4-byte stream")
}

func TestReleaseCountSemOverflowThenMultiWake(t *testing.T) {
	k := newTestKernel(t)
	h, _ := k.CreateCountSem("cs", 0, 3)

	woken := make(chan string, 4)
	waiter := func(name string) func(ctx *TaskContext, arg any) int {
		return func(ctx *TaskContext, arg any) int {
			ek := ctx.TakeCountSem(h, 0, true)
			if ek == NoError {
				woken <- name
			}
			return int(ek)
		}
	}
	xh, _ := k.CreateTask(TaskConfig{Proc: waiter("X"), Priority: 50})
	yh, _ := k.CreateTask(TaskConfig{Proc: waiter("Y"), Priority: 51})
	zh, _ := k.CreateTask(TaskConfig{Proc: waiter("Z"), Priority: 52})
	wh, _ := k.CreateTask(TaskConfig{Proc: waiter("W"), Priority: 53})

	go k.Start()
	time.Sleep(10 * time.Millisecond)

	var prev uint32 = 99
	assert.Equal(t, ErrCountOverflow, k.ReleaseCountSem(h, 5, &prev))
	assert.Equal(t, uint32(99), prev, "prev must be untouched on overflow")

	require.Equal(t, NoError, k.ReleaseCountSem(h, 3, &prev))
	assert.Equal(t, uint32(0), prev)

	mustJoin(t, k, xh)
	mustJoin(t, k, yh)
	mustJoin(t, k, zh)
	close(woken)
	var got []string
	for s := range woken {
		got = append(got, s)
	}
	assert.Equal(t, []string{"X", "Y", "Z"}, got, "release(3) wakes exactly the first three FIFO waiters")

	k.Stop()
	lockTok := k.lock()
	wobj, ek := k.handles.resolve(wh, TypeTask)
	state := wobj.(*task).state
	k.restore(lockTok)
	require.Equal(t, NoError, ek)
	assert.Equal(t, TaskBlocked, state, "W must remain blocked; only 3 units were released")
}

func TestManualResetEventWakesAllWaiters(t *testing.T) {
	k := newTestKernel(t)
	eh, _ := k.CreateEvent("manual", false)

	const n = 3
	results := make(chan ErrKind, n)
	body := func(ctx *TaskContext, arg any) int {
		results <- ctx.WaitEvent(eh, 0, true)
		return 0
	}

	handles := make([]Handle, n)
	for i := 0; i < n; i++ {
		handles[i], _ = k.CreateTask(TaskConfig{Proc: body, Priority: uint8(50 + i)})
	}

	go k.Start()
	time.Sleep(10 * time.Millisecond)
	require.Equal(t, NoError, k.SetEvent(eh))

	for _, h := range handles {
		mustJoin(t, k, h)
	}
	k.Stop()
	close(results)
	for ek := range results {
		assert.Equal(t, NoError, ek)
	}
}

func TestCloseOpenByNameRoundTrip(t *testing.T) {
	k := newTestKernel(t)
	h, ek := k.CreateEvent("rtrip", false)
	require.Equal(t, NoError, ek)

	h2, ek := k.OpenByName(TypeEvent, "rtrip")
	require.Equal(t, NoError, ek)
	assert.Equal(t, h, h2)

	require.Equal(t, NoError, k.CloseHandle(h2))

	// h is still addressable by name while the original holder remains.
	h3, ek := k.OpenByName(TypeEvent, "rtrip")
	require.Equal(t, NoError, ek)
	assert.Equal(t, h, h3)

	require.Equal(t, NoError, k.CloseHandle(h3))
	require.Equal(t, NoError, k.CloseHandle(h))

	_, ek = k.OpenByName(TypeEvent, "rtrip")
	assert.Equal(t, ErrNameNotFound, ek, "object should be destroyed once every handle is closed")
}

func TestOpenByHandleIncrementsRefcount(t *testing.T) {
	k := newTestKernel(t)
	h, _ := k.CreateSemaphore("s", false)

	h2, ek := k.OpenByHandle(h)
	require.Equal(t, NoError, ek)
	assert.Equal(t, h, h2)

	require.Equal(t, NoError, k.CloseHandle(h))
	_, ek = k.handles.resolve(h, TypeSemaphore)
	assert.Equal(t, NoError, ek, "object must survive the first close while OpenByHandle's reference is outstanding")

	require.Equal(t, NoError, k.CloseHandle(h))
	_, ek = k.handles.resolve(h, TypeSemaphore)
	assert.Equal(t, ErrInvalidHandle, ek)
}

func TestProtectionModeRejectsInvalidDisciplineCombination(t *testing.T) {
	k := newTestKernel(t)
	_, ek := k.CreatePtrQueueMode("q", 1, ProtectInterruptLock|ProtectMutex)
	assert.Equal(t, ErrInvalidParameter, ek)

	_, ek = k.CreatePtrQueueMode("q2", 1, 0)
	assert.Equal(t, ErrInvalidParameter, ek, "no discipline bit selected is also invalid")
}

func TestByteStreamDirectReadWriteLease(t *testing.T) {
	k := newTestKernel(t)
	h, ek := k.CreateByteStreamMode("bs", 4, DefaultProtectionMode|DirectReadWrite)
	require.Equal(t, NoError, ek)

	lease, ek := k.LeaseWrite(h, 4)
	require.Equal(t, NoError, ek)
	require.Len(t, lease, 4)
	copy(lease, []byte{1, 2, 3, 4})
	require.Equal(t, NoError, k.CommitWrite(h, 4))

	// a second lease cannot start until the first is committed
	_, ek = k.LeaseWrite(h, 1)
	assert.Equal(t, ErrInvalidParameter, ek)

	rlease, ek := k.LeaseRead(h, 4)
	require.Equal(t, NoError, ek)
	assert.Equal(t, []byte{1, 2, 3, 4}, rlease)
	require.Equal(t, NoError, k.CommitRead(h, 4))

	lease, ek = k.LeaseWrite(h, 4)
	require.Equal(t, NoError, ek)
	require.Len(t, lease, 4)
}

func TestByteStreamDirectReadWriteRequiresMode(t *testing.T) {
	k := newTestKernel(t)
	h, _ := k.CreateByteStream("bs", 4) // DefaultProtectionMode, no DirectReadWrite
	_, ek := k.LeaseWrite(h, 1)
	assert.Equal(t, ErrNotCompiled, ek)
}

func TestMsgQueueDirectReadWriteLease(t *testing.T) {
	k := newTestKernel(t)
	h, ek := k.CreateMsgQueueMode("mq", 2, 3, DefaultProtectionMode|DirectReadWrite)
	require.Equal(t, NoError, ek)

	w, ek := k.LeaseWriteMsg(h)
	require.Equal(t, NoError, ek)
	require.Len(t, w, 3)
	copy(w, []byte{9, 8, 7})
	require.Equal(t, NoError, k.CommitWriteMsg(h))

	r, ek := k.LeaseReadMsg(h)
	require.Equal(t, NoError, ek)
	assert.Equal(t, []byte{9, 8, 7}, r)
	require.Equal(t, NoError, k.CommitReadMsg(h))

	_, ek = k.LeaseReadMsg(h)
	assert.Equal(t, ErrQueueEmpty, ek)
}

func TestHandleResolveRejectsWrongType(t *testing.T) {
	k := newTestKernel(t)
	h, _ := k.CreateSemaphore("s", false)
	_, ek := k.handles.resolve(h, TypeEvent)
	assert.Equal(t, ErrInvalidHandle, ek)
}

func TestHandleRefcounting(t *testing.T) {
	k := newTestKernel(t)
	h, _ := k.CreateEvent("evname1", false)

	h2, ek := k.handles.openByName(TypeEvent, "evname1")
	require.Equal(t, NoError, ek)
	assert.Equal(t, h, h2)

	_, destroyed, ek := k.handles.close(h)
	require.Equal(t, NoError, ek)
	assert.False(t, destroyed, "first close should only decrement refcount")

	_, destroyed, ek = k.handles.close(h2)
	require.Equal(t, NoError, ek)
	assert.True(t, destroyed, "second close should destroy the object")
}
