package kernel

// This file implements a rolling two-bucket statistics
// window per task (ticks spent RUNNING in the current vs. previous
// window) and a system-wide idle/busy summary, gated by WithSystemStats.

// TaskStat reports one task's CPU usage (osGetTaskStat).
type TaskStat struct {
	LifetimeTicks uint64
	WindowTicks   uint64 // ticks RUNNING during the last completed window
}

// SystemStat reports kernel-wide scheduling activity (osGetSystemStat).
type SystemStat struct {
	TotalTicks uint64
	IdleTicks  uint64
}

// rotateStatsWindowLocked closes the current statistics window and opens
// the next, per-task. Caller must hold the lock; called from OnTick.
func (k *Kernel) rotateStatsWindowLocked() {
	k.statsWindowStart = k.tick
	k.forEachTaskLocked(func(t *task) {
		t.windowIdx = 1 - t.windowIdx
		t.windowTicks[t.windowIdx] = 0
	})
}

// forEachTaskLocked walks every live task slot in the handle table.
// Caller must hold the lock.
func (k *Kernel) forEachTaskLocked(fn func(t *task)) {
	for i := range k.handles.slots {
		s := &k.handles.slots[i]
		if s.inUse && s.typ == TypeTask {
			fn(s.object.(*task))
		}
	}
}

// GetTaskStat returns h's lifetime RUNNING ticks and its last completed
// statistics window (osGetTaskStat).
func (k *Kernel) GetTaskStat(h Handle) (TaskStat, ErrKind) {
	if !k.cfg.systemStats {
		return TaskStat{}, ErrNotCompiled
	}
	prev := k.lock()
	defer k.restore(prev)
	obj, ek := k.handles.resolve(h, TypeTask)
	if ek != NoError {
		return TaskStat{}, ek
	}
	t := obj.(*task)
	completed := t.windowTicks[1-t.windowIdx]
	return TaskStat{LifetimeTicks: t.cpuTicks, WindowTicks: completed}, NoError
}

// GetSystemStat returns kernel-wide scheduling totals (osGetSystemStat).
func (k *Kernel) GetSystemStat() (SystemStat, ErrKind) {
	if !k.cfg.systemStats {
		return SystemStat{}, ErrNotCompiled
	}
	prev := k.lock()
	defer k.restore(prev)
	var idle uint64
	if k.idle != nil {
		idle = k.idle.cpuTicks
	}
	return SystemStat{TotalTicks: uint64(k.tick), IdleTicks: idle}, NoError
}
