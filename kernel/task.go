package kernel

// TaskState is one of the five states a Task may occupy.
type TaskState uint8

const (
	TaskReady TaskState = iota
	TaskRunning
	TaskBlocked
	TaskSuspended
	TaskTerminated
)

func (s TaskState) String() string {
	switch s {
	case TaskReady:
		return "READY"
	case TaskRunning:
		return "RUNNING"
	case TaskBlocked:
		return "BLOCKED"
	case TaskSuspended:
		return "SUSPENDED"
	case TaskTerminated:
		return "TERMINATED"
	default:
		return "UNKNOWN"
	}
}

// TaskProc is a task entry point, the Go rendering of the original's
// TTaskProc (ERROR (*)(PVOID Arg)).
type TaskProc func(ctx *TaskContext, arg any) int

// DefaultStackSize mirrors OS_DEFAULT_TASK_STACK_SIZE from the original
// header. The Go port never allocates this buffer itself (task code runs
// on a regular goroutine stack that grows as needed), and platform.Platform
// has no stack-initialisation hook; the size is kept only as task metadata.
const DefaultStackSize = 512

// TaskConfig configures CreateTask.
type TaskConfig struct {
	Proc      TaskProc
	Arg       any
	StackSize uint32 // 0 -> DefaultStackSize
	Priority  uint8
	Quantum   uint8 // 0 disables time-slicing for this task
	Suspended bool
	Name      string
}

// task is the kernel's internal bookkeeping record for a Task; TaskContext
// is the handle-bearing facade given to task bodies and callers.
type task struct {
	handle Handle

	priority    uint8
	basePrio    uint8 // restored after priority-ceiling boost release
	ceilBoosted bool

	quantum          uint8
	quantumRemaining uint8

	state    TaskState
	exitCode int
	lastErr  ErrKind

	waitDesc *waitDescriptor

	stackSize uint32
	proc      TaskProc
	arg       any

	cpuTicks    uint64 // lifetime accumulated RUNNING ticks
	windowTicks [2]uint64
	windowIdx   int

	turn chan struct{} // scheduler -> task: "you may run now"
	done chan struct{} // closed when the task goroutine has fully exited

	readyNext *task // intrusive FIFO link within its priority level

	// suspendPending tracks an explicit SuspendTask call that arrived while
	// the task was BLOCKED; resume is deferred until the wait also
	// completes.
	suspendPending bool
}

// TaskContext is passed to every TaskProc; it binds kernel calls to the
// calling task without relying on goroutine-local state beyond the simple
// fact that each task owns exactly one goroutine.
type TaskContext struct {
	k *Kernel
	t *task
}

// Handle returns the calling task's own handle (osGetTaskHandle).
func (c *TaskContext) Handle() Handle { return c.t.handle }

// Exit ends the calling task immediately with the given exit code
// (osExitTask). It never returns: control unwinds back through
// runTaskGoroutine's recover, which treats the sentinel panic as a normal
// exit rather than a crash.
func (c *TaskContext) Exit(exitCode int) {
	c.k.exitCurrentTask(c.t, exitCode)
	panic(taskExitPanic{})
}
