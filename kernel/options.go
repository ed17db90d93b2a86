package kernel

// config holds resolved kernel construction options. It is the Go
// rendering of the original header's compile-time OS_*_FUNC switches.
type config struct {
	maxTasks        int
	maxWait         int
	objectDeletion  bool
	openByHandle    bool
	readWriteAPI    bool
	systemStats     bool
	priorityCeiling bool
	objectNames     bool
	nameMaxLen      int
	tickInterval    uint32
}

func defaultConfig() *config {
	return &config{
		maxTasks:       256,
		maxWait:        1,
		objectDeletion: true,
		openByHandle:   true,
		readWriteAPI:   true,
		systemStats:    true,
		objectNames:    true,
		nameMaxLen:     8,
		tickInterval:   64,
	}
}

// Option configures a Kernel at construction time.
type Option interface {
	apply(*config)
}

type optionFunc func(*config)

func (f optionFunc) apply(c *config) { f(c) }

// WithMaxTasks bounds the number of simultaneously live tasks.
func WithMaxTasks(n int) Option {
	return optionFunc(func(c *config) {
		if n > 0 {
			c.maxTasks = n
		}
	})
}

// WithMaxWait sets MAX_WAIT, the maximum fan-out of WaitForObjects. A value
// of 1 disables the multi-wait surface (WaitForObjects returns
// ErrNotCompiled), matching OS_MAX_WAIT_FOR_OBJECTS == 1 in the original.
func WithMaxWait(n int) Option {
	return optionFunc(func(c *config) {
		if n >= 1 {
			c.maxWait = n
		}
	})
}

// WithObjectDeletion enables or disables Close/destroy support
// (OS_ALLOW_OBJECT_DELETION). Disabling it also disables OpenByHandle.
func WithObjectDeletion(enabled bool) Option {
	return optionFunc(func(c *config) {
		c.objectDeletion = enabled
		if !enabled {
			c.openByHandle = false
		}
	})
}

// WithOpenByHandle enables OpenByHandle (OS_OPEN_BY_HANDLE_FUNC). Has no
// effect if object deletion is disabled.
func WithOpenByHandle(enabled bool) Option {
	return optionFunc(func(c *config) {
		c.openByHandle = enabled
	})
}

// WithReadWriteAPI enables the generic Read/Write IORequest surface
// (OS_READ_WRITE_FUNC).
func WithReadWriteAPI(enabled bool) Option {
	return optionFunc(func(c *config) { c.readWriteAPI = enabled })
}

// WithSystemStats enables GetSystemStat (OS_GET_SYSTEM_STAT_FUNC).
func WithSystemStats(enabled bool) Option {
	return optionFunc(func(c *config) { c.systemStats = enabled })
}

// WithPriorityCeiling enables the optional mutex priority-ceiling
// protocol.
func WithPriorityCeiling(enabled bool) Option {
	return optionFunc(func(c *config) { c.priorityCeiling = enabled })
}

// WithObjectNames enables named object lookup (OpenByName) and sets the
// maximum name length. A positive maxLen rejects longer names with
// ErrInvalidParameter; maxLen == 0 sets no length limit and accepts any
// string, so integer-only names (OS_SYS_OBJECT_MAX_NAME_LEN == 0 in the
// original) are not enforced.
func WithObjectNames(enabled bool, maxLen int) Option {
	return optionFunc(func(c *config) {
		c.objectNames = enabled
		if maxLen >= 0 {
			c.nameMaxLen = maxLen
		}
	})
}

// WithTickInterval sets the number of ticks between statistics window
// rotations.
func WithTickInterval(ticks uint32) Option {
	return optionFunc(func(c *config) {
		if ticks > 0 {
			c.tickInterval = ticks
		}
	})
}

func resolveOptions(opts []Option) *config {
	c := defaultConfig()
	for _, o := range opts {
		if o == nil {
			continue
		}
		o.apply(c)
	}
	return c
}
