// Package klog is the kernel's logging seam. It exposes a package-level,
// swappable structured logger so the kernel can log scheduling and IPC
// events without any package depending directly on a concrete backend,
// mirroring the global-logger pattern in eventloop's logging.go.
package klog

import (
	"sync"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Logger is the type kernel code holds and logs through. It is a thin
// alias over logiface's generic Logger, fixed to the stumpy event
// implementation, so call sites never need type parameters.
type Logger = *logiface.Logger[*stumpy.Event]

var global struct {
	sync.RWMutex
	logger Logger
}

func init() {
	global.logger = stumpy.L.New(
		stumpy.WithStumpy(),
		logiface.WithLevel[*stumpy.Event](logiface.LevelInformational),
	)
}

// SetGlobal replaces the package-wide default logger, e.g. to redirect
// output or raise/lower the level. A nil logger disables logging.
func SetGlobal(l Logger) {
	global.Lock()
	defer global.Unlock()
	global.logger = l
}

// Global returns the current package-wide default logger. Kernel.New
// captures this once at construction time; call SetGlobal before
// constructing a Kernel to change it.
func Global() Logger {
	global.RLock()
	defer global.RUnlock()
	return global.logger
}
