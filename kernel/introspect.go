package kernel

import "golang.org/x/exp/slices"

// TaskHandles returns every live task handle, sorted for stable
// iteration (used by tests and diagnostic tooling rather than scheduling
// itself, which relies on the priority bitmap, not this ordering).
func (k *Kernel) TaskHandles() []Handle {
	prev := k.lock()
	defer k.restore(prev)
	var out []Handle
	k.forEachTaskLocked(func(t *task) {
		out = append(out, t.handle)
	})
	slices.Sort(out)
	return out
}
