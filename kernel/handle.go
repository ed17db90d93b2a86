package kernel

import "fmt"

// ObjectType tags the concrete kind of object a Handle resolves to. resolve
// fails with ErrInvalidHandle if the type tag disagrees with the one
// requested.
type ObjectType uint8

const (
	TypeTask ObjectType = iota + 1
	TypeMutex
	TypeSemaphore
	TypeCountSem
	TypeEvent
	TypeTimer
	TypeFlags
	TypeSharedMem
	TypePtrQueue
	TypeStream
	TypeQueue
	TypeMailbox
)

func (t ObjectType) String() string {
	switch t {
	case TypeTask:
		return "Task"
	case TypeMutex:
		return "Mutex"
	case TypeSemaphore:
		return "Semaphore"
	case TypeCountSem:
		return "CountSem"
	case TypeEvent:
		return "Event"
	case TypeTimer:
		return "Timer"
	case TypeFlags:
		return "Flags"
	case TypeSharedMem:
		return "SharedMem"
	case TypePtrQueue:
		return "PtrQueue"
	case TypeStream:
		return "Stream"
	case TypeQueue:
		return "Queue"
	case TypeMailbox:
		return "Mailbox"
	default:
		return fmt.Sprintf("ObjectType(%d)", int(t))
	}
}

// Handle is an opaque, type-tagged, reference-counted object identifier.
// The low 20 bits are the slot index; the high 12 bits are a generation
// counter, mixed in so a stale handle never aliases a reborn slot.
type Handle uint32

const (
	handleIndexBits = 20
	handleIndexMask = 1<<handleIndexBits - 1
)

func makeHandle(index uint32, generation uint32) Handle {
	return Handle((generation << handleIndexBits) | (index & handleIndexMask))
}

func (h Handle) index() uint32      { return uint32(h) & handleIndexMask }
func (h Handle) generation() uint32 { return uint32(h) >> handleIndexBits }

// InvalidHandle is never returned as a valid allocation.
const InvalidHandle Handle = 0

type handleSlot struct {
	object     any
	typ        ObjectType
	refCount   int
	name       string
	named      bool
	generation uint32
	owner      Handle // task that created the object, for release_all_by_owner
	inUse      bool
}

// handleTable is the process-wide handle -> (object, type, refcount, name)
// map. All mutation happens under the kernel's
// global interrupt lock; handleTable itself holds no lock.
type handleTable struct {
	slots     []handleSlot
	freeList  []uint32
	byName    map[ObjectType]map[string]uint32
	nameMax   int
	namesOn   bool
}

func newHandleTable(maxObjects int, namesOn bool, nameMax int) *handleTable {
	if maxObjects <= 0 {
		maxObjects = 256
	}
	return &handleTable{
		slots:   make([]handleSlot, 1, maxObjects), // slot 0 stays unused, so no handle equals InvalidHandle
		byName:  make(map[ObjectType]map[string]uint32),
		nameMax: nameMax,
		namesOn: namesOn,
	}
}

// allocate installs object under typ, with refcount 1, optionally named.
// Returns InvalidHandle, ErrNameInUse if name is already taken for typ.
func (t *handleTable) allocate(object any, typ ObjectType, owner Handle, name string) (Handle, ErrKind) {
	if name != "" {
		if !t.namesOn {
			return InvalidHandle, ErrInvalidParameter
		}
		if t.nameMax > 0 && len(name) > t.nameMax {
			return InvalidHandle, ErrInvalidParameter
		}
		if m := t.byName[typ]; m != nil {
			if _, exists := m[name]; exists {
				return InvalidHandle, ErrNameInUse
			}
		}
	}

	var idx uint32
	if n := len(t.freeList); n > 0 {
		idx = t.freeList[n-1]
		t.freeList = t.freeList[:n-1]
	} else {
		idx = uint32(len(t.slots))
		t.slots = append(t.slots, handleSlot{})
	}

	s := &t.slots[idx]
	s.object = object
	s.typ = typ
	s.refCount = 1
	s.name = name
	s.named = name != ""
	s.owner = owner
	s.inUse = true

	if s.named {
		m := t.byName[typ]
		if m == nil {
			m = make(map[string]uint32)
			t.byName[typ] = m
		}
		m[name] = idx
	}

	return makeHandle(idx, s.generation), NoError
}

func (t *handleTable) slotFor(h Handle) (*handleSlot, bool) {
	idx := h.index()
	if int(idx) >= len(t.slots) {
		return nil, false
	}
	s := &t.slots[idx]
	if !s.inUse || s.generation != h.generation() {
		return nil, false
	}
	return s, true
}

// resolve returns the object for h if it is in use and tagged as expected.
func (t *handleTable) resolve(h Handle, expected ObjectType) (any, ErrKind) {
	s, ok := t.slotFor(h)
	if !ok {
		return nil, ErrInvalidHandle
	}
	if s.typ != expected {
		return nil, ErrInvalidHandle
	}
	return s.object, NoError
}

// openByName resolves a name to a handle, incrementing the refcount.
func (t *handleTable) openByName(typ ObjectType, name string) (Handle, ErrKind) {
	if !t.namesOn {
		return InvalidHandle, ErrInvalidParameter
	}
	m := t.byName[typ]
	if m == nil {
		return InvalidHandle, ErrNameNotFound
	}
	idx, ok := m[name]
	if !ok {
		return InvalidHandle, ErrNameNotFound
	}
	s := &t.slots[idx]
	s.refCount++
	return makeHandle(idx, s.generation), NoError
}

// openByHandle increments h's refcount, returning the resolved object.
func (t *handleTable) openByHandle(h Handle) (any, ErrKind) {
	s, ok := t.slotFor(h)
	if !ok {
		return nil, ErrInvalidHandle
	}
	s.refCount++
	return s.object, NoError
}

// close decrements h's refcount, destroying (and invalidating) the slot
// when it reaches zero. Returns the object one final time so the caller
// can run type-specific teardown before the slot is reused.
func (t *handleTable) close(h Handle) (any, bool, ErrKind) {
	s, ok := t.slotFor(h)
	if !ok {
		return nil, false, ErrInvalidHandle
	}
	s.refCount--
	if s.refCount > 0 {
		return s.object, false, NoError
	}

	obj := s.object
	if s.named {
		if m := t.byName[s.typ]; m != nil {
			delete(m, s.name)
		}
	}
	idx := h.index()
	t.slots[idx] = handleSlot{generation: s.generation + 1}
	t.freeList = append(t.freeList, idx)
	return obj, true, NoError
}

// OpenByName resolves name to a handle under typ, incrementing its
// refcount (osOpenByName). Fails with ErrNotCompiled if named objects are
// disabled (WithObjectNames(false, ...)), ErrNameNotFound if no object of
// that type is registered under name.
func (k *Kernel) OpenByName(typ ObjectType, name string) (Handle, ErrKind) {
	if !k.cfg.objectNames {
		return InvalidHandle, ErrNotCompiled
	}
	prev := k.lock()
	defer k.restore(prev)
	return k.handles.openByName(typ, name)
}

// OpenByHandle increments h's refcount, returning h unchanged so the
// caller closes it the same number of times it opened it (osOpenByHandle).
// Fails with ErrNotCompiled if disabled via WithOpenByHandle or
// WithObjectDeletion(false).
func (k *Kernel) OpenByHandle(h Handle) (Handle, ErrKind) {
	if !k.cfg.openByHandle || !k.cfg.objectDeletion {
		return InvalidHandle, ErrNotCompiled
	}
	prev := k.lock()
	defer k.restore(prev)
	if _, ek := k.handles.openByHandle(h); ek != NoError {
		return InvalidHandle, ek
	}
	return h, NoError
}

// CloseHandle decrements h's refcount, destroying the underlying object
// once it reaches zero (osClose). Fails with ErrNotCompiled if object
// deletion is disabled via WithObjectDeletion(false).
func (k *Kernel) CloseHandle(h Handle) ErrKind {
	if !k.cfg.objectDeletion {
		return ErrNotCompiled
	}
	prev := k.lock()
	defer k.restore(prev)
	_, _, ek := k.handles.close(h)
	return ek
}

// releaseAllByOwner closes every handle owned solely by owner, used during
// task termination cleanup.
func (t *handleTable) releaseAllByOwner(owner Handle) []any {
	var destroyed []any
	for idx := range t.slots {
		s := &t.slots[idx]
		if !s.inUse || s.owner != owner {
			continue
		}
		h := makeHandle(uint32(idx), s.generation)
		if obj, did, _ := t.close(h); did {
			destroyed = append(destroyed, obj)
		}
	}
	return destroyed
}
