package kernel

import "github.com/mmoczala/siriusrtos/internal/ring"

// byteStreamObject is a bounded ring
// buffer of bytes where Read/Write transfer as many bytes as fit right
// now, optionally blocking for the remainder. A blocked Read/Write never
// holds the lock across its own blocking wait; each retry re-attempts the
// transfer from scratch against the buffer's then-current state.
type byteStreamObject struct {
	buf          *ring.Buffer[byte]
	readWaiters  []*waitDescriptor
	writeWaiters []*waitDescriptor
	mode         ProtectionMode

	// writeLeaseLen/readLeaseLen track an outstanding direct-mode lease so
	// at most one of each is ever in flight; Commit* clears it.
	writeLeaseLen int
	readLeaseLen  int
}

// CreateByteStream creates a byte stream of the given capacity
// (osCreateByteStream), using DefaultProtectionMode.
func (k *Kernel) CreateByteStream(name string, capacity int) (Handle, ErrKind) {
	return k.CreateByteStreamMode(name, capacity, DefaultProtectionMode)
}

// CreateByteStreamMode creates a byte stream with an explicit protection
// mode, failing with ErrInvalidParameter if mode selects an unsupported
// combination of protection disciplines. DirectReadWrite enables
// LeaseWrite/CommitWrite and LeaseRead/CommitRead on the resulting stream.
func (k *Kernel) CreateByteStreamMode(name string, capacity int, mode ProtectionMode) (Handle, ErrKind) {
	prev := k.lock()
	defer k.restore(prev)
	if capacity <= 0 {
		return InvalidHandle, ErrInvalidParameter
	}
	if ek := validateProtectionMode(mode); ek != NoError {
		return InvalidHandle, ek
	}
	var owner Handle
	if k.current != nil {
		owner = k.current.handle
	}
	return k.handles.allocate(&byteStreamObject{buf: ring.New[byte](capacity), mode: mode}, TypeStream, owner, name)
}

// LeaseWrite returns a zero-copy view, backed directly by h's ring
// storage, of up to n not-yet-written bytes (osDirectWrite). The caller
// fills some prefix of the returned slice and finalizes with CommitWrite;
// only one write lease may be outstanding at a time. Requires h to have
// been created with the DirectReadWrite protection bit.
func (k *Kernel) LeaseWrite(h Handle, n int) ([]byte, ErrKind) {
	prev := k.lock()
	defer k.restore(prev)
	obj, ek := k.handles.resolve(h, TypeStream)
	if ek != NoError {
		return nil, ek
	}
	s := obj.(*byteStreamObject)
	if s.mode&DirectReadWrite == 0 {
		return nil, ErrNotCompiled
	}
	if s.writeLeaseLen != 0 {
		return nil, ErrInvalidParameter
	}
	lease := s.buf.ReserveWrite(n)
	s.writeLeaseLen = len(lease)
	return lease, NoError
}

// CommitWrite finalizes h's outstanding write lease, advancing the ring by
// n bytes actually written (n must not exceed the leased length) and
// waking any blocked readers.
func (k *Kernel) CommitWrite(h Handle, n int) ErrKind {
	prev := k.lock()
	defer k.restore(prev)
	obj, ek := k.handles.resolve(h, TypeStream)
	if ek != NoError {
		return ek
	}
	s := obj.(*byteStreamObject)
	if s.mode&DirectReadWrite == 0 {
		return ErrNotCompiled
	}
	if n < 0 || n > s.writeLeaseLen {
		return ErrInvalidParameter
	}
	s.buf.CommitWrite(n)
	s.writeLeaseLen = 0
	if n > 0 {
		k.wakeQueueWaiters(&s.readWaiters)
	}
	return NoError
}

// LeaseRead returns a zero-copy view, backed directly by h's ring
// storage, of up to n not-yet-consumed bytes (osDirectRead) without
// removing them. The caller finalizes with CommitRead; only one read
// lease may be outstanding at a time. Requires the DirectReadWrite
// protection bit.
func (k *Kernel) LeaseRead(h Handle, n int) ([]byte, ErrKind) {
	prev := k.lock()
	defer k.restore(prev)
	obj, ek := k.handles.resolve(h, TypeStream)
	if ek != NoError {
		return nil, ek
	}
	s := obj.(*byteStreamObject)
	if s.mode&DirectReadWrite == 0 {
		return nil, ErrNotCompiled
	}
	if s.readLeaseLen != 0 {
		return nil, ErrInvalidParameter
	}
	lease := s.buf.ReserveRead(n)
	s.readLeaseLen = len(lease)
	return lease, NoError
}

// CommitRead finalizes h's outstanding read lease, consuming n bytes (n
// must not exceed the leased length) and waking any blocked writers.
func (k *Kernel) CommitRead(h Handle, n int) ErrKind {
	prev := k.lock()
	defer k.restore(prev)
	obj, ek := k.handles.resolve(h, TypeStream)
	if ek != NoError {
		return ek
	}
	s := obj.(*byteStreamObject)
	if s.mode&DirectReadWrite == 0 {
		return ErrNotCompiled
	}
	if n < 0 || n > s.readLeaseLen {
		return ErrInvalidParameter
	}
	s.buf.CommitRead(n)
	s.readLeaseLen = 0
	if n > 0 {
		k.wakeQueueWaiters(&s.writeWaiters)
	}
	return NoError
}

func (s *byteStreamObject) writeSome(data []byte) int {
	n := 0
	for n < len(data) && s.buf.PushBack(data[n]) {
		n++
	}
	return n
}

func (s *byteStreamObject) readSome(dst []byte) int {
	n := 0
	for n < len(dst) {
		v, ok := s.buf.PopFront()
		if !ok {
			break
		}
		dst[n] = v
		n++
	}
	return n
}

// Write transfers as many bytes from data as fit immediately, then blocks
// for the remainder per req (osWriteStream). req.Transferred is set to
// the total transferred even on timeout/cancellation.
func (c *TaskContext) Write(h Handle, data []byte, req *IORequest) ErrKind {
	k := c.k
	t := c.t
	if !k.cfg.readWriteAPI {
		return ErrNotCompiled
	}
	prev := k.lock()
	obj, ek := k.handles.resolve(h, TypeStream)
	if ek != NoError {
		k.restore(prev)
		return ek
	}
	s := obj.(*byteStreamObject)

	written := s.writeSome(data)
	if written > 0 {
		k.wakeQueueWaiters(&s.readWaiters)
	}
	req.Transferred = written
	if written == len(data) {
		k.restore(prev)
		return NoError
	}
	if req.Timeout == 0 && !req.Infinite {
		k.restore(prev)
		return ErrTimedOut
	}

	deadline := k.tick + req.Timeout
	finite := !req.Infinite
	for written < len(data) {
		wd := &waitDescriptor{owner: t, finite: finite, deadline: deadline}
		s.writeWaiters = append(s.writeWaiters, wd)
		if finite {
			k.deltaListInsert(wd)
		}
		t.state = TaskBlocked
		t.waitDesc = wd
		k.blockCurrentTask(t)

		if wd.status != NoError {
			req.Transferred = written
			k.restore(prev)
			return wd.status
		}
		n := s.writeSome(data[written:])
		written += n
		req.Transferred = written
		if n > 0 {
			k.wakeQueueWaiters(&s.readWaiters)
		}
	}
	k.restore(prev)
	return NoError
}

// Read transfers as many bytes into dst as are available immediately,
// then blocks for the remainder per req (osReadStream).
func (c *TaskContext) Read(h Handle, dst []byte, req *IORequest) ErrKind {
	k := c.k
	t := c.t
	if !k.cfg.readWriteAPI {
		return ErrNotCompiled
	}
	prev := k.lock()
	obj, ek := k.handles.resolve(h, TypeStream)
	if ek != NoError {
		k.restore(prev)
		return ek
	}
	s := obj.(*byteStreamObject)

	got := s.readSome(dst)
	if got > 0 {
		k.wakeQueueWaiters(&s.writeWaiters)
	}
	req.Transferred = got
	if got == len(dst) {
		k.restore(prev)
		return NoError
	}
	if req.Timeout == 0 && !req.Infinite {
		k.restore(prev)
		return ErrTimedOut
	}

	deadline := k.tick + req.Timeout
	finite := !req.Infinite
	for got < len(dst) {
		wd := &waitDescriptor{owner: t, finite: finite, deadline: deadline}
		s.readWaiters = append(s.readWaiters, wd)
		if finite {
			k.deltaListInsert(wd)
		}
		t.state = TaskBlocked
		t.waitDesc = wd
		k.blockCurrentTask(t)

		if wd.status != NoError {
			req.Transferred = got
			k.restore(prev)
			return wd.status
		}
		n := s.readSome(dst[got:])
		got += n
		req.Transferred = got
		if n > 0 {
			k.wakeQueueWaiters(&s.writeWaiters)
		}
	}
	k.restore(prev)
	return NoError
}
