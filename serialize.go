// Package hilevel: state snapshot/restore.
//
// Grounded on the teacher's CPU.Serialize/Deserialize: a versioned,
// fixed-layout, big-endian binary encoding of all programmer/kernel
// -visible state, with peripheral bindings deliberately excluded. Here
// the snapshot covers the process table, descriptor table and bookkeeping
// counters instead of CPU registers.
package hilevel

import (
	"encoding/binary"
	"errors"
)

// stateSerializeVersion is incremented whenever the binary layout changes.
const stateSerializeVersion = 1

// contextSerializeSize is the number of bytes one Context occupies:
// 4 (CPSR) + 13*4 (GPR) + 4 (LR) + 4 (SP) + 4 (PC).
const contextSerializeSize = 4 + 13*4 + 4 + 4 + 4

// pcbSerializeSize is the number of bytes one PCB occupies in a snapshot:
// 1 (status) + 4 (tos) + context + 4 (priority) + 4 (age) + 4 (niceness).
const pcbSerializeSize = 1 + 4 + contextSerializeSize + 4 + 4 + 4

// descriptorSerializeSize is the number of bytes one descriptor slot
// occupies ahead of the shared pipe table: 1 (free) + 4 (pipe id, 0 = none).
const descriptorSerializeSize = 1 + 4

// pipeSerializeSize is the number of bytes one Pipe occupies: 4 (head) +
// 4 (tail) + 4 (length) + BufferSize bytes of buffer contents.
const pipeSerializeSize = 4 + 4 + 4 + BufferSize

// SerializeSize returns the number of bytes Serialize writes for st. It
// is an upper bound: every descriptor slot is assumed pipe-backed, since
// the exact pipe count is only known once Serialize walks the table.
func (st *State) SerializeSize() int {
	return 1 + MaxProcs*pcbSerializeSize + 4 + 4 +
		MaxFDs*descriptorSerializeSize + 4 + MaxFDs*pipeSerializeSize
}

// Serialize writes a full snapshot of the kernel's process table,
// descriptor table and bookkeeping counters into buf, which must be at
// least SerializeSize() bytes. Peripheral bindings (Console/Timer/GIC)
// are not included, matching the teacher's choice not to serialize its
// Bus reference. Pipes shared by a read/write descriptor pair are
// written once and referenced by both slots via a 1-based pipe id, so
// the aliasing survives a round trip.
func (st *State) Serialize(buf []byte) error {
	if len(buf) < st.SerializeSize() {
		return errors.New("hilevel: serialize buffer too small")
	}

	buf[0] = stateSerializeVersion
	be := binary.BigEndian
	off := 1

	for i := range st.Procs {
		off = serializePCB(&st.Procs[i], buf, off, be)
	}

	executingPID := int32(-1)
	if st.Executing != nil {
		executingPID = int32(st.Executing.PID)
	}
	be.PutUint32(buf[off:], uint32(executingPID))
	off += 4

	be.PutUint32(buf[off:], uint32(st.ActiveProcs))
	off += 4

	pipeIDs := make(map[*Pipe]uint32)
	var pipes []*Pipe
	for i := range st.Descriptors {
		d := &st.Descriptors[i]
		id := uint32(0)
		if d.pipe != nil {
			existing, seen := pipeIDs[d.pipe]
			if !seen {
				pipes = append(pipes, d.pipe)
				existing = uint32(len(pipes))
				pipeIDs[d.pipe] = existing
			}
			id = existing
		}
		buf[off] = boolByte(d.free)
		off++
		be.PutUint32(buf[off:], id)
		off += 4
	}

	be.PutUint32(buf[off:], uint32(len(pipes)))
	off += 4
	for _, p := range pipes {
		be.PutUint32(buf[off:], uint32(p.head))
		off += 4
		be.PutUint32(buf[off:], uint32(p.tail))
		off += 4
		be.PutUint32(buf[off:], uint32(p.length))
		off += 4
		copy(buf[off:], p.buffer[:])
		off += BufferSize
	}

	return nil
}

func serializePCB(p *PCB, buf []byte, off int, be binary.ByteOrder) int {
	buf[off] = byte(p.Status)
	off++
	be.PutUint32(buf[off:], p.TOS)
	off += 4
	off = serializeContext(&p.Ctx, buf, off, be)
	be.PutUint32(buf[off:], uint32(int32(p.Priority)))
	off += 4
	be.PutUint32(buf[off:], uint32(int32(p.Age)))
	off += 4
	be.PutUint32(buf[off:], uint32(int32(p.Niceness)))
	off += 4
	return off
}

func serializeContext(c *Context, buf []byte, off int, be binary.ByteOrder) int {
	be.PutUint32(buf[off:], c.CPSR)
	off += 4
	for i := range c.GPR {
		be.PutUint32(buf[off:], c.GPR[i])
		off += 4
	}
	be.PutUint32(buf[off:], c.LR)
	off += 4
	be.PutUint32(buf[off:], c.SP)
	off += 4
	be.PutUint32(buf[off:], c.PC)
	off += 4
	return off
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// Deserialize restores kernel state from buf, which must be at least
// SerializeSize() bytes and produced by a matching Serialize version.
// Peripheral bindings (Console/Timer/GIC) are left unchanged; callers
// must rebind them before using the restored state.
func (st *State) Deserialize(buf []byte) error {
	if len(buf) < st.SerializeSize() {
		return errors.New("hilevel: deserialize buffer too small")
	}
	if buf[0] != stateSerializeVersion {
		return errors.New("hilevel: unsupported serialize version")
	}

	be := binary.BigEndian
	off := 1

	for i := range st.Procs {
		off = deserializePCB(&st.Procs[i], buf, off, be)
		st.Procs[i].PID = i
	}

	executingPID := int32(be.Uint32(buf[off:]))
	off += 4

	st.ActiveProcs = int(int32(be.Uint32(buf[off:])))
	off += 4

	type descEntry struct {
		free  bool
		pipID uint32
	}
	entries := make([]descEntry, MaxFDs)
	for i := range entries {
		entries[i].free = buf[off] != 0
		off++
		entries[i].pipID = be.Uint32(buf[off:])
		off += 4
	}

	pipeCount := be.Uint32(buf[off:])
	off += 4
	pipes := make([]*Pipe, pipeCount)
	for i := range pipes {
		p := &Pipe{}
		p.head = int(be.Uint32(buf[off:]))
		off += 4
		p.tail = int(be.Uint32(buf[off:]))
		off += 4
		p.length = int(be.Uint32(buf[off:]))
		off += 4
		copy(p.buffer[:], buf[off:off+BufferSize])
		off += BufferSize
		pipes[i] = p
	}

	for i := range st.Descriptors {
		st.Descriptors[i].free = entries[i].free
		if entries[i].pipID == 0 {
			st.Descriptors[i].pipe = nil
		} else {
			st.Descriptors[i].pipe = pipes[entries[i].pipID-1]
		}
	}

	if executingPID >= 0 {
		st.Executing = &st.Procs[executingPID]
	} else {
		st.Executing = nil
	}

	return nil
}

func deserializePCB(p *PCB, buf []byte, off int, be binary.ByteOrder) int {
	p.Status = Status(buf[off])
	off++
	p.TOS = be.Uint32(buf[off:])
	off += 4
	off = deserializeContext(&p.Ctx, buf, off, be)
	p.Priority = int(int32(be.Uint32(buf[off:])))
	off += 4
	p.Age = int(int32(be.Uint32(buf[off:])))
	off += 4
	p.Niceness = int(int32(be.Uint32(buf[off:])))
	off += 4
	return off
}

func deserializeContext(c *Context, buf []byte, off int, be binary.ByteOrder) int {
	c.CPSR = be.Uint32(buf[off:])
	off += 4
	for i := range c.GPR {
		c.GPR[i] = be.Uint32(buf[off:])
		off += 4
	}
	c.LR = be.Uint32(buf[off:])
	off += 4
	c.SP = be.Uint32(buf[off:])
	off += 4
	c.PC = be.Uint32(buf[off:])
	off += 4
	return off
}
