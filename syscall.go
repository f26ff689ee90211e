package hilevel

import "log"

// Syscall identifiers (spec.md §4.5). Arguments are read from
// ctx.GPR[0..2]; return values are written to ctx.GPR[0].
const (
	SvcYield = 0x00
	SvcWrite = 0x01
	SvcRead  = 0x02
	SvcFork  = 0x03
	SvcExit  = 0x04
	SvcExec  = 0x05
	SvcKill  = 0x06
	SvcNice  = 0x07
	SvcPipe  = 0x08
)

// Svc is the syscall entry point invoked by the trampoline with the
// caller's context and the decoded syscall identifier. mem provides
// byte-addressed access to the caller's buffers for read/write/pipe.
// Unknown identifiers return with no effect, per spec.md §4.5.
func Svc(st *State, ctx *Context, mem Memory, id uint32) {
	switch id {
	case SvcYield:
		st.Console.PutC('Y')
		Schedule(st, ctx)
	case SvcWrite:
		doWrite(st, ctx, mem)
	case SvcRead:
		doRead(st, ctx, mem)
	case SvcFork:
		st.Console.PutC('F')
		doFork(st, ctx, mem)
	case SvcExit:
		st.Console.PutC('E')
		doExit(st, ctx)
	case SvcExec:
		st.Console.PutC('X')
		doExec(st, ctx)
	case SvcKill:
		st.Console.PutC('K')
		doKill(st, ctx)
	case SvcNice:
		doNice(st, ctx)
	case SvcPipe:
		st.Console.PutC('P')
		doPipe(st, ctx, mem)
	default:
		// Unknown/unsupported: no effect (spec.md §4.5).
		log.Printf("[hilevel] svc: unknown syscall id %#x", id)
	}
}

// errReturn is the GPR[0] encoding of a syscall's -1 return convention.
const errReturn = ^uint32(0)

// doWrite implements the write(fd, buf, n) syscall (spec.md §4.5.1).
func doWrite(st *State, ctx *Context, mem Memory) {
	fd := int32(ctx.GPR[0])
	buf := ctx.GPR[1]
	n := int32(ctx.GPR[2])

	switch {
	case fd == 0:
		ctx.GPR[0] = 0
	case fd == 1:
		for i := int32(0); i < n; i++ {
			st.Console.PutC(mem.ReadByte(buf + uint32(i)))
		}
		ctx.GPR[0] = uint32(n)
	case fd < 0:
		ctx.GPR[0] = errReturn
	case fd == 2:
		ctx.GPR[0] = errReturn
	case fd >= MaxFDs:
		ctx.GPR[0] = errReturn
	default:
		d := &st.Descriptors[fd]
		if d.free || d.pipe == nil {
			ctx.GPR[0] = errReturn
			return
		}
		p := d.pipe
		var i int32
		for ; i < n; i++ {
			if !p.writeByte(mem.ReadByte(buf + uint32(i))) {
				break
			}
			// The loop index, not the transferred-byte count, is
			// what the caller sees in GPR[0] once the buffer fills
			// mid-loop. This is a known defect in the original
			// kernel, preserved verbatim (spec.md §9) because the
			// dining-philosophers workload depends on its exact
			// behavior under a full pipe.
			ctx.GPR[0] = uint32(i)
		}
		if i == 0 {
			ctx.GPR[0] = 0
		}
		// A write that transfers every byte returns n.
		if i == n {
			ctx.GPR[0] = uint32(n)
		}
	}
}

// doRead implements the read(fd, buf, n) syscall (spec.md §4.5.1).
func doRead(st *State, ctx *Context, mem Memory) {
	fd := int32(ctx.GPR[0])
	buf := ctx.GPR[1]
	n := int32(ctx.GPR[2])

	switch {
	case fd == 0:
		ctx.GPR[0] = 0
	case fd == 1:
		ctx.GPR[0] = 0
	case fd < 0:
		ctx.GPR[0] = errReturn
	case fd == 2:
		ctx.GPR[0] = errReturn
	case fd >= MaxFDs:
		ctx.GPR[0] = errReturn
	default:
		d := &st.Descriptors[fd]
		if d.free || d.pipe == nil {
			ctx.GPR[0] = errReturn
			return
		}
		p := d.pipe
		var i int32
		for ; i < n; i++ {
			b, ok := p.readByte()
			if !ok {
				break
			}
			mem.WriteByte(buf+uint32(i), b)
			ctx.GPR[0] = uint32(i)
		}
		if i == 0 {
			ctx.GPR[0] = 0
		}
		// A read that transfers every byte returns n.
		if i == n {
			ctx.GPR[0] = uint32(n)
		}
	}
}

// doFork implements the fork() syscall (spec.md §4.5.2). The new child
// slot is the lowest-indexed TERMINATED slot if one exists, otherwise the
// next unused index; ActiveProcs is incremented unconditionally, so a
// long-running workload that reuses TERMINATED slots can see ActiveProcs
// grow without bound even though the live process count does not — a
// preserved source oddity (spec.md §9). As in hilevel.c's fork(), the
// parent's live stack (the size bytes from its SP up to its TOS) is copied byte-for-byte
// into the child's rebased stack, so the child sees the same local
// variables and call frame the parent had at the point of the call.
func doFork(st *State, ctx *Context, mem Memory) {
	child := -1
	for i := 1; i < MaxProcs; i++ {
		if st.Procs[i].Status == StatusTerminated {
			child = i
			break
		}
	}

	if child == -1 {
		// Table exhaustion is not checked by the source design (see
		// DESIGN.md, Open Question: fork exhaustion); we clamp rather
		// than index out of range so the handler still returns
		// through the trampoline instead of crashing.
		child = st.ActiveProcs
		if child >= MaxProcs {
			log.Printf("[hilevel] fork: process table exhausted, clamping child to slot %d", MaxProcs-1)
			child = MaxProcs - 1
		}
		st.Procs[child] = PCB{
			TOS: st.TOSGeneral - stackOffset*uint32(st.ActiveProcs-1),
		}
	}
	st.ActiveProcs++

	parent := st.Executing
	size := parent.TOS - ctx.SP

	st.Procs[child].PID = child
	st.Procs[child].Status = StatusReady
	st.Procs[child].Priority = defaultPriority
	st.Procs[child].Age = 0
	st.Procs[child].Niceness = parent.Niceness
	st.Procs[child].Ctx = *ctx
	st.Procs[child].Ctx.SP = st.Procs[child].TOS - size

	for i := uint32(0); i < size; i++ {
		mem.WriteByte(st.Procs[child].Ctx.SP+i, mem.ReadByte(ctx.SP+i))
	}

	// The kernel does not duplicate descriptors or pipes: child and
	// parent observe the same descriptor table, which is exactly what
	// lets a forked philosopher inherit its pipe ends.

	ctx.GPR[0] = uint32(child)
	st.Procs[child].Ctx.GPR[0] = 0
}

// doExit implements exit(code) (spec.md §4.5). The exit code in GPR[0] is
// read but discarded, matching the original kernel.
func doExit(st *State, ctx *Context) {
	_ = ctx.GPR[0]
	st.Executing.Status = StatusTerminated
	Schedule(st, ctx)
}

// doExec implements exec(entry) (spec.md §4.5): it overwrites the
// caller's PC with the requested entry point and resets SP to the
// caller's PCB's TOS, without changing pid.
func doExec(st *State, ctx *Context) {
	ctx.PC = ctx.GPR[0]
	ctx.SP = st.Executing.TOS
}

// doKill implements kill(pid) (spec.md §4.5): marks the target
// TERMINATED and reschedules. Out-of-range pids are logged and otherwise
// ignored.
func doKill(st *State, ctx *Context) {
	pid := int(ctx.GPR[0])
	if pid < 0 || pid >= MaxProcs {
		log.Printf("[hilevel] kill: pid %d out of range, ignored", pid)
		return
	}
	st.Procs[pid].Status = StatusTerminated
	Schedule(st, ctx)
}

// doNice implements nice(pid, x) (spec.md §4.5): clamps x to [-20, 19]
// and stores it as the target's niceness. Higher values mean higher
// effective priority, inverted from the conventional Unix sign
// convention (see DESIGN.md).
func doNice(st *State, ctx *Context) {
	pid := int(ctx.GPR[0])
	x := int(int32(ctx.GPR[1]))
	if pid < 0 || pid >= MaxProcs {
		log.Printf("[hilevel] nice: pid %d out of range, ignored", pid)
		return
	}
	st.Procs[pid].Niceness = clampNiceness(x)
}

// doPipe implements pipe(out) (spec.md §4.6): allocates a pipe and writes
// {read_fd, write_fd} as two little-endian 32-bit words at the address in
// GPR[0].
func doPipe(st *State, ctx *Context, mem Memory) {
	out := ctx.GPR[0]

	readFD, writeFD, ok := allocPipe(&st.Descriptors)
	if !ok {
		log.Printf("[hilevel] pipe: descriptor table exhausted")
		ctx.GPR[0] = errReturn
		return
	}

	writeWord32(mem, out, uint32(readFD))
	writeWord32(mem, out+4, uint32(writeFD))
	ctx.GPR[0] = 0
}

// writeWord32 writes a little-endian 32-bit word through a Memory.
func writeWord32(mem Memory, addr uint32, v uint32) {
	mem.WriteByte(addr+0, byte(v))
	mem.WriteByte(addr+1, byte(v>>8))
	mem.WriteByte(addr+2, byte(v>>16))
	mem.WriteByte(addr+3, byte(v>>24))
}

// readWord32 reads a little-endian 32-bit word through a Memory.
func readWord32(mem Memory, addr uint32) uint32 {
	return uint32(mem.ReadByte(addr)) |
		uint32(mem.ReadByte(addr+1))<<8 |
		uint32(mem.ReadByte(addr+2))<<16 |
		uint32(mem.ReadByte(addr+3))<<24
}
