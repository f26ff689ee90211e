package hilevel

// ResetConfig carries the linker-supplied values the reset handler needs
// to seed the console PCB: its entry point and the top of its stack, plus
// the top of the general-process stack region used by fork.
type ResetConfig struct {
	ConsoleEntry uint32
	TOSConsole   uint32
	TOSGeneral   uint32
}

// Reset runs once, before any user code, invoked by the trampoline with a
// zero-valued *Context. It programs the timer and interrupt controller,
// enables IRQs, invalidates the process table, initializes the descriptor
// table, seeds PCB[0] as the console process, and dispatches into it
// (spec.md §4.1).
func Reset(cfg ResetConfig, st *State, ctx *Context) {
	st.Console.PutC('A')

	st.Timer.Load(timer1Load)
	st.Timer.Ctrl(timer1Ctrl)

	st.GIC.SetPMR(gicPMRUnmaskAll)
	st.GIC.EnableLine(gicISENABLER1Bit)
	st.GIC.EnableCPUInterface()
	st.GIC.EnableDistributor()

	// Enabling CPU IRQs is the trampoline's job in the real system (a
	// CPSR write before entry); here it is implicit in ctx.CPSR below.

	for i := range st.Procs {
		st.Procs[i] = PCB{Status: StatusInvalid}
	}

	initDescriptors(&st.Descriptors)

	st.TOSConsole = cfg.TOSConsole
	st.TOSGeneral = cfg.TOSGeneral
	st.ConsoleEntry = cfg.ConsoleEntry
	st.ActiveProcs = 1

	st.Procs[0] = PCB{
		PID:      0,
		Status:   StatusReady,
		TOS:      cfg.TOSConsole,
		Priority: defaultPriority,
		Age:      0,
		Niceness: 0,
	}
	st.Procs[0].Ctx = Context{
		CPSR: cpsrIRQEnabled,
		PC:   cfg.ConsoleEntry,
		SP:   cfg.TOSConsole,
	}

	Dispatch(st, ctx, nil, &st.Procs[0])
}

// IRQ handles a hardware interrupt (spec.md §4.4): it reads the
// interrupt identifier, invokes the scheduler if the source is the
// periodic timer, and always acknowledges completion by writing the
// identifier back. Unknown sources are acknowledged with no other effect.
func IRQ(st *State, ctx *Context) {
	id := st.GIC.AckID()

	if id == GICSourceTimer0 {
		st.Timer.IntClr(timer1IntClr)
		Schedule(st, ctx)
	}

	st.GIC.EndOfInterrupt(id)
}
