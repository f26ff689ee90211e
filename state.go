package hilevel

// MaxProcs is the fixed capacity of the process table.
const MaxProcs = 32

// stackOffset is the spacing, in bytes, between successive general-purpose
// process stacks carved out of the tos_general region.
const stackOffset = 0x1000

// State is the consolidated kernel-state record: the process table, the
// descriptor table, the executing cursor and the bookkeeping counters that
// spec.md calls out as process-wide singletons. A *State is constructed
// once by the entry point and threaded explicitly through every handler —
// there is no package-level mutable state.
type State struct {
	Procs       [MaxProcs]PCB
	Executing   *PCB
	ActiveProcs int
	Descriptors [MaxFDs]descriptor

	Console Console
	Timer   Timer
	GIC     InterruptController

	// TOSConsole and TOSGeneral are linker-supplied stack-base symbols:
	// the top of the console process's stack and the top of the region
	// from which general (forked) process stacks are carved.
	TOSConsole uint32
	TOSGeneral uint32

	// ConsoleEntry is the entry point of the console program, used to
	// seed PCB[0] at reset.
	ConsoleEntry uint32
}

// NewState constructs a kernel state bound to the given peripheral façade.
// It does not perform a reset; call Reset to bring the state to its
// post-reset invariants.
func NewState(console Console, timer Timer, gic InterruptController) *State {
	return &State{
		Console: console,
		Timer:   timer,
		GIC:     gic,
	}
}

// pidToIndex returns the table index of the PCB with the given pid, or -1
// if none is found. Outside of brief windows during fork/exit this is
// simply the identity function (pid == index), but the indirection keeps
// the core honest about the fact that pid and slot index are only
// guaranteed equal by construction, never by invariant.
func (st *State) pidToIndex(pid int) int {
	for i := range st.Procs {
		if st.Procs[i].Status != StatusInvalid && st.Procs[i].PID == pid {
			return i
		}
	}
	return -1
}
