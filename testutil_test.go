package hilevel

import "testing"

// newTestState boots a kernel state through Reset, returning the state
// and the live context for PCB[0] (the console process), ready for
// syscalls to be driven against it directly the way a trampoline would.
func newTestState(t *testing.T) (*State, *Context) {
	t.Helper()

	st := NewState(NewSimConsole(), &SimTimer{}, &SimGIC{})
	ctx := &Context{}
	Reset(ResetConfig{
		ConsoleEntry: 0x8000,
		TOSConsole:   0x00200000,
		TOSGeneral:   0x00400000,
	}, st, ctx)
	return st, ctx
}

// console returns the SimConsole backing st, failing the test if st was
// not built with one.
func console(t *testing.T, st *State) *SimConsole {
	t.Helper()
	c, ok := st.Console.(*SimConsole)
	if !ok {
		t.Fatalf("state console is not a *SimConsole")
	}
	return c
}
