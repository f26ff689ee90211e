package hilevel

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// philosopherPipes models the wiring main_philosophers() sets up for one
// philosopher in the original dining-philosophers workload (spec.md §8.1,
// grounded on original_source/coursework/user/philosophers.c): a pair of
// pipes between the waiter and philosopher i, waiter-to-philosopher and
// philosopher-to-waiter.
type philosopherPipes struct {
	waiterRead, waiterWrite int // waiter's ends
	philoRead, philoWrite   int // philosopher's ends
}

// setupPhilosopherPipes drives two back-to-back pipe() syscalls through the
// real pipe handler, exactly as main_philosophers() does for each
// philosopher, and returns the four descriptors the waiter and the
// philosopher would each keep. The conformance workload forks 16
// philosophers; a handful exercises the same wiring at a scale the test
// harness can drive synchronously.
func setupPhilosopherPipes(t *testing.T, st *State, ctx *Context, mem Memory, scratch uint32) philosopherPipes {
	t.Helper()

	ctx.GPR[0] = scratch
	doPipe(st, ctx, mem) // waiter -> philosopher
	require.Equal(t, uint32(0), ctx.GPR[0])
	wToPRead := readWord32(mem, scratch)
	wToPWrite := readWord32(mem, scratch+4)

	ctx.GPR[0] = scratch
	doPipe(st, ctx, mem) // philosopher -> waiter
	require.Equal(t, uint32(0), ctx.GPR[0])
	pToWRead := readWord32(mem, scratch)
	pToWWrite := readWord32(mem, scratch+4)

	return philosopherPipes{
		waiterRead:  int(pToWRead),
		waiterWrite: int(wToPWrite),
		philoRead:   int(wToPRead),
		philoWrite:  int(pToWWrite),
	}
}

func pipeWriteString(t *testing.T, st *State, ctx *Context, mem Memory, fd int, s string, addr uint32) {
	t.Helper()
	mem.WriteAt(addr, []byte(s))
	ctx.GPR[0], ctx.GPR[1], ctx.GPR[2] = uint32(fd), addr, uint32(len(s))
	doWrite(st, ctx, mem)
	require.Equal(t, uint32(len(s)), ctx.GPR[0], "pipe write of %q must fully succeed into a fresh pipe", s)
}

func pipeReadString(t *testing.T, st *State, ctx *Context, mem Memory, fd int, n int, addr uint32) string {
	t.Helper()
	ctx.GPR[0], ctx.GPR[1], ctx.GPR[2] = uint32(fd), addr, uint32(n)
	doRead(st, ctx, mem)
	require.Equal(t, uint32(n), ctx.GPR[0], "pipe read must fully drain what was just written")
	return string(mem.ReadAt(addr, n))
}

// TestPhilosophersForkWaiterPipeWiring exercises the fork()/pipe() wiring
// the dining-philosophers workload depends on (spec.md §8.1): each
// philosopher gets its own fork() child and its own pair of pipes to the
// waiter, and the pipes carry the two-byte request tokens ("RL", "RR",
// "GL", "GR") and single-byte replies ("y", "o") the protocol uses.
func TestPhilosophersForkWaiterPipeWiring(t *testing.T) {
	st, ctx := newTestState(t)
	mem := NewSimMemory()

	const nPhilosophers = 3
	var pipes [nPhilosophers]philosopherPipes

	for i := 0; i < nPhilosophers; i++ {
		pipes[i] = setupPhilosopherPipes(t, st, ctx, mem, 0x9000)
		Svc(st, ctx, mem, SvcFork)
	}

	if st.ActiveProcs != nPhilosophers+1 {
		t.Fatalf("ActiveProcs = %d, want %d (console + %d philosophers)", st.ActiveProcs, nPhilosophers+1, nPhilosophers)
	}
	for i := 1; i <= nPhilosophers; i++ {
		if st.Procs[i].Status != StatusReady {
			t.Errorf("philosopher %d status = %v, want READY", i, st.Procs[i].Status)
		}
	}

	// Philosopher 0 asks the waiter for its right fork; the waiter (played
	// by the test itself, standing in for the waiter process) grants it.
	p := pipes[0]
	pipeWriteString(t, st, ctx, mem, p.philoWrite, "RR", 0xA000)
	req := pipeReadString(t, st, ctx, mem, p.waiterRead, 2, 0xA100)
	require.Equal(t, "RR", req)

	pipeWriteString(t, st, ctx, mem, p.waiterWrite, "y", 0xA200)
	reply := pipeReadString(t, st, ctx, mem, p.philoRead, 1, 0xA300)
	require.Equal(t, "y", reply)
}

// TestPhilosophersPipesAreIsolatedPerPhilosopher verifies that distinct
// philosophers never end up sharing a descriptor, so one philosopher's
// fork request can never be observed on another's pipe.
func TestPhilosophersPipesAreIsolatedPerPhilosopher(t *testing.T) {
	st, ctx := newTestState(t)
	mem := NewSimMemory()

	seen := map[int]bool{}
	for i := 0; i < 4; i++ {
		p := setupPhilosopherPipes(t, st, ctx, mem, 0x9000)
		for _, fd := range []int{p.waiterRead, p.waiterWrite, p.philoRead, p.philoWrite} {
			if seen[fd] {
				t.Fatalf("descriptor %d reused across philosophers", fd)
			}
			seen[fd] = true
		}
	}
}
