package hilevel

// Schedule implements priority-with-aging selection (spec.md §4.3):
//
//  1. Compute effective(i) = priority(i) + age(i) + niceness(i) for every
//     READY/EXECUTING slot.
//  2. Pick the slot with the highest effective score; ties go to the
//     lowest index.
//  3. Reset the winner's age to 0; age every other active slot by 1,
//     including non-runnable slots (TERMINATED/INVALID) — this is
//     benign, since a dead slot can never win step 2, and is preserved
//     verbatim from the source kernel (spec.md §9).
//  4. Dispatch from the slot matching st.Executing's pid to the winner.
//  5. Mark the winner EXECUTING; if the prior slot was EXECUTING, mark it
//     READY. TERMINATED slots are never reset to READY.
func Schedule(st *State, ctx *Context) {
	next := 0
	best := 0
	found := false

	for i := 0; i < st.ActiveProcs; i++ {
		p := &st.Procs[i]
		if !p.runnable() {
			continue
		}
		if score := p.effective(); !found || score > best {
			found = true
			best = score
			next = i
		}
	}

	st.Procs[next].Age = 0
	for i := 0; i < st.ActiveProcs; i++ {
		if i != next {
			st.Procs[i].Age++
		}
	}

	current := st.pidToIndex(st.Executing.PID)
	if current == -1 {
		// Should not happen: Executing always names a live slot. Default
		// to 0 rather than index out of range, matching the source
		// scheduler()'s current = 0 fallback (spec.md §7).
		current = 0
	}

	Dispatch(st, ctx, &st.Procs[current], &st.Procs[next])

	if st.Procs[current].Status == StatusExecuting {
		st.Procs[current].Status = StatusReady
	}
	st.Procs[next].Status = StatusExecuting
}
