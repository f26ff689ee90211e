// Command hilevelsim drives the hilevel kernel core through a reset,
// a fork, and a short round of cooperative yields, printing the trace
// token stream the real UART0 would see. It plays the part the assembly
// trampoline plays on real hardware: it owns the *Context and calls
// Reset/Svc/IRQ directly instead of decoding an svc instruction.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/ashworth-rc/hilevel"
)

func main() {
	serialDev := flag.String("serial", "", "serial device to emit trace tokens to (default: stdout)")
	ticks := flag.Int("ticks", 6, "number of cooperative yields to drive after the initial fork")
	flag.Parse()

	var console hilevel.Console
	if *serialDev != "" {
		sc, err := hilevel.OpenSerialConsole(*serialDev)
		if err != nil {
			log.Fatalf("hilevelsim: open serial console: %v", err)
		}
		defer sc.Close()
		console = sc
	} else {
		console = hilevel.NewSimConsole()
	}

	timer := &hilevel.SimTimer{}
	gic := &hilevel.SimGIC{}
	mem := hilevel.NewSimMemory()

	st := hilevel.NewState(console, timer, gic)

	ctx := &hilevel.Context{}
	hilevel.Reset(hilevel.ResetConfig{
		ConsoleEntry: 0x00008000,
		TOSConsole:   0x00200000,
		TOSGeneral:   0x00400000,
	}, st, ctx)

	// Simulate PCB[0] forking a worker, then both cooperating via yield.
	hilevel.Svc(st, ctx, mem, hilevel.SvcFork)

	for i := 0; i < *ticks; i++ {
		hilevel.Svc(st, ctx, mem, hilevel.SvcYield)
	}

	if sim, ok := console.(*hilevel.SimConsole); ok {
		fmt.Printf("\ntrace: %s\n", sim.String())
	}

	// A timer interrupt arriving mid-run reschedules exactly like a
	// cooperative yield would, from the scheduler's point of view.
	gic.RaiseTimer()
	hilevel.IRQ(st, ctx)
}
