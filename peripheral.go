package hilevel

// Console is the narrow interface the core consumes for byte output. It
// stands in for a UART device driver exposing PL011-style putc semantics;
// the core never touches UART registers directly.
type Console interface {
	PutC(b byte)
}

// Timer is the narrow interface the core consumes for the periodic timer
// peripheral that drives preemption.
type Timer interface {
	// Load programs the reload value (Timer1Load).
	Load(v uint32)
	// Ctrl writes the control register (Timer1Ctrl): width, mode,
	// interrupt-enable and enable bits.
	Ctrl(v uint32)
	// IntClr acknowledges the timer's pending interrupt (Timer1IntClr).
	IntClr(v uint32)
}

// InterruptController is the narrow interface the core consumes for the
// GIC distributor/CPU-interface pair.
type InterruptController interface {
	// AckID reads the interrupt acknowledge register (IAR), returning
	// the id of the interrupt source being serviced.
	AckID() uint32
	// EndOfInterrupt writes the end-of-interrupt register (EOIR) to
	// signal completion of servicing id.
	EndOfInterrupt(id uint32)
	// SetPMR sets the priority mask register.
	SetPMR(v uint32)
	// EnableDistributor enables the GIC distributor (GICD0->CTLR = 1).
	EnableDistributor()
	// EnableCPUInterface enables the GIC CPU interface (GICC0->CTLR = 1).
	EnableCPUInterface()
	// EnableLine sets bits in ISENABLER1, enabling the named interrupt lines.
	EnableLine(mask uint32)
}

// Peripheral magic values, written verbatim at reset (spec.md §6).
const (
	timer1Load = 0x00100000 // period = 2^20 ticks

	timer1CtrlWidth32  = 0x002
	timer1CtrlPeriodic = 0x040
	timer1CtrlIRQEn    = 0x020
	timer1CtrlEnable   = 0x080
	timer1Ctrl         = timer1CtrlWidth32 | timer1CtrlPeriodic | timer1CtrlIRQEn | timer1CtrlEnable

	gicPMRUnmaskAll  = 0xF0
	gicISENABLER1Bit = 0x10
	gicCTLREnable    = 1

	timer1IntClr = 0x01
)

// GICSourceTimer0 is the platform-defined interrupt source id for the
// periodic timer, as read from InterruptController.AckID.
const GICSourceTimer0 = 0x1E

// SimConsole is an in-memory Console that records every byte written to
// it, for use by tests and by cmd/hilevelsim's default (non-serial) mode.
// Modeled on the teacher's testBus: a flat, inspectable fake standing in
// for the real peripheral.
type SimConsole struct {
	Bytes []byte
}

// NewSimConsole returns an empty SimConsole.
func NewSimConsole() *SimConsole {
	return &SimConsole{}
}

// PutC implements Console.
func (c *SimConsole) PutC(b byte) {
	c.Bytes = append(c.Bytes, b)
}

// String returns everything written so far, as text.
func (c *SimConsole) String() string {
	return string(c.Bytes)
}

// SimTimer is an in-memory Timer that records the last value written to
// each register, for assertions in reset-handler tests.
type SimTimer struct {
	LoadVal   uint32
	CtrlVal   uint32
	IntClrVal uint32
}

func (t *SimTimer) Load(v uint32)   { t.LoadVal = v }
func (t *SimTimer) Ctrl(v uint32)   { t.CtrlVal = v }
func (t *SimTimer) IntClr(v uint32) { t.IntClrVal = v }

// SimGIC is an in-memory InterruptController. Pending is set by a test
// driver to simulate an interrupt source arriving; AckID consumes it.
type SimGIC struct {
	Pending uint32
	HasIRQ  bool

	PMR               uint32
	DistributorOn     bool
	CPUInterfaceOn    bool
	EnabledLinesMask  uint32
	LastEOIR          uint32
	AckCount          int
}

func (g *SimGIC) AckID() uint32 {
	g.AckCount++
	if !g.HasIRQ {
		return 0
	}
	g.HasIRQ = false
	return g.Pending
}

func (g *SimGIC) EndOfInterrupt(id uint32)  { g.LastEOIR = id }
func (g *SimGIC) SetPMR(v uint32)           { g.PMR = v }
func (g *SimGIC) EnableDistributor()        { g.DistributorOn = true }
func (g *SimGIC) EnableCPUInterface()       { g.CPUInterfaceOn = true }
func (g *SimGIC) EnableLine(mask uint32)    { g.EnabledLinesMask |= mask }

// RaiseTimer marks the timer interrupt source as pending, simulating the
// periodic timer firing. Used by tests and by cmd/hilevelsim's ticker.
func (g *SimGIC) RaiseTimer() {
	g.Pending = GICSourceTimer0
	g.HasIRQ = true
}
