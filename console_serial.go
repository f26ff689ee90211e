package hilevel

import "github.com/daedaluz/goserial"

// SerialConsole is a Console backed by a real serial port, so
// cmd/hilevelsim can emit the kernel's trace-token stream (spec.md §6.3)
// to an actual TTY or PTY the way a real UART0 would receive it instead
// of to an in-memory buffer. It is a thin byte-at-a-time adapter over
// *serial.Port from the goserial package; one Write syscall per PutC is
// wasteful for a 115200-baud link carrying a handful of trace bytes per
// tick, so callers after a burst of dispatch tokens may want to batch
// with bufio.Writer in front of the same *serial.Port instead.
type SerialConsole struct {
	port *serial.Port
}

// OpenSerialConsole opens name (e.g. "/dev/ttyUSB0") with sane 8N1
// defaults and wraps it as a Console.
func OpenSerialConsole(name string) (*SerialConsole, error) {
	port, err := serial.Open(name, nil)
	if err != nil {
		return nil, err
	}
	return &SerialConsole{port: port}, nil
}

// NewSerialConsole wraps an already-open *serial.Port, e.g. the master
// side of a serial.OpenPTY pair in a test harness.
func NewSerialConsole(port *serial.Port) *SerialConsole {
	return &SerialConsole{port: port}
}

// PutC implements Console by writing a single byte to the port. Write
// errors are not surfaced: the real UART's putc(port, byte, block) has no
// error return either, and the core has no error-handling path for a
// failed console write (spec.md §7).
func (c *SerialConsole) PutC(b byte) {
	_, _ = c.port.Write([]byte{b})
}

// Close closes the underlying serial port.
func (c *SerialConsole) Close() error {
	return c.port.Close()
}
