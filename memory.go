package hilevel

// Memory is the narrow interface the read/write syscalls use to move
// bytes between a user-space buffer address (GPR[1] of the calling
// context) and the kernel's pipes and console. It plays the same role
// for the syscall dispatcher that the teacher's Bus interface plays for
// instruction execution: byte-addressed, swappable for a test fake.
type Memory interface {
	ReadByte(addr uint32) byte
	WriteByte(addr uint32, b byte)
}

// SimMemory is a flat, fixed-size byte-addressed Memory, standing in for
// the user address space in tests and in cmd/hilevelsim. Modeled directly
// on the teacher's testBus.
type SimMemory struct {
	mem [1 << 20]byte // 1 MiB flat address space, ample for kernel tests
}

// NewSimMemory returns a zeroed SimMemory.
func NewSimMemory() *SimMemory {
	return &SimMemory{}
}

func (m *SimMemory) ReadByte(addr uint32) byte {
	return m.mem[int(addr)%len(m.mem)]
}

func (m *SimMemory) WriteByte(addr uint32, b byte) {
	m.mem[int(addr)%len(m.mem)] = b
}

// WriteAt copies data into memory starting at addr, for test setup.
func (m *SimMemory) WriteAt(addr uint32, data []byte) {
	for i, b := range data {
		m.WriteByte(addr+uint32(i), b)
	}
}

// ReadAt copies n bytes out of memory starting at addr, for assertions.
func (m *SimMemory) ReadAt(addr uint32, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = m.ReadByte(addr + uint32(i))
	}
	return out
}
