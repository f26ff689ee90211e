package hilevel

// BufferSize is the fixed capacity, in bytes, of every pipe's ring buffer.
const BufferSize = 300

// Pipe is a fixed-capacity byte ring buffer shared between exactly two
// descriptor slots. It is non-seekable and strictly FIFO.
type Pipe struct {
	buffer [BufferSize]byte
	head   int
	tail   int
	length int
}

// newPipe returns an empty pipe.
func newPipe() *Pipe {
	return &Pipe{}
}

// writeByte appends b to the pipe, returning false if the pipe is full.
func (p *Pipe) writeByte(b byte) bool {
	if p.length == BufferSize {
		return false
	}
	p.buffer[p.head] = b
	p.head = (p.head + 1) % BufferSize
	p.length++
	return true
}

// readByte consumes and returns the oldest byte, returning false if empty.
func (p *Pipe) readByte() (byte, bool) {
	if p.length == 0 {
		return 0, false
	}
	b := p.buffer[p.tail]
	p.tail = (p.tail + 1) % BufferSize
	p.length--
	return b, true
}

// MaxFDs is the fixed capacity of the descriptor table. Slots 0, 1, 2 are
// permanently reserved for stdin, stdout and stderr.
const MaxFDs = 32

// descriptor is one slot of the fixed-capacity descriptor table. Slots
// below 3 are always busy and never reference a pipe; slots 3 and above
// are either free or reference a pipe allocated by the pipe syscall. The
// core does not distinguish read end from write end at the descriptor
// level: either descriptor of a pair can be read from or written to.
type descriptor struct {
	free bool
	pipe *Pipe
}

// initDescriptors marks 0..2 busy (stdin/stdout/stderr) and 3..MaxFDs-1 free.
func initDescriptors(d *[MaxFDs]descriptor) {
	for i := 0; i < MaxFDs; i++ {
		d[i] = descriptor{free: i >= 3}
	}
}

// allocPipe scans the descriptor table twice from index 3 upward, handing
// the first free slot found to the read end and the second to the write
// end of a freshly allocated pipe. The read end is committed to the table
// before the second scan runs, so the two scans never pick the same slot.
// Returns ok=false, leaving the table unchanged, if either scan fails.
func allocPipe(d *[MaxFDs]descriptor) (readFD, writeFD int, ok bool) {
	p := newPipe()
	readFD, writeFD = -1, -1

	for i := 3; i < MaxFDs; i++ {
		if d[i].free {
			readFD = i
			d[i] = descriptor{free: false, pipe: p}
			break
		}
	}

	for i := 3; i < MaxFDs; i++ {
		if d[i].free {
			writeFD = i
			d[i] = descriptor{free: false, pipe: p}
			break
		}
	}

	if readFD == -1 || writeFD == -1 {
		// Roll back whichever slot was committed so a failed pipe()
		// does not leak a descriptor.
		if readFD != -1 {
			d[readFD] = descriptor{free: true}
		}
		if writeFD != -1 {
			d[writeFD] = descriptor{free: true}
		}
		return -1, -1, false
	}

	return readFD, writeFD, true
}
