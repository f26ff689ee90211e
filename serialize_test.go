package hilevel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeRoundTripPreservesSchedulerState(t *testing.T) {
	st, ctx := newTestState(t)
	mem := NewSimMemory()

	Svc(st, ctx, mem, SvcFork)
	Svc(st, ctx, mem, SvcFork)
	ctx.GPR[0], ctx.GPR[1] = 1, 12
	Svc(st, ctx, mem, SvcNice)
	Svc(st, ctx, mem, SvcYield)

	buf := make([]byte, st.SerializeSize())
	require.NoError(t, st.Serialize(buf))

	restored := NewState(NewSimConsole(), &SimTimer{}, &SimGIC{})
	require.NoError(t, restored.Deserialize(buf))

	for i := 0; i < st.ActiveProcs; i++ {
		want, got := st.Procs[i], restored.Procs[i]
		assert.Equal(t, want.Status, got.Status, "proc %d status", i)
		assert.Equal(t, want.Priority, got.Priority, "proc %d priority", i)
		assert.Equal(t, want.Age, got.Age, "proc %d age", i)
		assert.Equal(t, want.Niceness, got.Niceness, "proc %d niceness", i)
		assert.Equal(t, want.Ctx, got.Ctx, "proc %d context", i)
	}
	assert.Equal(t, st.ActiveProcs, restored.ActiveProcs)
	require.NotNil(t, restored.Executing)
	assert.Equal(t, st.Executing.PID, restored.Executing.PID)
}

func TestSerializeRoundTripPreservesPipeAliasing(t *testing.T) {
	st, ctx := newTestState(t)
	mem := NewSimMemory()

	ctx.GPR[0] = 0x3000
	doPipe(st, ctx, mem)
	readFD := readWord32(mem, 0x3000)
	writeFD := readWord32(mem, 0x3004)

	mem.WriteAt(0x4000, []byte("xy"))
	ctx.GPR[0], ctx.GPR[1], ctx.GPR[2] = writeFD, 0x4000, 2
	doWrite(st, ctx, mem)

	buf := make([]byte, st.SerializeSize())
	require.NoError(t, st.Serialize(buf))

	restored := NewState(NewSimConsole(), &SimTimer{}, &SimGIC{})
	require.NoError(t, restored.Deserialize(buf))

	readDesc := &restored.Descriptors[readFD]
	writeDesc := &restored.Descriptors[writeFD]
	require.NotNil(t, readDesc.pipe)
	require.NotNil(t, writeDesc.pipe)
	assert.Same(t, readDesc.pipe, writeDesc.pipe, "both ends must alias the same *Pipe after a round trip")

	b, ok := readDesc.pipe.readByte()
	require.True(t, ok)
	assert.Equal(t, byte('x'), b)
}

func TestDeserializeRejectsShortBuffer(t *testing.T) {
	st, _ := newTestState(t)
	err := st.Deserialize(make([]byte, 4))
	assert.Error(t, err)
}

func TestDeserializeRejectsUnknownVersion(t *testing.T) {
	st, _ := newTestState(t)
	buf := make([]byte, st.SerializeSize())
	require.NoError(t, st.Serialize(buf))
	buf[0] = stateSerializeVersion + 1
	err := st.Deserialize(buf)
	assert.Error(t, err)
}
