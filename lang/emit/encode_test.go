package emit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mna/calyx/lang/ir"
	"github.com/mna/calyx/lang/opcode"
	"github.com/mna/calyx/lang/sink"
)

func newTestFunc(entry ir.BlockID, blocks map[ir.BlockID]*ir.Block) *ir.Function {
	return &ir.Function{
		Name:       "f",
		EntryBlock: entry,
		Blocks:     blocks,
		Source:     &ir.SourceInfo{},
	}
}

func TestEncodeForwardBranch(t *testing.T) {
	// Scenario B: block 0 ends with JmpZ -> 2; block 1 is emitted next;
	// block 2 follows, so the JmpZ is a forward jump. The test checks the
	// layout and that block 2 starts after the JmpZ opcode; the patched
	// immediate bytes are not read back (MemSink has no buffer getter).
	fn := newTestFunc(0, map[ir.BlockID]*ir.Block{
		0: blk(0, ir.Instruction{Op: opcode.Null}, ir.Instruction{Op: opcode.JmpZ, Imm: opcode.Immediate{Branch: 2}}),
		1: blk(1, ir.Instruction{Op: opcode.Null}, ir.Instruction{Op: opcode.Pop}),
		2: blk(2, ir.Instruction{Op: opcode.Null}, ir.Instruction{Op: opcode.RetC}),
	})
	fn.Blocks[0].Fallthrough = blockIDPtr(1)
	fn.Blocks[1].Fallthrough = blockIDPtr(2)

	s := sink.NewMemSink()
	s.NewFuncEmitter("f")
	result, err := encodeFunction(s, fn, newDefClsTable(0))
	require.NoError(t, err)
	assert.Equal(t, []ir.BlockID{0, 1, 2}, result.order)

	jmpzSite := result.infos[0].offset + 1 // past the Null opcode byte
	block2Off := result.infos[2].offset
	assert.NotZero(t, block2Off)
	assert.Greater(t, block2Off, jmpzSite)
}

func blockIDPtr(id ir.BlockID) *ir.BlockID { return &id }

func TestEncodeFPIAcrossTerminal(t *testing.T) {
	// Scenario D: block 0 opens an FPI region then unconditionally jumps to
	// block 2, whose FCall closes it. One FPI region should result, with
	// the stack empty at function end and maxFpiDepth == 1.
	fn := newTestFunc(0, map[ir.BlockID]*ir.Block{
		0: blk(0,
			ir.Instruction{Op: opcode.FPushFuncD, Imm: opcode.Immediate{Str: "callee"}},
			ir.Instruction{Op: opcode.Jmp, Imm: opcode.Immediate{Branch: 2}},
		),
		2: blk(2,
			ir.Instruction{Op: opcode.FCall, Imm: opcode.Immediate{UInt: 0}},
			ir.Instruction{Op: opcode.Pop},
		),
	})

	s := sink.NewMemSink()
	s.NewFuncEmitter("f")
	result, err := encodeFunction(s, fn, newDefClsTable(0))
	require.NoError(t, err)

	require.Len(t, result.fpiRegions, 1)
	region := result.fpiRegions[0]
	assert.Equal(t, result.infos[0].offset, region.FPushOff)

	fcallSite := result.infos[2].offset
	assert.Equal(t, fcallSite, region.FPIEndOff)
	assert.Equal(t, 1, result.maxFPIDepth)
	assert.True(t, result.containsCall)
}

func TestEncodeReturnDepthAssertion(t *testing.T) {
	fn := newTestFunc(0, map[ir.BlockID]*ir.Block{
		0: blk(0, ir.Instruction{Op: opcode.RetC}),
	})
	s := sink.NewMemSink()
	s.NewFuncEmitter("f")
	_, err := encodeFunction(s, fn, newDefClsTable(0))
	require.Error(t, err)
	var fault *Fault
	require.ErrorAs(t, err, &fault)
}

func TestEncodeStackUnderflowFault(t *testing.T) {
	fn := newTestFunc(0, map[ir.BlockID]*ir.Block{
		0: blk(0, ir.Instruction{Op: opcode.Pop}),
	})
	s := sink.NewMemSink()
	s.NewFuncEmitter("f")
	_, err := encodeFunction(s, fn, newDefClsTable(0))
	require.Error(t, err)
}

func TestEncodeDuplicateDefClsFault(t *testing.T) {
	fn := newTestFunc(0, map[ir.BlockID]*ir.Block{
		0: blk(0,
			ir.Instruction{Op: opcode.DefCls, Imm: opcode.Immediate{UInt: 0}},
			ir.Instruction{Op: opcode.DefCls, Imm: opcode.Immediate{UInt: 0}},
			ir.Instruction{Op: opcode.Null},
			ir.Instruction{Op: opcode.RetC},
		),
	})
	s := sink.NewMemSink()
	s.NewFuncEmitter("f")
	_, err := encodeFunction(s, fn, newDefClsTable(1))
	require.Error(t, err)
}

func TestEncodeBranchDepthMismatchFault(t *testing.T) {
	// Two different paths into block 2 disagree on the stack depth they
	// leave at the point of branching: block 0's conditional jump leaves
	// depth 0, block 1's unconditional jump leaves depth 2.
	fn := newTestFunc(0, map[ir.BlockID]*ir.Block{
		0: blk(0, ir.Instruction{Op: opcode.Null}, ir.Instruction{Op: opcode.JmpNZ, Imm: opcode.Immediate{Branch: 2}}),
		1: blk(1, ir.Instruction{Op: opcode.Null}, ir.Instruction{Op: opcode.Null}, ir.Instruction{Op: opcode.Jmp, Imm: opcode.Immediate{Branch: 2}}),
		2: blk(2, ir.Instruction{Op: opcode.Pop}, ir.Instruction{Op: opcode.Pop}, ir.Instruction{Op: opcode.RetC}),
	})
	fn.Blocks[0].Fallthrough = blockIDPtr(1)

	s := sink.NewMemSink()
	s.NewFuncEmitter("f")
	_, err := encodeFunction(s, fn, newDefClsTable(0))
	require.Error(t, err)
}
