package emit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mna/calyx/lang/ir"
	"github.com/mna/calyx/lang/opcode"
)

func blk(id ir.BlockID, insns ...ir.Instruction) *ir.Block {
	return &ir.Block{ID: id, Insns: insns}
}

func withFallthrough(b *ir.Block, target ir.BlockID) *ir.Block {
	b.Fallthrough = &target
	return b
}

func TestOrderBlocksStraightLine(t *testing.T) {
	fn := &ir.Function{
		EntryBlock: 0,
		Blocks: map[ir.BlockID]*ir.Block{
			0: withFallthrough(blk(0, ir.Instruction{Op: opcode.Null}, ir.Instruction{Op: opcode.Pop}), 1),
			1: withFallthrough(blk(1, ir.Instruction{Op: opcode.Null}, ir.Instruction{Op: opcode.Pop}), 2),
			2: blk(2, ir.Instruction{Op: opcode.Null}, ir.Instruction{Op: opcode.RetC}),
		},
	}

	order, err := OrderBlocks(fn)
	require.NoError(t, err)
	assert.Equal(t, []ir.BlockID{0, 1, 2}, order)
}

func TestOrderBlocksEntryNopUpgrade(t *testing.T) {
	// block 0 is a bare Nop and is also the function entry; block 1
	// follows it and is the target some other branch elsewhere in the
	// function reaches. The orderer must upgrade block 0's sole Nop to
	// EntryNop so the block survives whatever optimization pass collapses
	// single-Nop blocks, keeping block 1's jump target stable.
	fn := &ir.Function{
		EntryBlock: 0,
		Blocks: map[ir.BlockID]*ir.Block{
			0: withFallthrough(blk(0, ir.Instruction{Op: opcode.Nop}), 1),
			1: blk(1, ir.Instruction{Op: opcode.Null}, ir.Instruction{Op: opcode.RetC}),
		},
	}

	order, err := OrderBlocks(fn)
	require.NoError(t, err)
	require.Equal(t, ir.BlockID(0), order[0])
	assert.Equal(t, opcode.EntryNop, fn.Blocks[0].Insns[0].Op)
}

func TestOrderBlocksDVSuffix(t *testing.T) {
	dvEntry := ir.BlockID(2)
	fn := &ir.Function{
		EntryBlock: 0,
		Params:     []*ir.Param{{Name: "x", DefaultEntry: &dvEntry}},
		Blocks: map[ir.BlockID]*ir.Block{
			0: withFallthrough(blk(0, ir.Instruction{Op: opcode.Null}, ir.Instruction{Op: opcode.Pop}), 1),
			1: blk(1, ir.Instruction{Op: opcode.Null}, ir.Instruction{Op: opcode.RetC}),
			2: blk(2, ir.Instruction{Op: opcode.Null}, ir.Instruction{Op: opcode.RetC}),
		},
	}

	order, err := OrderBlocks(fn)
	require.NoError(t, err)
	assert.Equal(t, []ir.BlockID{0, 1, 2}, order)
}

func TestOrderBlocksSectionStableSort(t *testing.T) {
	fn := &ir.Function{
		EntryBlock: 0,
		Blocks: map[ir.BlockID]*ir.Block{
			0: {ID: 0, Section: ir.SectionMain, Insns: []ir.Instruction{{Op: opcode.Jmp, Imm: opcode.Immediate{Branch: 1}}}},
			1: {ID: 1, Section: ir.SectionFault, Insns: []ir.Instruction{{Op: opcode.Jmp, Imm: opcode.Immediate{Branch: 2}}}},
			2: {ID: 2, Section: ir.SectionMain, Insns: []ir.Instruction{{Op: opcode.Null}, {Op: opcode.RetC}}},
		},
	}

	order, err := OrderBlocks(fn)
	require.NoError(t, err)
	// RPO visits 0, 1, 2 in that order; the stable section sort must pull
	// every Main block ahead of every Fault block while preserving each
	// group's relative order.
	assert.Equal(t, []ir.BlockID{0, 2, 1}, order)
}

func TestOrderBlocksMissingEntryFault(t *testing.T) {
	fn := &ir.Function{
		EntryBlock: 5,
		Blocks:     map[ir.BlockID]*ir.Block{0: blk(0, ir.Instruction{Op: opcode.RetC})},
	}
	_, err := OrderBlocks(fn)
	assert.Error(t, err)
}
