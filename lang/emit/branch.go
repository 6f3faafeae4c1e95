package emit

import (
	"github.com/mna/calyx/lang/ir"
	"github.com/mna/calyx/lang/opcode"
	"github.com/mna/calyx/lang/sink"
)

// emitBranch writes a branch instruction's 32-bit relative-offset
// immediate: resolved in place if the target block has already been
// laid out, or a zero placeholder recorded in the target's forward-jump
// list otherwise. branchSiteStart is the byte offset of the branch
// opcode itself, per the wire format's "relative to the opcode byte"
// rule.
func emitBranch(s sink.UnitEmitter, fs *funcState, target ir.BlockID, branchSiteStart sink.Offset) error {
	if err := fs.setExpectedDepth(target); err != nil {
		return err
	}
	ti := fs.info(target)
	if ti.offsetSet {
		s.EmitInt32(int32(ti.offset - branchSiteStart))
		return nil
	}
	placeholderPos := s.BCPos()
	s.EmitInt32(0)
	ti.forwardJumps = append(ti.forwardJumps, forwardJump{instrOff: branchSiteStart, jmpImmedOff: placeholderPos})
	return nil
}

// startBlock marks block id as laid out at the sink's current position,
// patches every forward jump that targeted it, and closes any FPI
// regions left open by a terminal instruction that preceded it without
// an explicit depth-matching block entry.
func startBlock(s sink.UnitEmitter, fs *funcState, id ir.BlockID) error {
	bi := fs.info(id)
	bi.offset = s.BCPos()
	bi.offsetSet = true

	for _, fj := range bi.forwardJumps {
		s.PatchInt32(fj.jmpImmedOff, int32(bi.offset-fj.instrOff))
	}
	bi.forwardJumps = nil

	if !bi.expectedStackSet {
		bi.expectedStack = 0
		bi.expectedStackSet = true
	}
	fs.curDepth = bi.expectedStack

	if !bi.expectedFPISet {
		bi.expectedFPI = 0
		bi.expectedFPISet = true
	}
	if bi.expectedFPI > len(fs.fpiStack) {
		return newFault(fs.fn, id, bi.offset, "expected FPI depth %d exceeds actual %d", bi.expectedFPI, len(fs.fpiStack))
	}
	for bi.expectedFPI < len(fs.fpiStack) {
		fs.closeOneFPI(fs.lastEmittedOffset)
	}
	return nil
}

// closeOneFPI closes exactly the most recently opened FPI region,
// stamping its end at endOff. Used by startBlock, which must close
// regions one at a time down to a target depth rather than draining the
// whole stack.
func (fs *funcState) closeOneFPI(endOff sink.Offset) {
	if len(fs.fpiStack) == 0 {
		return
	}
	top := fs.fpiStack[len(fs.fpiStack)-1]
	fs.fpiStack = fs.fpiStack[:len(fs.fpiStack)-1]
	fs.fpiRegions = append(fs.fpiRegions, fpiEntryOf(top, endOff))
}

// synthesizeFallthrough emits an explicit jump to a block's fall-through
// successor when the layout does not place it immediately next, and
// computes how many exception regions that jump exits (for the EH
// flattener's regionsToPop bookkeeping).
func synthesizeFallthrough(s sink.UnitEmitter, fs *funcState, blk *ir.Block, nextInLayout ir.BlockID, op opcode.Opcode) error {
	target := *blk.Fallthrough
	if err := fs.setExpectedDepth(target); err != nil {
		return err
	}
	if target == nextInLayout {
		return nil
	}
	branchSite := s.BCPos()
	s.EmitOp(op)
	if err := emitBranch(s, fs, target, branchSite); err != nil {
		return err
	}

	targetBlk := fs.fn.Blocks[target]
	common := ir.CommonParentExnNode(blk.ExnNode, targetBlk.ExnNode)
	depth := func(n *ir.ExnNode) int {
		if n == nil {
			return 0
		}
		return n.Depth
	}
	blkDepth := depth(blk.ExnNode)
	commonDepth := depth(common)
	fs.info(blk.ID).regionsToPop = blkDepth - commonDepth
	return nil
}
