package emit

import (
	"github.com/mna/calyx/lang/opcode"
	"github.com/mna/calyx/lang/sink"
)

// applyStackEffect advances the current and peak stack depth by an
// opcode's pop/push counts. It is the abstract-interpretation half of
// the encoder: called once per instruction, after the opcode byte and
// before the immediate is encoded, so a branch immediate sees the depth
// left once the instruction's own pops and pushes are applied.
func (fs *funcState) applyStackEffect(pop, push int) error {
	if fs.curDepth < pop {
		return newFault(fs.fn, 0, fs.lastEmittedOffset,
			"stack underflow: depth %d cannot pop %d", fs.curDepth, pop)
	}
	fs.curDepth += push - pop
	if fs.curDepth > fs.maxDepth {
		fs.maxDepth = fs.curDepth
	}
	return nil
}

// resetTerminal implements the "terminal" post-effect: code after a
// throw, return, or unconditional jump is unreachable until the next
// block entry re-establishes a depth via setExpectedDepth, so the
// running counter resets to 0.
func (fs *funcState) resetTerminal() {
	fs.curDepth = 0
}

// pushFPI implements the fpush post-effect: opens a new call-preparation
// region at the current stack depth.
func (fs *funcState) pushFPI(fpushOff sink.Offset) {
	fs.fpiStack = append(fs.fpiStack, fpiFrame{fpushOff: fpushOff, depth: fs.curDepth})
	if len(fs.fpiStack) > fs.maxFPIDepth {
		fs.maxFPIDepth = len(fs.fpiStack)
	}
}

// closeFPI implements the fcall post-effect: pops the most recently
// opened call-preparation region and records its finished extent.
func (fs *funcState) closeFPI(fcallOff sink.Offset) error {
	if len(fs.fpiStack) == 0 {
		return newFault(fs.fn, 0, fs.lastEmittedOffset, "fcall with no open FPI region")
	}
	top := fs.fpiStack[len(fs.fpiStack)-1]
	fs.fpiStack = fs.fpiStack[:len(fs.fpiStack)-1]
	fs.fpiRegions = append(fs.fpiRegions, fpiEntryOf(top, fcallOff))
	return nil
}

// closeAllFPI implements the end-of-layout FPI-closing step: close every
// still-open region, stamping fpiEndOff with lastOff (the most recently
// emitted byte offset). Block entry uses closeOneFPI instead.
func (fs *funcState) closeAllFPI(lastOff sink.Offset) {
	for len(fs.fpiStack) > 0 {
		top := fs.fpiStack[len(fs.fpiStack)-1]
		fs.fpiStack = fs.fpiStack[:len(fs.fpiStack)-1]
		fs.fpiRegions = append(fs.fpiRegions, fpiEntryOf(top, lastOff))
	}
}

// maxStackCells computes the peak operand-stack cell count per the
// frame layout: stack cells plus locals plus iterator and class-ref-slot
// cells plus activation-record cells for the deepest FPI nesting.
func maxStackCells(maxDepth, numLocals, numIters, numClsRefSlots, maxFPIDepth int) int {
	return maxDepth + numLocals + numIters*kNumIterCells + clsRefCountToCells(numClsRefSlots) + maxFPIDepth*kNumActRecCells
}

// kNumIterCells and kNumActRecCells are fixed constants from the runtime
// ABI: the per-iterator and per-activation-record cell cost.
const (
	kNumIterCells    = 4
	kNumActRecCells  = 3
	clsRefCellsPerSlot = 1
)

func clsRefCountToCells(n int) int { return n * clsRefCellsPerSlot }

func fpiEntryOf(frame fpiFrame, endOff sink.Offset) sink.FPIEntry {
	return sink.FPIEntry{FPushOff: frame.fpushOff, FPIEndOff: endOff, FPDelta: frame.depth}
}

// isFPush/isFCall are re-exported by name for readability at call sites
// in encode.go.
func isFPush(op opcode.Opcode) bool { return opcode.IsFPush(op) }
func isFCall(op opcode.Opcode) bool { return opcode.IsFCall(op) }
