// Package emit implements the bytecode emission pipeline: block layout,
// instruction encoding, branch fixup, stack/FPI depth tracking,
// exception-region flattening, and the unit driver that ties all of it
// together and talks to the sink and the index oracle.
package emit

import (
	"github.com/mna/calyx/lang/ir"
	"github.com/mna/calyx/lang/sink"
)

// forwardJump is a not-yet-resolved branch: the byte offset of the
// branching opcode and the byte offset of its placeholder immediate.
type forwardJump struct {
	instrOff    sink.Offset
	jmpImmedOff sink.Offset
}

// blockInfo is the per-block transient bookkeeping record the
// branch-fixup engine and stack tracker maintain while a function is
// being laid out.
type blockInfo struct {
	offsetSet bool
	offset    sink.Offset
	past      sink.Offset

	regionsToPop int
	forwardJumps []forwardJump

	expectedStackSet bool
	expectedStack    int
	expectedFPISet   bool
	expectedFPI      int
}

// funcState holds all blockInfo records for one function plus the
// running stack/FPI tracker state, all destroyed when the function's
// emission completes.
type funcState struct {
	fn    *ir.Function
	infos map[ir.BlockID]*blockInfo

	curDepth     int
	maxDepth     int
	fpiStack     []fpiFrame
	maxFPIDepth  int
	fpiRegions   []sink.FPIEntry
	containsCall bool

	lastEmittedOffset sink.Offset
}

type fpiFrame struct {
	fpushOff sink.Offset
	depth    int
}

func newFuncState(fn *ir.Function) *funcState {
	fs := &funcState{fn: fn, infos: make(map[ir.BlockID]*blockInfo, len(fn.Blocks))}
	for id := range fn.Blocks {
		fs.infos[id] = &blockInfo{}
	}
	return fs
}

func (fs *funcState) info(id ir.BlockID) *blockInfo {
	bi, ok := fs.infos[id]
	if !ok {
		bi = &blockInfo{}
		fs.infos[id] = bi
	}
	return bi
}

// setExpectedDepth asserts or records the stack/FPI depth expected at
// the entry of block id, as triggered by a branch (or fall-through) that
// targets it.
func (fs *funcState) setExpectedDepth(id ir.BlockID) error {
	bi := fs.info(id)
	if bi.expectedStackSet {
		if bi.expectedStack != fs.curDepth {
			return newFault(fs.fn, id, fs.lastEmittedOffset,
				"stack depth mismatch at block entry: expected %d, got %d", bi.expectedStack, fs.curDepth)
		}
	} else {
		bi.expectedStack = fs.curDepth
		bi.expectedStackSet = true
	}
	fpiDepth := len(fs.fpiStack)
	if bi.expectedFPISet {
		if bi.expectedFPI != fpiDepth {
			return newFault(fs.fn, id, fs.lastEmittedOffset,
				"FPI depth mismatch at block entry: expected %d, got %d", bi.expectedFPI, fpiDepth)
		}
	} else {
		bi.expectedFPI = fpiDepth
		bi.expectedFPISet = true
	}
	return nil
}
