package emit

import (
	"math"

	"github.com/mna/calyx/lang/ir"
	"github.com/mna/calyx/lang/opcode"
	"github.com/mna/calyx/lang/sink"
)

// noNextBlock is passed to synthesizeFallthrough for the last block in
// layout order, which by definition has no successor to compare against.
const noNextBlock ir.BlockID = math.MaxUint32

// defClsTable records, per class id in a unit, the byte offset at which
// that class was defined. It is unit-level state shared by every
// function emitted within the unit (DefCls/DefClsNop opcodes can appear
// in the pseudomain body).
type defClsTable struct {
	offsets map[uint32]sink.Offset
}

func newDefClsTable(numClasses int) *defClsTable {
	return &defClsTable{offsets: make(map[uint32]sink.Offset, numClasses)}
}

func (t *defClsTable) record(fn *ir.Function, classID uint32, offset sink.Offset) error {
	if _, ok := t.offsets[classID]; ok {
		return newFault(fn, 0, offset, "duplicate DefCls for class id %d", classID)
	}
	t.offsets[classID] = offset
	return nil
}

// encodeFuncResult is everything the unit driver needs after a
// function's bytecode has been laid out: the block layout order and the
// per-block records (which the EH-tree flattener walks afterward), the
// peak stack and FPI depths, the finished FPI region list, and whether
// any call was emitted.
type encodeFuncResult struct {
	order        []ir.BlockID
	infos        map[ir.BlockID]*blockInfo
	maxStack     int
	maxFPIDepth  int
	fpiRegions   []sink.FPIEntry
	containsCall bool
}

// encodeFunction lays out fn's blocks, encodes every instruction, fixes
// up branches, and tracks stack/FPI depth, writing bytes to s as it
// goes. It returns the bookkeeping the unit driver and the EH-tree
// flattener need afterward.
func encodeFunction(s sink.UnitEmitter, fn *ir.Function, defCls *defClsTable) (*encodeFuncResult, error) {
	order, err := OrderBlocks(fn)
	if err != nil {
		return nil, err
	}
	fs := newFuncState(fn)

	for i, id := range order {
		blk := fn.Blocks[id]
		if err := startBlock(s, fs, id); err != nil {
			return nil, err
		}
		for idx := range blk.Insns {
			if err := encodeInstruction(s, fs, fn, blk, &blk.Insns[idx], defCls); err != nil {
				return nil, err
			}
		}
		if blk.Fallthrough != nil {
			next := noNextBlock
			if i+1 < len(order) {
				next = order[i+1]
			}
			op := opcode.Jmp
			if blk.FallthroughNS {
				op = opcode.JmpNS
			}
			if err := synthesizeFallthrough(s, fs, blk, next, op); err != nil {
				return nil, err
			}
		}
		fs.info(id).past = s.BCPos()
		fs.lastEmittedOffset = s.BCPos()
	}

	fs.closeAllFPI(fs.lastEmittedOffset)

	return &encodeFuncResult{
		order:        order,
		infos:        fs.infos,
		maxStack:     fs.maxDepth,
		maxFPIDepth:  fs.maxFPIDepth,
		fpiRegions:   fs.fpiRegions,
		containsCall: fs.containsCall,
	}, nil
}

// encodeInstruction writes one instruction's opcode byte and immediate
// payload, applies its stack effect, and fires any post-effect hooks.
func encodeInstruction(s sink.UnitEmitter, fs *funcState, fn *ir.Function, blk *ir.Block, insn *ir.Instruction, defCls *defClsTable) error {
	siteStart := s.BCPos()
	s.EmitOp(insn.Op)

	// The stack effect is applied before the immediate is encoded so that
	// a branch immediate's target sees the depth control actually has once
	// this instruction (including its own pop, e.g. a JmpZ's condition)
	// has executed, not the depth beforehand.
	pop, push := opcode.StackEffect(insn.Op, insn.Imm)
	if opcode.IsReturn(insn.Op) && fs.curDepth != 1 {
		return newFault(fn, blk.ID, siteStart, "return opcode at stack depth %d, expected 1", fs.curDepth)
	}
	if err := fs.applyStackEffect(pop, push); err != nil {
		return err
	}
	insn.StackPop, insn.StackPush = pop, push

	if err := encodeImmediate(s, fs, insn); err != nil {
		return err
	}

	switch {
	case isFPush(insn.Op):
		fs.pushFPI(siteStart)
	case isFCall(insn.Op):
		if err := fs.closeFPI(siteStart); err != nil {
			return err
		}
		fs.containsCall = true
	}

	if opcode.IsDefCls(insn.Op) {
		if err := defCls.record(fn, insn.Imm.UInt, siteStart); err != nil {
			return err
		}
	}

	if opcode.IsTerminal(insn.Op) {
		fs.resetTerminal()
	}

	end := s.BCPos()
	pos := fn.Source.Position(insn.SrcLoc)
	s.RecordSourceLocation(pos, siteStart, end)
	return nil
}

// encodeImmediate writes the immediate payload for insn according to its
// opcode's schema, resolving branch targets against the function's block
// layout via emitBranch.
func encodeImmediate(s sink.UnitEmitter, fs *funcState, insn *ir.Instruction) error {
	schema := opcode.SchemaOf(insn.Op)
	imm := insn.Imm
	switch schema.Imm {
	case opcode.ImmNone:
	case opcode.ImmUInt:
		s.EmitIVA(imm.UInt)
	case opcode.ImmInt64:
		s.EmitInt64(imm.Int64)
	case opcode.ImmDouble:
		s.EmitDouble(imm.Double)
	case opcode.ImmStr:
		s.EmitInt32(s.MergeLitstr(imm.Str))
	case opcode.ImmArr:
		s.EmitInt32(s.MergeArray(imm.Arr))
	case opcode.ImmRAT:
		encodeRAT(s, imm.RAT)
	case opcode.ImmLocal:
		s.EmitIVA(fs.fn.MapLocal(imm.Local))
	case opcode.ImmIter:
		s.EmitIVA(imm.Iter)
	case opcode.ImmClsRef:
		s.EmitIVA(imm.ClsRef)
	case opcode.ImmSubOp:
		s.EmitByte(imm.SubOp)
	case opcode.ImmBranch:
		branchSite := s.BCPos() - 1 // the opcode byte already written
		return emitBranch(s, fs, imm.Branch, branchSite)
	case opcode.ImmBranchTab:
		branchSite := s.BCPos() - 1
		s.EmitInt32(int32(len(imm.BranchTab)))
		for _, target := range imm.BranchTab {
			if err := emitBranch(s, fs, target, branchSite); err != nil {
				return err
			}
		}
	case opcode.ImmSSwitchTab:
		branchSite := s.BCPos() - 1
		for i, c := range imm.SSwitchTab {
			if i == len(imm.SSwitchTab)-1 {
				s.EmitInt32(-1)
				if err := emitBranch(s, fs, c.Target, branchSite); err != nil {
					return err
				}
				break
			}
			s.EmitIVA(uint32(s.MergeLitstr(c.Str)))
			if err := emitBranch(s, fs, c.Target, branchSite); err != nil {
				return err
			}
		}
	case opcode.ImmIterTab:
		s.EmitInt32(int32(len(imm.IterTab)))
		for _, e := range imm.IterTab {
			s.EmitInt32(int32(e.Kind))
			s.EmitInt32(int32(e.ID))
		}
	case opcode.ImmKeyVec:
		s.EmitInt32(int32(len(imm.KeyVec)))
		for _, k := range imm.KeyVec {
			s.EmitInt32(s.MergeLitstr(k))
		}
	case opcode.ImmLocalRange:
		if imm.LocalRange.First+imm.LocalRange.Count > uint32(fs.fn.NumLocals()) {
			return newFault(fs.fn, 0, s.BCPos(), "local range [%d,+%d) extends past %d locals",
				imm.LocalRange.First, imm.LocalRange.Count, fs.fn.NumLocals())
		}
		if imm.LocalRange.Count > 0 {
			base := fs.fn.MapLocal(imm.LocalRange.First)
			for i := uint32(1); i < imm.LocalRange.Count; i++ {
				if fs.fn.MapLocal(imm.LocalRange.First+i) != base+i {
					return newFault(fs.fn, 0, s.BCPos(), "local range [%d,+%d) is not contiguous after local-id mapping",
						imm.LocalRange.First, imm.LocalRange.Count)
				}
			}
		}
		s.EmitIVA(imm.LocalRange.First)
		s.EmitIVA(imm.LocalRange.Count)
	case opcode.ImmMemberKey:
		encodeMemberKey(s, fs, imm.MemberKey)
	}
	return nil
}

func encodeRAT(s sink.UnitEmitter, rat opcode.RepoAuthType) {
	s.EmitByte(byte(rat.Kind))
	if rat.Kind == opcode.RATClass {
		s.EmitIVA(uint32(s.MergeLitstr(rat.ClsName)))
	}
	nullable := byte(0)
	if rat.Nullable {
		nullable = 1
	}
	s.EmitByte(nullable)
}

func encodeMemberKey(s sink.UnitEmitter, fs *funcState, mk opcode.MemberKey) {
	s.EmitByte(byte(mk.Tag))
	switch mk.Tag {
	case opcode.MKElemLocal, opcode.MKPropLocal:
		s.EmitIVA(fs.fn.MapLocal(mk.Local))
	case opcode.MKPropString:
		s.EmitIVA(uint32(s.MergeLitstr(mk.Str)))
	case opcode.MKElemInt:
		s.EmitInt64(mk.Int)
	}
}
