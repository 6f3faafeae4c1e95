package maincmd

import (
	"fmt"

	"github.com/mna/calyx/lang/ir"
	"github.com/mna/calyx/lang/opcode"
)

// unitDTO is the textual, YAML-decodable description of a unit accepted
// by the emit command. It covers the subset of the bytecode ISA needed
// to exercise straight-line code, branches, calls, and class
// declarations from a hand-written fixture; it is a debugging aid, not
// a general-purpose assembler.
type unitDTO struct {
	Filename   string      `yaml:"filename"`
	Systemlib  bool        `yaml:"systemlib"`
	Pseudomain *funcDTO    `yaml:"pseudomain"`
	Functions  []funcDTO   `yaml:"functions"`
	Classes    []classDTO  `yaml:"classes"`
}

type classDTO struct {
	Name    string    `yaml:"name"`
	Parent  string    `yaml:"parent"`
	Methods []funcDTO `yaml:"methods"`
}

type funcDTO struct {
	Name           string     `yaml:"name"`
	Params         []string   `yaml:"params"`
	Locals         []string   `yaml:"locals"`
	NumIters       int        `yaml:"num_iters"`
	NumClsRefSlots int        `yaml:"num_cls_ref_slots"`
	Entry          string     `yaml:"entry"`
	Blocks         []blockDTO `yaml:"blocks"`
}

type blockDTO struct {
	ID            string   `yaml:"id"`
	Section       string   `yaml:"section"`
	Insns         []insnDTO `yaml:"insns"`
	Fallthrough   string   `yaml:"fallthrough"`
	FallthroughNS bool     `yaml:"fallthrough_ns"`
}

type insnDTO struct {
	Op     string  `yaml:"op"`
	Str    string  `yaml:"str,omitempty"`
	Int    int64   `yaml:"int,omitempty"`
	Double float64 `yaml:"double,omitempty"`
	UInt   uint32  `yaml:"uint,omitempty"`
	Local  string  `yaml:"local,omitempty"`
	Branch string  `yaml:"branch,omitempty"`
	SubOp  byte    `yaml:"subop,omitempty"`
}

// decodeUnit converts a unitDTO into an *ir.Unit ready for EmitUnit.
func decodeUnit(dto *unitDTO) (*ir.Unit, error) {
	u := &ir.Unit{Filename: dto.Filename}
	if dto.Systemlib {
		u.Flags |= ir.FlagIsSystemlib
	}

	if dto.Pseudomain != nil {
		fn, err := decodeFunc(dto.Pseudomain)
		if err != nil {
			return nil, fmt.Errorf("pseudomain: %w", err)
		}
		u.Pseudomain = fn
	}

	for i := range dto.Functions {
		fn, err := decodeFunc(&dto.Functions[i])
		if err != nil {
			return nil, fmt.Errorf("function %q: %w", dto.Functions[i].Name, err)
		}
		u.Functions = append(u.Functions, fn)
	}

	for i := range dto.Classes {
		cls, err := decodeClass(&dto.Classes[i])
		if err != nil {
			return nil, fmt.Errorf("class %q: %w", dto.Classes[i].Name, err)
		}
		u.Classes = append(u.Classes, cls)
	}

	return u, nil
}

func decodeClass(dto *classDTO) (*ir.Class, error) {
	cls := &ir.Class{Name: dto.Name, Parent: dto.Parent}
	if cls.Parent == "" {
		cls.Parent = ir.NoParentClass
	}
	for i := range dto.Methods {
		fn, err := decodeFunc(&dto.Methods[i])
		if err != nil {
			return nil, fmt.Errorf("method %q: %w", dto.Methods[i].Name, err)
		}
		cls.Methods = append(cls.Methods, fn)
	}
	return cls, nil
}

func decodeFunc(dto *funcDTO) (*ir.Function, error) {
	fn := &ir.Function{
		Name:           dto.Name,
		NumIters:       dto.NumIters,
		NumClsRefSlots: dto.NumClsRefSlots,
		Blocks:         make(map[ir.BlockID]*ir.Block, len(dto.Blocks)),
		Source:         &ir.SourceInfo{},
	}

	for _, name := range dto.Params {
		fn.Params = append(fn.Params, &ir.Param{Name: name})
		fn.Locals = append(fn.Locals, &ir.Local{Name: name})
	}
	for _, name := range dto.Locals {
		fn.Locals = append(fn.Locals, &ir.Local{Name: name})
	}

	localIndex := make(map[string]uint32, len(fn.Locals))
	for i, l := range fn.Locals {
		if l.Name != "" {
			localIndex[l.Name] = uint32(i)
		}
	}

	blockIndex := make(map[string]ir.BlockID, len(dto.Blocks))
	for i, b := range dto.Blocks {
		blockIndex[b.ID] = ir.BlockID(i)
	}
	if dto.Entry != "" {
		id, ok := blockIndex[dto.Entry]
		if !ok {
			return nil, fmt.Errorf("entry block %q not declared", dto.Entry)
		}
		fn.EntryBlock = id
	}

	for i, bdto := range dto.Blocks {
		blk := &ir.Block{ID: ir.BlockID(i), FallthroughNS: bdto.FallthroughNS}
		switch bdto.Section {
		case "", "main":
			blk.Section = ir.SectionMain
		case "fault":
			blk.Section = ir.SectionFault
		default:
			return nil, fmt.Errorf("block %q: unknown section %q", bdto.ID, bdto.Section)
		}
		if bdto.Fallthrough != "" {
			id, ok := blockIndex[bdto.Fallthrough]
			if !ok {
				return nil, fmt.Errorf("block %q: fallthrough target %q not declared", bdto.ID, bdto.Fallthrough)
			}
			blk.Fallthrough = &id
		}
		for _, idto := range bdto.Insns {
			insn, err := decodeInsn(idto, localIndex, blockIndex)
			if err != nil {
				return nil, fmt.Errorf("block %q: %w", bdto.ID, err)
			}
			insn.SrcLoc = -1
			blk.Insns = append(blk.Insns, insn)
		}
		fn.Blocks[blk.ID] = blk
	}

	return fn, nil
}

// decodeInsn supports the subset of opcodes that can be expressed
// without referencing array/string-switch/member-key tables: arithmetic
// and comparison opcodes, literals, locals, unconditional/conditional
// branches, calls, and class definitions.
func decodeInsn(dto insnDTO, localIndex map[string]uint32, blockIndex map[string]ir.BlockID) (ir.Instruction, error) {
	var insn ir.Instruction
	branchTarget := func() (opcode.BlockID, error) {
		id, ok := blockIndex[dto.Branch]
		if !ok {
			return 0, fmt.Errorf("branch target %q not declared", dto.Branch)
		}
		return id, nil
	}
	localRef := func() (uint32, error) {
		id, ok := localIndex[dto.Local]
		if !ok {
			return 0, fmt.Errorf("local %q not declared", dto.Local)
		}
		return id, nil
	}

	switch dto.Op {
	case "nop":
		insn.Op = opcode.Nop
	case "dup":
		insn.Op = opcode.Dup
	case "pop":
		insn.Op = opcode.Pop
	case "null":
		insn.Op = opcode.Null
	case "true":
		insn.Op = opcode.True
	case "false":
		insn.Op = opcode.False
	case "int":
		insn.Op, insn.Imm.Int64 = opcode.Int, dto.Int
	case "double":
		insn.Op, insn.Imm.Double = opcode.Double, dto.Double
	case "string":
		insn.Op, insn.Imm.Str = opcode.String, dto.Str
	case "add":
		insn.Op = opcode.Add
	case "sub":
		insn.Op = opcode.Sub
	case "mul":
		insn.Op = opcode.Mul
	case "div":
		insn.Op = opcode.Div
	case "mod":
		insn.Op = opcode.Mod
	case "bitand":
		insn.Op = opcode.BitAnd
	case "bitor":
		insn.Op = opcode.BitOr
	case "bitxor":
		insn.Op = opcode.BitXor
	case "bitnot":
		insn.Op = opcode.BitNot
	case "shl":
		insn.Op = opcode.Shl
	case "shr":
		insn.Op = opcode.Shr
	case "not":
		insn.Op = opcode.Not
	case "concat":
		insn.Op = opcode.Concat
	case "same":
		insn.Op = opcode.Same
	case "nsame":
		insn.Op = opcode.NSame
	case "lt":
		insn.Op = opcode.Lt
	case "lte":
		insn.Op = opcode.Lte
	case "gt":
		insn.Op = opcode.Gt
	case "gte":
		insn.Op = opcode.Gte
	case "eq":
		insn.Op = opcode.Eq
	case "neq":
		insn.Op = opcode.Neq
	case "cgetl":
		id, err := localRef()
		if err != nil {
			return insn, err
		}
		insn.Op, insn.Imm.Local = opcode.CGetL, id
	case "setl":
		id, err := localRef()
		if err != nil {
			return insn, err
		}
		insn.Op, insn.Imm.Local = opcode.SetL, id
	case "clsrefslot":
		insn.Op, insn.Imm.ClsRef = opcode.ClsRefSlot, dto.UInt
	case "fatal":
		insn.Op, insn.Imm.SubOp = opcode.Fatal, dto.SubOp
	case "retc":
		insn.Op = opcode.RetC
	case "throw":
		insn.Op = opcode.Throw
	case "jmp", "jmpns", "jmpz", "jmpnz":
		target, err := branchTarget()
		if err != nil {
			return insn, err
		}
		insn.Imm.Branch = target
		switch dto.Op {
		case "jmp":
			insn.Op = opcode.Jmp
		case "jmpns":
			insn.Op = opcode.JmpNS
		case "jmpz":
			insn.Op = opcode.JmpZ
		case "jmpnz":
			insn.Op = opcode.JmpNZ
		}
	case "fpushfuncd":
		insn.Op, insn.Imm.Str = opcode.FPushFuncD, dto.Str
	case "fcall":
		insn.Op, insn.Imm.UInt = opcode.FCall, dto.UInt
	case "fcalld":
		insn.Op, insn.Imm.UInt = opcode.FCallD, dto.UInt
	case "defcls":
		insn.Op, insn.Imm.UInt = opcode.DefCls, dto.UInt
	case "defclsnop":
		insn.Op, insn.Imm.UInt = opcode.DefClsNop, dto.UInt
	default:
		return insn, fmt.Errorf("unsupported opcode %q in textual unit description", dto.Op)
	}
	return insn, nil
}
