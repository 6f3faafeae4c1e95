package emit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mna/calyx/lang/index"
	"github.com/mna/calyx/lang/ir"
	"github.com/mna/calyx/lang/opcode"
	"github.com/mna/calyx/lang/sink"
)

func simpleFunc(name string) *ir.Function {
	return &ir.Function{
		Name:       name,
		EntryBlock: 0,
		Source:     &ir.SourceInfo{},
		Blocks: map[ir.BlockID]*ir.Block{
			0: blk(0, ir.Instruction{Op: opcode.Null}, ir.Instruction{Op: opcode.RetC}),
		},
	}
}

func TestEmitUnitEndToEnd(t *testing.T) {
	cls := &ir.Class{
		Name:   "Greeter",
		Parent: ir.NoParentClass,
		Properties: []ir.Property{
			{Name: "name", Kind: ir.PropPrivateInstance},
		},
		Methods: []*ir.Function{simpleFunc("greet")},
	}

	unit := &ir.Unit{
		Pseudomain: simpleFunc(""),
		Classes:    []*ir.Class{cls},
		Functions:  []*ir.Function{simpleFunc("topLevel")},
		TypeAliases: []*ir.TypeAlias{
			{Name: "IntList", Value: "vec<int>"},
		},
		Filename: "greeter.src",
	}

	idx := index.NewStaticIndex()
	idx.SetReturnType("topLevel", opcode.RepoAuthType{Kind: opcode.RATInt})
	idx.SetPrivateProps("Greeter", index.PropMap{"name": {Kind: opcode.RATString}})
	idx.SetIfaceVTableSlot("Greeter", -1)

	s := sink.NewMemSink()
	require.NoError(t, EmitUnit(s, unit, idx))

	sum := s.Summary()
	assert.Equal(t, "greeter.src", sum.Filename)
	assert.True(t, sum.ReturnSeen)
	assert.False(t, sum.MergeOnly)
	require.Len(t, sum.Classes, 1)
	assert.Equal(t, "Greeter", sum.Classes[0].Name)
	assert.Equal(t, 1, sum.Classes[0].NumMethods)
	require.Len(t, sum.Methods, 1)
	require.Len(t, sum.Functions, 1)
	assert.Equal(t, "topLevel", sum.Functions[0].Name)
}

func TestEmitUnitSystemlib(t *testing.T) {
	unit := &ir.Unit{
		Pseudomain: simpleFunc(""),
		Flags:      ir.FlagIsSystemlib,
		Filename:   "systemlib.src",
	}
	idx := index.NewStaticIndex()

	s := sink.NewMemSink()
	require.NoError(t, EmitUnit(s, unit, idx))

	sum := s.Summary()
	assert.True(t, sum.MergeOnly)
	assert.False(t, sum.ReturnSeen)
	assert.Equal(t, int64(1), sum.MainReturn)
}

func TestEmitFunctionDVFuncletOffset(t *testing.T) {
	// Scenario F: a parameter with a default-value initializer block,
	// reachable only from the DV seed, must be laid out after the main
	// body, and its offset must be resolvable through the same infos map
	// the driver uses to fill in ParamMeta.FuncletOff.
	dvEntry := ir.BlockID(1)
	fn := &ir.Function{
		Name:       "withDefault",
		EntryBlock: 0,
		Source:     &ir.SourceInfo{},
		Params:     []*ir.Param{{Name: "x", DefaultEntry: &dvEntry}},
		Blocks: map[ir.BlockID]*ir.Block{
			0: blk(0, ir.Instruction{Op: opcode.Null}, ir.Instruction{Op: opcode.RetC}),
			1: blk(1, ir.Instruction{Op: opcode.Int, Imm: opcode.Immediate{Int64: 42}}, ir.Instruction{Op: opcode.RetC}),
		},
	}

	s := sink.NewMemSink()
	s.NewFuncEmitter("withDefault")
	result, err := encodeFunction(s, fn, newDefClsTable(0))
	require.NoError(t, err)

	require.Equal(t, []ir.BlockID{0, 1}, result.order)
	bi, ok := result.infos[dvEntry]
	require.True(t, ok)
	assert.True(t, bi.offsetSet)
	assert.GreaterOrEqual(t, bi.offset, result.infos[0].past)
}
