package emit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mna/calyx/lang/ir"
	"github.com/mna/calyx/lang/sink"
)

// fixedInfos builds a blockInfo map with the given offset/past pairs
// already resolved, as if a prior encodeFunction pass had run. Block ids
// are assigned 0..len(spans)-1 in order.
func fixedInfos(spans ...[2]sink.Offset) map[ir.BlockID]*blockInfo {
	infos := make(map[ir.BlockID]*blockInfo, len(spans))
	for i, sp := range spans {
		infos[ir.BlockID(i)] = &blockInfo{offsetSet: true, offset: sp[0], past: sp[1]}
	}
	return infos
}

func TestFlattenExnTreeCatchRegion(t *testing.T) {
	// Scenario E: block 0 sits inside a single catch region whose handler
	// is block 2; block 1 is outside any region. The region's byte range
	// must span exactly block 0 and it must have no parent; emitEHTable is
	// then run over the same layout as a smoke check.
	catch := ir.NewChildExnNode(nil, ir.ExnCatch)
	catch.CatchEntry = 2

	fn := &ir.Function{
		Blocks: map[ir.BlockID]*ir.Block{
			0: {ID: 0, ExnNode: catch},
			1: {ID: 1},
			2: {ID: 2},
		},
	}
	infos := fixedInfos([2]sink.Offset{0, 10}, [2]sink.Offset{10, 20}, [2]sink.Offset{20, 30})
	order := []ir.BlockID{0, 1, 2}

	regions := flattenExnTree(order, fn, infos)
	require.Len(t, regions, 1)
	sortEHRegions(regions)

	r := regions[0]
	assert.Equal(t, sink.Offset(0), r.start)
	assert.Equal(t, sink.Offset(10), r.past)
	assert.Nil(t, r.parent)
	assert.Equal(t, ir.ExnCatch, r.node.Kind)

	s := sink.NewMemSink()
	fe := s.NewFuncEmitter("f")
	emitEHTable(fe, fn, order, infos)
}

func TestFlattenExnTreeNestedRegions(t *testing.T) {
	// A fault region nested inside a catch region: block 0 is covered by
	// both, block 1 by only the outer catch, block 2 by neither. The
	// total order must place the outer region before the inner one since
	// they share a start offset, with the inner marked as a descendant.
	outer := ir.NewChildExnNode(nil, ir.ExnCatch)
	outer.CatchEntry = 3
	inner := ir.NewChildExnNode(outer, ir.ExnFault)
	inner.FaultEntry = 4

	fn := &ir.Function{
		Blocks: map[ir.BlockID]*ir.Block{
			0: {ID: 0, ExnNode: inner},
			1: {ID: 1, ExnNode: outer},
			2: {ID: 2},
			3: {ID: 3},
			4: {ID: 4},
		},
	}
	infos := fixedInfos(
		[2]sink.Offset{0, 10}, // block 0: inner + outer
		[2]sink.Offset{10, 20}, // block 1: outer only
		[2]sink.Offset{20, 30}, // block 2: neither
		[2]sink.Offset{30, 40}, // block 3: outer's handler
		[2]sink.Offset{40, 50}, // block 4: inner's handler
	)
	order := []ir.BlockID{0, 1, 2, 3, 4}

	regions := flattenExnTree(order, fn, infos)
	require.Len(t, regions, 2)
	sortEHRegions(regions)

	// both regions start where block 0 starts; the outer (catch) region
	// must sort first since it contains the inner (fault) region.
	assert.Equal(t, regions[0].start, regions[1].start)
	assert.True(t, isAncestorRegion(regions[0], regions[1]))
	assert.Equal(t, ir.ExnCatch, regions[0].node.Kind)
	assert.Equal(t, ir.ExnFault, regions[1].node.Kind)
	assert.Equal(t, sink.Offset(20), regions[0].past)
	assert.Equal(t, sink.Offset(10), regions[1].past)
}

func TestSortEHRegionsIdempotent(t *testing.T) {
	outer := &ehRegion{start: 0, past: 20}
	inner := &ehRegion{start: 0, past: 10, parent: outer}
	sibling := &ehRegion{start: 10, past: 15}

	regions := []*ehRegion{sibling, inner, outer}
	sortEHRegions(regions)
	first := append([]*ehRegion(nil), regions...)
	sortEHRegions(regions)
	assert.Equal(t, first, regions)
}
