package emit

import (
	"golang.org/x/exp/slices"

	"github.com/mna/calyx/lang/ir"
	"github.com/mna/calyx/lang/sink"
)

// ehRegion is one not-yet-sorted exception-handler region discovered by
// flattenExnTree: the exn-tree node it covers, the region that was on
// top of the active stack when it was pushed, and its byte interval.
type ehRegion struct {
	node   *ir.ExnNode
	parent *ehRegion
	start  sink.Offset
	past   sink.Offset
}

// flattenExnTree walks order (a function's blocks in final layout
// order) and reconstructs the exception-node tree's regions as byte
// intervals: an active stack tracks the path of exn nodes currently
// open, popped and pushed at each block boundary to match that block's
// own path, then drained further by the block's regionsToPop count for
// fault regions exited by a synthesized fall-through jump.
func flattenExnTree(order []ir.BlockID, fn *ir.Function, infos map[ir.BlockID]*blockInfo) []*ehRegion {
	var activeNodes []*ir.ExnNode
	var activeRegions []*ehRegion
	var all []*ehRegion
	var lastPast sink.Offset

	popOne := func(past sink.Offset) {
		n := len(activeRegions)
		activeRegions[n-1].past = past
		activeRegions = activeRegions[:n-1]
		activeNodes = activeNodes[:n-1]
	}

	for _, id := range order {
		blk := fn.Blocks[id]
		bi := infos[id]
		o := bi.offset

		path := blk.ExnNode.Path()
		prefix := ir.SharedPrefixLength(path, activeNodes)

		for len(activeNodes) > prefix {
			popOne(o)
		}
		for i := prefix; i < len(path); i++ {
			var parent *ehRegion
			if len(activeRegions) > 0 {
				parent = activeRegions[len(activeRegions)-1]
			}
			r := &ehRegion{node: path[i], parent: parent, start: o}
			activeRegions = append(activeRegions, r)
			activeNodes = append(activeNodes, path[i])
			all = append(all, r)
		}
		for i := 0; i < bi.regionsToPop && len(activeRegions) > 0; i++ {
			popOne(bi.past)
		}
		lastPast = bi.past
	}
	for len(activeRegions) > 0 {
		popOne(lastPast)
	}
	return all
}

// isAncestorRegion reports whether a is an ancestor of b along the
// region-parent chain built by flattenExnTree.
func isAncestorRegion(a, b *ehRegion) bool {
	for p := b.parent; p != nil; p = p.parent {
		if p == a {
			return true
		}
	}
	return false
}

// sortEHRegions orders regions by the table's total order: ascending
// start, then descending past (so an outer region sorts before the
// inner regions it contains), then ancestor before descendant for
// regions sharing both endpoints.
func sortEHRegions(regions []*ehRegion) {
	slices.SortFunc(regions, func(a, b *ehRegion) int {
		if a.start != b.start {
			if a.start < b.start {
				return -1
			}
			return 1
		}
		if a.past != b.past {
			if a.past > b.past {
				return -1
			}
			return 1
		}
		if isAncestorRegion(a, b) {
			return -1
		}
		if isAncestorRegion(b, a) {
			return 1
		}
		return 0
	})
}

// emitEHTable flattens fn's exception-node tree over its finished block
// layout, sorts the resulting regions, and appends each to fe in that
// order, resolving every region's parent index from the regions already
// appended (guaranteed present first by the sort order).
func emitEHTable(fe sink.FuncEmitter, fn *ir.Function, order []ir.BlockID, infos map[ir.BlockID]*blockInfo) {
	regions := flattenExnTree(order, fn, infos)
	sortEHRegions(regions)

	indexOf := make(map[*ehRegion]int, len(regions))
	for _, r := range regions {
		parentIdx := -1
		if r.parent != nil {
			parentIdx = indexOf[r.parent]
		}
		ent := sink.EHEntry{
			Kind:        r.node.Kind,
			Base:        r.start,
			Past:        r.past,
			ParentIndex: parentIdx,
			IterID:      r.node.IterID,
			ItRef:       r.node.ItRef,
		}
		if r.node.Kind == ir.ExnCatch {
			ent.Handler = infos[r.node.CatchEntry].offset
		} else {
			ent.Handler = infos[r.node.FaultEntry].offset
		}
		indexOf[r] = fe.AddEHEnt(ent)
	}
}
