package emit

import (
	"golang.org/x/exp/slices"

	"github.com/mna/calyx/lang/ir"
	"github.com/mna/calyx/lang/opcode"
)

// successors returns blk's CFG out-edges: every distinct branch target
// carried by its instructions, in instruction order, followed by its
// fall-through target if any and not already listed.
func successors(blk *ir.Block) []ir.BlockID {
	var out []ir.BlockID
	seen := make(map[ir.BlockID]bool)
	add := func(id ir.BlockID) {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	for _, insn := range blk.Insns {
		if !opcode.IsJump(insn.Op) {
			continue
		}
		switch {
		case insn.Imm.BranchTab != nil:
			for _, t := range insn.Imm.BranchTab {
				add(t)
			}
		case insn.Imm.SSwitchTab != nil:
			for _, c := range insn.Imm.SSwitchTab {
				add(c.Target)
			}
		default:
			add(insn.Imm.Branch)
		}
	}
	if blk.Fallthrough != nil {
		add(*blk.Fallthrough)
	}
	return out
}

// rpo returns the reverse-postorder traversal of fn's block graph,
// visiting each seed block in order and, within each, successors in the
// deterministic order successors returns.
func rpo(fn *ir.Function, seeds []ir.BlockID) []ir.BlockID {
	visited := make(map[ir.BlockID]bool, len(fn.Blocks))
	post := make([]ir.BlockID, 0, len(fn.Blocks))

	var visit func(id ir.BlockID)
	visit = func(id ir.BlockID) {
		if visited[id] {
			return
		}
		visited[id] = true
		blk, ok := fn.Blocks[id]
		if !ok {
			return
		}
		for _, succ := range successors(blk) {
			visit(succ)
		}
		post = append(post, id)
	}
	for _, s := range seeds {
		visit(s)
	}

	out := make([]ir.BlockID, len(post))
	for i, id := range post {
		out[len(post)-1-i] = id
	}
	return out
}

// OrderBlocks linearizes fn's blocks for emission: a reverse-postorder
// walk from the main entry, followed by the suffix of blocks reachable
// only from default-value parameter entries, stable-sorted by section so
// that main code stays contiguous and first and fault funclets stay
// contiguous after it. If the resulting first block is a single bare Nop
// it is upgraded to EntryNop so a jump targeting the following block
// cannot cause it to be optimized away.
func OrderBlocks(fn *ir.Function) ([]ir.BlockID, error) {
	if _, ok := fn.Blocks[fn.EntryBlock]; !ok {
		return nil, newFault(fn, fn.EntryBlock, 0, "function entry block not found")
	}

	m := rpo(fn, []ir.BlockID{fn.EntryBlock})

	var dvSeeds []ir.BlockID
	dvSeeds = append(dvSeeds, fn.EntryBlock)
	for _, p := range fn.Params {
		if p.DefaultEntry != nil {
			dvSeeds = append(dvSeeds, *p.DefaultEntry)
		}
	}
	full2 := rpo(fn, dvSeeds)

	inM := make(map[ir.BlockID]bool, len(m))
	for _, id := range m {
		inM[id] = true
	}
	var d []ir.BlockID
	for _, id := range full2 {
		if !inM[id] {
			d = append(d, id)
		}
	}

	s := make([]ir.BlockID, 0, len(m)+len(d))
	s = append(s, m...)
	s = append(s, d...)

	slices.SortStableFunc(s, func(a, b ir.BlockID) int {
		return int(fn.Blocks[a].Section) - int(fn.Blocks[b].Section)
	})

	if len(s) > 0 {
		first := fn.Blocks[s[0]]
		if len(first.Insns) == 1 && first.Insns[0].Op == opcode.Nop {
			first.Insns[0].Op = opcode.EntryNop
		}
	}
	return s, nil
}
