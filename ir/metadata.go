package ir

import "slices"

// Metadata is a set of cached per-function analyses.
type Metadata uint8

const (
	// MetadataBlockIndex numbers blocks in reverse postorder and records
	// predecessors.
	MetadataBlockIndex Metadata = 1 << iota

	// MetadataInstrIndex numbers live instructions in program order.
	MetadataInstrIndex

	// MetadataDominance records the immediate dominator of every block.
	MetadataDominance

	// MetadataAll names every analysis.
	MetadataAll = MetadataBlockIndex | MetadataInstrIndex | MetadataDominance
)

// unreachable marks blocks not reachable from the entry block.
const unreachable = -1

type metadataState struct {
	valid Metadata

	rpo        []BlockHandle // reachable blocks in reverse postorder
	rpoIndex   []int         // block -> position in rpo, or unreachable
	preds      [][]BlockHandle
	instrIndex []int // instruction -> program-order index
	idom       []BlockHandle
}

// Valid reports whether every analysis in m is currently cached.
func (f *Function) Valid(m Metadata) bool {
	return f.metadata.valid&m == m
}

// Invalidate drops the cached analyses in m.
func (f *Function) Invalidate(m Metadata) {
	f.metadata.valid &^= m
}

// Require computes any analysis in m that is not cached. Dominance
// implies the block index.
func (f *Function) Require(m Metadata) {
	if m&MetadataDominance != 0 {
		m |= MetadataBlockIndex
	}
	if m&MetadataBlockIndex != 0 && !f.Valid(MetadataBlockIndex) {
		f.computeBlockIndex()
	}
	if m&MetadataInstrIndex != 0 && !f.Valid(MetadataInstrIndex) {
		f.computeInstrIndex()
	}
	if m&MetadataDominance != 0 && !f.Valid(MetadataDominance) {
		f.computeDominance()
	}
}

// Preds returns the predecessors of block b. Requires MetadataBlockIndex.
func (f *Function) Preds(b BlockHandle) []BlockHandle {
	f.Require(MetadataBlockIndex)
	return f.metadata.preds[b]
}

// Reachable reports whether b is reachable from the entry block.
func (f *Function) Reachable(b BlockHandle) bool {
	f.Require(MetadataBlockIndex)
	return f.metadata.rpoIndex[b] != unreachable
}

// InstrIndex returns the program-order index of a live instruction.
func (f *Function) InstrIndex(h InstrHandle) int {
	f.Require(MetadataInstrIndex)
	return f.metadata.instrIndex[h]
}

// IDom returns the immediate dominator of b. The entry block and
// unreachable blocks return themselves.
func (f *Function) IDom(b BlockHandle) BlockHandle {
	f.Require(MetadataDominance)
	return f.metadata.idom[b]
}

// Dominates reports whether block a dominates block b.
func (f *Function) Dominates(a, b BlockHandle) bool {
	f.Require(MetadataDominance)
	if !f.Reachable(b) {
		return true
	}
	for {
		if a == b {
			return true
		}
		next := f.metadata.idom[b]
		if next == b {
			return false
		}
		b = next
	}
}

func (f *Function) computeBlockIndex() {
	n := len(f.Blocks)
	md := &f.metadata
	md.valid &^= MetadataDominance

	md.preds = make([][]BlockHandle, n)
	for _, b := range f.Blocks {
		for _, s := range b.Succs {
			if int(s) < n {
				md.preds[s] = append(md.preds[s], b.Handle)
			}
		}
	}

	md.rpoIndex = make([]int, n)
	for i := range md.rpoIndex {
		md.rpoIndex[i] = unreachable
	}
	md.rpo = md.rpo[:0]
	if n > 0 {
		visited := make([]bool, n)
		var post []BlockHandle
		var walk func(b BlockHandle)
		walk = func(b BlockHandle) {
			visited[b] = true
			for _, s := range f.Blocks[b].Succs {
				if int(s) < n && !visited[s] {
					walk(s)
				}
			}
			post = append(post, b)
		}
		walk(0)
		slices.Reverse(post)
		md.rpo = post
		for i, b := range post {
			md.rpoIndex[b] = i
		}
	}
	md.valid |= MetadataBlockIndex
}

func (f *Function) computeInstrIndex() {
	md := &f.metadata
	md.instrIndex = make([]int, len(f.instrs))
	i := 0
	for _, b := range f.Blocks {
		for _, h := range b.Instrs {
			md.instrIndex[h] = i
			i++
		}
	}
	md.valid |= MetadataInstrIndex
}

// computeDominance uses the iterative algorithm of Cooper, Harvey and
// Kennedy over the reverse postorder.
func (f *Function) computeDominance() {
	md := &f.metadata
	n := len(f.Blocks)
	const undefined = BlockHandle(^uint32(0))

	md.idom = make([]BlockHandle, n)
	for i := range md.idom {
		md.idom[i] = undefined
	}
	if n == 0 {
		md.valid |= MetadataDominance
		return
	}
	md.idom[0] = 0

	intersect := func(a, b BlockHandle) BlockHandle {
		for a != b {
			for md.rpoIndex[a] > md.rpoIndex[b] {
				a = md.idom[a]
			}
			for md.rpoIndex[b] > md.rpoIndex[a] {
				b = md.idom[b]
			}
		}
		return a
	}

	for changed := true; changed; {
		changed = false
		for _, b := range md.rpo[1:] {
			newIDom := undefined
			for _, p := range md.preds[b] {
				if md.rpoIndex[p] == unreachable || md.idom[p] == undefined {
					continue
				}
				if newIDom == undefined {
					newIDom = p
				} else {
					newIDom = intersect(p, newIDom)
				}
			}
			if newIDom != undefined && md.idom[b] != newIDom {
				md.idom[b] = newIDom
				changed = true
			}
		}
	}

	for i := range md.idom {
		if md.idom[i] == undefined {
			md.idom[i] = BlockHandle(i)
		}
	}
	md.valid |= MetadataDominance
}
