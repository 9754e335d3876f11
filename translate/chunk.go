package translate

import "github.com/fwojciec/pagedoc"

// DefaultChunkBudget is the character budget for one translation request.
// Large enough to amortize the per-call overhead, small enough to keep
// responses well inside provider output limits.
const DefaultChunkBudget = 4000

// Chunk is an ephemeral, size-bounded group of text references sent
// together in one translation request. Chunks are rebuilt per run and
// never persisted.
type Chunk struct {
	Refs []pagedoc.TextRef
}

// Size returns the summed character length of the chunk's references.
func (c *Chunk) Size() int {
	n := 0
	for i := range c.Refs {
		n += c.Refs[i].Len()
	}
	return n
}

// PackChunks greedily packs references into chunks whose summed character
// length does not exceed budget. Packing is lossless and order-preserving:
// concatenating the chunks reproduces the input exactly. A single
// reference exceeding the budget becomes its own chunk.
func PackChunks(refs []pagedoc.TextRef, budget int) []Chunk {
	if budget <= 0 {
		budget = DefaultChunkBudget
	}

	var chunks []Chunk
	var current Chunk
	size := 0

	flush := func() {
		if len(current.Refs) > 0 {
			chunks = append(chunks, current)
			current = Chunk{}
			size = 0
		}
	}

	for _, ref := range refs {
		if ref.Len() > budget {
			flush()
			chunks = append(chunks, Chunk{Refs: []pagedoc.TextRef{ref}})
			continue
		}
		if size+ref.Len() > budget {
			flush()
		}
		current.Refs = append(current.Refs, ref)
		size += ref.Len()
	}
	flush()

	return chunks
}
