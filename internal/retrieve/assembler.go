package retrieve

import (
	"strings"

	"github.com/dataroomhq/dataroom/internal/model"
)

// Assemble formats merged candidates into a single prompt context
// block. Each fragment is preceded by its literal citation tag so the
// composition model can carry the tag into the answer verbatim.
// Candidate order is preserved.
//
// No truncation happens here: input limits are the composition
// service's constraint, and hiding an overflow by silently dropping
// fragments would break citation accounting.
func Assemble(candidates []model.Candidate) string {
	if len(candidates) == 0 {
		return ""
	}

	blocks := make([]string, 0, len(candidates))
	for _, c := range candidates {
		blocks = append(blocks, c.Chunk.Citation().Tag()+"\n"+c.Chunk.Text)
	}

	return strings.Join(blocks, "\n\n---\n\n")
}
