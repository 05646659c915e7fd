package answer

import (
	"regexp"
	"strconv"

	"github.com/dataroomhq/dataroom/internal/model"
)

// tagPattern matches the wire-level citation tags:
// "[<filename> p.<page>]" and "[<filename> row <row>]", 1-indexed
// integers without leading zeros.
var tagPattern = regexp.MustCompile(`\[([^\[\]]+?) (?:p\.([1-9][0-9]*)|row ([1-9][0-9]*))\]`)

// ExtractCitations parses every citation tag in the answer text, in
// order of appearance. Duplicates are kept: repeated tags mean the
// answer leaned on the same fragment more than once.
func ExtractCitations(text string) []model.Citation {
	matches := tagPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	citations := make([]model.Citation, 0, len(matches))
	for _, m := range matches {
		c := model.Citation{Filename: m[1]}
		if m[2] != "" {
			c.Kind = model.LocatorPage
			c.Locator, _ = strconv.Atoi(m[2])
		} else {
			c.Kind = model.LocatorRow
			c.Locator, _ = strconv.Atoi(m[3])
		}
		citations = append(citations, c)
	}
	return citations
}

// fabricatedTags returns the citation tags in the answer that do not
// correspond to any candidate in this turn's assembled context. A
// non-empty result is a broken no-fabrication contract.
func fabricatedTags(answer string, candidates []model.Candidate) []string {
	allowed := make(map[model.Citation]bool, len(candidates))
	for _, c := range candidates {
		allowed[c.Chunk.Citation()] = true
	}

	var leaked []string
	for _, cited := range ExtractCitations(answer) {
		if !allowed[cited] {
			leaked = append(leaked, cited.Tag())
		}
	}
	return leaked
}
