package render

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Line prefixes of a unified line diff.
const (
	prefixEqual  = "  "
	prefixInsert = "+ "
	prefixDelete = "- "
)

// DiffLines compares two texts line by line and returns every line prefixed
// with "+ ", "- " or two spaces, plus whether anything changed.
func DiffLines(before, after string) (string, bool) {
	dmp := diffmatchpatch.New()
	src, dst, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(src, dst, false), lines)

	var out strings.Builder

	changed := false

	for _, diff := range diffs {
		prefix := prefixEqual

		switch diff.Type {
		case diffmatchpatch.DiffInsert:
			prefix = prefixInsert
			changed = true
		case diffmatchpatch.DiffDelete:
			prefix = prefixDelete
			changed = true
		case diffmatchpatch.DiffEqual:
		}

		for line := range strings.SplitSeq(strings.TrimSuffix(diff.Text, "\n"), "\n") {
			out.WriteString(prefix)
			out.WriteString(line)
			out.WriteByte('\n')
		}
	}

	return out.String(), changed
}
