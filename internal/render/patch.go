// Package render projects review and task records into human-readable
// reports. Rendering is pure: it never touches the store and never
// reorders findings.
package render

import (
	"fmt"
	"strings"
)

// NormalizePatch strips leading and trailing Markdown code-fence
// markers from a patch suggestion. Reviewing agents sometimes wrap
// diffs in ```diff fences; the stored text is kept verbatim and the
// fence is tolerated only at render time.
func NormalizePatch(patch string) string {
	trimmed := strings.TrimRight(patch, "\n")
	lines := strings.Split(trimmed, "\n")
	if len(lines) > 0 && strings.HasPrefix(strings.TrimSpace(lines[0]), "```") {
		lines = lines[1:]
	}
	if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}

// location formats an optional file/line range as "file:start-end",
// degrading gracefully when pieces are absent.
func location(file string, startLine, endLine int) string {
	switch {
	case file == "":
		return ""
	case startLine <= 0:
		return file
	case endLine > 0 && endLine != startLine:
		return fmt.Sprintf("%s:%d-%d", file, startLine, endLine)
	default:
		return fmt.Sprintf("%s:%d", file, startLine)
	}
}
