package git

import (
	"fmt"
	"strings"
)

// ParseStats counts files, added lines and removed lines in a unified diff.
// File headers (---/+++) are not counted as changes.
func ParseStats(diffText string) DiffStats {
	var stats DiffStats
	inHeader := false

	start := 0
	for i := 0; i <= len(diffText); i++ {
		if i < len(diffText) && diffText[i] != '\n' {
			continue
		}
		line := diffText[start:i]
		start = i + 1

		switch {
		case strings.HasPrefix(line, "diff --git "):
			stats.FilesChanged++
			inHeader = true
		case strings.HasPrefix(line, "@@"):
			inHeader = false
		case inHeader:
			// index, mode, rename and ---/+++ lines
		case strings.HasPrefix(line, "+"):
			stats.Additions++
		case strings.HasPrefix(line, "-"):
			stats.Deletions++
		}
	}

	return stats
}

// String renders the stats the way git's --shortstat summary reads.
func (s DiffStats) String() string {
	files := "files"
	if s.FilesChanged == 1 {
		files = "file"
	}
	return fmt.Sprintf("%d %s changed, %d insertions(+), %d deletions(-)",
		s.FilesChanged, files, s.Additions, s.Deletions)
}
