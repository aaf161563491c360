package entities

import (
	"fmt"
	"strings"
)

const (
	unreleasedHeading = "## [Unreleased]"
	changedSubheading = "### Changed"
	h2Prefix          = "## ["
	bulletPrefix      = "- "
)

// ReleaseChangelog promotes the "## [Unreleased]" section of a Keep-a-Changelog formatted
// string to "## [version] - date" and opens a fresh, empty Unreleased section above it.
//
// Behaviour:
//   - If "## [Unreleased]" is missing, the content is returned unchanged.
//   - If the Unreleased section holds no bullet, a "### Changed" entry noting the version
//     bump is added so the released section is never empty.
func ReleaseChangelog(content, version, date string) string {
	lines := strings.Split(content, "\n")

	unreleasedIdx := findUnreleasedIndex(lines)
	if unreleasedIdx < 0 {
		return content
	}

	nextH2Idx := findNextH2Index(lines, unreleasedIdx)
	if !hasBullet(lines, unreleasedIdx, nextH2Idx) {
		content = InsertChangelogEntry(content, []string{
			fmt.Sprintf("- changed the version to `%s`", version),
		})
		lines = strings.Split(content, "\n")
	}

	heading := fmt.Sprintf("## [%s] - %s", version, date)
	lines[unreleasedIdx] = heading
	lines = insertLines(lines, unreleasedIdx, []string{unreleasedHeading, ""})
	return strings.Join(lines, "\n")
}

// ChangelogSection returns the body of the "## [version]" section, trimmed, or "" when the
// changelog has no such section.
func ChangelogSection(content, version string) string {
	lines := strings.Split(content, "\n")
	prefix := h2Prefix + version + "]"
	for i, line := range lines {
		if !strings.HasPrefix(strings.TrimSpace(line), prefix) {
			continue
		}
		end := findNextH2Index(lines, i)
		return strings.TrimSpace(strings.Join(lines[i+1:end], "\n"))
	}
	return ""
}

// InsertChangelogEntry inserts one or more bullet entries into the
// "## [Unreleased]" / "### Changed" section of a Keep-a-Changelog
// formatted string.
//
// Behaviour:
//   - If "## [Unreleased]" is missing, the content is returned unchanged.
//   - If "### Changed" already exists under Unreleased, the entries are
//     appended after the last bullet line in that subsection.
//   - If "### Changed" does not exist, a new subsection is created right
//     after the "## [Unreleased]" line.
func InsertChangelogEntry(content string, entries []string) string {
	if len(entries) == 0 {
		return content
	}

	lines := strings.Split(content, "\n")

	unreleasedIdx := findUnreleasedIndex(lines)
	if unreleasedIdx < 0 {
		return content // no Unreleased section
	}

	// Find the boundary of the Unreleased section (next ## [ heading or EOF).
	nextH2Idx := findNextH2Index(lines, unreleasedIdx)

	// Look for an existing ### Changed subsection inside the Unreleased region.
	changedIdx := findChangedIndex(lines, unreleasedIdx, nextH2Idx)

	if changedIdx >= 0 {
		insertAfter := findLastBullet(lines, changedIdx, nextH2Idx)
		lines = insertLines(lines, insertAfter+1, entries)
	} else {
		block := []string{"", changedSubheading, ""}
		block = append(block, entries...)
		lines = insertLines(lines, unreleasedIdx+1, block)
	}

	return strings.Join(lines, "\n")
}

// findUnreleasedIndex returns the line index of the "## [Unreleased]"
// heading, or -1 if not found.
func findUnreleasedIndex(lines []string) int {
	for i, line := range lines {
		if strings.TrimSpace(line) == unreleasedHeading {
			return i
		}
	}
	return -1
}

// findNextH2Index returns the line index of the next "## [" heading after
// startIdx, or len(lines) if there is none.
func findNextH2Index(lines []string, startIdx int) int {
	for i := startIdx + 1; i < len(lines); i++ {
		if strings.HasPrefix(strings.TrimSpace(lines[i]), h2Prefix) {
			return i
		}
	}
	return len(lines)
}

// findChangedIndex returns the line index of the "### Changed" subsection
// between startIdx and endIdx, or -1 if not found.
func findChangedIndex(lines []string, startIdx, endIdx int) int {
	for i := startIdx + 1; i < endIdx; i++ {
		if strings.TrimSpace(lines[i]) == changedSubheading {
			return i
		}
	}
	return -1
}

func hasBullet(lines []string, startIdx, endIdx int) bool {
	for i := startIdx + 1; i < endIdx; i++ {
		if strings.HasPrefix(strings.TrimSpace(lines[i]), bulletPrefix) {
			return true
		}
	}
	return false
}

// findLastBullet returns the index of the last bullet line in the
// ### Changed subsection, starting from changedIdx.
func findLastBullet(lines []string, changedIdx, endIdx int) int {
	insertAfter := changedIdx
	for i := changedIdx + 1; i < endIdx; i++ {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" {
			continue // skip blank lines between bullets
		}
		if strings.HasPrefix(trimmed, bulletPrefix) {
			insertAfter = i
			continue
		}
		break
	}
	return insertAfter
}

// insertLines inserts extra lines into slice at the given index.
func insertLines(lines []string, at int, extra []string) []string {
	result := make([]string, 0, len(lines)+len(extra))
	result = append(result, lines[:at]...)
	result = append(result, extra...)
	result = append(result, lines[at:]...)
	return result
}
