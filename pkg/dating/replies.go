package dating

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// numberedMarker matches "1." or "1)" list markers with trailing space.
	numberedMarker = regexp.MustCompile(`\d+[.)][ \t]*`)

	bareNumber     = regexp.MustCompile(`^\d+[.)]?$`)
	optionsHeading = regexp.MustCompile(`(?i)^options:?$`)
	leadingNumber  = regexp.MustCompile(`^\d+[.)]\s*`)
)

// ParseReplies splits accumulated model output into exactly ReplyCount
// reply options.
//
// Numbered items ("1. text" or "1) text") are preferred. Without any, each
// non-empty line is an option, skipping bare numbers and an "options"
// heading. Failing that the whole text is a single option. The result is
// truncated or padded with placeholders to ReplyCount entries.
func ParseReplies(text string) []string {
	replies := numberedReplies(text)

	if len(replies) == 0 {
		replies = lineReplies(text)
	}

	if len(replies) == 0 {
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			replies = []string{trimmed}
		}
	}

	if len(replies) > ReplyCount {
		replies = replies[:ReplyCount]
	}
	for len(replies) < ReplyCount {
		replies = append(replies, Placeholder(len(replies)+1))
	}
	return replies
}

// Placeholder is the filler used for reply option n (1-based) when the
// model produced fewer than ReplyCount options.
func Placeholder(n int) string {
	return fmt.Sprintf("Reply option %d (AI couldn't generate this option)", n)
}

// numberedReplies extracts the items of a numbered list. An item runs from
// its marker to the end of that line or the next marker on the same line.
func numberedReplies(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		locs := listMarkers(line)
		for i, loc := range locs {
			end := len(line)
			if i+1 < len(locs) {
				end = locs[i+1][0]
			}
			item := strings.TrimSpace(strings.Trim(strings.TrimSpace(line[loc[1]:end]), "*"))
			if item != "" {
				out = append(out, item)
			}
		}
	}
	return out
}

// listMarkers returns the positions of list markers in line. The first one
// must lead the line (markdown bullets and emphasis aside); later ones must
// continue its numbering, so "I'm 25. Hi" or "2.5 km" are not split.
func listMarkers(line string) [][]int {
	var (
		valid [][]int
		next  int
	)
	for _, loc := range numberedMarker.FindAllStringIndex(line, -1) {
		if loc[1] == len(line) || strings.ContainsRune("0123456789.)", rune(line[loc[1]])) {
			continue
		}

		n, err := strconv.Atoi(strings.TrimRight(line[loc[0]:loc[1]], ".) \t"))
		if err != nil {
			continue
		}

		if len(valid) == 0 {
			if strings.TrimLeft(line[:loc[0]], " \t*-#>") != "" {
				continue
			}
		} else if n != next {
			continue
		}

		valid = append(valid, loc)
		next = n + 1
	}
	return valid
}

func lineReplies(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || bareNumber.MatchString(line) || optionsHeading.MatchString(line) {
			continue
		}
		if clean := strings.TrimSpace(leadingNumber.ReplaceAllString(line, "")); clean != "" {
			out = append(out, clean)
		}
	}
	return out
}
