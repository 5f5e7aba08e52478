package dating

import (
	"hash/fnv"
	"strings"
	"unicode"
)

// LoveScore computes a playful compatibility score between two names.
//
// The score is deterministic and symmetric: case, whitespace and the order of
// the names do not change it.
func LoveScore(name1, name2 string) LoveResult {
	a, b := normalizeName(name1), normalizeName(name2)
	if b < a {
		a, b = b, a
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(a))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(b))

	score := int(h.Sum32() % 101)
	return LoveResult{LoveScore: score, Message: loveMessage(score)}
}

func normalizeName(name string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, name)
}

func loveMessage(score int) string {
	switch {
	case score >= 90:
		return "A match made in heaven! Don't let this one get away."
	case score >= 75:
		return "Sparks are flying! You two have real chemistry."
	case score >= 50:
		return "There's definitely something here. Give it a chance!"
	case score >= 25:
		return "It could work with a little effort from both sides."
	default:
		return "The stars aren't aligned, but love is full of surprises."
	}
}
