// Package match decides whether an incoming record collides with an existing
// customer: exact phone hits first, a name/email similarity blend otherwise.
package match

import (
	"strings"

	"github.com/clientdesk/backend/domain"
)

const (
	nameWeight  = 80
	emailWeight = 20
)

// Score computes a 0-100 confidence that two records describe the same
// customer. Equal normalized phones short-circuit to 100; that is the
// dominant, trusted path. Everything else is an edit-distance blend over the
// names plus a bonus for an exact email match.
func Score(existing *domain.Customer, incoming domain.IncomingRecord) int {
	if existing == nil {
		return 0
	}
	if existing.Phone != "" && existing.Phone == incoming.Phone {
		return 100
	}

	score := int(float64(nameWeight) * nameSimilarity(existing.Name, incoming.Name))
	if existing.Email != "" && incoming.Email != "" && strings.EqualFold(existing.Email, incoming.Email) {
		score += emailWeight
	}

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func nameSimilarity(a, b string) float64 {
	ra := []rune(strings.ToLower(strings.TrimSpace(a)))
	rb := []rune(strings.ToLower(strings.TrimSpace(b)))
	if len(ra) == 0 && len(rb) == 0 {
		return 0
	}
	longest := len(ra)
	if len(rb) > longest {
		longest = len(rb)
	}
	return 1 - float64(editDistance(ra, rb))/float64(longest)
}

// editDistance is the standard dynamic-programming Levenshtein distance with
// unit costs for insert, delete and substitute. It works on runes so an
// accented character counts as one edit, not one per byte.
func editDistance(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(
				prev[j]+1,      // delete
				curr[j-1]+1,    // insert
				prev[j-1]+cost, // substitute
			)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
