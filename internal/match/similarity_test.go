package match

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clientdesk/backend/domain"
)

func TestScorePhoneEquality(t *testing.T) {
	existing := &domain.Customer{Phone: "5511987654321", Name: "Completely Different"}
	incoming := domain.IncomingRecord{Phone: "5511987654321", Name: "Nobody"}

	assert.Equal(t, 100, Score(existing, incoming))
}

func TestScoreIdenticalNameAndEmail(t *testing.T) {
	existing := &domain.Customer{Phone: "5511987654321", Name: "Maria Silva", Email: "maria@example.com"}
	incoming := domain.IncomingRecord{Phone: "5511912345678", Name: "Maria Silva", Email: "maria@example.com"}

	assert.Equal(t, 100, Score(existing, incoming))
}

func TestScoreSimilarNameNoEmail(t *testing.T) {
	existing := &domain.Customer{Phone: "5511987654321", Name: "Maria Silva"}
	incoming := domain.IncomingRecord{Phone: "5511912345678", Name: "Maria Sylva"}

	score := Score(existing, incoming)
	assert.Greater(t, score, 70)
	assert.Less(t, score, 100)
}

func TestScoreUnrelatedRecords(t *testing.T) {
	existing := &domain.Customer{Phone: "5511987654321", Name: "Maria Silva"}
	incoming := domain.IncomingRecord{Phone: "5511912345678", Name: "Zeca"}

	assert.Less(t, Score(existing, incoming), 40)
}

func TestScoreEmptyNames(t *testing.T) {
	existing := &domain.Customer{Phone: "5511987654321"}
	incoming := domain.IncomingRecord{Phone: "5511912345678"}

	assert.Equal(t, 0, Score(existing, incoming))
}

func TestScoreNilExisting(t *testing.T) {
	assert.Equal(t, 0, Score(nil, domain.IncomingRecord{Name: "Maria"}))
}

func TestEditDistance(t *testing.T) {
	dist := func(a, b string) int {
		return editDistance([]rune(a), []rune(b))
	}
	assert.Equal(t, 0, dist("maria", "maria"))
	assert.Equal(t, 1, dist("maria", "marla"))
	assert.Equal(t, 1, dist("maria", "marias"))
	assert.Equal(t, 5, dist("", "maria"))
	assert.Equal(t, 3, dist("kitten", "sitting"))
	// Accented characters count as single edits.
	assert.Equal(t, 1, dist("joão", "joao"))
	assert.Equal(t, 0, dist("joão", "joão"))
}

func TestScoreAccentedNames(t *testing.T) {
	existing := &domain.Customer{Phone: "5511987654321", Name: "João Souza"}
	incoming := domain.IncomingRecord{Phone: "5511912345678", Name: "Joao Souza"}

	// One rune substitution over ten runes: 80 * 0.9.
	assert.Equal(t, 72, Score(existing, incoming))
}
