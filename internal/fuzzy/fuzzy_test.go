package fuzzy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var channels = Lexicon{"ONL-C", "OFF-C", "CHI-C"}

func TestPick(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		token   string
		want    string
		matched bool
	}{
		{"exact", "ONL-C", "ONL-C", true},
		{"one substitution", "0NL-C", "ONL-C", true},
		{"two edits", "0NLC", "ONL-C", true},
		{"three edits too far", "0N1C0", "0N1C0", false},
		{"lowercase folded", "onl-c", "ONL-C", true},
		{"diacritics folded", "õnl-c", "ONL-C", true},
		{"unrelated token", "TOTAL", "TOTAL", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, matched := channels.Pick(tt.token)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.matched, matched)
		})
	}
}

func TestPickTieKeepsFirstEntry(t *testing.T) {
	t.Parallel()
	lex := Lexicon{"AAA", "AAB"}
	got, matched := lex.Pick("AA")
	assert.True(t, matched)
	assert.Equal(t, "AAA", got)
}

func TestDistance(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 0, Distance("ONL-C", "ONL-C"))
	assert.Equal(t, 1, Distance("ONL-C", "0NL-C"))
	assert.Equal(t, 3, Distance("kitten", "sitting"))
}
