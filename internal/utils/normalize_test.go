package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"What is the leave policy?", "what is the leave policy"},
		{"  HELLO, World!!  ", "hello world"},
		{"IT-Support (24/7)", "itsupport 247"},
		{"café", "caf"},
		{"\tline\nbreak\t", "line\nbreak"},
		{"???", ""},
		{"", ""},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, Normalize(tc.in))
		})
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := []string{
		"What is the leave policy?",
		"Who should I contact for IT issues??",
		"  Ünïcödé   ÄND   punctuation...  ",
		"Tabs\tand\nnewlines",
		"İstanbul office hours",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestWords(t *testing.T) {
	assert.Equal(t, []string{"what", "is", "this"}, Words("what  is\tthis"))
	assert.Empty(t, Words(""))
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Leave Policy", TitleCase("leave_policy"))
	assert.Equal(t, "It Support", TitleCase("it_support"))
}
