package emacsclient

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteArgument(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain", "nil", "nil"},
		{"message", `(message "test")`, `(message&_"test")`},
		{"leading dash", "-foo", "&-foo"},
		{"inner dash", "a-b", "a-b"},
		{"only first dash escaped", "--x", "&--x"},
		{"ampersand and space", "a&b c", "a&&b&_c"},
		{"newline", "(a + 1)\n", "(a&_+&_1)&n"},
		{"leading space", " x", "&_x"},
		{"leading newline", "\nx", "&nx"},
		{"leading ampersand", "&x", "&&x"},
		{"unicode", "(insert \"λ\")", "(insert&_\"λ\")"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, QuoteArgument(tt.input))
		})
	}
}

func TestQuoteArgumentHasNoRawSeparators(t *testing.T) {
	inputs := []string{" ", "\n", " a b \n c ", "& &\n&", "- -"}
	for _, in := range inputs {
		got := QuoteArgument(in)
		assert.False(t, strings.ContainsAny(got, " \n"), "QuoteArgument(%q) = %q", in, got)
	}
}

func TestUnquoteArgument(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain", "nil", "nil"},
		{"expression", "(a&_+&_1)&n", "(a + 1)\n"},
		{"ampersand", "a&&b", "a&b"},
		{"leading dash", "&-foo", "-foo"},
		{"unknown escape", "&x", "x"},
		{"error message", "void-variable&_foo", "void-variable foo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := UnquoteArgument(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUnquoteArgumentTruncatedEscape(t *testing.T) {
	for _, in := range []string{"&", "abc&", "a&&&"} {
		_, err := UnquoteArgument(in)
		require.Error(t, err, "input %q", in)
		assert.True(t, IsProtocolViolation(err))

		var protoErr *ProtocolError
		require.ErrorAs(t, err, &protoErr)
		assert.Equal(t, ErrKindTruncatedEscape, protoErr.Kind)
		assert.Equal(t, in, protoErr.Input)
	}
}

func TestQuoteRoundTrip(t *testing.T) {
	inputs := []string{
		"",
		"-",
		"-foo",
		"&",
		"&&",
		"&_",
		"&n",
		" ",
		"\n",
		"a b\nc&d",
		"  leading and trailing  ",
		"-current-frame -eval",
		"(my/emacs-i3-command \"focus left\")",
		"multi\nline\n\nstring\n",
		"\r\n",
		"λ & ü",
	}

	for _, in := range inputs {
		got, err := UnquoteArgument(QuoteArgument(in))
		require.NoError(t, err, "input %q", in)
		assert.Equal(t, in, got)
	}
}
