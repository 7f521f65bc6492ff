package emacsclient

import "strings"

// QuoteArgument quotes an argument for the Emacs server.
//
// Inserts a '&' before each '&', each space, each newline and an initial
// '-'. Spaces become "&_" and newlines "&n", so the result never contains
// a raw space or newline.
//
// See quote_argument in emacsclient.c.
func QuoteArgument(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case ' ':
			b.WriteString("&_")
		case '\n':
			b.WriteString("&n")
		case '&':
			b.WriteString("&&")
		case '-':
			if i == 0 {
				b.WriteString("&-")
			} else {
				b.WriteByte(c)
			}
		default:
			b.WriteByte(c)
		}
	}

	return b.String()
}

// UnquoteArgument reverses QuoteArgument.
//
// "&_" decodes to a space, "&n" to a newline and '&' followed by any other
// byte to that byte. A '&' at the very end of s has nothing to escape and
// yields a *ProtocolError of kind ErrKindTruncatedEscape.
func UnquoteArgument(s string) (string, error) {
	if strings.IndexByte(s, '&') < 0 {
		return s, nil
	}

	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '&' {
			b.WriteByte(c)
			continue
		}

		i++
		if i == len(s) {
			return "", &ProtocolError{Kind: ErrKindTruncatedEscape, Input: s}
		}

		switch next := s[i]; next {
		case '_':
			b.WriteByte(' ')
		case 'n':
			b.WriteByte('\n')
		default:
			b.WriteByte(next)
		}
	}

	return b.String(), nil
}
