package emacsclient

import (
	"strconv"
	"strings"
)

// ParseLine classifies a single response line.
//
// A line carries a directive only when it starts with the directive name
// followed by a space, so "-print-nonl" is not a "-print" line.
func ParseLine(line string) Line {
	line = strings.TrimSuffix(line, "\r")

	switch {
	case strings.HasPrefix(line, PrintPrefix):
		return Line{Directive: DirectivePrint, Value: line[len(PrintPrefix):]}
	case strings.HasPrefix(line, ErrorPrefix):
		return Line{Directive: DirectiveError, Value: line[len(ErrorPrefix):]}
	case strings.HasPrefix(line, EmacsPIDPrefix):
		return Line{Directive: DirectiveEmacsPID, Value: line[len(EmacsPIDPrefix):]}
	default:
		return Line{Directive: DirectiveNone, Value: line}
	}
}

// ParseResponse decodes a complete response.
//
// Lines are scanned in order and the first -print or -error line decides
// the outcome; its value is unquoted. Any other line is skipped, except
// that a -emacs-pid line seen before the outcome is recorded in PID.
//
// If no outcome line is present, ParseResponse returns a *ProtocolError of
// kind ErrKindNoDirective.
func ParseResponse(raw string) (Response, error) {
	var resp Response

	for _, text := range strings.Split(raw, "\n") {
		line := ParseLine(text)

		switch line.Directive {
		case DirectiveEmacsPID:
			if pid, err := strconv.Atoi(strings.TrimSpace(line.Value)); err == nil {
				resp.PID = pid
			}

		case DirectivePrint, DirectiveError:
			value, err := UnquoteArgument(line.Value)
			if err != nil {
				return Response{}, err
			}
			resp.Directive = line.Directive
			resp.Value = value
			return resp, nil
		}
	}

	return Response{}, &ProtocolError{Kind: ErrKindNoDirective, Response: raw}
}
