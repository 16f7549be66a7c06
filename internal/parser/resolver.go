package parser

import "strings"

// Reference strings have the form "<producerId>.<outputName>": the producer's
// numeric step id, a dot, and the socket name ("83.TiltSeries_2"). A bare
// trailing dot ("83.") depends on the whole step with no specific output.
//
// Because references live inside otherwise-literal string parameters, a
// value only counts as a candidate when its prefix is a plausible id (all
// digits) and its suffix looks like a socket name. Whether the id actually
// exists is the graph builder's concern: a plausible id that names no step
// is a dangling reference, not a literal.

// SplitReference classifies a raw string parameter value. ok is false for
// literals; for candidates it returns the producer id and output name
// (empty for whole-step references).
func SplitReference(s string) (producerID, outputName string, ok bool) {
	i := strings.IndexByte(s, '.')
	if i <= 0 {
		return "", "", false
	}
	producerID, outputName = s[:i], s[i+1:]
	if !isDigits(producerID) {
		return "", "", false
	}
	if outputName != "" && !isSocketName(outputName) {
		return "", "", false
	}
	return producerID, outputName, true
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

// isSocketName accepts identifier-shaped socket names with optional dotted
// item suffixes ("TiltSeries", "TiltSeries_2", "outputTiltSeries.1").
// A leading digit disqualifies the whole value: "3.5" is a number that
// happens to contain a dot, not a reference.
func isSocketName(s string) bool {
	first := s[0]
	if !(first == '_' || first >= 'a' && first <= 'z' || first >= 'A' && first <= 'Z') {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_' || c == '.':
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		default:
			return false
		}
	}
	return true
}
