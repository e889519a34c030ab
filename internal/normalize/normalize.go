// Package normalize canonicalizes heterogeneous content into a single
// comparable string so that formatting, comments, and other lexical noise
// do not affect duplicate judgment.
//
// All functions are pure: the same input always yields the same canonical
// text and content hash, with no I/O and no side effects.
package normalize

import (
	"strings"

	"github.com/testforge/dupcheck/internal/fingerprint"
	"github.com/testforge/dupcheck/internal/types"
)

// TestCaseInput carries the fields of a test case in their canonical
// serialized form. Steps must be the pre-serialized canonical string
// (callers serialize structured steps before building the input); accepting
// arbitrary shapes here caused inconsistent normalization in the past.
type TestCaseInput struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	Steps          string `json:"steps"`
	ExpectedResult string `json:"expected_result"`
}

// TestCase canonicalizes a test case by concatenating its fields in a
// fixed order (title, description, steps, expected result) joined by single
// spaces. The order and joiner are part of the contract: two logically
// identical test cases supplied with differently-shaped fields are not
// guaranteed to normalize identically.
func TestCase(input TestCaseInput) types.NormalizedContent {
	joined := strings.Join([]string{
		input.Title,
		input.Description,
		input.Steps,
		input.ExpectedResult,
	}, " ")
	canonical := collapseWhitespace(joined)
	return types.NormalizedContent{
		CanonicalText: canonical,
		ContentHash:   fingerprint.Fingerprint(canonical),
	}
}

// Text canonicalizes already-serialized plain text, such as a stored
// test-case projection whose fields were joined at persistence time.
// Collapsing whitespace here is idempotent with TestCase: a projection of
// the same fields normalizes to the same canonical text and hash.
func Text(s string) types.NormalizedContent {
	canonical := collapseWhitespace(s)
	return types.NormalizedContent{
		CanonicalText: canonical,
		ContentHash:   fingerprint.Fingerprint(canonical),
	}
}

// Script canonicalizes source code by stripping comments and collapsing
// whitespace. Token order and identifiers are never altered: only lexical
// noise is removed, so two scripts differing solely in comments or
// formatting normalize to equal canonical text.
func Script(code string) types.NormalizedContent {
	canonical := collapseWhitespace(stripComments(code))
	return types.NormalizedContent{
		CanonicalText: canonical,
		ContentHash:   fingerprint.Fingerprint(canonical),
	}
}

// stripComments removes // and # single-line comments and /* */ block
// comments. Comment markers inside string literals ('...', "...", `...`)
// are preserved; this is a lexical pass, not a language parser, so it makes
// no attempt to understand escapes beyond backslash-in-quote.
func stripComments(code string) string {
	var b strings.Builder
	b.Grow(len(code))

	const (
		stateCode = iota
		stateLineComment
		stateBlockComment
		stateString
	)

	state := stateCode
	var quote byte

	for i := 0; i < len(code); i++ {
		c := code[i]

		switch state {
		case stateCode:
			switch {
			case c == '/' && i+1 < len(code) && code[i+1] == '/':
				state = stateLineComment
				i++ // skip second slash
			case c == '/' && i+1 < len(code) && code[i+1] == '*':
				state = stateBlockComment
				i++
				// A block comment separates tokens the way whitespace does.
				b.WriteByte(' ')
			case c == '#':
				state = stateLineComment
			case c == '"' || c == '\'' || c == '`':
				state = stateString
				quote = c
				b.WriteByte(c)
			default:
				b.WriteByte(c)
			}

		case stateLineComment:
			if c == '\n' {
				state = stateCode
				b.WriteByte('\n')
			}

		case stateBlockComment:
			if c == '*' && i+1 < len(code) && code[i+1] == '/' {
				state = stateCode
				i++
			}

		case stateString:
			b.WriteByte(c)
			if c == '\\' && quote != '`' && i+1 < len(code) {
				// Copy the escaped byte so \" does not close the literal.
				i++
				b.WriteByte(code[i])
			} else if c == quote {
				state = stateCode
			}
		}
	}

	return b.String()
}

// collapseWhitespace reduces every run of whitespace to a single space and
// trims leading and trailing whitespace.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
