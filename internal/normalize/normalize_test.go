package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTestCaseFieldOrder(t *testing.T) {
	input := TestCaseInput{
		Title:          "Test user login",
		Description:    "Verify login works",
		Steps:          `["open page","enter credentials","submit"]`,
		ExpectedResult: "User is logged in",
	}

	nc := TestCase(input)
	assert.Equal(t,
		`Test user login Verify login works ["open page","enter credentials","submit"] User is logged in`,
		nc.CanonicalText)
	assert.NotEmpty(t, nc.ContentHash)
}

func TestTestCaseDeterminism(t *testing.T) {
	input := TestCaseInput{
		Title:       "Checkout flow",
		Description: "Cart to payment",
		Steps:       "add item; pay",
	}

	first := TestCase(input)
	for i := 0; i < 10; i++ {
		again := TestCase(input)
		assert.Equal(t, first.CanonicalText, again.CanonicalText)
		assert.Equal(t, first.ContentHash, again.ContentHash)
	}
}

func TestTestCaseCollapsesWhitespace(t *testing.T) {
	a := TestCase(TestCaseInput{Title: "Login   test", Description: "works"})
	b := TestCase(TestCaseInput{Title: "Login test", Description: "works"})
	assert.Equal(t, a.CanonicalText, b.CanonicalText)
	assert.Equal(t, a.ContentHash, b.ContentHash)
}

func TestTestCaseEmptyFields(t *testing.T) {
	nc := TestCase(TestCaseInput{Title: "Only a title"})
	assert.Equal(t, "Only a title", nc.CanonicalText)
}

func TestScriptStripsComments(t *testing.T) {
	tests := []struct {
		name string
		code string
		want string
	}{
		{
			name: "line comments",
			code: "x := 1 // set x\ny := 2",
			want: "x := 1 y := 2",
		},
		{
			name: "hash comments",
			code: "x = 1  # python style\ny = 2",
			want: "x = 1 y = 2",
		},
		{
			name: "block comments",
			code: "a/* inline */b",
			want: "a b",
		},
		{
			name: "multiline block comment",
			code: "before /* one\ntwo\nthree */ after",
			want: "before after",
		},
		{
			name: "comment marker inside double-quoted string",
			code: `url := "https://example.com" // trailing`,
			want: `url := "https://example.com"`,
		},
		{
			name: "hash inside string",
			code: `color = "#ff0000"`,
			want: `color = "#ff0000"`,
		},
		{
			name: "escaped quote does not end string",
			code: `s = "say \"hi\" // not a comment"`,
			want: `s = "say \"hi\" // not a comment"`,
		},
		{
			name: "unterminated block comment",
			code: "x = 1 /* dangling",
			want: "x = 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Script(tt.code).CanonicalText)
		})
	}
}

func TestScriptFormattingInvariance(t *testing.T) {
	// Two scripts differing only in comments and formatting must normalize
	// to equal canonical text and therefore equal hashes.
	a := `
func login(user string) error {
	// validate first
	if user == "" {
		return errInvalid /* empty user */
	}
	return nil
}
`
	b := `func login(user string) error { if user == "" { return errInvalid } return nil }`

	na := Script(a)
	nb := Script(b)
	assert.Equal(t, nb.CanonicalText, na.CanonicalText)
	assert.Equal(t, nb.ContentHash, na.ContentHash)
}

func TestScriptPreservesTokenOrder(t *testing.T) {
	nc := Script("b a c")
	assert.Equal(t, "b a c", nc.CanonicalText)
}

func TestScriptDeterminism(t *testing.T) {
	code := "select * from users -- not a comment here\n# but this is"
	first := Script(code)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Script(code))
	}
}
