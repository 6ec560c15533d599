package grammar

import (
	"github.com/alecthomas/participle/v2/lexer"
)

var VerityLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		// Comments
		{"Comment", `//[^\n]*`, nil},

		// Keywords and Identifiers (order matters)
		{"Ident", `[a-zA-Z_][a-zA-Z0-9_]*`, nil},

		// Integer literals
		{"Integer", `[0-9]+`, nil},

		// Operators (implication before equality, equality before assignment)
		{"Operator", `(==>|\|\||&&|==|!=|<=|>=|[-+*/%<>=!])`, nil},

		// Punctuation
		{"Punctuation", `[{}()\[\],:;]`, nil},

		// Whitespace
		{"Whitespace", `[ \t\r\n]+`, nil},
	},
})
