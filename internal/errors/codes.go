package errors

import (
	"fmt"

	"github.com/alecthomas/participle/v2/lexer"
)

// Error codes for the verity toolchain.
//
// Error code ranges:
// E0001-E0099: Semantic analysis errors
// E0100-E0199: Lowering errors
// E0200-E0299: Reserved for future use
const (
	// E0001: Variable resolution errors
	ErrorUndeclaredVariable = "E0001"

	// E0002: Callee resolution errors
	ErrorUndefinedCallee = "E0002"

	// E0003: Type compatibility errors
	ErrorTypeMismatch = "E0003"

	// E0004: Annotation typing errors (requires/ensures/invariant/assert not bool)
	ErrorAnnotationNotBool = "E0004"

	// E0005: Ranking measure typing errors (decreases component not int)
	ErrorRankingNotInt = "E0005"

	// E0006: Duplicate declaration errors
	ErrorDuplicateDeclaration = "E0006"

	// E0007: Call shape errors (argument or result arity)
	ErrorCallArity = "E0007"

	// E0008: Statements following a return in the same branch
	ErrorUnreachableCode = "E0008"

	// E0009: Array operation applied to a non-array operand
	ErrorNotAnArray = "E0009"

	// E0010: Assignment to an undeclared or read-only target
	ErrorInvalidAssignment = "E0010"
)

// UndeclaredVariable builds the standard diagnostic for an unresolved name,
// with a "did you mean" suggestion when a declared name is close.
func UndeclaredVariable(name, closest string, pos lexer.Position) CompilerError {
	err := CompilerError{
		Level:    Error,
		Code:     ErrorUndeclaredVariable,
		Message:  fmt.Sprintf("undeclared variable '%s'", name),
		Position: pos,
		Length:   len(name),
	}
	if closest != "" {
		err.Suggestions = append(err.Suggestions, Suggestion{
			Message: fmt.Sprintf("a variable with a similar name exists: '%s'", closest),
		})
	}
	return err
}

// DuplicateDeclaration builds the standard diagnostic for a redeclared name.
func DuplicateDeclaration(name string, pos lexer.Position) CompilerError {
	return CompilerError{
		Level:    Error,
		Code:     ErrorDuplicateDeclaration,
		Message:  fmt.Sprintf("duplicate declaration of '%s'", name),
		Position: pos,
		Length:   len(name),
	}
}

// TypeMismatch builds the standard diagnostic for conflicting types.
func TypeMismatch(want, got string, pos lexer.Position) CompilerError {
	return CompilerError{
		Level:    Error,
		Code:     ErrorTypeMismatch,
		Message:  fmt.Sprintf("type mismatch: expected %s, got %s", want, got),
		Position: pos,
		Length:   1,
	}
}

// New builds a diagnostic with an explicit code.
func New(code, message string, pos lexer.Position, length int) CompilerError {
	if length <= 0 {
		length = 1
	}
	return CompilerError{
		Level:    Error,
		Code:     code,
		Message:  message,
		Position: pos,
		Length:   length,
	}
}
