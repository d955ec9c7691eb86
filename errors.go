package bytelayout

import "errors"

// Error categories. Every specific error below belongs to exactly one of them,
// see KindOf.
var (
	// ErrSyntax classifies malformed script structure.
	ErrSyntax = errors.New("syntax error")
	// ErrLayout classifies semantic layout violations.
	ErrLayout = errors.New("layout error")
	// ErrEval classifies expression evaluation failures.
	ErrEval = errors.New("evaluation error")
	// ErrRange classifies out-of-bounds buffer access.
	ErrRange = errors.New("range error")
)

// Common errors used throughout the bytelayout packages
var (
	// ErrUnexpectedText indicates non-whitespace text inside the root or a statement.
	// Syntax errors
	ErrUnexpectedText = errors.New("unexpected text")
	// ErrUnknownIdentifier indicates a keyword that is neither a type nor a directive.
	ErrUnknownIdentifier = errors.New("unknown identifier")
	// ErrMissingParameter indicates a required statement parameter was not provided.
	ErrMissingParameter = errors.New("missing required parameter")
	// ErrUnknownParameter indicates a parameter the statement does not accept.
	ErrUnknownParameter = errors.New("unknown parameter")
	// ErrUnexpectedChildren indicates nested statements under a statement that takes none.
	ErrUnexpectedChildren = errors.New("statement does not accept nested statements")
	// ErrInvalidRootElement indicates the script root is not a layout element.
	ErrInvalidRootElement = errors.New("invalid root element")
	// ErrInvalidScript indicates the script document itself could not be read.
	ErrInvalidScript = errors.New("invalid layout script")

	// ErrEmptyLayout indicates the layout root has no statements.
	// Layout errors
	ErrEmptyLayout = errors.New("layout is empty")
	// ErrDuplicateTypeDefinition indicates a typedef reuses a visible type name.
	ErrDuplicateTypeDefinition = errors.New("duplicate type definition")
	// ErrDuplicateSymbol indicates a field name already declared in the same scope.
	ErrDuplicateSymbol = errors.New("duplicate symbol")
	// ErrInvalidSymbolName indicates a field name that is not a valid identifier.
	ErrInvalidSymbolName = errors.New("invalid symbol name")
	// ErrMalformattedVersion indicates a version that is not major.minor.patch.
	ErrMalformattedVersion = errors.New("malformatted version")
	// ErrUnsupportedVersion indicates a script written for a newer major version.
	ErrUnsupportedVersion = errors.New("unsupported version")
	// ErrTypeMismatch indicates a value was accessed through an incompatible type.
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrInvalidCount indicates a count or alignment that is not a non-negative integer.
	ErrInvalidCount = errors.New("invalid count")
	// ErrNestingTooDeep indicates struct nesting exceeded the configured depth.
	ErrNestingTooDeep = errors.New("nesting too deep")
	// ErrAssertionFailed indicates an assert directive evaluated to false.
	ErrAssertionFailed = errors.New("assertion failed")

	// ErrUnknownVariable indicates an expression referenced an undefined symbol.
	// Evaluation errors
	ErrUnknownVariable = errors.New("unknown variable")
	// ErrInvalidExpression indicates an expression could not be parsed.
	ErrInvalidExpression = errors.New("invalid expression")
	// ErrDivisionByZero indicates an expression divided by zero.
	ErrDivisionByZero = errors.New("division by zero")

	// ErrOutOfRange indicates an offset or offset+size outside the buffer.
	// Range errors
	ErrOutOfRange = errors.New("offset out of range")

	// ErrConfigFileNotFound indicates a configuration file could not be located.
	ErrConfigFileNotFound = errors.New("configuration file not found")
)

// Kind is the programmatic classification of a fault.
type Kind int

const (
	KindUnknown Kind = iota
	KindSyntax
	KindLayout
	KindEval
	KindRange
)

func (k Kind) String() string {
	switch k {
	case KindSyntax:
		return "SyntaxError"
	case KindLayout:
		return "LayoutError"
	case KindEval:
		return "EvalError"
	case KindRange:
		return "RangeError"
	default:
		return "Error"
	}
}

var kindMembers = []struct {
	kind     Kind
	category error
	members  []error
}{
	{KindSyntax, ErrSyntax, []error{
		ErrUnexpectedText, ErrUnknownIdentifier, ErrMissingParameter, ErrUnknownParameter,
		ErrUnexpectedChildren, ErrInvalidRootElement, ErrInvalidScript,
	}},
	{KindLayout, ErrLayout, []error{
		ErrEmptyLayout, ErrDuplicateTypeDefinition, ErrDuplicateSymbol, ErrInvalidSymbolName,
		ErrMalformattedVersion, ErrUnsupportedVersion, ErrTypeMismatch, ErrInvalidCount,
		ErrNestingTooDeep, ErrAssertionFailed,
	}},
	{KindEval, ErrEval, []error{ErrUnknownVariable, ErrInvalidExpression, ErrDivisionByZero}},
	{KindRange, ErrRange, []error{ErrOutOfRange}},
}

// KindOf classifies err by the first sentinel found in its chain.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	var fault *Fault
	if errors.As(err, &fault) && fault.Kind != KindUnknown {
		return fault.Kind
	}

	for _, km := range kindMembers {
		if errors.Is(err, km.category) {
			return km.kind
		}

		for _, member := range km.members {
			if errors.Is(err, member) {
				return km.kind
			}
		}
	}

	return KindUnknown
}
