package statement

import "github.com/shibukawa/bytelayout/binarydata"

// Class is the result of keyword resolution.
type Class int

const (
	Unknown Class = iota
	BuiltinType
	Directive
	CustomType
)

func (c Class) String() string {
	switch c {
	case BuiltinType:
		return "builtin type"
	case Directive:
		return "directive"
	case CustomType:
		return "custom type"
	default:
		return "unknown"
	}
}

// Keywords with structural meaning.
const (
	KeywordStruct  = "struct"
	KeywordAlign   = "align"
	KeywordTypedef = "typedef"
	KeywordEcho    = "echo"
	KeywordAssert  = "assert"
)

// Parameter names.
const (
	ParamName      = "name"
	ParamCount     = "count"
	ParamComment   = "comment"
	ParamKind      = "kind"
	ParamBoundary  = "boundary"
	ParamMessage   = "message"
	ParamCondition = "condition"
)

var primitives = map[string]binarydata.Kind{
	"bool":    binarydata.KindBool8,
	"bool8":   binarydata.KindBool8,
	"bool16":  binarydata.KindBool16,
	"bool32":  binarydata.KindBool32,
	"bool64":  binarydata.KindBool64,
	"byte":    binarydata.KindUInt8,
	"uint8":   binarydata.KindUInt8,
	"sbyte":   binarydata.KindInt8,
	"int8":    binarydata.KindInt8,
	"char":    binarydata.KindChar8,
	"char8":   binarydata.KindChar8,
	"char16":  binarydata.KindChar16,
	"short":   binarydata.KindInt16,
	"int16":   binarydata.KindInt16,
	"ushort":  binarydata.KindUInt16,
	"uint16":  binarydata.KindUInt16,
	"int":     binarydata.KindInt32,
	"int32":   binarydata.KindInt32,
	"uint":    binarydata.KindUInt32,
	"uint32":  binarydata.KindUInt32,
	"long":    binarydata.KindInt64,
	"int64":   binarydata.KindInt64,
	"ulong":   binarydata.KindUInt64,
	"uint64":  binarydata.KindUInt64,
	"float":   binarydata.KindFloat32,
	"single":  binarydata.KindFloat32,
	"float32": binarydata.KindFloat32,
	"double":  binarydata.KindFloat64,
	"float64": binarydata.KindFloat64,
	"guid":    binarydata.KindGUID,
	"uuid":    binarydata.KindGUID,
}

var directives = map[string][]string{
	KeywordAlign:   {ParamCount, ParamKind, ParamBoundary, ParamComment},
	KeywordTypedef: {ParamName, ParamKind, ParamComment},
	KeywordEcho:    {ParamMessage, ParamComment},
	KeywordAssert:  {ParamCondition, ParamMessage, ParamComment},
}

var typeParams = []string{ParamName, ParamCount, ParamComment}

var required = map[string][]string{
	KeywordTypedef: {ParamName, ParamKind},
	KeywordEcho:    {ParamMessage},
	KeywordAssert:  {ParamCondition},
	KeywordAlign:   nil,
}

// CustomTypes is the view of the custom type registry keyword resolution needs.
type CustomTypes interface {
	HasType(name string) bool
}

// Lookup classifies keyword. custom may be nil.
func Lookup(keyword string, custom CustomTypes) Class {
	if IsReserved(keyword) {
		if _, ok := directives[keyword]; ok {
			return Directive
		}

		return BuiltinType
	}

	if custom != nil && custom.HasType(keyword) {
		return CustomType
	}

	return Unknown
}

// IsReserved reports whether keyword is a builtin type or a directive; custom
// types may not use these names.
func IsReserved(keyword string) bool {
	if _, ok := primitives[keyword]; ok {
		return true
	}

	if _, ok := directives[keyword]; ok {
		return true
	}

	return keyword == KeywordStruct
}

// PrimitiveKind returns the encoding of a builtin primitive keyword.
func PrimitiveKind(keyword string) (binarydata.Kind, bool) {
	kind, ok := primitives[keyword]
	return kind, ok
}

// AcceptedParameters lists the parameter names valid for keyword. Types,
// builtin or custom, share one list.
func AcceptedParameters(keyword string) []string {
	if params, ok := directives[keyword]; ok {
		return params
	}

	return typeParams
}

// RequiredParameters lists the parameters keyword cannot omit.
func RequiredParameters(keyword string) []string {
	if params, ok := required[keyword]; ok {
		return params
	}

	return []string{ParamName}
}
