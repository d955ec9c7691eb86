package evaluator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shibukawa/bytelayout/binarydata"
	"github.com/shibukawa/bytelayout/symboltable"
)

// Interpolate replaces every ${path} and $Name(path) in template with its
// textual form. "$$" produces a literal '$'; a '$' that starts neither form,
// such as "$USD", is kept as is.
func Interpolate(template string, ctx Context) (string, error) {
	var b strings.Builder

	err := scanTemplate(template, func(r rune) {
		b.WriteRune(r)
	}, func(n Node) error {
		text, err := ctx.text(n)
		if err != nil {
			return err
		}

		b.WriteString(text)

		return nil
	})
	if err != nil {
		return "", err
	}

	return b.String(), nil
}

// CheckTemplate reports syntax errors in the references of template without
// resolving them.
func CheckTemplate(template string) error {
	return scanTemplate(template, func(rune) {}, func(Node) error { return nil })
}

func scanTemplate(template string, literal func(rune), reference func(Node) error) error {
	p := newParser(template)

	for !p.eof() {
		r := p.peek()
		if r != '$' {
			literal(r)
			p.pos++

			continue
		}

		next := p.peekAt(1)

		switch {
		case next == '$':
			literal('$')
			p.pos += 2
		case next == '{' || p.builtinAhead():
			node, err := p.parseReference()
			if err != nil {
				return err
			}

			if err := reference(node); err != nil {
				return err
			}
		default:
			literal('$')
			p.pos++
		}
	}

	return nil
}

func (ctx Context) text(n Node) (string, error) {
	switch n := n.(type) {
	case *VariableRef:
		id, err := ctx.resolve(n.Path)
		if err != nil {
			return "", err
		}

		return Text(ctx, id)
	default:
		v, err := ctx.eval(n)
		if err != nil {
			return "", err
		}

		return v.String(), nil
	}
}

// Text renders the value of a primitive entry for display. Character
// collections decode as a string, other collections render as [a, b, c].
func Text(ctx Context, id symboltable.EntryID) (string, error) {
	e := ctx.Symbols.Entry(id)
	primitive := e.Typed() && !e.IsStruct() && ctx.Data != nil

	switch {
	case primitive && e.IsCollection():
		return collectionText(ctx, id, e)
	case primitive && e.Type.Kind.IsChar():
		return ctx.Data.GetString(e.Type.Kind, e.GlobalOffset, 1)
	}

	v, err := scalarValue(ctx, id)
	if err != nil {
		return "", err
	}

	return FormatValue(v), nil
}

func collectionText(ctx Context, id symboltable.EntryID, e symboltable.Entry) (string, error) {
	if e.Type.Kind.IsChar() {
		return ctx.Data.GetString(e.Type.Kind, e.GlobalOffset, e.ElementCount)
	}

	parts := make([]string, 0, e.ElementCount)

	for _, element := range ctx.Symbols.Elements(id) {
		s, err := Text(ctx, element)
		if err != nil {
			return "", err
		}

		parts = append(parts, s)
	}

	return "[" + strings.Join(parts, ", ") + "]", nil
}

// FormatValue renders a value returned by binarydata.BinaryData.Read.
func FormatValue(v any) string {
	switch v := v.(type) {
	case int8:
		return strconv.FormatInt(int64(v), 10)
	case int16:
		return strconv.FormatInt(int64(v), 10)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint8:
		return strconv.FormatUint(uint64(v), 10)
	case uint16:
		return strconv.FormatUint(uint64(v), 10)
	case uint32:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case binarydata.Bool8:
		return strconv.FormatBool(bool(v))
	case binarydata.Bool16:
		return strconv.FormatBool(bool(v))
	case binarydata.Bool32:
		return strconv.FormatBool(bool(v))
	case binarydata.Bool64:
		return strconv.FormatBool(bool(v))
	case binarydata.Char8:
		return string(rune(v))
	case binarydata.Char16:
		return string(rune(v))
	case uuid.UUID:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
