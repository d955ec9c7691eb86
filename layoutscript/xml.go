package layoutscript

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/beevik/etree"
	"github.com/shibukawa/bytelayout"
	"github.com/shibukawa/bytelayout/statement"
)

const maxQuotedText = 25

// ParseXML reads a script such as:
//
//	<layout version="1.0.0" name="save">
//	  <short name="Health"/>
//	  <struct name="Weapons" count="4">
//	    <uint name="Id"/>
//	  </struct>
//	</layout>
//
// Element names are keywords and attributes are parameters. Root attributes
// other than version become metadata.
func ParseXML(src []byte) (*LayoutScript, error) {
	positions, err := elementPositions(src)
	if err != nil {
		return nil, err
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(src); err != nil {
		return nil, bytelayout.NewFault(fmt.Errorf("%w: %w", bytelayout.ErrInvalidScript, err), 0, 0)
	}

	root := doc.Root()
	if root == nil {
		return nil, bytelayout.NewFault(fmt.Errorf("%w: no root element", bytelayout.ErrInvalidScript), 0, 0)
	}

	b := &xmlBuilder{positions: positions}
	rootPos := b.next()

	if root.Tag != RootKeyword {
		return nil, bytelayout.NewFault(fmt.Errorf("%w: expected <%s>, found <%s>", bytelayout.ErrInvalidRootElement, RootKeyword, root.FullTag()), rootPos.Line, rootPos.Column)
	}

	script := &LayoutScript{Version: bytelayout.CurrentVersion, Metadata: map[string]string{}}

	for _, attr := range root.Attr {
		if attr.Key == "version" && attr.Space == "" {
			v, err := bytelayout.ParseVersion(attr.Value)
			if err != nil {
				return nil, bytelayout.NewFault(err, rootPos.Line, rootPos.Column)
			}

			script.Version = v

			continue
		}

		script.Metadata[attr.FullKey()] = attr.Value
	}

	if text := elementText(root); text != "" {
		return nil, bytelayout.NewFault(fmt.Errorf("%w: layout contains text %s", bytelayout.ErrUnexpectedText, quoteText(text)), rootPos.Line, rootPos.Column)
	}

	elements := root.ChildElements()
	if len(elements) == 0 {
		return nil, bytelayout.NewFault(bytelayout.ErrEmptyLayout, rootPos.Line, rootPos.Column)
	}

	children := make([]*statement.Statement, 0, len(elements))

	for _, e := range elements {
		s, err := b.statement(e)
		if err != nil {
			return nil, err
		}

		children = append(children, s)
	}

	script.Root = statement.New(RootKeyword, rootPos, nil, children...)

	return script, nil
}

type xmlBuilder struct {
	positions []statement.Position
	index     int
}

// next returns the position of the next element in document order.
func (b *xmlBuilder) next() statement.Position {
	if b.index >= len(b.positions) {
		return statement.Position{}
	}

	pos := b.positions[b.index]
	b.index++

	return pos
}

func (b *xmlBuilder) statement(e *etree.Element) (*statement.Statement, error) {
	pos := b.next()

	if text := elementText(e); text != "" {
		return nil, bytelayout.NewFault(fmt.Errorf("%w: <%s> contains text %s", bytelayout.ErrUnexpectedText, e.FullTag(), quoteText(text)), pos.Line, pos.Column)
	}

	params := make([]statement.Parameter, 0, len(e.Attr))
	for _, attr := range e.Attr {
		params = append(params, statement.Parameter{Name: attr.FullKey(), Value: attr.Value})
	}

	var children []*statement.Statement

	for _, child := range e.ChildElements() {
		s, err := b.statement(child)
		if err != nil {
			return nil, err
		}

		children = append(children, s)
	}

	return statement.New(e.FullTag(), pos, params, children...), nil
}

// elementText joins the non-whitespace character data directly inside e.
func elementText(e *etree.Element) string {
	var parts []string

	for _, token := range e.Child {
		if cd, ok := token.(*etree.CharData); ok {
			if text := strings.TrimSpace(cd.Data); text != "" {
				parts = append(parts, text)
			}
		}
	}

	return strings.Join(parts, " ")
}

func quoteText(text string) string {
	runes := []rune(text)
	if len(runes) > maxQuotedText {
		return fmt.Sprintf("'%s...'", string(runes[:maxQuotedText]))
	}

	return fmt.Sprintf("'%s'", text)
}

// elementPositions lists the line and column of every start tag in document
// order, which is the order etree exposes elements in.
func elementPositions(src []byte) ([]statement.Position, error) {
	d := xml.NewDecoder(bytes.NewReader(src))

	var positions []statement.Position

	for {
		line, column := d.InputPos()

		token, err := d.Token()
		if errors.Is(err, io.EOF) {
			return positions, nil
		}

		if err != nil {
			return nil, bytelayout.NewFault(fmt.Errorf("%w: %w", bytelayout.ErrInvalidScript, err), line, column)
		}

		if _, ok := token.(xml.StartElement); ok {
			positions = append(positions, statement.Position{Line: line, Column: column})
		}
	}
}
