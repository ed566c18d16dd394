package svgcolor

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// ErrMalformedSVG is returned when markup cannot be parsed as an SVG document
var ErrMalformedSVG = errors.New("malformed svg")

// ErrInvalidColor is returned for colors that are neither hex nor a CSS keyword
var ErrInvalidColor = errors.New("invalid color")

var (
	hexColor     = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{4}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)
	keywordColor = regexp.MustCompile(`^[a-zA-Z]{3,20}$`)
	// fill/stroke declarations inside style attributes and <style> blocks
	paintDecl = regexp.MustCompile(`(?i)(^|[;{\s])(fill|stroke)\s*:\s*([^;}]+)`)
)

// NormalizeColor validates a color and returns it trimmed and lower-cased
func NormalizeColor(color string) (string, error) {
	c := strings.ToLower(strings.TrimSpace(color))
	if hexColor.MatchString(c) || keywordColor.MatchString(c) {
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidColor, color)
}

// Document is the parsed token tree of an SVG. It is never mutated after Parse;
// Render produces recolored markup from it on demand.
type Document struct {
	tokens []xml.Token
}

// Parse reads markup into a Document. The root element must be <svg> and
// elements must be balanced.
func Parse(markup string) (*Document, error) {
	dec := xml.NewDecoder(strings.NewReader(markup))
	dec.Strict = true

	var (
		tokens []xml.Token
		stack  []xml.Name
		roots  int
	)
	for {
		tok, err := dec.RawToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedSVG, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if len(stack) == 0 {
				roots++
				if roots > 1 || !strings.EqualFold(t.Name.Local, "svg") {
					return nil, fmt.Errorf("%w: root element is <%s>", ErrMalformedSVG, t.Name.Local)
				}
			}
			stack = append(stack, t.Name)
		case xml.EndElement:
			if len(stack) == 0 || stack[len(stack)-1] != t.Name {
				return nil, fmt.Errorf("%w: unexpected </%s>", ErrMalformedSVG, t.Name.Local)
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) == 0 && len(bytes.TrimSpace(t)) > 0 {
				return nil, fmt.Errorf("%w: text outside root element", ErrMalformedSVG)
			}
		}
		tokens = append(tokens, xml.CopyToken(tok))
	}
	if roots == 0 {
		return nil, fmt.Errorf("%w: no <svg> element", ErrMalformedSVG)
	}
	if len(stack) > 0 {
		return nil, fmt.Errorf("%w: unclosed <%s>", ErrMalformedSVG, stack[len(stack)-1].Local)
	}
	return &Document{tokens: tokens}, nil
}

// Render serializes the document. With a non-empty color every painted fill and stroke
// is replaced by it; "none", "transparent" and url(...) references are preserved, and a
// root fill is added so unpainted shapes pick up the color too.
func (d *Document) Render(color string) string {
	var buf strings.Builder
	depth := 0
	// open <style> elements; their text may span several tokens (whitespace, CDATA)
	styles := 0
	for i, tok := range d.tokens {
		switch t := tok.(type) {
		case xml.StartElement:
			if isStyle(t.Name) {
				styles++
			}
			if color != "" {
				t = recolorElement(t, color, depth == 0)
			}
			buf.WriteByte('<')
			buf.WriteString(qualified(t.Name))
			for _, a := range t.Attr {
				buf.WriteByte(' ')
				buf.WriteString(qualified(a.Name))
				buf.WriteString(`="`)
				_ = xml.EscapeText(&buf, []byte(a.Value))
				buf.WriteByte('"')
			}
			if next := i + 1; next < len(d.tokens) {
				if _, ok := d.tokens[next].(xml.EndElement); ok {
					buf.WriteString("/>")
					depth++
					continue
				}
			}
			buf.WriteByte('>')
			depth++
		case xml.EndElement:
			depth--
			if isStyle(t.Name) {
				styles--
			}
			if prev, ok := d.tokens[i-1].(xml.StartElement); ok && prev.Name == t.Name {
				continue
			}
			buf.WriteString("</")
			buf.WriteString(qualified(t.Name))
			buf.WriteByte('>')
		case xml.CharData:
			if color != "" && styles > 0 {
				t = xml.CharData(recolorDecls(string(t), color))
			}
			_ = xml.EscapeText(&buf, t)
		case xml.Comment:
			buf.WriteString("<!--")
			buf.Write(t)
			buf.WriteString("-->")
		case xml.ProcInst:
			buf.WriteString("<?")
			buf.WriteString(t.Target)
			if len(t.Inst) > 0 {
				buf.WriteByte(' ')
				buf.Write(t.Inst)
			}
			buf.WriteString("?>")
		case xml.Directive:
			buf.WriteString("<!")
			buf.Write(t)
			buf.WriteByte('>')
		}
	}
	return buf.String()
}

func isStyle(n xml.Name) bool {
	return strings.EqualFold(n.Local, "style")
}

func recolorElement(el xml.StartElement, color string, root bool) xml.StartElement {
	attrs := make([]xml.Attr, 0, len(el.Attr)+1)
	hasFill := false
	for _, a := range el.Attr {
		if a.Name.Space == "" {
			switch strings.ToLower(a.Name.Local) {
			case "fill":
				hasFill = true
				if isPaint(a.Value) {
					a.Value = color
				}
			case "stroke":
				if isPaint(a.Value) {
					a.Value = color
				}
			case "style":
				a.Value = recolorDecls(a.Value, color)
			}
		}
		attrs = append(attrs, a)
	}
	if root && !hasFill {
		attrs = append(attrs, xml.Attr{Name: xml.Name{Local: "fill"}, Value: color})
	}
	el.Attr = attrs
	return el
}

func recolorDecls(css, color string) string {
	var out strings.Builder
	last := 0
	for _, m := range paintDecl.FindAllStringSubmatchIndex(css, -1) {
		value := css[m[6]:m[7]]
		if !isPaint(value) {
			continue
		}
		out.WriteString(css[last:m[6]])
		out.WriteString(color)
		last = m[7]
	}
	out.WriteString(css[last:])
	return out.String()
}

// isPaint reports whether a paint value is a concrete color that may be replaced
func isPaint(value string) bool {
	v := strings.ToLower(strings.TrimSpace(value))
	v = strings.TrimSpace(strings.TrimSuffix(v, "!important"))
	switch {
	case v == "", v == "none", v == "transparent", v == "inherit":
		return false
	case strings.HasPrefix(v, "url("):
		return false
	}
	return true
}

func qualified(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}
