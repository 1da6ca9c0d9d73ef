package log

import (
	"bytes"
	"reflect"
	"strings"

	"go.jacobcolvin.com/tproll/prettyprint"
)

type scanState uint8

const (
	scanLiteral scanState = iota
	scanEscaping
	scanBrace
)

// render writes template to buf, substituting each "{}" placeholder with the
// next argument and appending any leftover arguments. It returns the error
// extracted from the arguments, if any.
//
// A backslash escapes "{" and itself; before any other character it is kept
// as is. A placeholder with no argument left is written literally.
//
// Leftover arguments are appended as " {a, b}". A single leftover error is
// not written at all, and an error in the last position is left out of the
// list; in both cases it becomes the extracted error. Errors substituted
// into placeholders are extracted too, the last one found winning.
func render(buf *bytes.Buffer, p *prettyprint.Printer, template string, args []any) error {
	var thrown error

	next := 0
	state := scanLiteral

	for i := 0; i < len(template); {
		switch state {
		case scanLiteral:
			j := strings.IndexAny(template[i:], `\{`)
			if j < 0 {
				buf.WriteString(template[i:])
				i = len(template)

				continue
			}

			buf.WriteString(template[i : i+j])
			i += j

			if template[i] == '\\' {
				state = scanEscaping
			} else {
				state = scanBrace
			}

			i++

		case scanEscaping:
			state = scanLiteral

			switch c := template[i]; c {
			case '\\', '{':
				buf.WriteByte(c)
				i++
			default:
				// Not an escape; the character is rescanned as a literal.
				buf.WriteByte('\\')
			}

		case scanBrace:
			state = scanLiteral

			if template[i] != '}' {
				buf.WriteByte('{')
				continue
			}

			i++

			if next == len(args) {
				buf.WriteString("{}")
				continue
			}

			arg := args[next]
			next++

			if err := errorArg(arg); err != nil {
				thrown = err
			}

			p.Append(buf, arg)
		}
	}

	switch state {
	case scanEscaping:
		buf.WriteByte('\\')
	case scanBrace:
		buf.WriteByte('{')
	case scanLiteral:
	}

	rest := args[next:]
	if len(rest) == 0 {
		return thrown
	}

	if len(rest) == 1 {
		if err := errorArg(rest[0]); err != nil {
			return err
		}
	}

	buf.WriteString(" {")

	last := len(rest) - 1
	for i, arg := range rest {
		if err := errorArg(arg); err != nil {
			thrown = err
			if i == last {
				break
			}
		}

		if i > 0 {
			buf.WriteString(", ")
		}

		p.Append(buf, arg)
	}

	buf.WriteByte('}')

	return thrown
}

// errorArg returns v if it is a non-nil error, and nil otherwise. A nil
// pointer stored in an error interface counts as nil.
func errorArg(v any) error {
	err, ok := v.(error)
	if !ok {
		return nil
	}

	rv := reflect.ValueOf(err)
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return nil
	}

	return err
}

// AppendTemplate renders template with args into buf using p, and returns
// the error extracted from args, if any. A nil p uses [prettyprint.Default].
// See [Render] for the template syntax.
func AppendTemplate(buf *bytes.Buffer, p *prettyprint.Printer, template string, args ...any) error {
	if p == nil {
		p = prettyprint.Default()
	}

	return render(buf, p, template, args)
}

// Render renders template with args using [prettyprint.Default] and returns
// the text together with the error extracted from args, if any.
//
// Each "{}" in template is replaced by the next argument. "\{" and "\\"
// produce a literal "{" and "\". A "{}" with no argument left is kept as is.
// Arguments left over after the template are appended as " {a, b}", except
// that a single leftover error, or an error in the last position, is left
// out of the text and returned instead:
//
//	Render("a{}b", 5)          // "a5b", nil
//	Render("a{}b")             // "a{}b", nil
//	Render("msg", err)         // "msg", err
//	Render("msg", 1, "x", err) // "msg {1, x}", err
//	Render(`esc \{} test`, 1)  // "esc {} test {1}", nil
func Render(template string, args ...any) (string, error) {
	var buf bytes.Buffer

	err := render(&buf, prettyprint.Default(), template, args)

	return buf.String(), err
}

// EscapeTemplate returns s with backslashes and "{" escaped, so that it
// renders as itself.
func EscapeTemplate(s string) string {
	if !strings.ContainsAny(s, `\{`) {
		return s
	}

	var sb strings.Builder

	sb.Grow(len(s) + 4)

	for i := range len(s) {
		c := s[i]
		if c == '\\' || c == '{' {
			sb.WriteByte('\\')
		}

		sb.WriteByte(c)
	}

	return sb.String()
}
