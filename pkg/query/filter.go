package query

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode"
)

var timeType = reflect.TypeFor[time.Time]()

// Expr is a parsed $filter expression.
type Expr interface {
	Match(item reflect.Value) bool
}

type logical struct {
	or          bool
	left, right Expr
}

func (e logical) Match(v reflect.Value) bool {
	if e.or {
		return e.left.Match(v) || e.right.Match(v)
	}
	return e.left.Match(v) && e.right.Match(v)
}

type negation struct{ inner Expr }

func (e negation) Match(v reflect.Value) bool { return !e.inner.Match(v) }

type comparison struct {
	op          string
	left, right operand
}

func (e comparison) Match(v reflect.Value) bool {
	a, b := e.left.value(v), e.right.value(v)
	if e.op == "eq" || e.op == "ne" {
		eq := equal(a, b)
		return eq == (e.op == "eq")
	}

	c, ok := compare(a, b)
	if !ok {
		return false
	}
	switch e.op {
	case "gt":
		return c > 0
	case "ge":
		return c >= 0
	case "lt":
		return c < 0
	case "le":
		return c <= 0
	}
	return false
}

type call struct {
	name string
	args [2]operand
}

func (e call) Match(v reflect.Value) bool {
	s, ok1 := e.args[0].value(v).(string)
	sub, ok2 := e.args[1].value(v).(string)
	if !ok1 || !ok2 {
		return false
	}
	switch e.name {
	case "contains":
		return strings.Contains(s, sub)
	case "startswith":
		return strings.HasPrefix(s, sub)
	case "endswith":
		return strings.HasSuffix(s, sub)
	}
	return false
}

// operand is either a property reference or a literal.
type operand struct {
	prop *Property
	lit  any
}

func (o operand) value(item reflect.Value) any {
	if o.prop == nil {
		return o.lit
	}
	return propertyValue(item, o.prop.Index)
}

func propertyValue(item reflect.Value, index []int) any {
	for item.Kind() == reflect.Pointer || item.Kind() == reflect.Interface {
		if item.IsNil() {
			return nil
		}
		item = item.Elem()
	}
	f, err := item.FieldByIndexErr(index)
	if err != nil {
		return nil
	}
	return normalize(f)
}

// normalize reduces a field to float64, string, bool, time.Time or nil.
func normalize(v reflect.Value) any {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}

	if v.Type() == timeType {
		return v.Interface().(time.Time)
	}
	// Date wrappers such as types.Date embed time.Time.
	if v.Kind() == reflect.Struct && v.NumField() > 0 {
		if f := v.Type().Field(0); f.Anonymous && f.Type == timeType && v.Field(0).CanInterface() {
			return v.Field(0).Interface().(time.Time)
		}
	}

	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint())
	case reflect.Float32, reflect.Float64:
		return v.Float()
	case reflect.String:
		return v.String()
	case reflect.Bool:
		return v.Bool()
	}
	if v.CanInterface() {
		return v.Interface()
	}
	return nil
}

func equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	c, ok := compare(a, b)
	return ok && c == 0
}

// compare orders two normalized values. ok is false when they are not comparable.
func compare(a, b any) (int, bool) {
	switch x := a.(type) {
	case float64:
		if y, ok := b.(float64); ok {
			switch {
			case x < y:
				return -1, true
			case x > y:
				return 1, true
			}
			return 0, true
		}
	case string:
		switch y := b.(type) {
		case string:
			return strings.Compare(x, y), true
		case time.Time:
			if t, ok := parseTime(x); ok {
				return t.Compare(y), true
			}
		}
	case time.Time:
		switch y := b.(type) {
		case time.Time:
			return x.Compare(y), true
		case string:
			if t, ok := parseTime(y); ok {
				return x.Compare(t), true
			}
		}
	case bool:
		if y, ok := b.(bool); ok {
			switch {
			case x == y:
				return 0, true
			case !x:
				return -1, true
			}
			return 1, true
		}
	}
	return 0, false
}

func parseTime(s string) (time.Time, bool) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

type tokenKind int

const (
	tokWord tokenKind = iota
	tokString
	tokOpen
	tokClose
	tokComma
	tokEOF
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func lex(s string) ([]token, error) {
	var toks []token
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '(':
			toks = append(toks, token{tokOpen, "(", i})
			i++
		case c == ')':
			toks = append(toks, token{tokClose, ")", i})
			i++
		case c == ',':
			toks = append(toks, token{tokComma, ",", i})
			i++
		case c == '\'':
			start := i
			var b strings.Builder
			i++
			for {
				if i >= len(s) {
					return nil, fmt.Errorf("%w: $filter: unterminated string at %d", ErrInvalidOption, start)
				}
				if s[i] == '\'' {
					if i+1 < len(s) && s[i+1] == '\'' {
						b.WriteByte('\'')
						i += 2
						continue
					}
					i++
					break
				}
				b.WriteByte(s[i])
				i++
			}
			toks = append(toks, token{tokString, b.String(), start})
		case isWordByte(c):
			start := i
			for i < len(s) && isWordByte(s[i]) {
				i++
			}
			toks = append(toks, token{tokWord, s[start:i], start})
		default:
			return nil, fmt.Errorf("%w: $filter: unexpected %q at %d", ErrInvalidOption, c, i)
		}
	}
	return append(toks, token{kind: tokEOF, pos: len(s)}), nil
}

func isWordByte(c byte) bool {
	r := rune(c)
	return unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune("_.:+-/", r)
}

var comparisons = map[string]bool{"eq": true, "ne": true, "gt": true, "ge": true, "lt": true, "le": true}

var functions = map[string]bool{"contains": true, "startswith": true, "endswith": true}

// ParseFilter parses a $filter expression against model.
//
//	expr    = and { "or" and }
//	and     = unary { "and" unary }
//	unary   = "not" unary | primary
//	primary = "(" expr ")" | func "(" operand "," operand ")" | operand [cmp operand]
func ParseFilter(model *EntityModel, s string) (Expr, error) {
	toks, err := lex(s)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks, model: model}
	e, err := p.or()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, p.fail(t, "unexpected %q", t.text)
	}
	return e, nil
}

type parser struct {
	toks  []token
	pos   int
	model *EntityModel
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) keyword(word string) bool {
	t := p.peek()
	return t.kind == tokWord && strings.EqualFold(t.text, word)
}

func (p *parser) fail(t token, format string, args ...any) error {
	return fmt.Errorf("%w: $filter: %s at %d", ErrInvalidOption, fmt.Sprintf(format, args...), t.pos)
}

func (p *parser) expect(kind tokenKind, what string) error {
	if t := p.next(); t.kind != kind {
		return p.fail(t, "expected %s", what)
	}
	return nil
}

func (p *parser) or() (Expr, error) {
	left, err := p.and()
	if err != nil {
		return nil, err
	}
	for p.keyword("or") {
		p.next()
		right, err := p.and()
		if err != nil {
			return nil, err
		}
		left = logical{or: true, left: left, right: right}
	}
	return left, nil
}

func (p *parser) and() (Expr, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for p.keyword("and") {
		p.next()
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = logical{left: left, right: right}
	}
	return left, nil
}

func (p *parser) unary() (Expr, error) {
	if p.keyword("not") {
		p.next()
		inner, err := p.unary()
		if err != nil {
			return nil, err
		}
		return negation{inner: inner}, nil
	}
	return p.primary()
}

func (p *parser) primary() (Expr, error) {
	t := p.peek()

	if t.kind == tokOpen {
		p.next()
		e, err := p.or()
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokClose, "')'"); err != nil {
			return nil, err
		}
		return e, nil
	}

	if t.kind == tokWord && functions[strings.ToLower(t.text)] && p.toks[p.pos+1].kind == tokOpen {
		p.next()
		p.next()
		a, err := p.operand()
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokComma, "','"); err != nil {
			return nil, err
		}
		b, err := p.operand()
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokClose, "')'"); err != nil {
			return nil, err
		}
		return call{name: strings.ToLower(t.text), args: [2]operand{a, b}}, nil
	}

	left, err := p.operand()
	if err != nil {
		return nil, err
	}

	if op := p.peek(); op.kind == tokWord && comparisons[strings.ToLower(op.text)] {
		p.next()
		right, err := p.operand()
		if err != nil {
			return nil, err
		}
		return comparison{op: strings.ToLower(op.text), left: left, right: right}, nil
	}

	// A bare boolean property.
	if left.prop != nil && left.prop.Type.Kind() == reflect.Bool {
		return comparison{op: "eq", left: left, right: operand{lit: true}}, nil
	}
	return nil, p.fail(t, "expected a comparison")
}

func (p *parser) operand() (operand, error) {
	t := p.next()
	switch t.kind {
	case tokString:
		return operand{lit: t.text}, nil
	case tokWord:
	default:
		return operand{}, p.fail(t, "expected a property or literal")
	}

	switch strings.ToLower(t.text) {
	case "true":
		return operand{lit: true}, nil
	case "false":
		return operand{lit: false}, nil
	case "null":
		return operand{lit: nil}, nil
	}
	if prop, ok := p.model.Property(t.text); ok {
		return operand{prop: &prop}, nil
	}
	if ts, ok := parseTime(t.text); ok {
		return operand{lit: ts}, nil
	}
	if f, err := strconv.ParseFloat(t.text, 64); err == nil {
		return operand{lit: f}, nil
	}
	return operand{}, p.fail(t, "unknown property %q on %s", t.text, p.model.EntitySet)
}
