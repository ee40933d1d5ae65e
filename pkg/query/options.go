package query

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/aretw0/mcpbridge/pkg/schema"
	"github.com/invopop/jsonschema"
	"github.com/mitchellh/mapstructure"
)

// Sigil prefixes query-control parameter names on the wire.
const Sigil = "$"

// ErrUnknownOption is returned for option names that are not query keywords.
var ErrUnknownOption = errors.New("unknown query option")

// ErrInvalidOption is returned when an option value cannot be parsed.
var ErrInvalidOption = errors.New("invalid query option")

// RawValues is the canonical raw shape: one field per recognized keyword.
type RawValues struct {
	Filter    string `json:"filter,omitempty" jsonschema:"description=Boolean expression such as date gt 2024-01-01 and summary eq 'Mild'"`
	OrderBy   string `json:"orderby,omitempty" jsonschema:"description=Comma separated properties each optionally followed by asc or desc"`
	Top       string `json:"top,omitempty" jsonschema:"description=Maximum number of items to return"`
	Skip      string `json:"skip,omitempty" jsonschema:"description=Number of items to skip"`
	Select    string `json:"select,omitempty" jsonschema:"description=Comma separated properties to return"`
	Count     string `json:"count,omitempty" jsonschema:"description=Whether to include the total count"`
	Expand    string `json:"expand,omitempty"`
	Search    string `json:"search,omitempty"`
	SkipToken string `json:"skiptoken,omitempty"`
}

// Values returns the non-empty raw values keyed by keyword, without the sigil.
func (r RawValues) Values() map[string]string {
	out := make(map[string]string)
	for name, v := range map[string]string{
		"filter":    r.Filter,
		"orderby":   r.OrderBy,
		"top":       r.Top,
		"skip":      r.Skip,
		"select":    r.Select,
		"count":     r.Count,
		"expand":    r.Expand,
		"search":    r.Search,
		"skiptoken": r.SkipToken,
	} {
		if v != "" {
			out[name] = v
		}
	}
	return out
}

// rawValues maps option names onto RawValues. Names match case-insensitively,
// every value is stringified and names that are not keywords are rejected.
func rawValues(input map[string]any) (RawValues, error) {
	var raw RawValues
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:     "json",
		ErrorUnused: true,
		Result:      &raw,
		DecodeHook: func(from, to reflect.Type, data any) (any, error) {
			if to.Kind() == reflect.String {
				return stringify(data), nil
			}
			return data, nil
		},
	})
	if err != nil {
		return RawValues{}, err
	}
	if err := dec.Decode(input); err != nil {
		return RawValues{}, fmt.Errorf("%w: %v", ErrUnknownOption, err)
	}
	return raw, nil
}

// Options are the parsed query options for entity type T.
// The zero value is valid and matches everything.
type Options[T any] struct {
	Raw   RawValues
	Model *EntityModel

	Filter  Expr
	OrderBy []OrderTerm
	Top     *int
	Skip    *int
	Select  []string
	Count   bool
}

// OrderTerm is one $orderby key.
type OrderTerm struct {
	Property   string
	Descending bool
}

// Parse builds options for T from raw values keyed by keyword (without sigil).
// Empty values are ignored.
func Parse[T any](values map[string]string) (Options[T], error) {
	model, err := ModelFor(reflect.TypeFor[T]())
	if err != nil {
		return Options[T]{}, err
	}

	input := make(map[string]any, len(values))
	for k, v := range values {
		input[k] = v
	}
	raw, err := rawValues(input)
	if err != nil {
		return Options[T]{}, err
	}

	opts := Options[T]{Raw: raw, Model: model}

	if err := opts.parse(); err != nil {
		return Options[T]{}, err
	}
	return opts, nil
}

func (o *Options[T]) parse() error {
	r := o.Raw

	if r.Top != "" {
		n, err := nonNegative(r.Top)
		if err != nil {
			return fmt.Errorf("%w: $top: %v", ErrInvalidOption, err)
		}
		o.Top = &n
	}
	if r.Skip != "" {
		n, err := nonNegative(r.Skip)
		if err != nil {
			return fmt.Errorf("%w: $skip: %v", ErrInvalidOption, err)
		}
		o.Skip = &n
	}
	if r.Count != "" {
		b, err := strconv.ParseBool(r.Count)
		if err != nil {
			return fmt.Errorf("%w: $count: %v", ErrInvalidOption, err)
		}
		o.Count = b
	}
	if r.OrderBy != "" {
		terms, err := parseOrderBy(o.Model, r.OrderBy)
		if err != nil {
			return err
		}
		o.OrderBy = terms
	}
	if r.Select != "" {
		sel, err := parseSelect(o.Model, r.Select)
		if err != nil {
			return err
		}
		o.Select = sel
	}
	if r.Filter != "" {
		expr, err := ParseFilter(o.Model, r.Filter)
		if err != nil {
			return err
		}
		o.Filter = expr
	}
	return nil
}

func nonNegative(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("must not be negative, got %d", n)
	}
	return n, nil
}

func parseOrderBy(m *EntityModel, raw string) ([]OrderTerm, error) {
	var terms []OrderTerm
	for _, part := range strings.Split(raw, ",") {
		fields := strings.Fields(part)
		if len(fields) == 0 || len(fields) > 2 {
			return nil, fmt.Errorf("%w: $orderby: malformed term %q", ErrInvalidOption, part)
		}
		p, ok := m.Property(fields[0])
		if !ok {
			return nil, fmt.Errorf("%w: $orderby: unknown property %q on %s", ErrInvalidOption, fields[0], m.EntitySet)
		}
		term := OrderTerm{Property: p.Name}
		if len(fields) == 2 {
			switch strings.ToLower(fields[1]) {
			case "asc":
			case "desc":
				term.Descending = true
			default:
				return nil, fmt.Errorf("%w: $orderby: unknown direction %q", ErrInvalidOption, fields[1])
			}
		}
		terms = append(terms, term)
	}
	return terms, nil
}

func parseSelect(m *EntityModel, raw string) ([]string, error) {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		name := strings.TrimSpace(part)
		if name == "*" {
			return nil, nil
		}
		p, ok := m.Property(name)
		if !ok {
			return nil, fmt.Errorf("%w: $select: unknown property %q on %s", ErrInvalidOption, name, m.EntitySet)
		}
		out = append(out, p.Name)
	}
	return out, nil
}

// Decode builds options for T from a JSON object keyed by sigil-prefixed names.
// A bare name is accepted too, but loses to its sigil-prefixed form. Values are
// stringified: numbers and booleans use their textual form and null
// becomes the empty string.
func Decode[T any](data []byte) (Options[T], error) {
	var generic map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&generic); err != nil {
		return Options[T]{}, fmt.Errorf("decoding query options: %w", err)
	}

	values := make(map[string]string, len(generic))
	for k, v := range generic {
		name, sigiled := strings.CutPrefix(k, Sigil)
		if _, shadowed := generic[Sigil+name]; !sigiled && shadowed {
			continue
		}
		values[name] = stringify(v)
	}
	return Parse[T](values)
}

func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
}

// Encode echoes the raw values with sigil-prefixed keys.
func Encode(r RawValues) map[string]string {
	values := r.Values()
	out := make(map[string]string, len(values))
	for k, v := range values {
		out[Sigil+k] = v
	}
	return out
}

func (o Options[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(Encode(o.Raw))
}

func (o *Options[T]) UnmarshalJSON(data []byte) error {
	parsed, err := Decode[T](data)
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// JSONSchema describes the wire form: the RawValues schema with every
// property name prefixed by the sigil.
func (Options[T]) JSONSchema() *jsonschema.Schema {
	return RawSchema()
}

// RawSchema returns the sigil-prefixed schema of RawValues.
func RawSchema() *jsonschema.Schema {
	base := schema.MustFor(reflect.TypeFor[RawValues]())

	props := jsonschema.NewProperties()
	for pair := base.Properties.Oldest(); pair != nil; pair = pair.Next() {
		props.Set(Sigil+pair.Key, pair.Value)
	}
	base.Properties = props

	for i, name := range base.Required {
		base.Required[i] = Sigil + name
	}
	return base
}
