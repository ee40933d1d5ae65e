package routing

import (
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/aretw0/mcpbridge/pkg/cache"
	"github.com/aretw0/mcpbridge/pkg/domain"
)

// LinkGenerator resolves concrete paths from an operation's route template.
type LinkGenerator struct {
	regex *cache.Cache[string, *regexp.Regexp]
}

// NewLinkGenerator creates a generator with an empty constraint cache.
func NewLinkGenerator() *LinkGenerator {
	return &LinkGenerator{regex: cache.New[string, *regexp.Regexp]()}
}

type segment struct {
	literal string
	param   string
	pattern string
}

// parseTemplate splits a chi route template into literals and {name[:regex]} parameters.
func parseTemplate(tmpl string) []segment {
	var out []segment
	for len(tmpl) > 0 {
		open := strings.IndexByte(tmpl, '{')
		if open < 0 {
			out = append(out, segment{literal: tmpl})
			break
		}
		if open > 0 {
			out = append(out, segment{literal: tmpl[:open]})
		}

		depth, end := 0, -1
		for i := open; i < len(tmpl); i++ {
			switch tmpl[i] {
			case '{':
				depth++
			case '}':
				depth--
			}
			if depth == 0 {
				end = i
				break
			}
		}
		if end < 0 {
			out = append(out, segment{literal: tmpl[open:]})
			break
		}

		name, pattern, _ := strings.Cut(tmpl[open+1:end], ":")
		out = append(out, segment{param: name, pattern: pattern})
		tmpl = tmpl[end+1:]
	}
	return out
}

// Link fills op's route template with values. Values that are not route
// parameters become the query string, sorted by name. It fails when the
// operation has no template, a parameter is missing or a value does not match
// the parameter's regular expression.
func (g *LinkGenerator) Link(op domain.Operation, values map[string]string) (*url.URL, bool) {
	if op.Pattern == "" {
		return nil, false
	}

	used := make(map[string]bool)
	var path, raw strings.Builder
	for _, seg := range parseTemplate(op.Pattern) {
		if seg.param == "" {
			path.WriteString(seg.literal)
			raw.WriteString(seg.literal)
			continue
		}
		v, ok := values[seg.param]
		if !ok || v == "" {
			return nil, false
		}
		if seg.pattern != "" && !g.matches(seg.pattern, v) {
			return nil, false
		}
		used[seg.param] = true
		path.WriteString(v)
		raw.WriteString(url.PathEscape(v))
	}

	extra := make([]string, 0, len(values))
	for k := range values {
		if !used[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	q := url.Values{}
	for _, k := range extra {
		q.Set(k, values[k])
	}

	u := &url.URL{Path: path.String(), RawQuery: q.Encode()}
	if escaped := raw.String(); escaped != u.Path {
		u.RawPath = escaped
	}
	return u, true
}

func (g *LinkGenerator) matches(pattern, v string) bool {
	re, err := g.regex.GetOrBuild(pattern, func(p string) (*regexp.Regexp, error) {
		return regexp.Compile("^(?:" + p + ")$")
	})
	return err == nil && re.MatchString(v)
}
