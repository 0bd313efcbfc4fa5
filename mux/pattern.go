package mux

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
)

// defaultMethods are allowed when a pattern has no METHOD: prefix.
var defaultMethods = []string{http.MethodGet, http.MethodPost}

// methodPrefixRegexp recognizes the "GET|POST:" prefix of a pattern.
var methodPrefixRegexp = regexp.MustCompile(`^[A-Z]+(?:\|[A-Z]+)*$`)

// segmentCapture is the regexp emitted for every variable.
const segmentCapture = `([^/]*)`

// Segment describes one '/'-delimited part of a pattern.
type Segment struct {
	// Fixed is true for segments without a variable.
	Fixed bool
	// Kind is the conversion applied to the variable value.
	Kind ConversionKind
	// Type is the sanitized declared type, empty when untyped.
	Type string
	// Name is the variable name.
	Name string
}

// tokenType identifies a lexical element of a pattern.
type tokenType int

const (
	tokenLiteral tokenType = iota
	tokenGroupOpen
	tokenGroupClose
	tokenWildcard
	tokenQuotedWildcard
	tokenVariable
)

type patternToken struct {
	typ      tokenType
	text     string
	varType  string
	varName  string
	optional bool
	group    int
}

// CompiledPattern is the immutable result of compiling a route pattern.
type CompiledPattern struct {
	// template is the pattern without its method prefix.
	template string
	methods  []string
	regexp   *regexp.Regexp
	segments []Segment
	clean    string
	// tokens are kept for reverse rendering.
	tokens []patternToken
}

// CompilePattern parses a route pattern and returns its compiled form.
//
// The grammar is "METHOD1|METHOD2:path/with/{type name}/(optional/{other})".
// Variables always fill a whole path segment. A bare '*' matches anything,
// '\*' matches a literal asterisk. Optional groups do not nest.
func CompilePattern(pattern string) (*CompiledPattern, error) {
	if p, ok := loadPattern(pattern); ok {
		return p, nil
	}

	methods, tpl := splitMethods(pattern)
	tpl = normalizePattern(tpl)

	tokens, err := tokenizePattern(tpl, pattern)
	if err != nil {
		return nil, err
	}

	segments, err := buildSegments(tokens, pattern)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, s := range segments {
		if !s.Fixed {
			names = append(names, s.Name)
		}
	}
	if err := checkDuplicateVars(names); err != nil {
		return nil, &SyntaxError{Pattern: pattern, Value: tpl, Msg: "duplicated route variable"}
	}

	var (
		expr  bytes.Buffer
		clean bytes.Buffer
	)
	expr.WriteByte('^')
	for _, tok := range tokens {
		switch tok.typ {
		case tokenLiteral:
			expr.WriteString(regexp.QuoteMeta(tok.text))
			clean.WriteString(tok.text)
		case tokenGroupOpen:
			expr.WriteString("(?:")
		case tokenGroupClose:
			expr.WriteString(")?")
		case tokenWildcard:
			expr.WriteString(".*")
			clean.WriteByte('*')
		case tokenQuotedWildcard:
			expr.WriteString(`\*`)
			clean.WriteByte('*')
		case tokenVariable:
			expr.WriteString(segmentCapture)
			clean.WriteString("{" + tok.varName + "}")
		}
	}
	expr.WriteByte('$')

	re, err := regexp.Compile(expr.String())
	if err != nil {
		return nil, &SyntaxError{Pattern: pattern, Value: expr.String(), Msg: "cannot compile expression"}
	}

	return storePattern(pattern, &CompiledPattern{
		template: tpl,
		methods:  methods,
		regexp:   re,
		segments: segments,
		clean:    clean.String(),
		tokens:   tokens,
	}), nil
}

// splitMethods separates an optional "GET|POST:" prefix from the pattern.
func splitMethods(pattern string) ([]string, string) {
	if i := strings.IndexByte(pattern, ':'); i > 0 && methodPrefixRegexp.MatchString(pattern[:i]) {
		return strings.Split(pattern[:i], "|"), pattern[i+1:]
	}
	methods := make([]string, len(defaultMethods))
	copy(methods, defaultMethods)
	return methods, pattern
}

// normalizePattern drops a leading slash, reads escaped braces as plain
// braces and moves a slash that precedes an optional group into the group,
// so "a/(b)" and "a(/b)" compile identically. Paths are matched without
// their leading slash.
func normalizePattern(tpl string) string {
	tpl = strings.TrimPrefix(tpl, "/")
	tpl = strings.NewReplacer(`\{`, "{", `\}`, "}").Replace(tpl)
	return strings.ReplaceAll(tpl, "/(", "(/")
}

// tokenizePattern splits a normalized template into lexical tokens.
func tokenizePattern(tpl, pattern string) ([]patternToken, error) {
	var (
		tokens  []patternToken
		literal strings.Builder
		inGroup bool
		group   = -1
		groups  int
	)

	flush := func() {
		if literal.Len() > 0 {
			tokens = append(tokens, patternToken{typ: tokenLiteral, text: literal.String(), optional: inGroup, group: group})
			literal.Reset()
		}
	}

	for i := 0; i < len(tpl); i++ {
		c := tpl[i]
		switch {
		case c == '\\' && i+1 < len(tpl) && tpl[i+1] == '*':
			flush()
			tokens = append(tokens, patternToken{typ: tokenQuotedWildcard, optional: inGroup, group: group})
			i++
		case c == '*':
			flush()
			tokens = append(tokens, patternToken{typ: tokenWildcard, optional: inGroup, group: group})
		case c == '(':
			if inGroup {
				return nil, &SyntaxError{Pattern: pattern, Value: tpl[i:], Msg: "nested optional group"}
			}
			flush()
			inGroup = true
			group = groups
			groups++
			tokens = append(tokens, patternToken{typ: tokenGroupOpen, optional: true, group: group})
		case c == ')':
			if !inGroup {
				return nil, &SyntaxError{Pattern: pattern, Value: tpl[i:], Msg: "unbalanced ')'"}
			}
			flush()
			tokens = append(tokens, patternToken{typ: tokenGroupClose, optional: true, group: group})
			inGroup = false
			group = -1
		case c == '{':
			end := strings.IndexByte(tpl[i+1:], '}')
			if end < 0 {
				return nil, &SyntaxError{Pattern: pattern, Value: tpl[i:], Msg: "unterminated variable"}
			}
			inner := tpl[i+1 : i+1+end]
			if strings.IndexByte(inner, '{') >= 0 {
				return nil, &SyntaxError{Pattern: pattern, Value: tpl[i : i+2+end], Msg: "nested variable"}
			}
			typ, name, err := parseVariable(inner)
			if err != nil {
				return nil, &SyntaxError{Pattern: pattern, Value: tpl[i : i+2+end], Msg: err.Error()}
			}
			flush()
			tokens = append(tokens, patternToken{typ: tokenVariable, varType: typ, varName: name, optional: inGroup, group: group})
			i += end + 1
		case c == '}':
			return nil, &SyntaxError{Pattern: pattern, Value: tpl[i:], Msg: "unbalanced '}'"}
		default:
			literal.WriteByte(c)
		}
	}

	if inGroup {
		return nil, &SyntaxError{Pattern: pattern, Value: tpl, Msg: "unterminated optional group"}
	}
	flush()

	return tokens, nil
}

// parseVariable reads "{name}", "{type name}" or "{name type}" where the
// last form is recognized by a builtin type keyword in second position.
func parseVariable(inner string) (string, string, error) {
	fields := strings.Fields(inner)

	var typ, name string
	switch len(fields) {
	case 1:
		name = fields[0]
	case 2:
		typ, name = fields[0], fields[1]
		if !isBuiltinKind(typ) && isBuiltinKind(name) {
			typ, name = name, typ
		}
	default:
		return "", "", fmt.Errorf("variable must be {name} or {type name}")
	}

	if strings.ContainsAny(name, "/()*") {
		return "", "", fmt.Errorf("invalid variable name")
	}

	return sanitizeType(typ), name, nil
}

// sanitizeType replaces every character outside [A-Za-z0-9_\] with '_'.
func sanitizeType(typ string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '\\':
			return r
		}
		return '_'
	}, typ)
}

// buildSegments maps path positions to variable declarations. A segment
// with a variable must consist of that variable alone.
func buildSegments(tokens []patternToken, pattern string) ([]Segment, error) {
	var (
		segments []Segment
		vars     []patternToken
		literal  bool
	)

	closeSegment := func() error {
		switch {
		case len(vars) == 0:
			segments = append(segments, Segment{Fixed: true})
		case len(vars) == 1 && !literal:
			v := vars[0]
			segments = append(segments, Segment{Kind: kindOf(v.varType), Type: v.varType, Name: v.varName})
		default:
			return &SyntaxError{Pattern: pattern, Value: "{" + vars[0].varName + "}", Msg: "variable must fill the whole segment"}
		}
		vars = vars[:0]
		literal = false
		return nil
	}

	for _, tok := range tokens {
		switch tok.typ {
		case tokenLiteral:
			parts := strings.Split(tok.text, "/")
			for i, part := range parts {
				if i > 0 {
					if err := closeSegment(); err != nil {
						return nil, err
					}
				}
				if part != "" {
					literal = true
				}
			}
		case tokenWildcard, tokenQuotedWildcard:
			literal = true
		case tokenVariable:
			vars = append(vars, tok)
		}
	}
	if err := closeSegment(); err != nil {
		return nil, err
	}

	return segments, nil
}

// Methods returns the HTTP methods the pattern accepts.
func (p *CompiledPattern) Methods() []string {
	out := make([]string, len(p.methods))
	copy(out, p.methods)
	return out
}

// AllowsMethod reports whether method is accepted. Comparison is
// case-sensitive, methods are upper-case tokens per RFC 9110 Section 9.
func (p *CompiledPattern) AllowsMethod(method string) bool {
	return matchInArray(p.methods, method)
}

// Regexp returns the compiled matcher.
func (p *CompiledPattern) Regexp() *regexp.Regexp {
	return p.regexp
}

// Segments returns the per-position segment table.
func (p *CompiledPattern) Segments() []Segment {
	out := make([]Segment, len(p.segments))
	copy(out, p.segments)
	return out
}

// CleanPattern returns the pattern with optional groups and types removed,
// leaving only {name} placeholders.
func (p *CompiledPattern) CleanPattern() string {
	return p.clean
}

// Template returns the pattern without its method prefix.
func (p *CompiledPattern) Template() string {
	return p.template
}

// VarNames returns the variable names in positional order.
func (p *CompiledPattern) VarNames() []string {
	var names []string
	for _, s := range p.segments {
		if !s.Fixed {
			names = append(names, s.Name)
		}
	}
	return names
}

// MatchString reports whether path matches the pattern, ignoring methods.
func (p *CompiledPattern) MatchString(path string) bool {
	return p.regexp.MatchString(path)
}

// render substitutes values into the clean pattern. An optional group
// with a missing value is dropped. A missing value outside any group
// makes the pattern unrenderable.
func (p *CompiledPattern) render(values map[string]string) (string, bool) {
	var (
		out   strings.Builder
		group strings.Builder
		skip  bool
	)

	for _, tok := range p.tokens {
		w := &out
		if tok.optional {
			w = &group
		}
		switch tok.typ {
		case tokenGroupOpen:
			group.Reset()
			skip = false
		case tokenGroupClose:
			if !skip {
				out.WriteString(group.String())
			}
		case tokenLiteral:
			w.WriteString(tok.text)
		case tokenWildcard, tokenQuotedWildcard:
			w.WriteByte('*')
		case tokenVariable:
			v, ok := values[tok.varName]
			if !ok {
				if !tok.optional {
					return "", false
				}
				skip = true
				continue
			}
			w.WriteString(url.PathEscape(v))
		}
	}

	return strings.TrimRight(out.String(), "/"), true
}
