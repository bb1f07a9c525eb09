package generate

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"text/template"
	"unicode"
	"unicode/utf8"
)

// Renderer expands task template strings against a flat input map.
//
// Task authors write actions over bare input names — {{ function_name }},
// {{ class_name | snakeCase }}, {{ if license }} — so before parsing, the
// renderer rewrites bare identifiers to field references on the input map.
// Parsed templates are cached by source; a missing variable is a render
// error, never silently empty.
type Renderer struct {
	funcs template.FuncMap
	cache map[string]*template.Template
	mu    sync.RWMutex
}

// NewRenderer creates a renderer with the built-in helper functions.
func NewRenderer() *Renderer {
	return &Renderer{
		funcs: defaultFuncMap(),
		cache: make(map[string]*template.Template),
	}
}

// Render expands src against data. The name appears in error messages.
func (r *Renderer) Render(name, src string, data map[string]any) (string, error) {
	r.mu.RLock()
	tmpl, ok := r.cache[src]
	r.mu.RUnlock()

	if !ok {
		var err error
		tmpl, err = template.New(name).
			Funcs(r.funcs).
			Option("missingkey=error").
			Parse(r.normalize(src))
		if err != nil {
			return "", fmt.Errorf("parsing template %q: %w", name, err)
		}
		r.mu.Lock()
		r.cache[src] = tmpl
		r.mu.Unlock()
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering template %q: %w", name, err)
	}
	return buf.String(), nil
}

// reservedWords are action tokens the normalizer must leave alone.
var reservedWords = map[string]bool{
	"if": true, "else": true, "end": true, "range": true, "with": true,
	"template": true, "block": true, "define": true, "nil": true,
	"true": true, "false": true, "and": true, "or": true, "not": true,
	"eq": true, "ne": true, "lt": true, "le": true, "gt": true, "ge": true,
	"index": true, "len": true, "print": true, "printf": true, "println": true,
}

// normalize rewrites bare identifiers inside {{ ... }} actions into field
// references (name → .name), leaving keywords, registered functions,
// literals, and anything already qualified untouched.
func (r *Renderer) normalize(src string) string {
	var out strings.Builder
	rest := src
	for {
		start := strings.Index(rest, "{{")
		if start < 0 {
			out.WriteString(rest)
			return out.String()
		}
		end := strings.Index(rest[start:], "}}")
		if end < 0 {
			out.WriteString(rest)
			return out.String()
		}
		end += start

		out.WriteString(rest[:start+2])
		out.WriteString(r.normalizeAction(rest[start+2 : end]))
		out.WriteString("}}")
		rest = rest[end+2:]
	}
}

// normalizeAction rewrites one action body, token by token.
func (r *Renderer) normalizeAction(action string) string {
	var out strings.Builder
	i := 0
	for i < len(action) {
		c := action[i]
		switch {
		case c == '"' || c == '`':
			// Copy string literals verbatim.
			j := i + 1
			for j < len(action) && action[j] != c {
				if c == '"' && action[j] == '\\' {
					j++
				}
				j++
			}
			if j < len(action) {
				j++
			}
			out.WriteString(action[i:j])
			i = j
		case isIdentStart(rune(c)):
			j := i
			for j < len(action) && isIdentRune(rune(action[j])) {
				j++
			}
			tok := action[i:j]
			// A dot after the identifier means it is a method or a field
			// chain head; leave those alone too.
			qualified := i > 0 && (action[i-1] == '.' || action[i-1] == '$')
			if !qualified && !reservedWords[tok] && r.funcs[tok] == nil {
				out.WriteByte('.')
			}
			out.WriteString(tok)
			i = j
		default:
			out.WriteByte(c)
			i++
		}
	}
	return out.String()
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentRune(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}

// defaultFuncMap returns the helper functions available to task templates.
func defaultFuncMap() template.FuncMap {
	return template.FuncMap{
		"upper":      strings.ToUpper,
		"lower":      strings.ToLower,
		"trim":       strings.TrimSpace,
		"title":      titleCase,
		"quote":      func(s string) string { return fmt.Sprintf("%q", s) },
		"replace":    strings.ReplaceAll,
		"hasPrefix":  strings.HasPrefix,
		"hasSuffix":  strings.HasSuffix,
		"contains":   strings.Contains,
		"pascalCase": pascalCase,
		"camelCase":  camelCase,
		"snakeCase":  snakeCase,
		"default":    defaultValue,
	}
}

// capitalize upper-cases the first rune of s. Slicing the first byte would
// mangle a multibyte leading rune.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// titleCase capitalizes the first letter of each space-separated word.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = capitalize(strings.ToLower(w))
	}
	return strings.Join(words, " ")
}

// pascalCase converts snake_case or camelCase to PascalCase.
func pascalCase(s string) string {
	if s == "" {
		return ""
	}
	parts := strings.Split(s, "_")
	for i, p := range parts {
		parts[i] = capitalize(p)
	}
	return strings.Join(parts, "")
}

// camelCase converts snake_case or PascalCase to camelCase.
func camelCase(s string) string {
	p := pascalCase(s)
	r, size := utf8.DecodeRuneInString(p)
	if size == 0 || r == utf8.RuneError {
		return p
	}
	return string(unicode.ToLower(r)) + p[size:]
}

// snakeCase converts PascalCase or camelCase to snake_case.
func snakeCase(s string) string {
	if strings.Contains(s, "_") {
		return strings.ToLower(s)
	}
	var out strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 && !unicode.IsUpper(rune(s[i-1])) {
				out.WriteByte('_')
			}
			out.WriteRune(unicode.ToLower(r))
		} else {
			out.WriteRune(r)
		}
	}
	return out.String()
}

// defaultValue returns fallback when val is nil or an empty string.
func defaultValue(fallback, val any) any {
	if val == nil {
		return fallback
	}
	if s, ok := val.(string); ok && s == "" {
		return fallback
	}
	return val
}
