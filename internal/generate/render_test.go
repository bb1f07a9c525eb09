package generate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderBareIdentifiers(t *testing.T) {
	r := NewRenderer()
	got, err := r.Render("t", "def {{ function_name }}(): return '{{ return_value }}'", map[string]any{
		"function_name": "greet",
		"return_value":  "hi",
	})
	require.NoError(t, err)
	assert.Equal(t, "def greet(): return 'hi'", got)
}

func TestRenderPipes(t *testing.T) {
	r := NewRenderer()

	tests := []struct {
		name string
		src  string
		data map[string]any
		want string
	}{
		{"lower", "{{ name | lower }}", map[string]any{"name": "WIDGET"}, "widget"},
		{"upper", "{{ name | upper }}", map[string]any{"name": "widget"}, "WIDGET"},
		{"snakeCase", "{{ name | snakeCase }}", map[string]any{"name": "MyWidget"}, "my_widget"},
		{"pascalCase", "{{ name | pascalCase }}", map[string]any{"name": "my_widget"}, "MyWidget"},
		{"camelCase", "{{ name | camelCase }}", map[string]any{"name": "my_widget"}, "myWidget"},
		{"title", "{{ name | title }}", map[string]any{"name": "my project"}, "My Project"},
		{"quote", "{{ name | quote }}", map[string]any{"name": "x"}, `"x"`},
		{"default used", `{{ name | default "anon" }}`, map[string]any{"name": ""}, "anon"},
		{"default unused", `{{ name | default "anon" }}`, map[string]any{"name": "bob"}, "bob"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Render("t", tt.src, tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderConditionals(t *testing.T) {
	r := NewRenderer()

	got, err := r.Render("t", "{{ if license }}Licensed under {{ license }}.{{ end }}", map[string]any{
		"license": "MIT",
	})
	require.NoError(t, err)
	assert.Equal(t, "Licensed under MIT.", got)

	got, err = r.Render("t", "{{ if license }}yes{{ else }}no{{ end }}", map[string]any{
		"license": "",
	})
	require.NoError(t, err)
	assert.Equal(t, "no", got)
}

func TestRenderMissingVariable(t *testing.T) {
	r := NewRenderer()
	_, err := r.Render("t", "{{ nope }}", map[string]any{"name": "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope")
}

func TestRenderLeavesStringLiteralsAlone(t *testing.T) {
	r := NewRenderer()
	got, err := r.Render("t", `{{ printf "%s-%s" name "name" }}`, map[string]any{"name": "x"})
	require.NoError(t, err)
	assert.Equal(t, "x-name", got)
}

func TestRenderDottedFieldsUntouched(t *testing.T) {
	r := NewRenderer()
	got, err := r.Render("t", "{{ .name }}", map[string]any{"name": "x"})
	require.NoError(t, err)
	assert.Equal(t, "x", got)
}

func TestCaseHelpersMultibyte(t *testing.T) {
	tests := []struct {
		name string
		fn   func(string) string
		in   string
		want string
	}{
		{"title ascii", titleCase, "my project", "My Project"},
		{"title multibyte", titleCase, "élan vital", "Élan Vital"},
		{"pascal multibyte", pascalCase, "über_mode", "ÜberMode"},
		{"camel multibyte", camelCase, "Überholen", "überholen"},
		{"pascal empty part", pascalCase, "_x", "X"},
		{"camel empty", camelCase, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.fn(tt.in))
		})
	}
}

func TestSnakeCase(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"MyWidget", "my_widget"},
		{"myWidget", "my_widget"},
		{"already_snake", "already_snake"},
		{"Mixed_Case", "mixed_case"},
		{"HTTPServer", "httpserver"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, snakeCase(tt.in), "snakeCase(%q)", tt.in)
	}
}
