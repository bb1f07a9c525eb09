package generate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasreid/stencil/internal/llm"
	"github.com/lucasreid/stencil/internal/task"
)

func pythonFunctionTask(t *testing.T) *task.Template {
	t.Helper()
	tmpl, err := task.Load([]byte(`
name: python_function
version: 1.0.0
description: Generate a Python function skeleton
inputs:
  - name: function_name
    type: string
    required: true
    pattern: "^[a-z_][a-z0-9_]*$"
  - name: return_value
    type: string
    required: false
    default: "None"
output:
  type: file
  pattern: "{{ function_name }}.py"
validation:
  - "python -m py_compile {{ output_file }}"
template: "def {{ function_name }}():\n    return {{ return_value }}\n"
`))
	require.NoError(t, err)
	return tmpl
}

func TestGenerateSingleFile(t *testing.T) {
	g := New(nil)
	tmpl := pythonFunctionTask(t)

	result, err := g.Generate(context.Background(), tmpl, map[string]any{
		"function_name": "greet",
		"return_value":  "'hi'",
	}, Options{})
	require.NoError(t, err)

	require.Contains(t, result.Files, "greet.py")
	assert.Equal(t, "def greet():\n    return 'hi'\n", result.Files["greet.py"])
	require.Len(t, result.Commands, 1)
	assert.Equal(t, "python -m py_compile greet.py", result.Commands[0])
	assert.Equal(t, "python_function", result.Metadata.Template)
	assert.NotEmpty(t, result.Metadata.ID)
	assert.False(t, result.Metadata.Enhanced)
}

func TestGenerateAppliesDefaults(t *testing.T) {
	g := New(nil)
	tmpl := pythonFunctionTask(t)

	result, err := g.Generate(context.Background(), tmpl, map[string]any{
		"function_name": "noop",
	}, Options{})
	require.NoError(t, err)
	assert.Equal(t, "def noop():\n    return None\n", result.Files["noop.py"])
	assert.Equal(t, "None", result.Metadata.Inputs["return_value"])
}

func TestGenerateMissingInputsNamesAll(t *testing.T) {
	g := New(nil)
	tmpl, err := task.Load([]byte(`
name: pair
version: 1.0.0
description: d
inputs:
  - name: first
    type: string
  - name: second
    type: string
output:
  type: file
  pattern: out.txt
template: "{{ first }} {{ second }}"
`))
	require.NoError(t, err)

	_, err = g.Generate(context.Background(), tmpl, map[string]any{}, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "first")
	assert.Contains(t, err.Error(), "second")
}

func TestGeneratePatternAnchoredAtStart(t *testing.T) {
	g := New(nil)
	tmpl := pythonFunctionTask(t)

	tests := []struct {
		name  string
		value string
		ok    bool
	}{
		{"valid", "my_func", true},
		{"leading digit", "1func", false},
		{"uppercase", "Func", false},
		// Anchored only at the start: a valid prefix passes even when
		// the pattern has its own $ anchor stripped of effect by the
		// value's shape.
		{"trailing junk rejected by $", "func-name", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.Generate(context.Background(), tmpl, map[string]any{
				"function_name": tt.value,
			}, Options{})
			if tt.ok {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "does not match pattern")
			}
		})
	}
}

func TestGenerateMultiFileWithLocation(t *testing.T) {
	g := New(nil)
	tmpl, err := task.Load([]byte(`
name: go_package
version: 1.0.0
description: d
inputs:
  - name: package_name
    type: string
output:
  type: directory
  pattern: "{{ package_name }}"
  location: "internal/"
template:
  "{{ package_name }}/{{ package_name }}.go": "package {{ package_name }}\n"
  "{{ package_name }}/doc.go": "// Package {{ package_name }}.\npackage {{ package_name }}\n"
`))
	require.NoError(t, err)

	result, err := g.Generate(context.Background(), tmpl, map[string]any{
		"package_name": "store",
	}, Options{})
	require.NoError(t, err)

	require.Len(t, result.Files, 2)
	assert.Contains(t, result.Files, "internal/store/store.go")
	assert.Contains(t, result.Files, "internal/store/doc.go")
	assert.Equal(t, "package store\n", result.Files["internal/store/store.go"])
}

func TestGenerateDuplicateOutputPath(t *testing.T) {
	g := New(nil)
	tmpl, err := task.Load([]byte(`
name: clash
version: 1.0.0
description: d
inputs:
  - name: n
    type: string
output:
  type: directory
  pattern: "{{ n }}"
template:
  "{{ n }}.txt": "a"
  "{{ n | lower }}.txt": "b"
`))
	require.NoError(t, err)

	_, err = g.Generate(context.Background(), tmpl, map[string]any{"n": "same"}, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate output path")
}

func TestGenerateEnhance(t *testing.T) {
	g := New(llm.NewStatic())
	tmpl := pythonFunctionTask(t)

	result, err := g.Generate(context.Background(), tmpl, map[string]any{
		"function_name": "greet",
	}, Options{Enhance: true})
	require.NoError(t, err)

	assert.True(t, result.Metadata.Enhanced)
	assert.Contains(t, result.Files["greet.py"], "Generated python content")
}

func TestGenerateEnhanceWithoutProvider(t *testing.T) {
	g := New(nil)
	tmpl := pythonFunctionTask(t)

	_, err := g.Generate(context.Background(), tmpl, map[string]any{
		"function_name": "greet",
	}, Options{Enhance: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no provider is configured")
}

func TestGenerateEnhanceFailureAborts(t *testing.T) {
	boom := errors.New("provider down")
	g := New(&llm.Static{Err: boom})
	tmpl := pythonFunctionTask(t)

	_, err := g.Generate(context.Background(), tmpl, map[string]any{
		"function_name": "greet",
	}, Options{Enhance: true})
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom), "provider error should be wrapped, got %v", err)
	assert.Contains(t, err.Error(), "enhancing greet.py")
}

func TestGenerateSanitizesOutput(t *testing.T) {
	g := New(nil)
	tmpl, err := task.Load([]byte(`
name: risky
version: 1.0.0
description: d
inputs:
  - name: cmd
    type: string
output:
  type: file
  pattern: run.py
template: "import os\nos.system({{ cmd | quote }})\n"
`))
	require.NoError(t, err)

	result, err := g.Generate(context.Background(), tmpl, map[string]any{"cmd": "ls"}, Options{})
	require.NoError(t, err)

	content := result.Files["run.py"]
	assert.Contains(t, content, "# SECURITY WARNING: Dangerous system command execution")
	assert.Contains(t, content, `# os.system("ls")`)
	assert.NotContains(t, content, "\nos.system(")
}

func TestDetectLanguage(t *testing.T) {
	assert.Equal(t, "python", detectLanguage("a/b.py"))
	assert.Equal(t, "go", detectLanguage("x.GO"))
	assert.Equal(t, "text", detectLanguage("Makefile"))
}
