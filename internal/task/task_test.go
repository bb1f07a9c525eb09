package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validTask = `
name: greeting
version: 1.0.0
description: Generate a greeting file
inputs:
  - name: person
    type: string
    required: true
    pattern: "^[a-z]+$"
  - name: salutation
    type: string
    required: false
    default: hello
output:
  type: file
  pattern: "{{ person }}.txt"
validation:
  - "cat {{ output_file }}"
template: "{{ salutation }}, {{ person }}!"
`

func TestLoadValid(t *testing.T) {
	tmpl, err := Load([]byte(validTask))
	require.NoError(t, err)

	assert.Equal(t, "greeting", tmpl.Name)
	assert.Equal(t, "1.0.0", tmpl.Version)
	require.Len(t, tmpl.Inputs, 2)
	assert.True(t, tmpl.Inputs[0].Required)
	assert.False(t, tmpl.Inputs[1].Required)
	assert.Equal(t, "hello", tmpl.Inputs[1].Default)
	assert.Equal(t, "file", tmpl.Output.Type)
	assert.False(t, tmpl.Template.Multi())
	assert.Equal(t, "{{ salutation }}, {{ person }}!", tmpl.Template.Single)
}

func TestLoadRequiredDefaultsTrue(t *testing.T) {
	tmpl, err := Load([]byte(`
name: t
version: 1.0.0
description: d
inputs:
  - name: x
    type: string
output:
  type: file
  pattern: out.txt
template: body
`))
	require.NoError(t, err)
	assert.True(t, tmpl.Inputs[0].Required, "required should default to true when omitted")
}

func TestLoadMultiFileBody(t *testing.T) {
	tmpl, err := Load([]byte(`
name: pkg
version: 1.0.0
description: d
inputs:
  - name: pkg_name
    type: string
output:
  type: directory
  pattern: "{{ pkg_name }}"
template:
  "{{ pkg_name }}/main.txt": "content a"
  "{{ pkg_name }}/doc.txt": "content b"
`))
	require.NoError(t, err)
	assert.True(t, tmpl.Template.Multi())
	assert.Len(t, tmpl.Template.Files, 2)
}

func TestLoadMissingFields(t *testing.T) {
	_, err := Load([]byte("name: only-a-name"))
	require.Error(t, err)

	verrs, ok := err.(ValidationErrors)
	require.True(t, ok, "expected ValidationErrors, got %T", err)
	// name present, the other five required fields missing
	assert.Len(t, verrs, 5)
	assert.Contains(t, verrs.Error(), "version")
	assert.Contains(t, verrs.Error(), "template")
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "duplicate input names",
			yaml: `
name: t
version: 1.0.0
description: d
inputs:
  - name: x
    type: string
  - name: x
    type: string
output:
  type: file
  pattern: out.txt
template: body
`,
			want: `duplicate input name "x"`,
		},
		{
			name: "unknown input type",
			yaml: `
name: t
version: 1.0.0
description: d
inputs:
  - name: x
    type: decimal
output:
  type: file
  pattern: out.txt
template: body
`,
			want: `unknown input type "decimal"`,
		},
		{
			name: "unknown output type",
			yaml: `
name: t
version: 1.0.0
description: d
inputs:
  - name: x
    type: string
output:
  type: socket
  pattern: out.txt
template: body
`,
			want: `unknown output type "socket"`,
		},
		{
			name: "empty output pattern",
			yaml: `
name: t
version: 1.0.0
description: d
inputs:
  - name: x
    type: string
output:
  type: file
  pattern: ""
template: body
`,
			want: "output pattern is empty",
		},
		{
			name: "empty template body",
			yaml: `
name: t
version: 1.0.0
description: d
inputs:
  - name: x
    type: string
output:
  type: file
  pattern: out.txt
template: ""
`,
			want: "template body is empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadNotAMapping(t *testing.T) {
	_, err := Load([]byte("- a\n- list"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be a mapping")
}

func TestValidationErrorSuggestion(t *testing.T) {
	e := &ValidationError{Field: "output.type", Message: "bad", Suggestion: "use file"}
	assert.Contains(t, e.Error(), "Suggestion: use file")
}
