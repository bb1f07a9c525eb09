// Package task loads and validates named task templates.
//
// A task template declares the inputs a generation run accepts, the output
// path rule, the template body (a single string or a mapping of file
// patterns to content), and optional post-generation validation commands.
// Templates are immutable once loaded.
package task

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// InputTypes is the fixed set of declared input types. The type is
// advisory: render time only enforces presence and pattern.
var InputTypes = []string{"string", "integer", "float", "boolean", "array", "object"}

// OutputTypes is the fixed set of declared output kinds.
var OutputTypes = []string{"file", "directory", "string"}

// Input declares one task input parameter.
type Input struct {
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	Required    bool   `yaml:"required"`
	Description string `yaml:"description,omitempty"`
	Pattern     string `yaml:"pattern,omitempty"`
	Default     any    `yaml:"default,omitempty"`
}

// UnmarshalYAML decodes an input, defaulting Required to true when the
// definition omits it.
func (in *Input) UnmarshalYAML(node *yaml.Node) error {
	type plain Input
	tmp := plain{Required: true}
	if err := node.Decode(&tmp); err != nil {
		return err
	}
	*in = Input(tmp)
	return nil
}

// Output declares where rendered content lands. The final path is Location
// (template-expanded, trailing slash stripped) joined with Pattern
// (template-expanded); an empty Location means just the expanded Pattern.
type Output struct {
	Type     string `yaml:"type"`
	Pattern  string `yaml:"pattern"`
	Location string `yaml:"location,omitempty"`
}

// Body is a task template body: either one template string or a mapping
// from file-path pattern to template content.
type Body struct {
	Single string
	Files  map[string]string
}

// Multi reports whether the body is a path-to-content mapping.
func (b *Body) Multi() bool {
	return b.Files != nil
}

// UnmarshalYAML accepts a scalar body or a mapping body.
func (b *Body) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		return node.Decode(&b.Single)
	case yaml.MappingNode:
		b.Files = make(map[string]string)
		return node.Decode(&b.Files)
	default:
		return fmt.Errorf("template must be a string or a mapping of file patterns to content")
	}
}

// Template is a named, versioned task definition. Construct via Load or
// LoadFile; do not mutate after loading.
type Template struct {
	Name        string   `yaml:"name"`
	Version     string   `yaml:"version"`
	Description string   `yaml:"description"`
	Inputs      []Input  `yaml:"inputs"`
	Output      Output   `yaml:"output"`
	Validation  []string `yaml:"validation,omitempty"`
	Template    Body     `yaml:"template"`
}

// ValidationError describes one problem in a task definition.
type ValidationError struct {
	Field      string
	Message    string
	Suggestion string
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("invalid task definition at %s: %s", e.Field, e.Message)
	if e.Suggestion != "" {
		msg += fmt.Sprintf(". Suggestion: %s", e.Suggestion)
	}
	return msg
}

// ValidationErrors collects every problem found in one definition.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "invalid task definition"
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "found %d problems in task definition:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&buf, "  %d. %s\n", i+1, err.Error())
	}
	return buf.String()
}

// requiredFields must all be present in a definition document.
var requiredFields = []string{"name", "version", "description", "inputs", "output", "template"}

// Load parses and validates a task definition from YAML bytes.
func Load(data []byte) (*Template, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ValidationError{Field: "document", Message: err.Error()}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, &ValidationError{Field: "document", Message: "task definition must be a mapping"}
	}

	var errs ValidationErrors

	present := make(map[string]bool)
	root := doc.Content[0]
	for i := 0; i+1 < len(root.Content); i += 2 {
		present[root.Content[i].Value] = true
	}
	for _, field := range requiredFields {
		if !present[field] {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: "required field is missing",
			})
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}

	var tmpl Template
	if err := root.Decode(&tmpl); err != nil {
		return nil, &ValidationError{Field: "document", Message: err.Error()}
	}

	errs = append(errs, tmpl.validate()...)
	if len(errs) > 0 {
		return nil, errs
	}
	return &tmpl, nil
}

// LoadFile reads and validates a task definition from disk.
func LoadFile(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading task file %s: %w", path, err)
	}
	tmpl, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("task file %s: %w", path, err)
	}
	return tmpl, nil
}

func (t *Template) validate() ValidationErrors {
	var errs ValidationErrors

	seen := make(map[string]bool)
	for i, in := range t.Inputs {
		field := fmt.Sprintf("inputs[%d]", i)
		if in.Name == "" {
			errs = append(errs, ValidationError{Field: field + ".name", Message: "input name is empty"})
		} else if seen[in.Name] {
			errs = append(errs, ValidationError{
				Field:   field + ".name",
				Message: fmt.Sprintf("duplicate input name %q", in.Name),
			})
		}
		seen[in.Name] = true

		if !contains(InputTypes, in.Type) {
			errs = append(errs, ValidationError{
				Field:      field + ".type",
				Message:    fmt.Sprintf("unknown input type %q", in.Type),
				Suggestion: fmt.Sprintf("use one of %v", InputTypes),
			})
		}
	}

	if !contains(OutputTypes, t.Output.Type) {
		errs = append(errs, ValidationError{
			Field:      "output.type",
			Message:    fmt.Sprintf("unknown output type %q", t.Output.Type),
			Suggestion: fmt.Sprintf("use one of %v", OutputTypes),
		})
	}
	if t.Output.Pattern == "" {
		errs = append(errs, ValidationError{Field: "output.pattern", Message: "output pattern is empty"})
	}

	if !t.Template.Multi() && t.Template.Single == "" {
		errs = append(errs, ValidationError{Field: "template", Message: "template body is empty"})
	}

	return errs
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
