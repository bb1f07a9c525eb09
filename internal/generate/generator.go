// Package generate turns a validated task template plus a flat input map
// into a set of (path, content) pairs, optionally rewritten by a language
// model and always passed through the content sanitizer.
//
// Generation is all-or-nothing: any failure returns no files at all.
package generate

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/lucasreid/stencil/internal/llm"
	"github.com/lucasreid/stencil/internal/sanitize"
	"github.com/lucasreid/stencil/internal/task"
)

// Error is returned for every generation failure: missing or invalid
// inputs, template expansion problems, and enhancement failures. It wraps
// the underlying cause where one exists.
type Error struct {
	Msg string
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func errf(format string, args ...any) *Error {
	return &Error{Msg: fmt.Sprintf(format, args...)}
}

// Metadata records how a result was produced.
type Metadata struct {
	ID       string
	Template string
	Version  string
	Enhanced bool
	Inputs   map[string]any
}

// Result is one generation run's output: final file contents keyed by
// project-relative path, rendered validation commands, and metadata.
type Result struct {
	Files        map[string]string
	Commands     []string
	Metadata     Metadata
	TemplateName string
}

// Options configures a generation run.
type Options struct {
	// Enhance routes every rendered file through the language model for a
	// full-content rewrite before sanitization.
	Enhance bool
}

// Generator renders task templates. The provider may be nil when
// enhancement is never requested.
type Generator struct {
	provider llm.Provider
	renderer *Renderer
}

// New creates a generator using the given text-generation provider.
func New(provider llm.Provider) *Generator {
	return &Generator{
		provider: provider,
		renderer: NewRenderer(),
	}
}

// Generate runs the full pipeline for one template and input map.
func (g *Generator) Generate(ctx context.Context, tmpl *task.Template, inputs map[string]any, opts Options) (*Result, error) {
	if err := checkRequired(tmpl, inputs); err != nil {
		return nil, err
	}

	eff := materialize(tmpl, inputs)

	if err := checkPatterns(tmpl, eff); err != nil {
		return nil, err
	}

	files, outPath, err := g.renderBody(tmpl, eff)
	if err != nil {
		return nil, err
	}

	if opts.Enhance {
		files, err = g.enhance(ctx, tmpl, files, eff)
		if err != nil {
			return nil, err
		}
	}

	files = sanitize.Files(files)

	commands, err := g.renderCommands(tmpl, eff, outPath)
	if err != nil {
		return nil, err
	}

	return &Result{
		Files:    files,
		Commands: commands,
		Metadata: Metadata{
			ID:       uuid.NewString(),
			Template: tmpl.Name,
			Version:  tmpl.Version,
			Enhanced: opts.Enhance,
			Inputs:   eff,
		},
		TemplateName: tmpl.Name,
	}, nil
}

// checkRequired fails naming every missing required input, not just the
// first.
func checkRequired(tmpl *task.Template, inputs map[string]any) error {
	var missing []string
	for _, in := range tmpl.Inputs {
		if in.Required {
			if _, ok := inputs[in.Name]; !ok {
				missing = append(missing, in.Name)
			}
		}
	}
	if len(missing) > 0 {
		return errf("missing required input(s): %s", strings.Join(missing, ", "))
	}
	return nil
}

// materialize copies the caller's inputs and fills declared defaults for
// absent optional inputs. An optional input with no default stays absent.
func materialize(tmpl *task.Template, inputs map[string]any) map[string]any {
	eff := make(map[string]any, len(inputs)+len(tmpl.Inputs))
	for k, v := range inputs {
		eff[k] = v
	}
	for _, in := range tmpl.Inputs {
		if _, ok := eff[in.Name]; !ok && in.Default != nil {
			eff[in.Name] = in.Default
		}
	}
	return eff
}

// checkPatterns validates every constrained input present in the effective
// map. Patterns are anchored at the start of the stringified value.
func checkPatterns(tmpl *task.Template, eff map[string]any) error {
	for _, in := range tmpl.Inputs {
		if in.Pattern == "" {
			continue
		}
		value, ok := eff[in.Name]
		if !ok {
			continue
		}
		re, err := regexp.Compile("^(?:" + in.Pattern + ")")
		if err != nil {
			return &Error{
				Msg: fmt.Sprintf("input %q has an invalid pattern %q", in.Name, in.Pattern),
				Err: err,
			}
		}
		if !re.MatchString(fmt.Sprintf("%v", value)) {
			return errf("input %q value %v does not match pattern %q", in.Name, value, in.Pattern)
		}
	}
	return nil
}

// renderBody expands the template body into the file set, and also returns
// the expanded output path for use in validation commands.
func (g *Generator) renderBody(tmpl *task.Template, eff map[string]any) (map[string]string, string, error) {
	outPath, err := g.outputPath(tmpl, eff)
	if err != nil {
		return nil, "", err
	}

	files := make(map[string]string)

	if !tmpl.Template.Multi() {
		content, err := g.renderer.Render(tmpl.Name+"/body", tmpl.Template.Single, eff)
		if err != nil {
			return nil, "", &Error{Msg: "template rendering failed", Err: err}
		}
		files[outPath] = content
		return files, outPath, nil
	}

	patterns := make([]string, 0, len(tmpl.Template.Files))
	for p := range tmpl.Template.Files {
		patterns = append(patterns, p)
	}
	sort.Strings(patterns)

	for _, pattern := range patterns {
		path, err := g.renderer.Render(tmpl.Name+"/path", pattern, eff)
		if err != nil {
			return nil, "", &Error{Msg: "output path rendering failed", Err: err}
		}
		if tmpl.Output.Location != "" {
			location, err := g.renderer.Render(tmpl.Name+"/location", tmpl.Output.Location, eff)
			if err != nil {
				return nil, "", &Error{Msg: "output location rendering failed", Err: err}
			}
			path = strings.TrimRight(location, "/") + "/" + path
		}
		if _, ok := files[path]; ok {
			return nil, "", errf("template produces duplicate output path %q", path)
		}
		content, err := g.renderer.Render(tmpl.Name+"/content", tmpl.Template.Files[pattern], eff)
		if err != nil {
			return nil, "", &Error{Msg: "template rendering failed", Err: err}
		}
		files[path] = content
	}

	return files, outPath, nil
}

// outputPath expands the declared output pattern, prefixed by the expanded
// location when one is declared.
func (g *Generator) outputPath(tmpl *task.Template, eff map[string]any) (string, error) {
	name, err := g.renderer.Render(tmpl.Name+"/output", tmpl.Output.Pattern, eff)
	if err != nil {
		return "", &Error{Msg: "output pattern rendering failed", Err: err}
	}
	if tmpl.Output.Location == "" {
		return name, nil
	}
	location, err := g.renderer.Render(tmpl.Name+"/location", tmpl.Output.Location, eff)
	if err != nil {
		return "", &Error{Msg: "output location rendering failed", Err: err}
	}
	return strings.TrimRight(location, "/") + "/" + name, nil
}

// renderCommands expands the post-generation validation command templates
// with the effective inputs plus the resolved output path bound to
// output_file.
func (g *Generator) renderCommands(tmpl *task.Template, eff map[string]any, outPath string) ([]string, error) {
	if len(tmpl.Validation) == 0 {
		return nil, nil
	}

	data := make(map[string]any, len(eff)+1)
	for k, v := range eff {
		data[k] = v
	}
	data["output_file"] = outPath

	commands := make([]string, 0, len(tmpl.Validation))
	for i, src := range tmpl.Validation {
		cmd, err := g.renderer.Render(fmt.Sprintf("%s/validation[%d]", tmpl.Name, i), src, data)
		if err != nil {
			return nil, &Error{Msg: "validation command rendering failed", Err: err}
		}
		commands = append(commands, cmd)
	}
	return commands, nil
}
