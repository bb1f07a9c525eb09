package generate

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lucasreid/stencil/internal/llm"
	"github.com/lucasreid/stencil/internal/task"
)

const (
	enhanceStyle       = "professional"
	enhanceMaxTokens   = 2000
	enhanceTemperature = 0.3
)

// languageByExt maps file extensions to the coarse language label passed
// to the provider. Unknown extensions fall back to "text".
var languageByExt = map[string]string{
	".py":   "python",
	".js":   "javascript",
	".ts":   "typescript",
	".java": "java",
	".cpp":  "cpp",
	".c":    "c",
	".go":   "go",
	".rs":   "rust",
	".rb":   "ruby",
	".php":  "php",
	".md":   "markdown",
	".yml":  "yaml",
	".yaml": "yaml",
	".json": "json",
	".html": "html",
	".css":  "css",
}

// detectLanguage derives the language label from a file path.
func detectLanguage(path string) string {
	if lang, ok := languageByExt[strings.ToLower(filepath.Ext(path))]; ok {
		return lang
	}
	return "text"
}

// enhance routes every file through the provider for a full rewrite. The
// provider's reply replaces the file's content wholesale. One failure
// aborts the whole step; partial enhancement is never returned.
func (g *Generator) enhance(ctx context.Context, tmpl *task.Template, files map[string]string, eff map[string]any) (map[string]string, error) {
	if g.provider == nil {
		return nil, errf("enhancement requested but no provider is configured")
	}

	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	enhanced := make(map[string]string, len(files))
	for _, path := range paths {
		prompt := buildEnhancementPrompt(tmpl, path, files[path], eff)

		resp, err := g.provider.Generate(ctx, prompt, llm.Request{
			Language:    detectLanguage(path),
			Style:       enhanceStyle,
			MaxTokens:   enhanceMaxTokens,
			Temperature: enhanceTemperature,
		})
		if err != nil {
			return nil, &Error{Msg: fmt.Sprintf("enhancing %s", path), Err: err}
		}
		enhanced[path] = resp.Content
	}
	return enhanced, nil
}

// buildEnhancementPrompt produces a deterministic prompt for one file.
// Inputs are embedded in sorted key order so identical runs yield
// identical prompts.
func buildEnhancementPrompt(tmpl *task.Template, path, content string, eff map[string]any) string {
	keys := make([]string, 0, len(eff))
	for k := range eff {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var ctxPairs strings.Builder
	for i, k := range keys {
		if i > 0 {
			ctxPairs.WriteString(", ")
		}
		fmt.Fprintf(&ctxPairs, "%s=%v", k, eff[k])
	}

	return fmt.Sprintf(`Enhance and improve the following generated code:

Task: %s
File: %s
Context: %s

Current generated code:
`+"```"+`
%s
`+"```"+`

Please enhance this code by:
1. Adding proper error handling and validation
2. Improving code structure and readability
3. Adding comprehensive documentation
4. Following best practices and conventions
5. Making it production-ready

Return only the enhanced code, no explanations.`, tmpl.Description, path, ctxPairs.String(), content)
}
