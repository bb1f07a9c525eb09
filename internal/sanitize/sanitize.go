// Package sanitize scans generated content for dangerous code patterns and
// neutralizes matching lines by commenting them out.
//
// Detection is line-based against a fixed, ordered rule list; the first
// matching rule wins for a line and no further rules are tried. A matched
// line is replaced by a warning comment followed by the original line as a
// comment, so the dangerous code never executes but stays visible for
// review. Files with at least one match get a banner prepended.
package sanitize

import (
	"path/filepath"
	"regexp"
	"strings"
)

// rule pairs a detector with its warning label.
type rule struct {
	re      *regexp.Regexp
	warning string
}

// rules is evaluated in order; earlier entries take precedence.
var rules = []rule{
	{regexp.MustCompile(`os\.system\s*\(`), "Dangerous system command execution"},
	{regexp.MustCompile(`subprocess\.(run|call|Popen).*shell\s*=\s*True`), "Shell injection risk"},
	{regexp.MustCompile(`eval\s*\(`), "Code injection via eval()"},
	{regexp.MustCompile(`exec\s*\(`), "Code injection via exec()"},
	{regexp.MustCompile(`__import__\s*\(`), "Dynamic import security risk"},
	{regexp.MustCompile(`open\s*\([^)]*["']/`), "Absolute path file access"},
	{regexp.MustCompile(`rm\s+-rf\s+/`), "Dangerous file deletion"},
	{regexp.MustCompile(`curl.*https?://`), "Unvalidated external requests"},
	{regexp.MustCompile(`wget.*https?://`), "Unvalidated external requests"},
	{regexp.MustCompile(`input\s*\([^)]*\).*exec`), "User input to code execution"},
	{regexp.MustCompile(`pickle\.loads?\s*\(`), "Unsafe deserialization"},
}

// slashCommentExts are file extensions whose languages comment with "//".
// Everything else gets a "#" comment, which is right for Python, shell,
// YAML, and plain text.
var slashCommentExts = map[string]bool{
	".go": true, ".js": true, ".ts": true, ".java": true,
	".c": true, ".cpp": true, ".h": true, ".rs": true, ".php": true,
	".scala": true, ".kt": true, ".swift": true,
}

// Files sanitizes every file independently. Every input path is present in
// the output; content differs only where a detector matched.
func Files(files map[string]string) map[string]string {
	out := make(map[string]string, len(files))
	for path, content := range files {
		cleaned, _ := File(path, content)
		out[path] = cleaned
	}
	return out
}

// File sanitizes one file's content, choosing the comment syntax from the
// path's extension. It reports whether any line triggered a warning.
func File(path, content string) (string, bool) {
	prefix := commentPrefix(path)
	lines := strings.Split(content, "\n")
	out := make([]string, 0, len(lines))
	flagged := false

	for _, line := range lines {
		warning, matched := match(line)
		if !matched {
			out = append(out, line)
			continue
		}
		flagged = true
		out = append(out, prefix+" SECURITY WARNING: "+warning)
		out = append(out, prefix+" "+line)
	}

	if flagged {
		banner := []string{
			prefix + " SECURITY WARNINGS DETECTED:",
			prefix + " The following potentially dangerous code has been commented out:",
			prefix + " Please review and implement proper security measures.",
			"",
		}
		out = append(banner, out...)
	}

	return strings.Join(out, "\n"), flagged
}

// match returns the warning for the first rule that hits the line.
func match(line string) (string, bool) {
	for _, r := range rules {
		if r.re.MatchString(line) {
			return r.warning, true
		}
	}
	return "", false
}

// commentPrefix picks the line-comment token for the file's language.
func commentPrefix(path string) string {
	if slashCommentExts[strings.ToLower(filepath.Ext(path))] {
		return "//"
	}
	return "#"
}
