// Package diff produces plain unified diffs. Output is unstyled text so it
// can be embedded in errors, logs, and tests; the CLI colorizes lines when
// printing to a terminal.
package diff

import (
	"fmt"
	"strings"
)

type op int

const (
	opEqual op = iota
	opAdd
	opDelete
)

type editLine struct {
	oldNum  int // 1-based line number in old, 0 if added
	newNum  int // 1-based line number in new, 0 if deleted
	content string
	op      op
}

const contextLines = 3

// Unified returns a unified diff between old and new content, labelled
// a/<path> and b/<path>. Identical content yields an empty string.
func Unified(path, old, newer string) string {
	if old == newer {
		return ""
	}

	oldLines := splitLines(old)
	newLines := splitLines(newer)
	edits := editScript(oldLines, newLines)
	hunks := buildHunks(edits)
	if len(hunks) == 0 {
		return ""
	}

	var buf strings.Builder
	fmt.Fprintf(&buf, "--- a/%s\n", path)
	fmt.Fprintf(&buf, "+++ b/%s\n", path)
	for _, h := range hunks {
		buf.WriteString(h.format())
	}
	return buf.String()
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// editScript computes the shortest edit script between two line slices
// using Myers' O(ND) algorithm.
func editScript(old, newer []string) []editLine {
	n, m := len(old), len(newer)
	maxD := n + m

	v := map[int]int{1: 0}
	var trace []map[int]int

	for d := 0; d <= maxD; d++ {
		snapshot := make(map[int]int, len(v))
		for k, x := range v {
			snapshot[k] = x
		}
		trace = append(trace, snapshot)

		for k := -d; k <= d; k += 2 {
			var x int
			if k == -d || (k != d && v[k-1] < v[k+1]) {
				x = v[k+1]
			} else {
				x = v[k-1] + 1
			}
			y := x - k
			for x < n && y < m && old[x] == newer[y] {
				x++
				y++
			}
			v[k] = x
			if x >= n && y >= m {
				return backtrack(trace, old, newer)
			}
		}
	}
	return backtrack(trace, old, newer)
}

func backtrack(trace []map[int]int, old, newer []string) []editLine {
	var reversed []editLine
	x, y := len(old), len(newer)

	for d := len(trace) - 1; d >= 0; d-- {
		v := trace[d]
		k := x - y

		var prevK int
		if k == -d || (k != d && v[k-1] < v[k+1]) {
			prevK = k + 1
		} else {
			prevK = k - 1
		}
		prevX := v[prevK]
		prevY := prevX - prevK

		for x > prevX && y > prevY {
			x--
			y--
			reversed = append(reversed, editLine{oldNum: x + 1, newNum: y + 1, content: old[x], op: opEqual})
		}
		if d > 0 {
			if x == prevX {
				y--
				reversed = append(reversed, editLine{newNum: y + 1, content: newer[y], op: opAdd})
			} else {
				x--
				reversed = append(reversed, editLine{oldNum: x + 1, content: old[x], op: opDelete})
			}
		}
	}

	out := make([]editLine, len(reversed))
	for i, l := range reversed {
		out[len(reversed)-1-i] = l
	}
	return out
}

type hunk struct {
	oldStart, oldCount int
	newStart, newCount int
	lines              []editLine
}

// buildHunks groups changed lines into hunks with surrounding context.
// Equal lines are handled a run at a time: a run longer than twice the
// context window closes the open hunk after contextLines of trailing
// context, and the next change reopens one with contextLines of leading
// context taken from the run's tail.
func buildHunks(edits []editLine) []hunk {
	var hunks []hunk
	var current *hunk

	i := 0
	for i < len(edits) {
		if edits[i].op != opEqual {
			if current == nil {
				start := i - contextLines
				if start < 0 {
					start = 0
				}
				current = &hunk{}
				current.lines = append(current.lines, edits[start:i]...)
			}
			current.lines = append(current.lines, edits[i])
			i++
			continue
		}

		run := 0
		for j := i; j < len(edits) && edits[j].op == opEqual; j++ {
			run++
		}
		if current == nil {
			i += run
			continue
		}

		atEnd := i+run == len(edits)
		switch {
		case atEnd:
			trailing := run
			if trailing > contextLines {
				trailing = contextLines
			}
			current.lines = append(current.lines, edits[i:i+trailing]...)
		case run > contextLines*2:
			current.lines = append(current.lines, edits[i:i+contextLines]...)
			current.finalize()
			hunks = append(hunks, *current)
			current = nil
		default:
			// Short gap between changes: keep the whole run in the hunk.
			current.lines = append(current.lines, edits[i:i+run]...)
		}
		i += run
	}

	if current != nil {
		current.finalize()
		hunks = append(hunks, *current)
	}
	return hunks
}

func (h *hunk) finalize() {
	for _, line := range h.lines {
		if line.oldNum > 0 && (h.oldStart == 0 || line.oldNum < h.oldStart) {
			h.oldStart = line.oldNum
		}
		if line.newNum > 0 && (h.newStart == 0 || line.newNum < h.newStart) {
			h.newStart = line.newNum
		}
		switch line.op {
		case opDelete:
			h.oldCount++
		case opAdd:
			h.newCount++
		case opEqual:
			h.oldCount++
			h.newCount++
		}
	}
}

func (h *hunk) format() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "@@ -%d,%d +%d,%d @@\n", h.oldStart, h.oldCount, h.newStart, h.newCount)
	for _, line := range h.lines {
		switch line.op {
		case opAdd:
			buf.WriteString("+")
		case opDelete:
			buf.WriteString("-")
		case opEqual:
			buf.WriteString(" ")
		}
		buf.WriteString(line.content)
		buf.WriteString("\n")
	}
	return buf.String()
}
