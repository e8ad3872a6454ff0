// Package chunker splits Markdown-ish text into size-bounded chunks that
// follow the document's structure (headings, fenced code, paragraphs).
package chunker

import (
	"strings"

	"github.com/starford/seekr/internal/models"
)

// Defaults, in estimated tokens.
const (
	DefaultTargetTokens = 300
	DefaultMinTokens    = 100
)

// Chunker produces chunks from document text. A zero Chunker is not usable;
// construct one with New.
type Chunker struct {
	target    int
	min       int
	estimator TokenEstimator
}

// Option configures a Chunker.
type Option func(*Chunker)

// WithTargetTokens sets the size at which a chunk is flushed at the next boundary.
func WithTargetTokens(n int) Option {
	return func(c *Chunker) {
		if n > 0 {
			c.target = n
		}
	}
}

// WithMinTokens sets the soft floor below which a heading does not start a new chunk.
func WithMinTokens(n int) Option {
	return func(c *Chunker) {
		if n >= 0 {
			c.min = n
		}
	}
}

// WithEstimator replaces the token estimation strategy.
func WithEstimator(e TokenEstimator) Option {
	return func(c *Chunker) {
		if e != nil {
			c.estimator = e
		}
	}
}

// New creates a Chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		target:    DefaultTargetTokens,
		min:       DefaultMinTokens,
		estimator: DefaultEstimator,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.min > c.target {
		c.min = c.target
	}
	return c
}

// pending accumulates lines of the chunk being built.
type pending struct {
	buf   strings.Builder
	start int // 1-based line of the first buffered line, 0 when empty
	end   int
}

func (p *pending) add(line string, lineNo int) {
	if p.start == 0 {
		p.start = lineNo
	} else {
		p.buf.WriteByte('\n')
	}
	p.buf.WriteString(line)
	p.end = lineNo
}

func (p *pending) empty() bool { return p.start == 0 }

// Chunk splits text into chunks in document order. The result is
// deterministic for a given input and configuration.
func (c *Chunker) Chunk(text string) []models.Chunk {
	lines := splitLines(text)
	var (
		out     []models.Chunk
		cur     pending
		inFence bool
	)

	size := func() int { return c.estimator.Estimate(cur.buf.String()) }

	flush := func() {
		if cur.empty() {
			return
		}
		body := strings.TrimRight(cur.buf.String(), " \t\r\n")
		body = strings.TrimLeft(body, "\r\n")
		if strings.TrimSpace(body) != "" {
			out = append(out, models.Chunk{
				Seq:       len(out),
				Text:      body,
				StartLine: cur.start,
				EndLine:   cur.end,
				Tokens:    c.estimator.Estimate(body),
			})
		}
		cur = pending{}
	}

	for i, line := range lines {
		lineNo := i + 1

		if inFence {
			cur.add(line, lineNo)
			if isFence(line) {
				inFence = false
				if size() >= c.target {
					flush()
				}
			}
			continue
		}

		switch {
		case isFence(line):
			cur.add(line, lineNo)
			inFence = true

		case isHeading(line):
			if !cur.empty() && size() >= c.min {
				flush()
			}
			cur.add(line, lineNo)

		default:
			cur.add(line, lineNo)
			if size() >= c.target && (strings.TrimSpace(line) == "" || isRule(line)) {
				flush()
			}
		}
	}
	flush()

	return out
}

// splitLines splits on '\n'. A single trailing newline does not produce an
// extra empty line.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.TrimSuffix(text, "\n")
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

func isFence(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "```")
}

// isHeading matches ATX headings: 1-6 '#' followed by whitespace or end of line.
func isHeading(line string) bool {
	trimmed := strings.TrimLeft(line, " ")
	if len(line)-len(trimmed) > 3 {
		return false
	}
	n := 0
	for n < len(trimmed) && trimmed[n] == '#' {
		n++
	}
	if n == 0 || n > 6 {
		return false
	}
	return n == len(trimmed) || trimmed[n] == ' ' || trimmed[n] == '\t'
}

// isRule matches a line made only of three or more '-', '*' or '_'.
func isRule(line string) bool {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) < 3 {
		return false
	}
	ch := trimmed[0]
	if ch != '-' && ch != '*' && ch != '_' {
		return false
	}
	return strings.Count(trimmed, string(ch)) == len(trimmed)
}
