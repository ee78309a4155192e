package tool

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Default sizing for tool output post-processing, in characters.
const (
	DefaultThreshold         = 4000
	DefaultKeepPrefix        = 1500
	DefaultKeepSuffix        = 1500
	DefaultSummaryInputLimit = 32000
)

// Summarizer condenses oversized tool output. Implementations typically
// issue a model call; the processor only requires shorter text back.
type Summarizer interface {
	Summarize(ctx context.Context, toolName, content string) (string, error)
}

// SummarizerFunc adapts a function to the Summarizer interface.
type SummarizerFunc func(ctx context.Context, toolName, content string) (string, error)

// Summarize calls the underlying function.
func (fn SummarizerFunc) Summarize(ctx context.Context, toolName, content string) (string, error) {
	return fn(ctx, toolName, content)
}

type summaryKey struct {
	tool        string
	fingerprint [sha256.Size]byte
}

// Processor bounds the size of tool output before it enters conversation
// history. Output below the threshold passes through unchanged; oversized
// output is summarized when the tool allows it, or truncated structurally
// when it does not. Summaries for identical (tool, content) pairs are
// computed once per process and served from a fingerprint-keyed cache.
// It is safe for concurrent use.
type Processor struct {
	// Threshold is the global size limit above which output is processed.
	// A tool's MaxOutputSize overrides it per tool.
	Threshold int
	// KeepPrefix and KeepSuffix control how much of the original content
	// structural truncation preserves at each end.
	KeepPrefix int
	KeepSuffix int
	// SummaryInputLimit bounds how much content is handed to the
	// summarizer in one pass.
	SummaryInputLimit int
	// Summarizer condenses oversized output. When nil, all oversized
	// output falls back to structural truncation.
	Summarizer Summarizer

	mu    sync.Mutex
	cache map[summaryKey]string
}

// NewProcessor creates a Processor with default sizing.
func NewProcessor(summarizer Summarizer) *Processor {
	return &Processor{
		Threshold:         DefaultThreshold,
		KeepPrefix:        DefaultKeepPrefix,
		KeepSuffix:        DefaultKeepSuffix,
		SummaryInputLimit: DefaultSummaryInputLimit,
		Summarizer:        summarizer,
		cache:             make(map[summaryKey]string),
	}
}

// Process applies size bounding to one tool's output. The tool may be nil,
// in which case global defaults apply and summarization is allowed.
// Non-text payloads such as image data URIs pass through untouched.
func (p *Processor) Process(ctx context.Context, f *Func, output string) string {
	if strings.HasPrefix(output, "data:") {
		return output
	}

	threshold := p.Threshold
	if f != nil && f.MaxOutputSize > 0 {
		threshold = f.MaxOutputSize
	}
	if len(output) <= threshold {
		return output
	}

	allowSummary := f == nil || f.AllowSummary
	if !allowSummary || p.Summarizer == nil {
		return p.truncate(output)
	}

	toolName := ""
	if f != nil {
		toolName = f.Name
	}
	key := summaryKey{tool: toolName, fingerprint: sha256.Sum256([]byte(output))}

	p.mu.Lock()
	if cached, ok := p.cache[key]; ok {
		p.mu.Unlock()
		return cached
	}
	p.mu.Unlock()

	input := output
	if len(input) > p.SummaryInputLimit {
		input = input[:p.SummaryInputLimit] + "\n[truncated for summary]"
	}

	summary, err := p.Summarizer.Summarize(ctx, toolName, input)
	if err != nil {
		// The original output must not be lost to a failed summary call.
		return p.truncate(output)
	}

	var sb strings.Builder
	if note := scanIssues(output); note != "" {
		sb.WriteString(note)
		sb.WriteString("\n")
	}
	sb.WriteString(summary)
	fmt.Fprintf(&sb, "\n[Summarized output: %d→%d lines, %d→%d chars]",
		countLines(output), countLines(summary), len(output), len(summary))
	result := sb.String()

	p.mu.Lock()
	p.cache[key] = result
	p.mu.Unlock()
	return result
}

// truncate keeps the head and tail of the content and drops the middle.
func (p *Processor) truncate(output string) string {
	prefix, suffix := p.KeepPrefix, p.KeepSuffix
	if prefix+suffix >= len(output) {
		return output
	}
	kept := prefix + suffix
	return output[:prefix] +
		fmt.Sprintf("\n[Output truncated: %d→%d chars]\n", len(output), kept) +
		output[len(output)-suffix:]
}

// CacheSize returns the number of cached summaries.
func (p *Processor) CacheSize() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.cache)
}

// ClearCache drops all cached summaries.
func (p *Processor) ClearCache() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cache = make(map[summaryKey]string)
}

var issuePatterns = []string{"Error", "Exception", "Retry", "Failed", "Timeout", "Traceback"}

// scanIssues flags repeated failure signals so they survive summarization.
func scanIssues(content string) string {
	counts := make(map[string]int)
	for _, pattern := range issuePatterns {
		if n := strings.Count(content, pattern); n >= 3 {
			counts[pattern] = n
		}
	}
	if len(counts) == 0 {
		return ""
	}

	patterns := make([]string, 0, len(counts))
	for pattern := range counts {
		patterns = append(patterns, pattern)
	}
	sort.Strings(patterns)

	parts := make([]string, len(patterns))
	for i, pattern := range patterns {
		parts[i] = fmt.Sprintf("%s (%d occurrences)", pattern, counts[pattern])
	}
	return "Potential issues detected: " + strings.Join(parts, ", ")
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}
