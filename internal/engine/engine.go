package engine

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/gnolang/wtp"
	"github.com/gnolang/wtp/internal/config"
	"github.com/gnolang/wtp/internal/rules"
	"github.com/gnolang/wtp/scanner"
)

// Record is one argument found in a file.
type Record struct {
	File       string `json:"file"`
	Template   string `json:"template"`
	Argument   string `json:"argument"`
	Value      string `json:"value"`
	Text       string `json:"text"`
	Positional bool   `json:"positional"`
	Start      int    `json:"start"`
	End        int    `json:"end"`
	Line       int    `json:"line"`
	Column     int    `json:"column"`
}

// Engine inspects and rewrites wikitext files.
type Engine struct {
	rules      []rules.Rule
	extensions []string
	cache      *Cache
}

// New returns an engine for cfg, loading its rules file when one is set.
func New(cfg config.Config) (*Engine, error) {
	e := &Engine{extensions: cfg.Extensions}
	if cfg.RulesFile != "" {
		rs, err := rules.Load(cfg.RulesFile)
		if err != nil {
			return nil, fmt.Errorf("error loading rules from %s: %w", cfg.RulesFile, err)
		}
		e.rules = rs
	}
	return e, nil
}

// Rules returns the rewrite rules the engine applies in Fix.
func (e *Engine) Rules() []rules.Rule { return e.rules }

// IsTarget reports whether path has one of the configured extensions.
func (e *Engine) IsTarget(path string) bool {
	return scanner.New("", e.extensions...).IsTarget(path)
}

// SetCache makes Inspect reuse the records of files whose content did not
// change. A nil cache turns caching off.
func (e *Engine) SetCache(c *Cache) { e.cache = c }

// Inspect lists the arguments of every template and parser function in the
// file at path.
func (e *Engine) Inspect(path string) ([]Record, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", path, err)
	}
	if e.cache != nil {
		if records, ok := e.cache.Get(path, src); ok {
			return records, nil
		}
	}
	records := InspectSource(path, src)
	if e.cache != nil {
		e.cache.Set(path, src, records)
	}
	return records, nil
}

// unchanged reports whether the cache holds records for the current content
// of path.
func (e *Engine) unchanged(path string) bool {
	if e.cache == nil {
		return false
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	_, ok := e.cache.Get(path, src)
	return ok
}

// InspectSource lists the arguments found in src, attributing them to name.
func InspectSource(name string, src []byte) []Record {
	doc := wtp.Parse(string(src))
	lines := newLineIndex(src)

	var records []Record
	add := func(owner string, args []*wtp.Argument) {
		for _, arg := range args {
			span := arg.Span()
			line, col := lines.position(span.Start)
			records = append(records, Record{
				File:       name,
				Template:   owner,
				Argument:   strings.TrimSpace(arg.Name()),
				Value:      arg.Value(),
				Text:       arg.String(),
				Positional: arg.Positional(),
				Start:      span.Start,
				End:        span.End,
				Line:       line,
				Column:     col,
			})
		}
	}
	for _, tpl := range doc.Templates() {
		add(tpl.Name(), tpl.Arguments())
	}
	for _, pf := range doc.ParserFunctions() {
		add(pf.Name(), pf.Arguments())
	}
	return records
}

// Fix applies the rules to the file at path and writes it back unless
// dryRun is set. Rules that fail on some templates do not prevent the other
// changes from being written; their errors are returned with the changes.
func (e *Engine) Fix(path string, dryRun bool) ([]rules.Change, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing %s: %w", path, err)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", path, err)
	}

	doc := wtp.Parse(string(src))
	changes, applyErr := rules.Apply(doc, e.rules)
	if len(changes) == 0 || dryRun {
		return changes, applyErr
	}

	if err := os.WriteFile(path, []byte(doc.String()), info.Mode().Perm()); err != nil {
		return changes, fmt.Errorf("error writing %s: %w", path, err)
	}
	return changes, applyErr
}

// lineIndex maps byte offsets to 1-based line and column numbers.
type lineIndex struct {
	src    []byte
	starts []int
}

func newLineIndex(src []byte) lineIndex {
	starts := []int{0}
	for i, c := range src {
		if c == '\n' {
			starts = append(starts, i+1)
		}
	}
	return lineIndex{src: src, starts: starts}
}

func (l lineIndex) position(offset int) (line, column int) {
	line = len(l.starts)
	for i, start := range l.starts {
		if start > offset {
			line = i
			break
		}
	}
	start := l.starts[line-1]
	return line, utf8.RuneCount(l.src[start:offset]) + 1
}
