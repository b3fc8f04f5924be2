// Package checker verifies a parsed waveform Document against the
// expectations declared in the analysis config.
package checker

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/SJTU-YONGFU-RESEARCH-GRP/spi-customizer/internal/config"
	"github.com/SJTU-YONGFU-RESEARCH-GRP/spi-customizer/internal/schema"
	"github.com/SJTU-YONGFU-RESEARCH-GRP/spi-customizer/internal/vcd"
)

type DiagnosticLevel int

const (
	LevelError DiagnosticLevel = iota
	LevelWarning
)

type Diagnostic struct {
	Level   DiagnosticLevel
	Check   string
	Signal  string
	Message string
}

type Checker struct {
	Diagnostics []Diagnostic

	doc    *vcd.Document
	cfg    *config.Config
	schema *schema.Schema
	mu     sync.Mutex
}

func New(doc *vcd.Document, cfg *config.Config, s *schema.Schema) *Checker {
	return &Checker{doc: doc, cfg: cfg, schema: s}
}

func (c *Checker) report(level DiagnosticLevel, check, signal, format string, args ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Diagnostics = append(c.Diagnostics, Diagnostic{
		Level:   level,
		Check:   check,
		Signal:  signal,
		Message: fmt.Sprintf(format, args...),
	})
}

// Run validates the config against the schema, surfaces the parser's
// diagnostics as warnings, then checks every expectation. Expectations
// run through a small worker pool; the Document is read-only so this is
// safe. Returns ctx.Err() if canceled.
func (c *Checker) Run(ctx context.Context) error {
	if c.schema != nil {
		if err := c.schema.ValidateConfig(c.cfg); err != nil {
			c.report(LevelError, "config_schema", "", "analysis config invalid: %v", err)
			return nil
		}
	}

	for _, d := range c.doc.Diagnostics {
		c.report(LevelWarning, "parse", "", "%s", d.String())
	}

	numWorkers := runtime.NumCPU()
	if numWorkers > len(c.cfg.Expect) {
		numWorkers = len(c.cfg.Expect)
	}
	if numWorkers < 1 {
		numWorkers = 1
	}

	tasks := make(chan config.Expectation)
	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for e := range tasks {
				c.checkExpectation(e)
			}
		}()
	}

	for _, e := range c.cfg.Expect {
		select {
		case <-ctx.Done():
			close(tasks)
			wg.Wait()
			return ctx.Err()
		case tasks <- e:
		}
	}
	close(tasks)
	wg.Wait()
	return nil
}

func (c *Checker) checkExpectation(e config.Expectation) {
	s, err := c.doc.Resolve(e.Signal)
	if err != nil {
		c.report(LevelError, "signal_missing", e.Signal,
			"expected signal %q not found in document", e.Signal)
		return
	}

	if e.Width > 0 && s.Width != e.Width {
		c.report(LevelError, "width_mismatch", e.Signal,
			"declared width %d, expected %d", s.Width, e.Width)
	}

	if got := s.Transitions(); got < e.MinTransitions {
		c.report(LevelError, "too_few_transitions", e.Signal,
			"%d transitions recorded, expected at least %d", got, e.MinTransitions)
	}

	if e.FinalValue != "" {
		if got := s.ValueAt(c.doc.MaxTime); got != e.FinalValue {
			c.report(LevelError, "final_value_mismatch", e.Signal,
				"value %q at max time %d, expected %q", got, c.doc.MaxTime, e.FinalValue)
		}
	}

	if len(s.Changes) == 0 {
		c.report(LevelWarning, "static_signal", e.Signal,
			"signal never changed; it may be undriven")
	}
}

// Errors reports whether any diagnostic is an error.
func (c *Checker) Errors() bool {
	for _, d := range c.Diagnostics {
		if d.Level == LevelError {
			return true
		}
	}
	return false
}
