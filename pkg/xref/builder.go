// Package xref implements the call-reference extraction pipeline: symbol
// name normalization, application-code filtering, and the builder that
// walks every function in the analysis backend and accumulates the
// filtered caller graph.
package xref

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/smith-xyz/binary-xref-generator/pkg/config"
	"github.com/smith-xyz/binary-xref-generator/pkg/engine"
	"github.com/smith-xyz/binary-xref-generator/pkg/models"
)

// Stats summarizes one builder run.
type Stats struct {
	FunctionsExamined int
	RecordsEmitted    int
	Skipped           int
	Collisions        int
	Errors            int
}

// Builder drives the single sequential pass over all functions the engine
// enumerates and owns the in-progress result set for the duration of the
// run.
type Builder struct {
	logger *slog.Logger
	engine engine.Engine
	filter *Filter
	stats  Stats
}

// NewBuilder creates a builder over the given engine. A nil config falls
// back to empty filter lists (nothing rejected).
func NewBuilder(logger *slog.Logger, cfg *config.Config, eng engine.Engine) *Builder {
	if cfg == nil {
		cfg = &config.Config{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		logger: logger,
		engine: eng,
		filter: NewFilter(cfg.Filters),
	}
}

// Build runs the pass and returns the accumulated result set. A failure
// while processing one candidate is logged with its address and never
// aborts the run.
func (b *Builder) Build() *models.ResultSet {
	results := models.NewResultSet()

	for _, addr := range b.engine.Functions() {
		b.stats.FunctionsExamined++
		if err := b.process(addr, results); err != nil {
			b.stats.Errors++
			b.logger.Error("failed to process function",
				"address", fmt.Sprintf("%#x", addr),
				"error", err)
		}
	}

	return results
}

// Stats returns the counters accumulated by the last Build call.
func (b *Builder) Stats() Stats {
	return b.stats
}

// process handles one candidate function. Engine backends may panic on
// malformed input; the recover keeps a single bad function from taking
// down the whole run.
func (b *Builder) process(addr uint64, results *models.ResultSet) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	if !b.engine.IsCode(addr) {
		b.stats.Skipped++
		return nil
	}

	raw, ok := b.engine.RawSymbol(addr)
	// A raw symbol that already carries a namespace separator is an
	// internal label, not a top-level function worth reporting.
	if !ok || strings.Contains(raw, "::") {
		b.stats.Skipped++
		return nil
	}

	demangled, ok := b.engine.Demangle(raw)
	if !ok {
		b.stats.Skipped++
		return nil
	}

	name := Normalize(demangled)
	if !b.filter.IsApplicationCode(name) {
		b.stats.Skipped++
		b.logger.Debug("filtered non-application function", "name", name)
		return nil
	}

	callers := b.collectCallers(addr)

	kept := make([]string, 0, len(callers))
	for _, caller := range callers {
		if b.filter.IsApplicationCode(caller) {
			kept = append(kept, caller)
		}
	}
	sort.Strings(kept)

	if results.Insert(name, models.CallRecord{CallCount: len(kept), Usages: kept}) {
		b.stats.Collisions++
		b.logger.Warn("canonical name collision, later record replaces earlier",
			"name", name,
			"address", fmt.Sprintf("%#x", addr))
	}
	b.stats.RecordsEmitted++

	return nil
}

// collectCallers gathers the canonical names of every code location that
// references the target. References originating outside executable code
// (data reads of the function's address) are excluded, and callers that
// fail to resolve or demangle are skipped silently - not every code
// location is a demangleable application symbol. No deduplication or
// filtering happens here.
func (b *Builder) collectCallers(addr uint64) []string {
	var callers []string
	for _, from := range b.engine.CodeReferencesTo(addr) {
		if !b.engine.IsCode(from) {
			continue
		}
		sym, ok := b.engine.EnclosingSymbol(from)
		if !ok {
			continue
		}
		demangled, ok := b.engine.Demangle(sym)
		if !ok {
			continue
		}
		callers = append(callers, Normalize(demangled))
	}
	return callers
}
