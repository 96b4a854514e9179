// Package policy decides whether an e-FIR must not lapse silently: vulnerable
// informants and sensitive offences require a physical visit by an officer.
// The decision is taken once at submission and frozen into the record.
package policy

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"nyaya/internal/fir/models"
	"nyaya/internal/platform/config"
)

// DefaultKeywords is used when no keyword file is configured.
var DefaultKeywords = []string{
	"rape",
	"sexual assault",
	"molestation",
	"pocso",
	"child abuse",
	"domestic violence",
	"acid attack",
	"trafficking",
}

type keywordFile struct {
	Keywords []string `toml:"keywords" yaml:"keywords" json:"keywords"`
}

// Gate holds the active keyword list. Reloads swap the list atomically and
// only affect submissions evaluated afterwards.
type Gate struct {
	keywords atomic.Pointer[[]string]
	path     string
	logger   *slog.Logger
}

// NewGate builds a gate over keywords. Keywords are trimmed and lower-cased;
// empty entries are dropped.
func NewGate(keywords []string) *Gate {
	g := &Gate{logger: slog.Default()}
	g.set(keywords)
	return g
}

// LoadGate reads keywords from a TOML, YAML or JSON file.
func LoadGate(path string, logger *slog.Logger) (*Gate, error) {
	if logger == nil {
		logger = slog.Default()
	}
	g := &Gate{path: path, logger: logger}
	if err := g.Reload(); err != nil {
		return nil, err
	}
	return g, nil
}

// RequiresPhysicalVisit is true when the informant is flagged vulnerable or
// the description contains any configured keyword, ignoring case.
func (g *Gate) RequiresPhysicalVisit(informant models.Informant, description string) bool {
	if informant.IsVulnerable {
		return true
	}
	desc := strings.ToLower(description)
	for _, kw := range *g.keywords.Load() {
		if strings.Contains(desc, kw) {
			return true
		}
	}
	return false
}

// Keywords returns a copy of the active list.
func (g *Gate) Keywords() []string {
	return append([]string(nil), (*g.keywords.Load())...)
}

// Reload re-reads the keyword file. A failed or empty reload keeps the
// current list.
func (g *Gate) Reload() error {
	if g.path == "" {
		return nil
	}
	var f keywordFile
	if err := config.LoadFile(g.path, &f); err != nil {
		return fmt.Errorf("load policy keywords: %w", err)
	}
	if len(normalize(f.Keywords)) == 0 {
		return fmt.Errorf("load policy keywords: %s has no keywords", g.path)
	}
	g.set(f.Keywords)
	return nil
}

// Watch reloads the keyword file when it changes.
func (g *Gate) Watch(ctx context.Context) error {
	if g.path == "" {
		return nil
	}
	return config.Watch(ctx, g.path, func() {
		if err := g.Reload(); err != nil {
			g.logger.Warn("policy keyword reload failed", "path", g.path, "error", err)
			return
		}
		g.logger.Info("policy keywords reloaded", "path", g.path, "count", len(g.Keywords()))
	}, func(err error) {
		g.logger.Warn("policy keyword watch error", "error", err)
	})
}

func (g *Gate) set(keywords []string) {
	kw := normalize(keywords)
	g.keywords.Store(&kw)
}

func normalize(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	seen := make(map[string]bool, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}
