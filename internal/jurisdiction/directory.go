package jurisdiction

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"nyaya/internal/platform/config"
	"nyaya/pkg/platform/sentinel"
)

// Station is one row of the station directory.
type Station struct {
	Code     string   `toml:"code" yaml:"code" json:"code"`
	Name     string   `toml:"name" yaml:"name" json:"name"`
	District string   `toml:"district" yaml:"district" json:"district"`
	Areas    []string `toml:"areas" yaml:"areas" json:"areas"`
}

type directoryFile struct {
	Stations []Station `toml:"stations" yaml:"stations" json:"stations"`
}

// Directory is a static StationLookup backed by a config file. Lookups match
// area names case-insensitively as substrings of the location; the longest
// matching area wins.
type Directory struct {
	stations atomic.Pointer[[]Station]
	path     string
	logger   *slog.Logger
}

func NewDirectory(stations []Station) *Directory {
	d := &Directory{logger: slog.Default()}
	d.set(stations)
	return d
}

// LoadDirectory reads a TOML, YAML or JSON station table.
func LoadDirectory(path string, logger *slog.Logger) (*Directory, error) {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Directory{path: path, logger: logger}
	if err := d.Reload(); err != nil {
		return nil, err
	}
	return d, nil
}

// Reload re-reads the backing file. A failed reload keeps the previous table.
func (d *Directory) Reload() error {
	var f directoryFile
	if err := config.LoadFile(d.path, &f); err != nil {
		return fmt.Errorf("load station directory: %w", err)
	}
	for _, s := range f.Stations {
		if strings.TrimSpace(s.Code) == "" {
			return fmt.Errorf("load station directory: station %q has no code", s.Name)
		}
	}
	d.set(f.Stations)
	return nil
}

// Watch reloads the directory when its file changes.
func (d *Directory) Watch(ctx context.Context) error {
	return config.Watch(ctx, d.path, func() {
		if err := d.Reload(); err != nil {
			d.logger.Warn("station directory reload failed", "path", d.path, "error", err)
			return
		}
		d.logger.Info("station directory reloaded", "path", d.path, "stations", len(d.Stations()))
	}, func(err error) {
		d.logger.Warn("station directory watch error", "error", err)
	})
}

func (d *Directory) Stations() []Station {
	return append([]Station(nil), (*d.stations.Load())...)
}

func (d *Directory) ResolveCorrectStation(_ context.Context, location string) (string, error) {
	loc := strings.ToLower(location)
	best, bestLen := "", 0
	for _, s := range *d.stations.Load() {
		for _, area := range s.Areas {
			a := strings.ToLower(strings.TrimSpace(area))
			if a != "" && len(a) > bestLen && strings.Contains(loc, a) {
				best, bestLen = s.Code, len(a)
			}
		}
	}
	if best == "" {
		return "", fmt.Errorf("no station covers %q: %w", location, sentinel.ErrNotFound)
	}
	return best, nil
}

func (d *Directory) set(stations []Station) {
	cp := append([]Station(nil), stations...)
	d.stations.Store(&cp)
}
