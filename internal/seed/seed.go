// Package seed loads reference data: status levels, site settings and
// learning modules.
package seed

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/nctr-alliance/garden-backend/internal/model"
	"github.com/nctr-alliance/garden-backend/internal/tier"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultFile []byte

type File struct {
	StatusLevels    []model.StatusLevel    `yaml:"status_levels"`
	SiteSettings    []model.SiteSetting    `yaml:"site_settings"`
	LearningModules []model.LearningModule `yaml:"learning_modules"`
}

// Default returns the embedded seed.
func Default() (*File, error) {
	return Parse(defaultFile)
}

func Parse(b []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *File) validate() error {
	for _, l := range f.StatusLevels {
		if _, ok := tier.Parse(l.Name); !ok {
			return fmt.Errorf("status level %q: unknown tier", l.Name)
		}
		if !l.RewardMultiplier.IsPositive() {
			return fmt.Errorf("status level %q: multiplier must be positive", l.Name)
		}
	}
	for _, s := range f.SiteSettings {
		if s.Key == "" {
			return fmt.Errorf("site setting without key")
		}
	}
	for _, m := range f.LearningModules {
		if m.Slug == "" || m.Title == "" {
			return fmt.Errorf("learning module %q: slug and title are required", m.Slug)
		}
		if m.LockCategory != "" && !m.LockCategory.Valid() {
			return fmt.Errorf("learning module %q: lock category %q", m.Slug, m.LockCategory)
		}
	}
	return nil
}

type LevelStore interface {
	Upsert(ctx context.Context, l *model.StatusLevel) error
}

type SettingStore interface {
	Upsert(ctx context.Context, s *model.SiteSetting) error
}

type ModuleStore interface {
	UpsertBySlug(ctx context.Context, m *model.LearningModule) error
}

type Summary struct {
	Levels   int
	Settings int
	Modules  int
}

// Apply upserts every row of f.
func Apply(ctx context.Context, f *File, levels LevelStore, settings SettingStore, modules ModuleStore) (Summary, error) {
	var sum Summary
	for i := range f.StatusLevels {
		if err := levels.Upsert(ctx, &f.StatusLevels[i]); err != nil {
			return sum, fmt.Errorf("status level %s: %w", f.StatusLevels[i].Name, err)
		}
		sum.Levels++
	}
	for i := range f.SiteSettings {
		if err := settings.Upsert(ctx, &f.SiteSettings[i]); err != nil {
			return sum, fmt.Errorf("setting %s: %w", f.SiteSettings[i].Key, err)
		}
		sum.Settings++
	}
	for i := range f.LearningModules {
		m := &f.LearningModules[i]
		if m.LockCategory == "" {
			m.LockCategory = model.Lock360
		}
		if err := modules.UpsertBySlug(ctx, m); err != nil {
			return sum, fmt.Errorf("module %s: %w", m.Slug, err)
		}
		sum.Modules++
	}
	return sum, nil
}
