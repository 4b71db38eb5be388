package repositories

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/adforge/backend/internal/models"
)

// AppRepo stores app profiles in a single JSON file keyed by slug. The whole
// file is rewritten on every change; profiles are few and edits are rare.
type AppRepo struct {
	path string
	mu   sync.RWMutex
	log  *zap.Logger
}

func NewAppRepo(path string, log *zap.Logger) *AppRepo {
	return &AppRepo{path: path, log: log}
}

func (r *AppRepo) load() (map[string]models.AppInfo, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]models.AppInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read app profiles: %w", err)
	}

	apps := map[string]models.AppInfo{}
	if err := json.Unmarshal(data, &apps); err != nil {
		return nil, fmt.Errorf("decode app profiles: %w", err)
	}
	return apps, nil
}

func (r *AppRepo) store(apps map[string]models.AppInfo) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("create profile dir: %w", err)
	}
	data, err := json.MarshalIndent(apps, "", "  ")
	if err != nil {
		return fmt.Errorf("encode app profiles: %w", err)
	}
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write app profiles: %w", err)
	}
	return os.Rename(tmp, r.path)
}

func (r *AppRepo) Get(slug string) (*models.AppInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	apps, err := r.load()
	if err != nil {
		return nil, err
	}
	app, ok := apps[slug]
	if !ok {
		return nil, fmt.Errorf("app %s: %w", slug, ErrNotFound)
	}
	return &app, nil
}

// Slugs returns the stored profile slugs in sorted order.
func (r *AppRepo) Slugs() ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	apps, err := r.load()
	if err != nil {
		return nil, err
	}
	slugs := make([]string, 0, len(apps))
	for slug := range apps {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	return slugs, nil
}

func (r *AppRepo) Put(slug string, app models.AppInfo) error {
	if slug == "" {
		return fmt.Errorf("app slug is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	apps, err := r.load()
	if err != nil {
		return err
	}
	apps[slug] = app
	if err := r.store(apps); err != nil {
		return err
	}
	r.log.Info("app profile saved", zap.String("slug", slug), zap.String("name", app.Name))
	return nil
}

func (r *AppRepo) Delete(slug string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	apps, err := r.load()
	if err != nil {
		return err
	}
	if _, ok := apps[slug]; !ok {
		return fmt.Errorf("app %s: %w", slug, ErrNotFound)
	}
	delete(apps, slug)
	return r.store(apps)
}
