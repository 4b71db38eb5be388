// Package repositories persists campaigns and app profiles. Storage is plain
// JSON files on disk so a campaign record stays human-readable and survives
// restarts without a database.
package repositories

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/adforge/backend/internal/models"
)

var ErrNotFound = errors.New("not found")

// Campaign IDs double as file names, so anything outside this shape is
// rejected before touching the filesystem.
var campaignIDRE = regexp.MustCompile(`^ads_\d{8}_\d{6}$`)

type CampaignRepo struct {
	dir string
	mu  sync.Mutex
	log *zap.Logger
}

func NewCampaignRepo(dir string, log *zap.Logger) *CampaignRepo {
	return &CampaignRepo{dir: dir, log: log}
}

func (r *CampaignRepo) path(id string) (string, error) {
	if !campaignIDRE.MatchString(id) {
		return "", fmt.Errorf("invalid campaign id %q", id)
	}
	return filepath.Join(r.dir, id+".json"), nil
}

// Save writes the campaign's per-platform map to <dir>/<id>.json, replacing
// any previous version atomically.
func (r *CampaignRepo) Save(c *models.Campaign) error {
	path, err := r.path(c.ID)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("create campaign dir: %w", err)
	}

	var buf strings.Builder
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c.Ads); err != nil {
		return fmt.Errorf("encode campaign: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(buf.String()), 0o644); err != nil {
		return fmt.Errorf("write campaign: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace campaign: %w", err)
	}

	r.log.Debug("campaign saved", zap.String("id", c.ID), zap.Int("platforms", len(c.Ads)))
	return nil
}

func (r *CampaignRepo) Get(id string) (*models.Campaign, error) {
	path, err := r.path(id)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("campaign %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read campaign: %w", err)
	}

	ads := map[models.Platform]*models.AdContent{}
	if err := json.Unmarshal(data, &ads); err != nil {
		return nil, fmt.Errorf("decode campaign %s: %w", id, err)
	}
	return &models.Campaign{ID: id, Ads: ads}, nil
}

// List returns campaign IDs, newest first. IDs embed their creation time, so
// reverse-lexicographic order is chronological.
func (r *CampaignRepo) List() ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := os.ReadDir(r.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read campaign dir: %w", err)
	}

	var ids []string
	for _, e := range entries {
		name := strings.TrimSuffix(e.Name(), ".json")
		if name != e.Name() && campaignIDRE.MatchString(name) {
			ids = append(ids, name)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(ids)))
	return ids, nil
}

// Images returns the generated image paths referenced by a campaign.
func (r *CampaignRepo) Images(id string) ([]string, error) {
	c, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, ad := range c.Ads {
		if ad.ImagePath != "" {
			paths = append(paths, ad.ImagePath)
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// Delete removes the campaign record and the images it references. Missing
// images are ignored; the record file must exist.
func (r *CampaignRepo) Delete(id string) error {
	images, err := r.Images(id)
	if err != nil {
		return err
	}
	path, err := r.path(id)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, img := range images {
		if err := os.Remove(img); err != nil && !errors.Is(err, os.ErrNotExist) {
			r.log.Warn("could not remove campaign image", zap.String("path", img), zap.Error(err))
		}
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("remove campaign: %w", err)
	}

	r.log.Info("campaign deleted", zap.String("id", id), zap.Int("images", len(images)))
	return nil
}
