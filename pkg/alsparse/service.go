package alsparse

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kurylko/alsparse/pkg/logger"
	"github.com/kurylko/alsparse/pkg/models"
)

// alsService is the default Service implementation: a Parser plus the
// project catalog.
type alsService struct {
	parser  *Parser
	storage Storage
	log     Logger
	config  *Config
}

func NewService(opts ...Option) (Service, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Logger == nil {
		cfg.Logger = logger.GetLogger()
	}

	var stor Storage
	var err error
	if cfg.Storage != nil {
		stor = cfg.Storage
	} else {
		stor, err = NewSQLiteStorage(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage: %w", err)
		}
	}

	parserOpts := []Option{
		WithLogger(cfg.Logger),
		WithDefaultTempo(cfg.DefaultTempo),
		WithTargetShortcuts(cfg.Shortcuts),
	}
	if cfg.StrictVersion {
		parserOpts = append(parserOpts, WithStrictVersion())
	}

	return &alsService{
		parser:  NewParser(parserOpts...),
		storage: stor,
		log:     cfg.Logger,
		config:  cfg,
	}, nil
}

// ParseFile parses a Live set from disk. The context is consulted before
// the (otherwise uninterruptible, single-pass) parse starts.
func (s *alsService) ParseFile(ctx context.Context, path string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	s.log.Infof("Parsing Live set: %s", abs)

	res, err := s.parser.ParseFile(abs)
	if err != nil {
		return nil, err
	}
	if n := len(res.Diagnostics); n > 0 {
		s.log.Warnf("Parse finished with %d schema warning(s)", n)
	}
	return res, nil
}

// CatalogFile parses a set and persists its summary, returning the catalog
// ID. Re-importing identical content returns the existing ID.
func (s *alsService) CatalogFile(ctx context.Context, path string) (string, error) {
	res, err := s.ParseFile(ctx, path)
	if err != nil {
		return "", err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	var size int64
	if fi, err := os.Stat(abs); err == nil {
		size = fi.Size()
	}

	rec, tracks := Summarize(res.Project, abs, size)
	id, err := s.storage.RegisterProject(rec, tracks)
	if err != nil {
		return "", fmt.Errorf("failed to catalog %s: %w", abs, err)
	}
	s.log.Infof("Catalogued project ID=%s (%d tracks)", id, rec.TrackCount)
	return id, nil
}

func (s *alsService) GetProjectByID(id string) (*models.ProjectRecord, error) {
	return s.storage.GetProjectByID(id)
}

func (s *alsService) GetTracksByProject(id string) ([]models.TrackRecord, error) {
	return s.storage.GetTracksByProject(id)
}

func (s *alsService) ListProjects() ([]models.ProjectRecord, error) {
	return s.storage.ListProjects()
}

func (s *alsService) DeleteProject(id string) error {
	return s.storage.DeleteProjectByID(id)
}

func (s *alsService) Close() error {
	return s.storage.Close()
}

// Summarize flattens a parsed project into catalog rows.
func Summarize(p *Project, path string, sizeBytes int64) (models.ProjectRecord, []models.TrackRecord) {
	rec := models.ProjectRecord{
		Path:        path,
		ContentHash: p.ContentHash,
		DAWVersion:  p.DAWVersion(),
		Tempo:       p.Tempo,
		Duration:    p.Duration(),
		TrackCount:  len(p.Tracks),
		SizeBytes:   sizeBytes,
	}

	tracks := make([]models.TrackRecord, 0, len(p.Tracks))
	for i, t := range p.Tracks {
		notes := 0
		for _, c := range t.Clips {
			notes += len(c.Notes)
		}
		rec.ClipCount += len(t.Clips)
		rec.NoteCount += notes
		tracks = append(tracks, models.TrackRecord{
			Index:     i,
			Name:      t.Name,
			Kind:      t.Kind.String(),
			ClipCount: len(t.Clips),
			NoteCount: notes,
		})
	}
	return rec, tracks
}
