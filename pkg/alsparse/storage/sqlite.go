package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/kurylko/alsparse/pkg/models"
)

const DefaultDBFile = "alsparse.sqlite3"

var errClientNil = errors.New("db client is nil")

// DBClient wraps the gorm handle for the project catalog.
type DBClient struct {
	DB *gorm.DB
	db *sql.DB
}

type Project struct {
	ID          string `gorm:"primaryKey;type:varchar(36)"`
	Path        string `gorm:"index:idx_path" json:"path"`
	ContentHash string `gorm:"uniqueIndex:idx_hash" json:"content_hash"`
	DAWVersion  string `json:"daw_version"`
	Tempo       float64 `json:"tempo"`
	Duration    float64 `json:"duration"`
	TrackCount  int     `json:"track_count"`
	ClipCount   int     `json:"clip_count"`
	NoteCount   int     `json:"note_count"`
	SizeBytes   int64   `json:"size_bytes"`
	CreatedAt   time.Time
}

type Track struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	ProjectID string `gorm:"type:varchar(36);index:idx_project" json:"project_id"`
	Idx       int    `json:"idx"`
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	ClipCount int    `json:"clip_count"`
	NoteCount int    `json:"note_count"`
}

func NewDBClient() (*DBClient, error) {
	dbPath := os.Getenv("ALS_CATALOG_PATH")
	if dbPath == "" {
		dbPath = DefaultDBFile
	}
	return NewDBClientWithPath(dbPath)
}

func NewDBClientWithPath(dbPath string) (*DBClient, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating db dir: %w", err)
		}
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(sqlite.Open(dbPath+"?_foreign_keys=on"), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB from gorm: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&Project{}, &Track{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return &DBClient{DB: db, db: sqlDB}, nil
}

func (c *DBClient) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// RegisterProject stores a project summary and its track rows. Importing
// the same content twice (matched by hash) updates the path and returns
// the existing catalog ID instead of creating a duplicate.
func (c *DBClient) RegisterProject(rec models.ProjectRecord, tracks []models.TrackRecord) (string, error) {
	if c == nil || c.DB == nil {
		return "", errClientNil
	}

	var existing Project
	err := c.DB.Where("content_hash = ?", rec.ContentHash).First(&existing).Error
	if err == nil {
		if existing.Path != rec.Path && rec.Path != "" {
			if err := c.DB.Model(&existing).Update("Path", rec.Path).Error; err != nil {
				return "", fmt.Errorf("updating project path: %w", err)
			}
		}
		return existing.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("querying existing project: %w", err)
	}

	row := Project{
		ID:          uuid.NewString(),
		Path:        rec.Path,
		ContentHash: rec.ContentHash,
		DAWVersion:  rec.DAWVersion,
		Tempo:       rec.Tempo,
		Duration:    rec.Duration,
		TrackCount:  rec.TrackCount,
		ClipCount:   rec.ClipCount,
		NoteCount:   rec.NoteCount,
		SizeBytes:   rec.SizeBytes,
	}

	err = c.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("creating project: %w", err)
		}
		if len(tracks) == 0 {
			return nil
		}
		rows := make([]Track, 0, len(tracks))
		for _, t := range tracks {
			rows = append(rows, Track{
				ProjectID: row.ID,
				Idx:       t.Index,
				Name:      t.Name,
				Kind:      t.Kind,
				ClipCount: t.ClipCount,
				NoteCount: t.NoteCount,
			})
		}
		if err := tx.CreateInBatches(rows, 500).Error; err != nil {
			return fmt.Errorf("batch insert tracks: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return row.ID, nil
}

func (c *DBClient) GetProjectByHash(hash string) (*models.ProjectRecord, error) {
	if c == nil || c.DB == nil {
		return nil, errClientNil
	}
	var row Project
	if err := c.DB.Where("content_hash = ?", hash).First(&row).Error; err != nil {
		return nil, fmt.Errorf("querying project by hash: %w", err)
	}
	rec := toRecord(row)
	return &rec, nil
}

func (c *DBClient) GetProjectByID(id string) (*models.ProjectRecord, error) {
	if c == nil || c.DB == nil {
		return nil, errClientNil
	}
	var row Project
	if err := c.DB.Where("id = ?", id).First(&row).Error; err != nil {
		return nil, fmt.Errorf("querying project %s: %w", id, err)
	}
	rec := toRecord(row)
	return &rec, nil
}

func (c *DBClient) GetTracksByProject(id string) ([]models.TrackRecord, error) {
	if c == nil || c.DB == nil {
		return nil, errClientNil
	}
	var rows []Track
	if err := c.DB.Where("project_id = ?", id).Order("idx").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("querying tracks for %s: %w", id, err)
	}
	out := make([]models.TrackRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.TrackRecord{
			ProjectID: r.ProjectID,
			Index:     r.Idx,
			Name:      r.Name,
			Kind:      r.Kind,
			ClipCount: r.ClipCount,
			NoteCount: r.NoteCount,
		})
	}
	return out, nil
}

func (c *DBClient) ListProjects() ([]models.ProjectRecord, error) {
	if c == nil || c.DB == nil {
		return nil, errClientNil
	}
	var rows []Project
	if err := c.DB.Order("created_at").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	out := make([]models.ProjectRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, toRecord(r))
	}
	return out, nil
}

func (c *DBClient) DeleteProjectByID(id string) error {
	if c == nil || c.DB == nil {
		return errClientNil
	}
	return c.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", id).Delete(&Track{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&Project{}).Error
	})
}

func toRecord(row Project) models.ProjectRecord {
	return models.ProjectRecord{
		ID:          row.ID,
		Path:        row.Path,
		ContentHash: row.ContentHash,
		DAWVersion:  row.DAWVersion,
		Tempo:       row.Tempo,
		Duration:    row.Duration,
		TrackCount:  row.TrackCount,
		ClipCount:   row.ClipCount,
		NoteCount:   row.NoteCount,
		SizeBytes:   row.SizeBytes,
	}
}
