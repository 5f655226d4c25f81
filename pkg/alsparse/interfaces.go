package alsparse

import (
	"context"

	"github.com/kurylko/alsparse/pkg/models"
)

// Service is the high-level entry point combining parsing with the
// project catalog. Construct one with NewService.
type Service interface {
	ParseFile(ctx context.Context, path string) (*Result, error)
	CatalogFile(ctx context.Context, path string) (string, error)
	GetProjectByID(id string) (*models.ProjectRecord, error)
	GetTracksByProject(id string) ([]models.TrackRecord, error)
	ListProjects() ([]models.ProjectRecord, error)
	DeleteProject(id string) error
	Close() error
}

// Storage persists parsed project summaries. The sqlite implementation
// lives in pkg/alsparse/storage; tests substitute in-memory fakes.
type Storage interface {
	RegisterProject(rec models.ProjectRecord, tracks []models.TrackRecord) (string, error)
	GetProjectByHash(hash string) (*models.ProjectRecord, error)
	GetProjectByID(id string) (*models.ProjectRecord, error)
	GetTracksByProject(id string) ([]models.TrackRecord, error)
	ListProjects() ([]models.ProjectRecord, error)
	DeleteProjectByID(id string) error
	Close() error
}

// Logger is the minimal logging surface the library needs. pkg/logger
// satisfies it; so does any structured logger with printf-style methods.
type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Debugf(format string, args ...any)
}
