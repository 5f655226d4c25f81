package alsparse

import (
	"github.com/kurylko/alsparse/pkg/alsparse/storage"
	"github.com/kurylko/alsparse/pkg/models"
)

// storageAdapter adapts storage.DBClient to the Storage interface.
type storageAdapter struct {
	db *storage.DBClient
}

// NewSQLiteStorage opens (creating if needed) the sqlite catalog at dbPath.
func NewSQLiteStorage(dbPath string) (Storage, error) {
	db, err := storage.NewDBClientWithPath(dbPath)
	if err != nil {
		return nil, err
	}
	return &storageAdapter{db: db}, nil
}

func (s *storageAdapter) RegisterProject(rec models.ProjectRecord, tracks []models.TrackRecord) (string, error) {
	return s.db.RegisterProject(rec, tracks)
}

func (s *storageAdapter) GetProjectByHash(hash string) (*models.ProjectRecord, error) {
	return s.db.GetProjectByHash(hash)
}

func (s *storageAdapter) GetProjectByID(id string) (*models.ProjectRecord, error) {
	return s.db.GetProjectByID(id)
}

func (s *storageAdapter) GetTracksByProject(id string) ([]models.TrackRecord, error) {
	return s.db.GetTracksByProject(id)
}

func (s *storageAdapter) ListProjects() ([]models.ProjectRecord, error) {
	return s.db.ListProjects()
}

func (s *storageAdapter) DeleteProjectByID(id string) error {
	return s.db.DeleteProjectByID(id)
}

func (s *storageAdapter) Close() error {
	return s.db.Close()
}
