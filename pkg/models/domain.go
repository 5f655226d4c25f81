package models

// ProjectRecord is a catalogued project summary: enough to list, dedupe
// and locate sets without re-parsing them.
type ProjectRecord struct {
	ID          string // catalog UUID
	Path        string // absolute path the set was imported from
	ContentHash string // MD5 of the decompressed XML
	DAWVersion  string
	Tempo       float64
	Duration    float64
	TrackCount  int
	ClipCount   int
	NoteCount   int
	SizeBytes   int64
}

// TrackRecord is the per-track row stored alongside a ProjectRecord.
type TrackRecord struct {
	ProjectID string
	Index     int // position in the set, document order
	Name      string
	Kind      string
	ClipCount int
	NoteCount int
}
