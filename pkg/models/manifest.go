package models

// ManifestEntry is the per-book result of an export. The book is carried
// unchanged; everything computed from the finished archive lives beside it.
type ManifestEntry struct {
	Book      Book   `json:"book"`
	Archive   string `json:"archive,omitempty"`
	Size      int64  `json:"size"`
	SizeHuman string `json:"size_human,omitempty"`
	Checksum  string `json:"checksum,omitempty"`
	ArchiveID string `json:"archive_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Failed reports whether the entry records a per-book failure.
func (e ManifestEntry) Failed() bool { return e.Error != "" }
