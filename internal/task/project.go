package task

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
)

// ProjectProfile is a remembered project directory and its detected type.
type ProjectProfile struct {
	Type         string         `json:"type"`
	Name         string         `json:"name"`
	Path         string         `json:"path"`
	FirstSeen    float64        `json:"first_seen"`
	LastAccessed float64        `json:"last_accessed"`
	FileMatches  map[string]int `json:"file_matches"`
}

// projectDB is the persisted project profile table, keyed by path hash.
type projectDB struct {
	Projects    map[string]ProjectProfile `json:"projects"`
	LastUpdated float64                   `json:"last_updated"`
}

// hashPath returns a stable identifier for a directory path.
func hashPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	sum := sha256.Sum256([]byte(abs))
	return hex.EncodeToString(sum[:16])
}
