package store

import (
	"fmt"
	"path/filepath"
)

const sqliteFile = "transients.db"

// Open returns the backend named by kind, rooted at dir.
func Open(kind, dir string) (Store, error) {
	switch kind {
	case "", "file":
		return NewFS(dir, nil)
	case "sqlite":
		return NewSQLite(filepath.Join(dir, sqliteFile), nil)
	case "memory":
		return NewMemory(nil), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q (want file, sqlite or memory)", kind)
	}
}
