package upgrade

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/MrSnakeDoc/plugup/internal/utils"
)

var ErrArchiveTooLarge = errors.New("archive exceeds the extraction limit")

// Unzip extracts src into dst. Entries that would land outside dst are
// rejected, as are symlinks. At most maxBytes are written in total; 0 means
// no limit.
func Unzip(src, dst string, maxBytes int64) error {
	r, err := zip.OpenReader(src)
	if err != nil {
		return fmt.Errorf("open zip %s: %w", src, err)
	}
	defer utils.Close(r)

	root, err := filepath.Abs(dst)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return err
	}

	budget := maxBytes
	for _, f := range r.File {
		target := filepath.Join(root, filepath.FromSlash(f.Name))
		if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
			return fmt.Errorf("illegal path in archive: %s", f.Name)
		}

		mode := f.Mode()
		switch {
		case mode&os.ModeSymlink != 0:
			return fmt.Errorf("symlink not allowed in archive: %s", f.Name)
		case f.FileInfo().IsDir():
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		default:
			if maxBytes > 0 && f.UncompressedSize64 > uint64(budget) {
				return fmt.Errorf("%s: %w", f.Name, ErrArchiveTooLarge)
			}
			n, err := extractFile(f, target, budget, maxBytes > 0)
			if err != nil {
				return err
			}
			budget -= n
		}
	}
	return nil
}

// extractFile writes f to target. When limited, writing more than budget
// bytes fails whatever size the entry declares.
func extractFile(f *zip.File, target string, budget int64, limited bool) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return 0, err
	}

	rc, err := f.Open()
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer utils.Try(rc.Close)

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, err
	}
	defer utils.Close(out)

	var src io.Reader = rc
	if limited {
		src = io.LimitReader(rc, budget+1)
	}
	n, err := io.Copy(out, src)
	if err != nil {
		return n, fmt.Errorf("extract %s: %w", f.Name, err)
	}
	if limited && n > budget {
		return n, fmt.Errorf("%s: %w", f.Name, ErrArchiveTooLarge)
	}
	return n, nil
}

// TopLevelDir returns the single folder GitHub wraps a zipball in
// (owner-repo-sha). An archive with files at its root is returned as is.
func TopLevelDir(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var dirs []string
	files := 0
	for _, e := range entries {
		if e.Name() == "__MACOSX" {
			continue
		}
		if e.IsDir() {
			dirs = append(dirs, e.Name())
			continue
		}
		files++
	}

	switch {
	case len(dirs) == 1 && files == 0:
		return filepath.Join(dir, dirs[0]), nil
	case len(dirs)+files == 0:
		return "", fmt.Errorf("archive is empty")
	default:
		return dir, nil
	}
}
