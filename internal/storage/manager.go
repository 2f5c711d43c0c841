package storage

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	ioutils "github.com/handiism/emoji-kitchen-dl/internal/io"
	"github.com/handiism/emoji-kitchen-dl/internal/model"
)

const sampleGlyph = "😀"

// Manager stores combination images under a root directory.
type Manager struct {
	root   string
	format model.FilenameFormat
	log    *slog.Logger
}

// New creates a Manager rooted at root.
//
// The root directory is created if needed and must be writable; otherwise an
// error wrapping model.ErrConfig is returned. FormatAuto is resolved here,
// once, by probing whether the filesystem round-trips an emoji filename.
func New(root string, format model.FilenameFormat, log *slog.Logger) (*Manager, error) {
	if log == nil {
		log = slog.Default()
	}
	if err := checkWritable(root); err != nil {
		return nil, fmt.Errorf("%w: output root %s: %v", model.ErrConfig, root, err)
	}

	if format == model.FormatAuto {
		format = detectFormat(root)
		log.Debug("resolved filename format", "format", format, "root", root)
	}

	return &Manager{root: root, format: format, log: log}, nil
}

// Root returns the root directory.
func (m *Manager) Root() string { return m.root }

// Format returns the resolved filename format. It is never FormatAuto.
func (m *Manager) Format() model.FilenameFormat { return m.format }

// PathFor resolves the file path for pair at size.
func (m *Manager) PathFor(pair model.Pair, size int) (string, error) {
	p, err := model.Resolve(m.root, pair, size, m.format)
	if err != nil {
		return "", err
	}
	return p.Full(), nil
}

// Exists reports whether a regular file is stored for pair at size.
func (m *Manager) Exists(pair model.Pair, size int) bool {
	path, err := m.PathFor(pair, size)
	if err != nil {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Save writes data for pair at size and returns the file path.
//
// Parent directories are created as needed and an existing file is replaced.
// The write is atomic. Filesystem failures are returned wrapping model.ErrIO.
func (m *Manager) Save(ctx context.Context, pair model.Pair, size int, data []byte) (string, error) {
	p, err := model.Resolve(m.root, pair, size, m.format)
	if err != nil {
		return "", err
	}

	if err := ioutils.EnsureDir(p.Dir); err != nil {
		return "", fmt.Errorf("%w: create %s: %v", model.ErrIO, p.Dir, err)
	}

	path := p.Full()
	if err := ioutils.WriteFile(ctx, path, data); err != nil {
		return "", fmt.Errorf("%w: write %s: %v", model.ErrIO, path, err)
	}

	return path, nil
}

// Delete removes the file for pair at size. It returns false if there was
// nothing to delete.
func (m *Manager) Delete(pair model.Pair, size int) (bool, error) {
	path, err := m.PathFor(pair, size)
	if err != nil {
		return false, err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("%w: delete %s: %v", model.ErrIO, path, err)
	}
	return true, nil
}

// FileSize returns the size in bytes of the stored file, and false if it does
// not exist.
func (m *Manager) FileSize(pair model.Pair, size int) (int64, bool) {
	path, err := m.PathFor(pair, size)
	if err != nil {
		return 0, false
	}
	info, err := os.Stat(path)
	if err != nil {
		return 0, false
	}
	return info.Size(), true
}

// CountFiles counts stored images. With an empty emoji every .png under the
// root is counted; otherwise only the directory of that base emoji.
func (m *Manager) CountFiles(emoji string) (int, error) {
	if strings.TrimSpace(emoji) != "" {
		dir := filepath.Join(m.root, model.DirectoryName(emoji, m.format))
		matches, err := filepath.Glob(filepath.Join(dir, "*.png"))
		if err != nil {
			return 0, err
		}
		return len(matches), nil
	}

	count := 0
	err := filepath.WalkDir(m.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".png") {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// detectFormat picks FormatEmoji if a file named with an emoji can be created
// and listed back under the same name, FormatCodepoint otherwise.
func detectFormat(root string) model.FilenameFormat {
	name := fmt.Sprintf(".fscheck_%s_%d", sampleGlyph, os.Getpid())
	path := filepath.Join(root, name)

	if err := os.WriteFile(path, nil, 0644); err != nil {
		return model.FormatCodepoint
	}
	defer os.Remove(path)

	entries, err := os.ReadDir(root)
	if err != nil {
		return model.FormatCodepoint
	}
	for _, e := range entries {
		if e.Name() == name {
			return model.FormatEmoji
		}
	}
	return model.FormatCodepoint
}
