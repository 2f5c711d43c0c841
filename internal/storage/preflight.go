package storage

import (
	"fmt"
	"os"
	"path/filepath"

	ioutils "github.com/handiism/emoji-kitchen-dl/internal/io"
	"github.com/handiism/emoji-kitchen-dl/internal/model"
	"github.com/shirou/gopsutil/disk"
)

// DiskInfo describes the filesystem holding the output root.
type DiskInfo struct {
	Path        string
	Total       uint64
	Free        uint64
	UsedPercent float64

	// Known is false when usage could not be queried on this platform.
	Known bool
}

// Preflight verifies that root can be created and written, and reports free
// space on its filesystem. Only an unwritable root is an error.
func Preflight(root string) (DiskInfo, error) {
	info := DiskInfo{Path: root}

	if err := checkWritable(root); err != nil {
		return info, fmt.Errorf("%w: output root %s: %v", model.ErrConfig, root, err)
	}

	usage, err := disk.Usage(root)
	if err != nil {
		return info, nil
	}

	info.Total = usage.Total
	info.Free = usage.Free
	info.UsedPercent = usage.UsedPercent
	info.Known = true
	return info, nil
}

func checkWritable(root string) error {
	if err := ioutils.EnsureDir(root); err != nil {
		return err
	}
	f, err := os.CreateTemp(root, ".write-check-*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(filepath.Clean(name))
}
