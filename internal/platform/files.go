package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/ytget/ydownloader/internal/errs"
)

// File permissions
const (
	DefaultDirPermissions  = 0755
	DefaultFilePermissions = 0644
)

// Filename limits and fallbacks
const (
	MaxFileNameLength = 120
	DefaultFileName   = "video"
	DefaultExtension  = "mp4"
)

// File extensions left behind by interrupted downloads
var (
	PartialExtensions = []string{".part", ".ytdl", ".tmp"}
)

var unsafeChars = regexp.MustCompile(`[\\/:*?"<>|\x00-\x1f]+`)

// CreateDirectoryIfNotExists creates directory and its parents if it doesn't exist.
// An existing directory is left untouched; an existing non-directory is an error.
func CreateDirectoryIfNotExists(dirPath string) error {
	info, err := os.Stat(dirPath)
	switch {
	case err == nil:
		if !info.IsDir() {
			return &errs.FilesystemError{Op: "mkdir", Path: dirPath, Err: fmt.Errorf("path exists and is not a directory")}
		}
		return nil
	case errors.Is(err, os.ErrNotExist):
		if err := os.MkdirAll(dirPath, DefaultDirPermissions); err != nil {
			return &errs.FilesystemError{Op: "mkdir", Path: dirPath, Err: err}
		}
		return nil
	default:
		return &errs.FilesystemError{Op: "stat", Path: dirPath, Err: err}
	}
}

// ToSafeFilename builds a cross-platform safe filename from title and extension
func ToSafeFilename(title, ext string) string {
	name := strings.TrimSpace(title)
	name = unsafeChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, " .")
	if name == "" {
		name = DefaultFileName
	}
	if len(name) > MaxFileNameLength {
		name = truncateUTF8(name, MaxFileNameLength)
	}

	ext = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
	if ext == "" {
		ext = DefaultExtension
	}
	return name + "." + ext
}

// ReplaceExtension swaps the extension of path for ext (without dot)
func ReplaceExtension(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + "." + strings.TrimPrefix(ext, ".")
}

// RemovePartial removes a partially written file; a missing file is not an error
func RemovePartial(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// IsPartialFile reports whether filename looks like an unfinished download
func IsPartialFile(filename string) bool {
	for _, ext := range PartialExtensions {
		if strings.HasSuffix(filename, ext) {
			return true
		}
	}
	return false
}

// FindDownloadedFile returns filePath if it exists. Otherwise it looks in the
// same directory for a finished file with the same base name and any
// extension, preferring the most recently modified one.
func FindDownloadedFile(filePath string) (string, error) {
	if filePath == "" {
		return "", fmt.Errorf("file path is empty")
	}
	if _, err := os.Stat(filePath); err == nil {
		return filePath, nil
	}

	dir := filepath.Dir(filePath)
	baseName := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", &errs.FilesystemError{Op: "readdir", Path: dir, Err: err}
	}

	var (
		found  string
		newest time.Time
	)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || IsPartialFile(name) {
			continue
		}
		if strings.TrimSuffix(name, filepath.Ext(name)) != baseName {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if found == "" || info.ModTime().After(newest) {
			found = filepath.Join(dir, name)
			newest = info.ModTime()
		}
	}

	if found == "" {
		return "", fmt.Errorf("file not found: %s", filePath)
	}
	return found, nil
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !isRuneStart(s[n]) {
		n--
	}
	return strings.TrimSpace(s[:n])
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
