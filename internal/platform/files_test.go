package platform

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ytget/ydownloader/internal/errs"
)

func TestCreateDirectoryIfNotExists(t *testing.T) {
	// Create temporary directory for testing
	tempDir := t.TempDir()
	testDir := filepath.Join(tempDir, "nested", "test_dir")

	// Directory should not exist initially
	if _, err := os.Stat(testDir); !os.IsNotExist(err) {
		t.Fatalf("Test directory already exists: %s", testDir)
	}

	// Create directory with parents
	err := CreateDirectoryIfNotExists(testDir)
	if err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}

	// Directory should now exist
	if _, err := os.Stat(testDir); os.IsNotExist(err) {
		t.Fatalf("Directory was not created: %s", testDir)
	}

	// Put a file inside; a second call must keep it
	marker := filepath.Join(testDir, "marker.txt")
	if err := os.WriteFile(marker, []byte("x"), DefaultFilePermissions); err != nil {
		t.Fatalf("write marker: %v", err)
	}

	// Second call should not fail
	err = CreateDirectoryIfNotExists(testDir)
	if err != nil {
		t.Fatalf("Failed to handle existing directory: %v", err)
	}
	if _, err := os.Stat(marker); err != nil {
		t.Errorf("Existing content was disturbed: %v", err)
	}
}

func TestCreateDirectoryIfNotExists_FileInTheWay(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "occupied")
	if err := os.WriteFile(path, []byte("x"), DefaultFilePermissions); err != nil {
		t.Fatalf("write file: %v", err)
	}

	err := CreateDirectoryIfNotExists(path)
	if err == nil {
		t.Fatal("Expected error when a file occupies the path")
	}
	if !errs.IsFilesystem(err) {
		t.Errorf("Expected FilesystemError, got %T", err)
	}

	// Parent is a file, so MkdirAll fails too
	err = CreateDirectoryIfNotExists(filepath.Join(path, "child"))
	if !errs.IsFilesystem(err) {
		t.Errorf("Expected FilesystemError for child of a file, got %v", err)
	}
}

func TestToSafeFilename(t *testing.T) {
	tests := []struct {
		title    string
		ext      string
		expected string
	}{
		{"My Video", "mp4", "My Video.mp4"},
		{"a/b\\c:d*e?f\"g<h>i|j", "webm", "a_b_c_d_e_f_g_h_i_j.webm"},
		{"  ", "m4a", "video.m4a"},
		{"Song", ".MP3", "Song.mp3"},
		{"Clip", "", "Clip.mp4"},
		{"...", "mp4", "video.mp4"},
	}

	for _, test := range tests {
		result := ToSafeFilename(test.title, test.ext)
		if result != test.expected {
			t.Errorf("ToSafeFilename(%q, %q) = %q, expected %q", test.title, test.ext, result, test.expected)
		}
	}
}

func TestToSafeFilename_Truncates(t *testing.T) {
	long := strings.Repeat("я", 100) // 200 bytes
	result := ToSafeFilename(long, "mp4")
	base := strings.TrimSuffix(result, ".mp4")

	if len(base) > MaxFileNameLength {
		t.Errorf("Expected base length <= %d, got %d", MaxFileNameLength, len(base))
	}
	if !strings.HasPrefix(long, base) {
		t.Error("Truncation split a multi-byte character")
	}
}

func TestReplaceExtension(t *testing.T) {
	tests := []struct {
		path     string
		ext      string
		expected string
	}{
		{"/path/to/audio.m4a", "mp3", "/path/to/audio.mp3"},
		{"/path/to/audio.webm", ".opus", "/path/to/audio.opus"},
		{"noext", "mp3", "noext.mp3"},
	}

	for _, test := range tests {
		if got := ReplaceExtension(test.path, test.ext); got != test.expected {
			t.Errorf("ReplaceExtension(%q, %q) = %q, expected %q", test.path, test.ext, got, test.expected)
		}
	}
}

func TestRemovePartial(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clip.mp4.part")
	if err := os.WriteFile(path, []byte("partial"), DefaultFilePermissions); err != nil {
		t.Fatalf("write file: %v", err)
	}

	if err := RemovePartial(path); err != nil {
		t.Fatalf("RemovePartial() error = %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Expected file to be removed")
	}

	// Missing and empty paths are fine
	if err := RemovePartial(path); err != nil {
		t.Errorf("RemovePartial() on missing file error = %v", err)
	}
	if err := RemovePartial(""); err != nil {
		t.Errorf("RemovePartial(\"\") error = %v", err)
	}
}

func TestIsPartialFile(t *testing.T) {
	tests := []struct {
		name     string
		expected bool
	}{
		{"video.mp4.part", true},
		{"video.ytdl", true},
		{"video.mp4", false},
		{"song.mp3", false},
	}

	for _, test := range tests {
		if got := IsPartialFile(test.name); got != test.expected {
			t.Errorf("IsPartialFile(%q) = %v, expected %v", test.name, got, test.expected)
		}
	}
}

func TestNewStreams(t *testing.T) {
	var out, errOut bytes.Buffer
	streams := NewStreams(&out, &errOut, true)

	if streams.Out != &out || streams.Err != &errOut || !streams.Interactive {
		t.Errorf("Unexpected streams: %+v", streams)
	}
}

func TestFindDownloadedFile(t *testing.T) {
	dir := t.TempDir()

	exact := filepath.Join(dir, "clip.mp4")
	if err := os.WriteFile(exact, []byte("x"), DefaultFilePermissions); err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}
	if got, err := FindDownloadedFile(exact); err != nil || got != exact {
		t.Errorf("Expected exact match %q, got %q (%v)", exact, got, err)
	}

	// Same title, different extension; partial files are ignored
	webm := filepath.Join(dir, "talk.webm")
	if err := os.WriteFile(webm, []byte("x"), DefaultFilePermissions); err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "talk.mp4.part"), []byte("x"), DefaultFilePermissions); err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}
	if got, err := FindDownloadedFile(filepath.Join(dir, "talk.mp4")); err != nil || got != webm {
		t.Errorf("Expected fallback %q, got %q (%v)", webm, got, err)
	}

	if _, err := FindDownloadedFile(filepath.Join(dir, "missing.mp4")); err == nil {
		t.Error("Expected error for missing file")
	}
	if _, err := FindDownloadedFile(""); err == nil {
		t.Error("Expected error for empty path")
	}

	_, err := FindDownloadedFile(filepath.Join(dir, "nope", "a.mp4"))
	if !errs.IsFilesystem(err) {
		t.Errorf("Expected FilesystemError for unreadable directory, got %v", err)
	}
}
