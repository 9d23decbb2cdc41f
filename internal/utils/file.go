package utils

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// InputExtensions lists the source formats accepted into the queue, without the dot
var InputExtensions = []string{"jpg", "jpeg", "png", "bmp", "tiff", "tif", "webp", "tga"}

// EnsureDir creates a directory and its parents if they don't exist
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}

// ExpandHome replaces a leading ~ with the user's home directory
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// GetFileExtension returns the file extension without the dot
func GetFileExtension(filename string) string {
	ext := filepath.Ext(filename)
	if len(ext) > 0 {
		return strings.ToLower(ext[1:])
	}
	return ""
}

// IsImageFile checks if a file has a supported input extension
func IsImageFile(filename string) bool {
	ext := GetFileExtension(filename)
	for _, imgExt := range InputExtensions {
		if ext == imgExt {
			return true
		}
	}
	return false
}

// ListImageFiles recursively lists all image files in a directory, sorted by path
func ListImageFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && IsImageFile(path) {
			files = append(files, path)
		}
		return nil
	})

	sort.Strings(files)
	return files, err
}

// ExpandInputs turns a mix of files and directories into image file paths.
// Directories are walked; files with other extensions are skipped.
func ExpandInputs(paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		if DirExists(p) {
			files, err := ListImageFiles(p)
			if err != nil {
				return nil, fmt.Errorf("failed to list %s: %w", p, err)
			}
			out = append(out, files...)
			continue
		}
		if IsImageFile(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

// UniqueOutputPath returns dir/base+ext, or dir/base_N+ext with the first
// N = 1, 2, ... for which the file does not exist and taken reports false.
// taken may be nil.
func UniqueOutputPath(dir, base, ext string, taken func(string) bool) string {
	candidate := filepath.Join(dir, base+ext)
	for n := 1; pathInUse(candidate, taken); n++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s_%d%s", base, n, ext))
	}
	return candidate
}

func pathInUse(path string, taken func(string) bool) bool {
	if taken != nil && taken(path) {
		return true
	}
	return FileExists(path) || DirExists(path)
}

// FileExists checks if a file exists and is not a directory
func FileExists(filename string) bool {
	info, err := os.Stat(filename)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// DirExists checks if a directory exists
func DirExists(dirname string) bool {
	info, err := os.Stat(dirname)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && info.IsDir()
}

// SanitizeFilename removes or replaces invalid characters in filenames
func SanitizeFilename(filename string) string {
	invalid := []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|"}
	result := filename

	for _, char := range invalid {
		result = strings.ReplaceAll(result, char, "_")
	}

	// Remove leading/trailing spaces and dots
	return strings.Trim(result, " .")
}

// FormatFileSize formats file size in human-readable format
func FormatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}

	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
