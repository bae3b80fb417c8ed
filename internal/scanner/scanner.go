// Package scanner enumerates the entries of a target directory for relprefix.
package scanner

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"
)

// ScanErrorType represents the type of scanning error.
type ScanErrorType string

const (
	// DirectoryNotFound indicates the directory does not exist or is not a directory.
	DirectoryNotFound ScanErrorType = "DIRECTORY_NOT_FOUND"
	// PermissionDenied indicates insufficient permissions to read the directory.
	PermissionDenied ScanErrorType = "PERMISSION_DENIED"
	// ReadFailed indicates the directory listing could not be read.
	ReadFailed ScanErrorType = "READ_FAILED"
)

// Entry policies decide which directory entries are returned.
const (
	// EntriesFiles returns regular files only. Directories, symlinks and
	// other special entries are skipped.
	EntriesFiles = "files"
	// EntriesAll returns every direct entry, directories included.
	// Directories are never recursed into.
	EntriesAll = "all"
)

// ScanError represents an error that occurred during directory scanning.
type ScanError struct {
	Type ScanErrorType
	Path string
	Err  error
}

func (e *ScanError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Path, e.Err)
	}
	return string(e.Type) + ": " + e.Path
}

func (e *ScanError) Unwrap() error {
	return e.Err
}

// IsDirectoryNotFound reports whether err is a DirectoryNotFound scan error.
func IsDirectoryNotFound(err error) bool {
	var scanErr *ScanError
	return errors.As(err, &scanErr) && scanErr.Type == DirectoryNotFound
}

// ScanOptions configures scanning behavior.
type ScanOptions struct {
	Entries string   // EntriesFiles or EntriesAll
	Sort    bool     // Sort by name instead of keeping enumeration order
	Ignore  []string // Glob patterns matched against the entry name
}

// DefaultScanOptions returns the default scan options.
func DefaultScanOptions() ScanOptions {
	return ScanOptions{
		Entries: EntriesFiles,
		Sort:    true,
	}
}

// FileEntry represents an entry found during scanning.
type FileEntry struct {
	Name     string // Entry name only
	FullPath string // Path joined with the scanned directory
	IsDir    bool
}

// Scan enumerates regular files in directory without recursion.
// This is a convenience wrapper around ScanWithOptions with default options.
func Scan(fsys afero.Fs, directory string) ([]FileEntry, error) {
	return ScanWithOptions(fsys, directory, DefaultScanOptions())
}

// ScanWithOptions enumerates the direct entries of directory.
func ScanWithOptions(fsys afero.Fs, directory string, opts ScanOptions) ([]FileEntry, error) {
	info, err := fsys.Stat(directory)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &ScanError{Type: DirectoryNotFound, Path: directory, Err: err}
		}
		if os.IsPermission(err) {
			return nil, &ScanError{Type: PermissionDenied, Path: directory, Err: err}
		}
		return nil, &ScanError{Type: ReadFailed, Path: directory, Err: err}
	}
	if !info.IsDir() {
		return nil, &ScanError{
			Type: DirectoryNotFound,
			Path: directory,
			Err:  errors.New("path is not a directory"),
		}
	}

	infos, err := readDir(fsys, directory)
	if err != nil {
		if os.IsPermission(err) {
			return nil, &ScanError{Type: PermissionDenied, Path: directory, Err: err}
		}
		return nil, &ScanError{Type: ReadFailed, Path: directory, Err: err}
	}

	if opts.Sort {
		sort.Slice(infos, func(i, j int) bool {
			return infos[i].Name() < infos[j].Name()
		})
	}

	files := make([]FileEntry, 0, len(infos))
	for _, fi := range infos {
		if !include(fi, opts.Entries) {
			continue
		}
		if Ignored(fi.Name(), opts.Ignore) {
			continue
		}
		files = append(files, FileEntry{
			Name:     fi.Name(),
			FullPath: filepath.Join(directory, fi.Name()),
			IsDir:    fi.IsDir(),
		})
	}

	return files, nil
}

// readDir lists directory in the order the filesystem returns entries.
// afero.ReadDir always sorts, which would hide the enumeration order.
func readDir(fsys afero.Fs, directory string) ([]os.FileInfo, error) {
	f, err := fsys.Open(directory)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return f.Readdir(-1)
}

func include(fi os.FileInfo, policy string) bool {
	if policy == EntriesAll {
		return true
	}
	return fi.Mode().IsRegular()
}

// Ignored reports whether name matches any of the glob patterns.
// Malformed patterns never match; config validation rejects them earlier.
func Ignored(name string, patterns []string) bool {
	for _, pattern := range patterns {
		if matched, err := filepath.Match(pattern, name); err == nil && matched {
			return true
		}
	}
	return false
}
