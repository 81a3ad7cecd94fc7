// Package rulebundle lists and extracts rule files out of a packaged
// rule-repository mirror (zip/7z/tar, optionally compressed) already
// present on disk. It never talks to the network: fetching the bundle is
// the CLI's job, not the core's.
package rulebundle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mholt/archiver/v4"
)

// Common errors returned by the reader.
var (
	ErrNoBundlePath      = errors.New("rulebundle: bundle path is required")
	ErrBundleNotFound    = errors.New("rulebundle: bundle file not found")
	ErrUnsupportedFormat = errors.New("rulebundle: unsupported archive format")
	ErrExtractionFailed  = errors.New("rulebundle: extraction failed")
)

// ruleExtensions are the file extensions treated as rule-file members of
// a bundle; everything else inside the archive is ignored by default.
var ruleExtensions = map[string]bool{
	".txt":  true,
	".mlox": true,
}

// Config holds configuration for the Reader.
type Config struct {
	// TempDir is the directory extracted files are written under. If
	// empty, os.TempDir() is used.
	TempDir string

	// MaxFileSize bounds a single extracted file's size in bytes. Zero or
	// negative means no limit.
	MaxFileSize int64

	// MaxTotalSize bounds the sum of all extracted files' sizes in bytes.
	// Zero or negative means no limit.
	MaxTotalSize int64
}

// Reader extracts rule files from a packaged rule-repository archive.
type Reader struct {
	tempDir      string
	maxFileSize  int64
	maxTotalSize int64
}

// New creates a rule-bundle reader with the given configuration.
func New(cfg Config) *Reader {
	tempDir := cfg.TempDir
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &Reader{
		tempDir:      tempDir,
		maxFileSize:  cfg.MaxFileSize,
		maxTotalSize: cfg.MaxTotalSize,
	}
}

// ExtractResult describes a completed bundle extraction.
type ExtractResult struct {
	// OutputDir is the directory containing the extracted rule files.
	OutputDir string

	// Files lists the extracted rule files' paths relative to OutputDir.
	Files []string

	TotalSize int64
}

// ListRuleFiles returns the archive-relative paths of every member that
// looks like a rule file (by extension), without extracting anything.
func (r *Reader) ListRuleFiles(ctx context.Context, bundlePath string) ([]string, error) {
	all, err := r.listAll(ctx, bundlePath)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, name := range all {
		if ruleExtensions[strings.ToLower(filepath.Ext(name))] {
			out = append(out, name)
		}
	}
	return out, nil
}

func (r *Reader) listAll(ctx context.Context, bundlePath string) ([]string, error) {
	format, input, closeFn, err := r.identify(ctx, bundlePath)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	extractor, ok := format.(archiver.Extractor)
	if !ok {
		return nil, fmt.Errorf("%w: format does not support extraction", ErrUnsupportedFormat)
	}

	var files []string
	err = extractor.Extract(ctx, input, func(ctx context.Context, f archiver.FileInfo) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !f.IsDir() {
			files = append(files, f.NameInArchive)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("rulebundle: list archive: %w", err)
	}
	return files, nil
}

// ExtractRuleFiles extracts every rule-file member (by extension) from the
// bundle to a fresh temporary directory.
func (r *Reader) ExtractRuleFiles(ctx context.Context, bundlePath string) (*ExtractResult, error) {
	format, input, closeFn, err := r.identify(ctx, bundlePath)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	extractor, ok := format.(archiver.Extractor)
	if !ok {
		return nil, fmt.Errorf("%w: format does not support extraction", ErrUnsupportedFormat)
	}

	outputDir, err := os.MkdirTemp(r.tempDir, "plox-rulebundle-*")
	if err != nil {
		return nil, fmt.Errorf("rulebundle: create temp dir: %w", err)
	}

	var extracted []string
	var totalSize int64

	err = extractor.Extract(ctx, input, func(ctx context.Context, f archiver.FileInfo) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if f.IsDir() {
			return nil
		}
		filePath := f.NameInArchive
		if !ruleExtensions[strings.ToLower(filepath.Ext(filePath))] {
			return nil
		}

		if r.maxFileSize > 0 && f.Size() > r.maxFileSize {
			return fmt.Errorf("rulebundle: file %s exceeds max file size (%d > %d)", filePath, f.Size(), r.maxFileSize)
		}
		if r.maxTotalSize > 0 && totalSize+f.Size() > r.maxTotalSize {
			return fmt.Errorf("rulebundle: extraction would exceed max total size (%d)", r.maxTotalSize)
		}

		destPath := filepath.Join(outputDir, filePath)
		if !strings.HasPrefix(filepath.Clean(destPath), filepath.Clean(outputDir)) {
			return fmt.Errorf("rulebundle: invalid file path: %s", filePath)
		}
		if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
			return fmt.Errorf("rulebundle: create directory for %s: %w", filePath, err)
		}

		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("rulebundle: open %s in archive: %w", filePath, err)
		}
		defer rc.Close()

		destFile, err := os.Create(destPath)
		if err != nil {
			return fmt.Errorf("rulebundle: create %s: %w", destPath, err)
		}
		defer destFile.Close()

		written, err := io.Copy(destFile, rc)
		if err != nil {
			return fmt.Errorf("rulebundle: extract %s: %w", filePath, err)
		}

		extracted = append(extracted, filePath)
		totalSize += written
		return nil
	})

	if err != nil {
		os.RemoveAll(outputDir)
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	return &ExtractResult{OutputDir: outputDir, Files: extracted, TotalSize: totalSize}, nil
}

// Cleanup removes an extraction output directory.
func (r *Reader) Cleanup(outputDir string) error {
	if outputDir == "" {
		return nil
	}
	return os.RemoveAll(outputDir)
}

func (r *Reader) identify(ctx context.Context, bundlePath string) (archiver.Format, io.Reader, func() error, error) {
	if bundlePath == "" {
		return nil, nil, nil, ErrNoBundlePath
	}
	if _, err := os.Stat(bundlePath); os.IsNotExist(err) {
		return nil, nil, nil, fmt.Errorf("%w: %s", ErrBundleNotFound, bundlePath)
	}

	file, err := os.Open(bundlePath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("rulebundle: open %s: %w", bundlePath, err)
	}
	format, input, err := archiver.Identify(ctx, bundlePath, file)
	if err != nil {
		file.Close()
		return nil, nil, nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	return format, input, file.Close, nil
}
