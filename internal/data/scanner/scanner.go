package scanner

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/penwyp/go-claude-predictor/internal/util"
)

// FileScanner scans files in the specified directory
type FileScanner struct {
	baseDir string
	pattern string
}

// NewFileScanner creates a new FileScanner instance
func NewFileScanner(baseDir string) *FileScanner {
	return &FileScanner{
		baseDir: baseDir,
		pattern: "*.jsonl",
	}
}

// Scan scans all files in the directory and returns all .jsonl file paths
func (s *FileScanner) Scan() ([]string, error) {
	start := time.Now()
	var files []string
	dirCount := 0

	util.LogDebugf("Start scanning directory: %s", s.baseDir)

	err := filepath.Walk(s.baseDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			util.LogDebugf("Skip file (error): %s - %v", path, err)
			return nil
		}

		if info.IsDir() {
			dirCount++
			return nil
		}

		if strings.HasSuffix(strings.ToLower(path), ".jsonl") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	util.LogDebugf("Scan finished: %d files in %d directories, took %v",
		len(files), dirCount, time.Since(start))
	return files, nil
}
