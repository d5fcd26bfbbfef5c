package modules

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/funvibe/hetu/internal/config"
)

// FileReader reads one source file by path. Hosts may supply their own to
// serve sources from memory or archives.
type FileReader func(path string) (string, error)

// Loader resolves import paths against a working directory and reads source
// text through a pluggable reader.
type Loader struct {
	WorkingDir string
	Reader     FileReader
}

func NewLoader(workingDir string, reader FileReader) *Loader {
	if reader == nil {
		reader = func(path string) (string, error) {
			content, err := os.ReadFile(path)
			if err != nil {
				return "", err
			}
			return string(content), nil
		}
	}
	return &Loader{WorkingDir: workingDir, Reader: reader}
}

// Resolve turns an import path into the canonical path used for
// deduplication: relative paths are joined with the working directory, and a
// missing extension defaults to the source file extension.
func (l *Loader) Resolve(path string) string {
	if !hasSourceExt(path) {
		path += config.SourceFileExt
	}
	if !filepath.IsAbs(path) && l.WorkingDir != "" {
		path = filepath.Join(l.WorkingDir, path)
	}
	return filepath.Clean(path)
}

// Load resolves the path and reads the file.
func (l *Loader) Load(path string) (source string, fullPath string, err error) {
	fullPath = l.Resolve(path)
	source, err = l.Reader(fullPath)
	if err != nil {
		return "", fullPath, fmt.Errorf("cannot read '%s': %w", fullPath, err)
	}
	return source, fullPath, nil
}

func hasSourceExt(path string) bool {
	for _, ext := range config.SourceFileExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}
