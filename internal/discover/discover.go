// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package discover finds notebook documents in a directory tree.
package discover

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	// DefaultExtension is the suffix of Jupyter notebook files.
	DefaultExtension = ".ipynb"
	// DefaultExcludeMarker appears in the names of Jupyter checkpoint copies.
	DefaultExcludeMarker = "checkpoint"
)

// Options controls which file names count as notebooks. Empty fields take
// the defaults above, so the exclude marker cannot be switched off.
type Options struct {
	Extension     string
	ExcludeMarker string
}

func (o Options) withDefaults() Options {
	if o.Extension == "" {
		o.Extension = DefaultExtension
	}
	if o.ExcludeMarker == "" {
		o.ExcludeMarker = DefaultExcludeMarker
	}
	return o
}

// Match reports whether a file name is a notebook under opts: it must end in
// the extension and must not contain the exclude marker.
func Match(name string, opts Options) bool {
	opts = opts.withDefaults()
	return strings.HasSuffix(name, opts.Extension) && !strings.Contains(name, opts.ExcludeMarker)
}

// Walk returns every file under root whose base name matches opts, in
// lexical order. Only file names are filtered; directories are always
// descended into. Symlinks to files are included, symlinks to directories
// are neither returned nor followed.
func Walk(root string, opts Options) ([]string, error) {
	opts = opts.withDefaults()

	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !Match(d.Name(), opts) {
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			// Dangling links are kept so the run reports them as failures.
			if info, err := os.Stat(path); err == nil && info.IsDir() {
				return nil
			}
		} else if !d.Type().IsRegular() {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	return paths, nil
}

// DefaultRoot returns the directory scanned when none is given: the parent
// of cwd, so that running from a project's test/ directory covers the whole
// project.
func DefaultRoot(cwd string) string {
	return filepath.Dir(filepath.Clean(cwd))
}
