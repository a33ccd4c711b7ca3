package crawler

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// Crawler scans a directory tree for model data files.
type Crawler struct {
	ignored    []string
	extensions []string
}

// NewCrawler creates a crawler that skips the named directories.
func NewCrawler(ignored ...string) *Crawler {
	if len(ignored) == 0 {
		ignored = []string{".git", "results", "backup"}
	}
	return &Crawler{
		ignored:    ignored,
		extensions: []string{".dat", ".ied"},
	}
}

// Scan walks root and calls onFile for every .dat or .ied file in lexical
// order. An error from onFile stops the walk.
func (c *Crawler) Scan(root string, onFile func(path string) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		// Skip ignored directories
		if d.IsDir() {
			if path == root {
				return nil
			}
			for _, ign := range c.ignored {
				if d.Name() == ign {
					return filepath.SkipDir
				}
			}
			return nil
		}

		if !c.wanted(d.Name()) {
			return nil
		}
		return onFile(path)
	})
}

// Files returns every data file under root.
func (c *Crawler) Files(root string) ([]string, error) {
	var out []string
	err := c.Scan(root, func(path string) error {
		out = append(out, path)
		return nil
	})
	return out, err
}

func (c *Crawler) wanted(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range c.extensions {
		if ext == e {
			return true
		}
	}
	return false
}
