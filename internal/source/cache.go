// Package source caches source files line by line for the debugger's
// source window.
package source

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
)

// Cache loads files lazily and keeps their lines. Embedded sources added with
// Add take precedence over files on disk.
type Cache struct {
	base  string
	files map[string][]string
	errs  map[string]error
}

// NewCache returns a cache that resolves relative paths against base.
func NewCache(base string) *Cache {
	return &Cache{
		base:  base,
		files: make(map[string][]string),
		errs:  make(map[string]error),
	}
}

// Add registers the lines of file, replacing anything loaded before.
func (c *Cache) Add(file string, lines []string) {
	c.files[file] = lines
	delete(c.errs, file)
}

// SourceLine returns line (1-based) of file. ok is false when line is past
// the end of the file.
func (c *Cache) SourceLine(file string, line int) (string, bool, error) {
	lines, err := c.load(file)
	if err != nil {
		return "", false, err
	}
	if line < 1 || line > len(lines) {
		return "", false, nil
	}
	return lines[line-1], true, nil
}

// Len returns the number of lines in file.
func (c *Cache) Len(file string) (int, error) {
	lines, err := c.load(file)
	return len(lines), err
}

func (c *Cache) load(file string) ([]string, error) {
	if lines, ok := c.files[file]; ok {
		return lines, nil
	}
	if err, ok := c.errs[file]; ok {
		return nil, err
	}

	lines, err := readLines(c.resolve(file))
	if err != nil {
		err = fmt.Errorf("source %s unavailable: %w", file, err)
		c.errs[file] = err
		return nil, err
	}
	c.files[file] = lines
	return lines, nil
}

func (c *Cache) resolve(file string) string {
	if filepath.IsAbs(file) || c.base == "" {
		return file
	}
	return filepath.Join(c.base, file)
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
