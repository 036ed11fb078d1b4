// internal/cliutil/cliutil.go
package cliutil

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath expands a leading "~" and makes p absolute. Empty stays empty.
func ExpandPath(p string) (string, error) {
	if p == "" {
		return "", nil
	}
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expanding %q: %w", p, err)
		}
		p = filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	return filepath.Abs(p)
}

// RequireFile returns an error unless p names an existing regular file.
func RequireFile(p string) error {
	fi, err := os.Stat(p)
	if err != nil || !fi.Mode().IsRegular() {
		return fmt.Errorf("%s is not a file", p)
	}
	return nil
}

// ReadSeeds returns the trimmed, non-blank lines of path in order.
func ReadSeeds(path string) ([]string, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	seeds := []string{}
	sc := bufio.NewScanner(fh)
	ln := 0
	for sc.Scan() {
		ln++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.ContainsAny(line, " \t") {
			return nil, fmt.Errorf("%s:%d: seed %q contains whitespace", path, ln, line)
		}
		seeds = append(seeds, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return seeds, nil
}
