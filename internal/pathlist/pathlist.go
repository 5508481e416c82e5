package pathlist

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrEmpty is returned when the effective path set is empty after applying
// include and exclude files.
var ErrEmpty = errors.New("effective path list is empty")

// Load assembles the effective path set: dictionary plus include paths,
// minus exclude paths (exact string match). Order is preserved and
// duplicates are not removed. A missing include or exclude file is skipped
// silently; a missing dictionary is an error.
func Load(dictionary, includeFile, excludeFile string) ([]string, error) {
	paths, err := readLines(dictionary)
	if err != nil {
		return nil, fmt.Errorf("reading dictionary: %w", err)
	}

	if includeFile != "" {
		include, err := readLines(includeFile)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading include paths: %w", err)
		}
		paths = append(paths, include...)
	}

	if excludeFile != "" {
		exclude, err := readLines(excludeFile)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading exclude paths: %w", err)
		}
		if len(exclude) > 0 {
			excluded := make(map[string]bool, len(exclude))
			for _, p := range exclude {
				excluded[p] = true
			}
			kept := paths[:0]
			for _, p := range paths {
				if !excluded[p] {
					kept = append(kept, p)
				}
			}
			paths = kept
		}
	}

	if len(paths) == 0 {
		return nil, ErrEmpty
	}

	return paths, nil
}

func readLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []string
	sc := bufio.NewScanner(file)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line != "" && !strings.HasPrefix(line, "#") {
			lines = append(lines, line)
		}
	}

	return lines, sc.Err()
}
