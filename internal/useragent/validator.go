package useragent

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrAllExhausted is returned when no candidate in the pool produced a
// successful probe.
var ErrAllExhausted = errors.New("all user-agent candidates exhausted")

// ErrEmptyPool is returned before any probe when the pool has no candidates.
var ErrEmptyPool = errors.New("user-agent pool is empty")

// ProbeFunc issues one probe request against the scan target with the given
// User-Agent and reports the resulting HTTP status code.
type ProbeFunc func(ua string) (int, error)

// Validator picks a working User-Agent from a candidate pool by probing the
// target once per candidate, in pool order.
type Validator struct {
	Probe ProbeFunc
	Log   io.Writer
}

func NewValidator(probe ProbeFunc) *Validator {
	return &Validator{Probe: probe, Log: os.Stderr}
}

// Validate returns the first candidate whose probe yields a 2xx status.
// Each candidate is tried at most once; after len(pool) failed probes the
// pool is exhausted.
func (v *Validator) Validate(pool []string) (string, error) {
	if len(pool) == 0 {
		return "", ErrEmptyPool
	}

	for _, ua := range pool {
		status, err := v.Probe(ua)
		if err != nil {
			fmt.Fprintf(v.Log, "[fail] user-agent %q: %v\n", ua, err)
			continue
		}
		if status >= 200 && status < 300 {
			fmt.Fprintf(v.Log, "[ok] user-agent %q accepted (status %d)\n", ua, status)
			return ua, nil
		}
		fmt.Fprintf(v.Log, "[fail] user-agent %q rejected (status %d)\n", ua, status)
	}

	return "", ErrAllExhausted
}

// LoadPool reads a newline-delimited User-Agent pool file. Blank lines and
// surrounding whitespace are dropped.
func LoadPool(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var pool []string
	sc := bufio.NewScanner(file)
	for sc.Scan() {
		ua := strings.TrimSpace(sc.Text())
		if ua != "" {
			pool = append(pool, ua)
		}
	}

	return pool, sc.Err()
}
