package discovery

import (
	"errors"
	"strings"

	"gunit/internal/metadata"
)

// ErrNoTypes is returned when the catalog holds nothing to scan
var ErrNoTypes = errors.New("no fixture types registered")

// Scanner selects the registered types that take part in discovery
type Scanner struct {
	skipPackages map[string]bool
}

// NewScanner creates a new Scanner with the given packages to skip
func NewScanner(skipPackages []string) *Scanner {
	skipMap := make(map[string]bool)
	for _, pkg := range skipPackages {
		skipMap[strings.TrimSpace(pkg)] = true
	}
	return &Scanner{skipPackages: skipMap}
}

// Scan returns the catalog types in registration order. Hidden and skipped
// packages are left out and a type registered twice is kept once.
func (s *Scanner) Scan(catalog *metadata.Catalog) ([]*metadata.TypeInfo, error) {
	if catalog == nil || catalog.Len() == 0 {
		return nil, ErrNoTypes
	}

	seen := make(map[string]bool)
	var types []*metadata.TypeInfo
	for _, t := range catalog.Types() {
		if t == nil || s.skip(t.Package) {
			continue
		}
		name := t.FullName()
		if seen[name] {
			continue
		}
		seen[name] = true
		types = append(types, t)
	}
	return types, nil
}

func (s *Scanner) skip(pkg string) bool {
	// Skip hidden packages (starting with . or _)
	if strings.HasPrefix(pkg, ".") || strings.HasPrefix(pkg, "_") {
		return true
	}
	for skipped := range s.skipPackages {
		if skipped != "" && (pkg == skipped || strings.HasPrefix(pkg, skipped+"/")) {
			return true
		}
	}
	return false
}
