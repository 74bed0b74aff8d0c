package deploy

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Sentinel errors returned by manifest parsing.
var (
	ErrUnpinnedRequirement  = errors.New("requirement is not pinned to an exact version")
	ErrDuplicateRequirement = errors.New("requirement listed more than once")
)

// Requirement is a single named, version-pinned dependency.
type Requirement struct {
	Name    string
	Version string
}

// String renders the requirement back into its manifest form.
func (requirement Requirement) String() string {
	return requirement.Name + "==" + requirement.Version
}

// Manifest is the ordered dependency list of a deployment unit. Order is
// significant: requirements are installed exactly in manifest order.
type Manifest struct {
	Requirements []Requirement
}

// ParseManifest reads a dependency manifest: one `name==version` entry per
// line, with `#` comment lines and blank lines ignored. Unpinned entries
// and duplicate names are rejected.
func ParseManifest(reader io.Reader) (*Manifest, error) {
	manifest := &Manifest{}
	seen := map[string]bool{}

	scanner := bufio.NewScanner(reader)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		requirement, err := parseRequirement(line)
		if err != nil {
			return nil, fmt.Errorf("manifest line %d (%q) : %w", lineNumber, line, err)
		}
		if seen[requirement.Name] {
			return nil, fmt.Errorf("manifest line %d (%q) : %w", lineNumber, line, ErrDuplicateRequirement)
		}
		seen[requirement.Name] = true

		manifest.Requirements = append(manifest.Requirements, requirement)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading manifest : %w", err)
	}

	return manifest, nil
}

// ParseManifestFile reads and parses the manifest at path.
func ParseManifestFile(path string) (*Manifest, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening manifest : %w", err)
	}
	defer file.Close()

	return ParseManifest(file)
}

func parseRequirement(line string) (Requirement, error) {
	name, version, found := strings.Cut(line, "==")
	name = strings.TrimSpace(name)
	version = strings.TrimSpace(version)
	if !found || name == "" || version == "" {
		return Requirement{}, ErrUnpinnedRequirement
	}
	// A lone ">" or "<" left of the cut means a range constraint, not a pin.
	if strings.ContainsAny(name, "<>=~!") || strings.ContainsAny(version, "<>=") {
		return Requirement{}, ErrUnpinnedRequirement
	}
	return Requirement{Name: name, Version: version}, nil
}
