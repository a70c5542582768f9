// Package versions holds the ordered table of runtime versions and their aliases.
package versions

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed assets/versions.yaml
var embeddedTable []byte

// Table is the ordered list of versions to publish and the aliases of each.
// Aliases for versions missing from Versions are never applied.
type Table struct {
	Versions []string
	Aliases  map[string][]string
}

// TableError reports an invalid version table.
type TableError struct {
	Message string
}

func (e *TableError) Error() string {
	return fmt.Sprintf("invalid version table: %s", e.Message)
}

type tableFile struct {
	Versions []tableEntry `yaml:"versions"`
}

type tableEntry struct {
	Version string   `yaml:"version"`
	Aliases []string `yaml:"aliases,omitempty"`
}

// Default returns the table shipped with the binary.
func Default() (*Table, error) {
	return Parse(embeddedTable)
}

// Load reads and validates a table from a YAML file.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read version table: %w", err)
	}
	table, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}

// Parse decodes and validates a YAML table, keeping the declared order.
func Parse(data []byte) (*Table, error) {
	var file tableFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode version table: %w", err)
	}

	table := &Table{Aliases: make(map[string][]string)}
	for _, entry := range file.Versions {
		version := strings.TrimSpace(entry.Version)
		table.Versions = append(table.Versions, version)
		if len(entry.Aliases) == 0 {
			continue
		}
		aliases := make([]string, 0, len(entry.Aliases))
		for _, alias := range entry.Aliases {
			aliases = append(aliases, strings.TrimSpace(alias))
		}
		table.Aliases[version] = aliases
	}

	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table, nil
}

// Validate checks that versions are unique and that every alias belongs to exactly one version.
func (t *Table) Validate() error {
	if t == nil || len(t.Versions) == 0 {
		return &TableError{Message: "no versions configured"}
	}

	known := make(map[string]bool, len(t.Versions))
	for _, version := range t.Versions {
		if version == "" {
			return &TableError{Message: "empty version"}
		}
		if strings.Contains(version, ":") {
			return &TableError{Message: fmt.Sprintf("version %q must not contain ':'", version)}
		}
		if known[version] {
			return &TableError{Message: fmt.Sprintf("duplicate version %q", version)}
		}
		known[version] = true
	}

	owners := make(map[string]string)
	for _, version := range t.Versions {
		for _, alias := range t.Aliases[version] {
			if alias == "" {
				return &TableError{Message: fmt.Sprintf("empty alias for version %q", version)}
			}
			if known[alias] {
				return &TableError{Message: fmt.Sprintf("alias %q of %q shadows a version", alias, version)}
			}
			if owner, ok := owners[alias]; ok {
				return &TableError{Message: fmt.Sprintf("alias %q declared for both %q and %q", alias, owner, version)}
			}
			owners[alias] = version
		}
	}
	return nil
}

// AliasesFor returns the aliases of version in declared order, or nil when the
// version is not part of the table.
func (t *Table) AliasesFor(version string) []string {
	if t == nil {
		return nil
	}
	for _, v := range t.Versions {
		if v == version {
			return append([]string(nil), t.Aliases[version]...)
		}
	}
	return nil
}

// Marshal renders the table back to its YAML form.
func (t *Table) Marshal() ([]byte, error) {
	file := tableFile{}
	for _, version := range t.Versions {
		file.Versions = append(file.Versions, tableEntry{
			Version: version,
			Aliases: t.Aliases[version],
		})
	}
	return yaml.Marshal(file)
}
