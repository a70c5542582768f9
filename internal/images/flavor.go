package images

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/cochaviz/swift-ci/internal/actions"
)

//go:embed assets/*.Dockerfile.tmpl
var templateFS embed.FS

var manifestTemplates = template.Must(template.ParseFS(templateFS, "assets/*.Dockerfile.tmpl"))

// Flavor is a published image kind: a repository plus the manifest it is built from.
type Flavor struct {
	Name       string
	Repository string
	// Parent is the repository the manifest builds FROM, when it layers on another flavor.
	Parent   string
	Packages []string

	template string
}

type manifestData struct {
	Version    string
	Repository string
	Parent     string
	Packages   []string
}

// CI is the base image: the official Swift image plus the packages CI jobs need.
var CI = Flavor{
	Name:       "ci",
	Repository: "kitura/swift-ci",
	Packages: []string{
		"curl",
		"git",
		"libcurl4-openssl-dev",
		"libpq-dev",
		"libsqlite3-dev",
		"libssl-dev",
		"pkg-config",
		"sudo",
		"wget",
		"zlib1g-dev",
	},
	template: "ci.Dockerfile.tmpl",
}

// Development layers debugging tools on top of the CI image of the same version.
var Development = Flavor{
	Name:       "development",
	Repository: "kitura/swift-development",
	Parent:     CI.Repository,
	Packages: []string{
		"gdb",
		"iputils-ping",
		"lsof",
		"net-tools",
		"valgrind",
		"vim",
	},
	template: "development.Dockerfile.tmpl",
}

// Flavors returns every flavor in build order. Parents come before the flavors layered on them.
func Flavors() []Flavor {
	return []Flavor{CI.clone(), Development.clone()}
}

// DefaultFlavors is what a run publishes when no flavor is selected: only CI.
func DefaultFlavors() []Flavor {
	return []Flavor{CI.clone()}
}

func (f Flavor) clone() Flavor {
	f.Packages = append([]string(nil), f.Packages...)
	return f
}

// Lookup returns the flavor called name.
func Lookup(name string) (Flavor, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for _, flavor := range Flavors() {
		if flavor.Name == normalized {
			return flavor, nil
		}
	}
	return Flavor{}, fmt.Errorf("unknown image flavor %q", name)
}

// Manifest renders the flavor's manifest for version.
func (f Flavor) Manifest(version string) ([]byte, error) {
	var rendered bytes.Buffer
	err := manifestTemplates.ExecuteTemplate(&rendered, f.template, manifestData{
		Version:    version,
		Repository: f.Repository,
		Parent:     f.Parent,
		Packages:   f.Packages,
	})
	if err != nil {
		return nil, fmt.Errorf("render %s manifest: %w", f.Name, err)
	}
	return rendered.Bytes(), nil
}

// NewBuilder returns the pipeline publishing this flavor at version.
func (f Flavor) NewBuilder(version string, executor actions.Executor, opts ...Option) *Pipeline {
	return NewPipeline(f.Repository, version, f.Manifest, executor, opts...)
}
