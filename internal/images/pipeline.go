package images

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/cochaviz/swift-ci/internal/actions"
)

const (
	// DefaultTool is the container CLI every command is issued to.
	DefaultTool = "docker"

	manifestName  = "Dockerfile"
	contextPrefix = "swift-ci-build-"
)

// ManifestFunc renders the manifest for a version.
type ManifestFunc func(version string) ([]byte, error)

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithTool overrides the container CLI (e.g. "podman").
func WithTool(tool string) Option {
	return func(p *Pipeline) {
		if tool != "" {
			p.tool = tool
		}
	}
}

// WithContextRoot sets the directory under which build contexts are created.
func WithContextRoot(dir string) Option {
	return func(p *Pipeline) {
		if dir != "" {
			p.contextRoot = dir
		}
	}
}

// WithContextID overrides how build context directory names are generated.
func WithContextID(newID func() string) Option {
	return func(p *Pipeline) {
		if newID != nil {
			p.newID = newID
		}
	}
}

// Pipeline implements Builder for a repository and version, parameterized by its manifest.
type Pipeline struct {
	repository string
	version    string
	manifest   ManifestFunc
	executor   actions.Executor

	tool        string
	contextRoot string
	newID       func() string
}

var _ Builder = (*Pipeline)(nil)

// NewPipeline returns a builder for repository:version.
func NewPipeline(repository, version string, manifest ManifestFunc, executor actions.Executor, opts ...Option) *Pipeline {
	p := &Pipeline{
		repository:  repository,
		version:     version,
		manifest:    manifest,
		executor:    executor,
		tool:        DefaultTool,
		contextRoot: os.TempDir(),
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Version returns the runtime version this pipeline publishes.
func (p *Pipeline) Version() string {
	return p.version
}

func (p *Pipeline) DockerTag() string {
	return p.repository + ":" + p.version
}

func (p *Pipeline) Materialize(path string) error {
	if p.manifest == nil {
		return fmt.Errorf("no manifest configured for %s", p.DockerTag())
	}
	content, err := p.manifest(p.version)
	if err != nil {
		return fmt.Errorf("render manifest for %s: %w", p.DockerTag(), err)
	}
	return p.executor.CreateFile(path, content)
}

func (p *Pipeline) Build() error {
	contextDir := filepath.Join(p.contextRoot, contextPrefix+p.newID())
	if err := p.executor.CreateDirectory(contextDir); err != nil {
		return err
	}
	if err := p.Materialize(filepath.Join(contextDir, manifestName)); err != nil {
		return err
	}
	return p.executor.Run(contextDir, p.tool, "build", "-t", p.DockerTag(), contextDir)
}

func (p *Pipeline) Push() error {
	return p.executor.Run("", p.tool, "push", p.DockerTag())
}

func (p *Pipeline) PushTo(host string) error {
	return p.executor.Run("", p.tool, "push", Qualify(host, p.DockerTag()))
}

func (p *Pipeline) TagFor(host string) error {
	return p.executor.Run("", p.tool, "tag", p.DockerTag(), Qualify(host, p.DockerTag()))
}

func (p *Pipeline) Alias(version, alias string) error {
	return p.AliasTo("", version, alias)
}

func (p *Pipeline) AliasTo(host, version, alias string) error {
	existing := AliasTag(host, p.DockerTag(), version)
	aliased := AliasTag(host, p.DockerTag(), alias)

	if err := p.executor.Run("", p.tool, "tag", existing, aliased); err != nil {
		return err
	}
	return p.executor.Run("", p.tool, "push", aliased)
}

// baseTag returns everything before the first colon of tag.
func baseTag(tag string) string {
	base, _, _ := strings.Cut(tag, ":")
	return base
}

// AliasTag replaces the suffix of tag with alias and prefixes it with host when one is given.
func AliasTag(host, tag, alias string) string {
	return Qualify(host, baseTag(tag)+":"+alias)
}

// Qualify prefixes tag with "host/". An empty host leaves tag unchanged.
func Qualify(host, tag string) string {
	if host == "" {
		return tag
	}
	return strings.TrimSuffix(host, "/") + "/" + tag
}
