package release

import (
	"github.com/cochaviz/swift-ci/internal/actions"
	"github.com/cochaviz/swift-ci/internal/images"
	"github.com/cochaviz/swift-ci/internal/models"
	"github.com/cochaviz/swift-ci/internal/registry"
)

// Phase names announced to the executor.
const (
	PhaseBuild    = "build"
	PhasePush     = "push"
	PhaseAlias    = "alias"
	PhaseRegistry = "registry"
	PhaseRecord   = "record"
)

// ReleaseRequest holds the resolved run flags.
type ReleaseRequest struct {
	Build bool
	Push  bool
	Alias bool

	// Registry, when set, mirrors every image and alias to a private host.
	Registry *registry.Target

	// Mode is recorded with the run; it does not change which operations are issued.
	Mode actions.Mode
}

// BuilderFactory creates the builder publishing flavor at version.
type BuilderFactory func(flavor images.Flavor, version string, executor actions.Executor) images.Builder

// RunRepository stores run records.
type RunRepository interface {
	Save(executor actions.Executor, record models.RunRecord) error
}
