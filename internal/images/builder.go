// Package images knows how to build, push, and alias the published container images.
//
// Every flavor shares one Pipeline implementation and differs only in its repository
// name and the manifest it renders. All side effects go through an actions.Executor.
package images

// Builder publishes one image version.
type Builder interface {
	// DockerTag is the canonical "namespace/repo:version" tag.
	DockerTag() string
	// Materialize writes the build manifest to path.
	Materialize(path string) error
	// Build creates a fresh build context and builds the image from it.
	Build() error
	// Push pushes the canonical tag to the public registry.
	Push() error
	// PushTo pushes "host/tag".
	PushTo(host string) error
	// TagFor tags the canonical image as "host/tag".
	TagFor(host string) error
	// Alias tags base:version as base:alias and pushes the alias.
	Alias(version, alias string) error
	// AliasTo does what Alias does under "host/".
	AliasTo(host, version, alias string) error
}
