// Package release drives the publish run: it walks the version table and issues build,
// push, alias, and private-registry operations in a fixed order.
package release

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/cochaviz/swift-ci/internal/actions"
	"github.com/cochaviz/swift-ci/internal/images"
	"github.com/cochaviz/swift-ci/internal/logging"
	"github.com/cochaviz/swift-ci/internal/models"
	"github.com/cochaviz/swift-ci/internal/versions"
)

// ReleaseService publishes the selected flavors of every version in the table.
//
// Versions are processed in table order. Within a version the stages run build, push,
// alias, then registry, and each stage covers the flavors in order. The first failure
// aborts the whole run.
type ReleaseService struct {
	Logger   *slog.Logger
	Executor actions.Executor
	Table    *versions.Table
	// Flavors defaults to images.DefaultFlavors().
	Flavors []images.Flavor
	// NewBuilder defaults to Flavor.NewBuilder using Tool.
	NewBuilder BuilderFactory
	// Runs, when set, receives a record of every run.
	Runs RunRepository
	// Tool defaults to images.DefaultTool.
	Tool string

	now   func() time.Time
	newID func() string
}

type flavorBuilder struct {
	flavor  images.Flavor
	builder images.Builder
}

// Run executes request. The returned record is non-nil whenever the run started.
func (s *ReleaseService) Run(request *ReleaseRequest) (*models.RunRecord, error) {
	if request == nil {
		return nil, errors.New("release request is required")
	}
	if s.Executor == nil {
		return nil, errors.New("executor is not configured")
	}
	if err := s.Table.Validate(); err != nil {
		return nil, err
	}
	if request.Registry != nil {
		if err := request.Registry.Validate(); err != nil {
			return nil, err
		}
	}

	flavors := s.flavors()
	record := s.newRecord(request, flavors)
	logger := s.logger().With("run", record.ID)
	logger.Info("starting release",
		"versions", len(s.Table.Versions),
		"build", request.Build,
		"push", request.Push,
		"alias", request.Alias,
		"registry", request.Registry.String(),
	)

	runErr := s.runVersions(logger, request, flavors, record)

	record.FinishedAt = s.clock()
	record.Status = models.RunStatusSucceeded
	if runErr != nil {
		record.Status = models.RunStatusFailed
		record.Error = runErr.Error()
	}

	if err := s.saveRecord(record); err != nil {
		if runErr != nil {
			logger.Warn("unable to record failed run", "error", err)
			return record, runErr
		}
		return record, fmt.Errorf("record run %s: %w", record.ID, err)
	}

	if runErr != nil {
		return record, runErr
	}
	logger.Info("release completed", "steps", len(record.Steps), "tags", len(record.Tags()))
	return record, nil
}

func (s *ReleaseService) runVersions(logger *slog.Logger, request *ReleaseRequest, flavors []images.Flavor, record *models.RunRecord) error {
	for _, version := range s.Table.Versions {
		versionLogger := logger.With("version", version)
		versionLogger.Info("publishing version")

		builders := make([]flavorBuilder, 0, len(flavors))
		for _, flavor := range flavors {
			builders = append(builders, flavorBuilder{
				flavor:  flavor,
				builder: s.builderFor(flavor, version),
			})
		}

		if err := s.runVersion(versionLogger, request, version, builders, record); err != nil {
			return fmt.Errorf("publish %s: %w", version, err)
		}
	}
	return nil
}

func (s *ReleaseService) runVersion(logger *slog.Logger, request *ReleaseRequest, version string, builders []flavorBuilder, record *models.RunRecord) error {
	aliases := s.Table.AliasesFor(version)
	step := func(fb flavorBuilder, action models.StepAction, tag string) {
		record.Steps = append(record.Steps, models.RunStep{
			Version: version,
			Image:   fb.flavor.Name,
			Action:  action,
			Tag:     tag,
		})
	}

	if request.Build {
		s.Executor.Phase(phaseName(PhaseBuild, version))
		for _, fb := range builders {
			logger.Debug("building image", "tag", fb.builder.DockerTag())
			if err := fb.builder.Build(); err != nil {
				return fmt.Errorf("build %s: %w", fb.builder.DockerTag(), err)
			}
			step(fb, models.StepBuild, fb.builder.DockerTag())
		}
	}

	if request.Push {
		s.Executor.Phase(phaseName(PhasePush, version))
		for _, fb := range builders {
			logger.Debug("pushing image", "tag", fb.builder.DockerTag())
			if err := fb.builder.Push(); err != nil {
				return fmt.Errorf("push %s: %w", fb.builder.DockerTag(), err)
			}
			step(fb, models.StepPush, fb.builder.DockerTag())
		}
	}

	if request.Alias {
		s.Executor.Phase(phaseName(PhaseAlias, version))
		for _, fb := range builders {
			for _, alias := range aliases {
				tag := images.AliasTag("", fb.builder.DockerTag(), alias)
				logger.Debug("aliasing image", "tag", tag)
				if err := fb.builder.Alias(version, alias); err != nil {
					return fmt.Errorf("alias %s: %w", tag, err)
				}
				step(fb, models.StepAlias, tag)
			}
		}
	}

	target := request.Registry
	if target == nil {
		return nil
	}

	s.Executor.Phase(phaseName(PhaseRegistry, version))
	if target.NeedsLogin() {
		logger.Debug("logging in to registry", "registry", target.String())
		if err := s.Executor.Run("", target.LoginCommand(s.tool())...); err != nil {
			return fmt.Errorf("login to %s: %w", target.Host, err)
		}
		record.Steps = append(record.Steps, models.RunStep{Version: version, Action: models.StepLogin, Tag: target.Host})
	}

	for _, fb := range builders {
		tag := images.Qualify(target.Host, fb.builder.DockerTag())
		if err := fb.builder.TagFor(target.Host); err != nil {
			return fmt.Errorf("tag %s: %w", tag, err)
		}
		step(fb, models.StepTag, tag)

		if err := fb.builder.PushTo(target.Host); err != nil {
			return fmt.Errorf("push %s: %w", tag, err)
		}
		step(fb, models.StepPush, tag)

		for _, alias := range aliases {
			aliasTag := images.AliasTag(target.Host, fb.builder.DockerTag(), alias)
			if err := fb.builder.AliasTo(target.Host, version, alias); err != nil {
				return fmt.Errorf("alias %s: %w", aliasTag, err)
			}
			step(fb, models.StepAlias, aliasTag)
		}
	}
	logger.Info("mirrored to registry", "registry", target.Host)
	return nil
}

func (s *ReleaseService) saveRecord(record *models.RunRecord) error {
	if s.Runs == nil {
		return nil
	}
	s.Executor.Phase(PhaseRecord)
	return s.Runs.Save(s.Executor, *record)
}

func (s *ReleaseService) newRecord(request *ReleaseRequest, flavors []images.Flavor) *models.RunRecord {
	record := &models.RunRecord{
		ID:        s.id(),
		StartedAt: s.clock(),
		Mode:      string(request.Mode),
		Build:     request.Build,
		Push:      request.Push,
		Alias:     request.Alias,
		Registry:  request.Registry.String(),
		Versions:  append([]string(nil), s.Table.Versions...),
	}
	if record.Mode == "" {
		record.Mode = string(actions.ModeNormal)
	}
	for _, flavor := range flavors {
		record.Images = append(record.Images, flavor.Repository)
	}
	return record
}

func (s *ReleaseService) builderFor(flavor images.Flavor, version string) images.Builder {
	if s.NewBuilder != nil {
		return s.NewBuilder(flavor, version, s.Executor)
	}
	return flavor.NewBuilder(version, s.Executor, images.WithTool(s.tool()))
}

func (s *ReleaseService) flavors() []images.Flavor {
	if len(s.Flavors) > 0 {
		return s.Flavors
	}
	return images.DefaultFlavors()
}

func (s *ReleaseService) tool() string {
	if s.Tool != "" {
		return s.Tool
	}
	return images.DefaultTool
}

func (s *ReleaseService) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now().UTC()
}

func (s *ReleaseService) id() string {
	if s.newID != nil {
		return s.newID()
	}
	return uuid.NewString()
}

func (s *ReleaseService) logger() *slog.Logger {
	return logging.Ensure(s.Logger)
}

func phaseName(phase, version string) string {
	return phase + " " + version
}
