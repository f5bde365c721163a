package app

import (
	"context"
	"errors"
	"time"

	"github.com/vk/bundlepipe/internal/ctxlog"
	"github.com/vk/bundlepipe/internal/notify"
	"github.com/vk/bundlepipe/internal/pipeline"
	"github.com/vk/bundlepipe/internal/publish"
)

// Run builds every requested package in order and stops at the first
// failure. When publishing is enabled the artifacts are published once all
// packages succeeded.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	notifier := a.openNotifier(ctx)
	defer func() {
		if err := notifier.Close(); err != nil {
			a.logger.Warn("Failed to close notifier.", "error", err)
		}
	}()

	packages := a.settings.Packages()
	if len(packages) == 0 {
		// A single build; it fails unless a package name was given.
		packages = []string{""}
	}
	a.logger.Info("Starting bundle builds.", "packages", packages, "backend", a.config.Backend)

	artifacts := make([]pipeline.Artifact, 0, len(packages))
	for _, name := range packages {
		artifact, err := a.buildPackage(ctx, notifier, name)
		if err != nil {
			return err
		}
		artifacts = append(artifacts, artifact)
	}

	if a.config.Publish {
		copyTo := a.settings.Get(publish.EnvCopyTo, "")
		a.logger.Info("Publishing bundles.", "copy_to", copyTo, "packages", len(artifacts))
		if err := a.publisher.Publish(ctx, copyTo, artifacts); err != nil {
			return err
		}
	}

	a.logger.Info("All packages built.", "count", len(artifacts))
	return nil
}

// tracedKeys are the build options whose source layer is logged per package.
var tracedKeys = []string{
	pipeline.EnvBuildPipe,
	pipeline.EnvBuildTarget,
	pipeline.EnvCompression,
	pipeline.EnvFileNameStyle,
	pipeline.EnvCopyOption,
	pipeline.EnvBuildInFileCopy,
	pipeline.EnvBuildMode,
	pipeline.EnvVersionPrefix,
}

func (a *App) buildPackage(ctx context.Context, notifier notify.Notifier, name string) (pipeline.Artifact, error) {
	settings := a.settings.ForPackage(name)
	host := a.hostFor(settings)
	ctx, logger := ctxlog.With(ctx, "package", name)
	for _, key := range tracedKeys {
		if origin := settings.Origin(key); origin != "" {
			logger.Debug("Resolved setting.", "key", key, "origin", origin)
		}
	}

	a.emit(ctx, notifier, notify.Event{Status: notify.StatusStarted, Package: name, Target: host.BuildTarget()})

	artifact, err := a.dispatcher.RunBuild(ctx, settings, host)
	if err != nil {
		ev := notify.Event{Status: notify.StatusFailed, Package: name, Target: host.BuildTarget(), Error: err.Error()}
		var failed *pipeline.BuildFailedError
		if errors.As(err, &failed) {
			ev.FailedTask, ev.Error = failed.Task, failed.Message
		}
		a.emit(ctx, notifier, ev)
		return pipeline.Artifact{}, err
	}

	a.emit(ctx, notifier, notify.Event{
		Status:   notify.StatusSucceeded,
		Package:  artifact.PackageName,
		Version:  artifact.Version,
		Target:   artifact.Target,
		Pipeline: artifact.Kind.String(),
	})
	return artifact, nil
}

// openNotifier never fails: a notifier that cannot be opened is replaced by
// notify.Noop.
func (a *App) openNotifier(ctx context.Context) notify.Notifier {
	cfg := a.settings.Notify()
	if cfg == nil {
		return notify.Noop{}
	}
	n, err := a.newNotifier(ctx, *cfg)
	if err != nil {
		a.logger.Warn("Build notifications disabled.", "error", err)
		return notify.Noop{}
	}
	return n
}

func (a *App) emit(ctx context.Context, notifier notify.Notifier, ev notify.Event) {
	ev.RunID = a.runID
	ev.Time = time.Now().UTC()
	if err := notifier.Notify(ctx, ev); err != nil {
		ctxlog.FromContext(ctx).Warn("Failed to send build event.", "status", ev.Status, "error", err)
	}
}
