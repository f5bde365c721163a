package pipeline

import (
	"errors"
	"strings"
	"time"
)

// VersionLayout is the timestamp format used for generated package versions
// (yyyy-MM-dd-HHmmss). It sorts lexically in time order.
const VersionLayout = "2006-01-02-150405"

// ResolvePipelineKind decodes the integer-encoded pipeline kind. An absent or
// empty value selects the built-in pipeline.
func ResolvePipelineKind(raw string, present bool) (Kind, error) {
	if !present {
		return DefaultKind, nil
	}
	return parseEnum(EnvBuildPipe, strings.TrimSpace(raw), DefaultKind, RawFile)
}

// BuildOutputPath returns explicit when set, defaultRoot otherwise, with
// trailing separators collapsed to exactly one "/".
func BuildOutputPath(explicit, defaultRoot string) string {
	p := explicit
	if p == "" {
		p = defaultRoot
	}
	return strings.TrimRight(p, `/\`) + "/"
}

// ResolvePackageVersion returns explicit when non-empty and otherwise a
// version derived from now at second resolution.
func ResolvePackageVersion(explicit string, now time.Time) string {
	if explicit != "" {
		return explicit
	}
	return now.Format(VersionLayout)
}

// RequireValidRequest checks the invariants a request must satisfy before any
// backend is invoked.
func RequireValidRequest(req BuildRequest) error {
	if strings.TrimSpace(req.PackageName) == "" {
		return ErrMissingPackageName
	}
	return nil
}

// ResolveRequest reads every build option from src once and returns the
// selected kind together with the request for it. Malformed integer options
// yield a *ConfigurationError; the package name is not validated here.
func ResolveRequest(src Source, host Host, now time.Time) (Kind, BuildRequest, error) {
	var req BuildRequest
	var errs []error

	req.Target = host.BuildTarget()
	if target, ok := src.Arg(ArgCustomBuildTarget); ok && target != "" {
		req.Target = target
	}
	if req.Target == "" {
		errs = append(errs, &ConfigurationError{Option: EnvBuildTarget, Err: errors.New("no build target configured")})
	}

	explicitPath, _ := src.Arg(ArgCustomBuildPath)
	req.OutputPath = BuildOutputPath(explicitPath, host.DefaultOutputRoot())
	req.StagingPath = host.StreamingAssetsRoot()

	rawKind, present := src.Env(EnvBuildPipe)
	kind, err := ResolvePipelineKind(rawKind, present)
	if err != nil {
		errs = append(errs, err)
	}

	req.PackageName, _ = src.Arg(ArgPkgName)
	explicitVersion, _ := src.Arg(ArgPkgVersion)
	if prefix, _ := src.Env(EnvVersionPrefix); explicitVersion == "" && strings.TrimSpace(prefix) != "" {
		explicitVersion = strings.TrimSpace(prefix) + "-" + now.Format(VersionLayout)
	}
	req.PackageVersion = ResolvePackageVersion(explicitVersion, now)

	rawMode, _ := src.Arg(ArgBuildMode)
	if req.Mode, err = parseEnum(ArgBuildMode, strings.TrimSpace(rawMode), DefaultBuildMode, SimulateBuild); err != nil {
		errs = append(errs, err)
	}

	rawStyle, _ := src.Env(EnvFileNameStyle)
	if req.FileNameStyle, err = parseEnum(EnvFileNameStyle, strings.TrimSpace(rawStyle), DefaultFileNameStyle, BundleNameHashName); err != nil {
		errs = append(errs, err)
	}

	rawCopy, _ := src.Arg(ArgCopyOption)
	if req.CopyOption, err = parseEnum(ArgCopyOption, strings.TrimSpace(rawCopy), DefaultCopyOption, OnlyCopyByTags); err != nil {
		errs = append(errs, err)
	}

	if kind.SupportsCompression() {
		rawCompression, _ := src.Env(EnvCompression)
		compression, err := parseEnum(EnvCompression, strings.TrimSpace(rawCompression), DefaultCompression, LZ4)
		if err != nil {
			errs = append(errs, err)
		}
		req.Compression = &compression
	}

	if len(errs) > 0 {
		return kind, req, errors.Join(errs...)
	}
	return kind, req, nil
}
