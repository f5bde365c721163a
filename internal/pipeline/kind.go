package pipeline

import (
	"fmt"
	"strconv"
)

// Kind identifies one of the build pipelines offered by the bundling
// framework. The integer values match the framework's enumeration.
type Kind int

const (
	Builtin Kind = iota
	Scriptable
	RawFile
)

// Kinds returns every supported pipeline kind in declaration order.
func Kinds() []Kind {
	return []Kind{Builtin, Scriptable, RawFile}
}

// Valid reports whether k is one of the supported kinds.
func (k Kind) Valid() bool {
	return k >= Builtin && k <= RawFile
}

// SupportsCompression reports whether bundles produced by k can be compressed.
// Raw-file pipelines copy files through untouched.
func (k Kind) SupportsCompression() bool {
	return k == Builtin || k == Scriptable
}

func (k Kind) String() string {
	switch k {
	case Builtin:
		return "BuiltinBuildPipeline"
	case Scriptable:
		return "ScriptableBuildPipeline"
	case RawFile:
		return "RawFileBuildPipeline"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// CompressOption selects the bundle compression scheme.
type CompressOption int

const (
	Uncompressed CompressOption = iota
	LZMA
	LZ4
)

func (c CompressOption) String() string {
	switch c {
	case Uncompressed:
		return "Uncompressed"
	case LZMA:
		return "LZMA"
	case LZ4:
		return "LZ4"
	default:
		return fmt.Sprintf("CompressOption(%d)", int(c))
	}
}

// FileNameStyle selects how output files are named.
type FileNameStyle int

const (
	HashName FileNameStyle = iota
	BundleName
	BundleNameHashName
)

func (f FileNameStyle) String() string {
	switch f {
	case HashName:
		return "HashName"
	case BundleName:
		return "BundleName"
	case BundleNameHashName:
		return "BundleName_HashName"
	default:
		return fmt.Sprintf("FileNameStyle(%d)", int(f))
	}
}

// CopyOption controls whether packaged files are also copied into the
// built-in (streaming assets) directory shipped with the application.
type CopyOption int

const (
	CopyNone CopyOption = iota
	ClearAndCopyAll
	ClearAndCopyByTags
	OnlyCopyAll
	OnlyCopyByTags
)

func (c CopyOption) String() string {
	switch c {
	case CopyNone:
		return "None"
	case ClearAndCopyAll:
		return "ClearAndCopyAll"
	case ClearAndCopyByTags:
		return "ClearAndCopyByTags"
	case OnlyCopyAll:
		return "OnlyCopyAll"
	case OnlyCopyByTags:
		return "OnlyCopyByTags"
	default:
		return fmt.Sprintf("CopyOption(%d)", int(c))
	}
}

// BuildMode selects between full, incremental, and dry-run builds.
type BuildMode int

const (
	ForceRebuild BuildMode = iota
	IncrementalBuild
	DryRunBuild
	SimulateBuild
)

func (m BuildMode) String() string {
	switch m {
	case ForceRebuild:
		return "ForceRebuild"
	case IncrementalBuild:
		return "IncrementalBuild"
	case DryRunBuild:
		return "DryRunBuild"
	case SimulateBuild:
		return "SimulateBuild"
	default:
		return fmt.Sprintf("BuildMode(%d)", int(m))
	}
}

// Defaults applied when an option is absent or empty.
const (
	DefaultKind          = Builtin
	DefaultCompression   = LZ4
	DefaultFileNameStyle = HashName
	DefaultCopyOption    = CopyNone
	DefaultBuildMode     = SimulateBuild
)

// parseEnum decodes an integer-encoded option. An empty value yields def;
// anything that is not an integer in [0, last] is a ConfigurationError.
func parseEnum[T ~int](option, raw string, def, last T) (T, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def, &ConfigurationError{Option: option, Value: raw, Err: err}
	}
	if n < 0 || T(n) > last {
		return def, &ConfigurationError{Option: option, Value: raw, Err: errOutOfRange}
	}
	return T(n), nil
}
