package pipeline

// Environment-style option names.
const (
	EnvBuildOutputRoot = "BUILD_OUTPUT_ROOT" // reserved, not read
	EnvBuildPipe       = "BUILD_PIPE"
	EnvCompression     = "COMPRESSION"
	EnvFileNameStyle   = "FILE_NAME_STYLE"
	EnvBuildPkgVersion = "BUILD_PKG_VERSION" // reserved, not read
	EnvBuildTarget     = "BUILD_TARGET"

	// EnvVersionPrefix, when set, prefixes generated package versions.
	EnvVersionPrefix = "VERSION_BUILD_VAR"
)

// Environment-style keys that stand in for an argument that was not passed.
const (
	EnvCopyOption      = "COPY_OPTION"
	EnvBuildInFileCopy = "BUILD_IN_FILE_COPY"
	EnvBuildMode       = "BUILD_MODE"
)

// Argument-style option names, matching the editor command line.
const (
	ArgCustomBuildPath   = "customBuildPath"
	ArgCustomBuildTarget = "customBuildTarget"
	ArgCopyOption        = "copyOption"
	ArgBuildMode         = "buildMode"
	ArgPkgVersion        = "pkgVersion"
	ArgPkgName           = "pkgName"
)

// Source resolves named build options. Arg looks up command-line style
// arguments, Env looks up environment style keys.
type Source interface {
	Arg(name string) (string, bool)
	Env(name string) (string, bool)
}

// MapSource is a Source backed by two plain maps.
type MapSource struct {
	Args map[string]string
	Vars map[string]string
}

// Arg implements Source.
func (m MapSource) Arg(name string) (string, bool) {
	v, ok := m.Args[name]
	return v, ok
}

// Env implements Source.
func (m MapSource) Env(name string) (string, bool) {
	v, ok := m.Vars[name]
	return v, ok
}
