package unity

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/vk/bundlepipe/internal/pipeline"
)

// editorArgs assembles the batch-mode command line for params. Enumerations
// are passed as their integer values; compression is only passed for the
// kinds that carry it.
func (m *Module) editorArgs(params pipeline.Parameters) []string {
	c := params.Common()
	method := m.ExecuteMethod
	if method == "" {
		method = DefaultExecuteMethod
	}

	args := []string{
		"-projectPath", m.ProjectDir,
		"-quit",
		"-batchmode",
		"-nographics",
		"-buildTarget", c.BuildTarget,
		"-executeMethod", method,
		"-logFile", "-",
		"-buildPipeline", c.BuildPipeline,
		"-customBuildTarget", c.BuildTarget,
		"-customBuildPath", c.BuildOutputRoot,
		"-buildinFileRoot", c.BuildinFileRoot,
		"-buildMode", strconv.Itoa(int(c.BuildMode)),
		"-pkgName", c.PackageName,
		"-pkgVersion", c.PackageVersion,
		"-fileNameStyle", strconv.Itoa(int(c.FileNameStyle)),
		"-copyOption", strconv.Itoa(int(c.BuildinFileCopyOption)),
	}
	if compression, ok := pipeline.CompressionOf(params); ok {
		args = append(args, "-compressOption", strconv.Itoa(int(compression)))
	}
	return args
}

// failurePattern matches the line the editor-side command logs when the
// framework reports a failed build.
var failurePattern = regexp.MustCompile(`Build bundles failed\. task:(.*?), error:(.*)$`)

func parseFailure(line string) (pipeline.BuildResult, bool) {
	m := failurePattern.FindStringSubmatch(line)
	if m == nil {
		return pipeline.BuildResult{}, false
	}
	return pipeline.BuildResult{
		FailedTask: strings.TrimSpace(m[1]),
		ErrorInfo:  strings.TrimSpace(m[2]),
	}, true
}

// splitCommandLine splits s on whitespace. Single or double quotes group
// words and are removed.
func splitCommandLine(s string) []string {
	var (
		fields  []string
		current strings.Builder
		quote   rune
		inField bool
	)
	for _, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			inField = true
		case r == ' ' || r == '\t' || r == '\n':
			if inField {
				fields = append(fields, current.String())
				current.Reset()
				inField = false
			}
		default:
			current.WriteRune(r)
			inField = true
		}
	}
	if inField {
		fields = append(fields, current.String())
	}
	return fields
}
