package app

import (
	"fmt"
	"io"

	"github.com/vk/bundlepipe/internal/config"
	"github.com/vk/bundlepipe/internal/registry"
	"github.com/vk/bundlepipe/modules/print"
	"github.com/vk/bundlepipe/modules/unity"
)

// backendModules returns the modules compiled into the binary for the named
// backend, configured from s.
func backendModules(name string, s *config.Settings, projectDir string, outW io.Writer) ([]registry.Module, error) {
	switch name {
	case BackendUnity:
		return []registry.Module{
			&unity.Module{
				Executable:    s.Get(unity.EnvExecutable, unity.DefaultExecutable),
				ExecuteMethod: s.Get(unity.EnvExecuteMethod, unity.DefaultExecuteMethod),
				ProjectDir:    projectDir,
			},
		}, nil
	case BackendPrint:
		return []registry.Module{&print.Module{Out: outW}}, nil
	default:
		return nil, fmt.Errorf("unknown backend %q", name)
	}
}
