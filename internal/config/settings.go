package config

import (
	"maps"
	"strings"

	"github.com/vk/bundlepipe/internal/pipeline"
)

// Origins reported by Settings.Origin.
const (
	OriginEnv      = "env"
	OriginPackage  = "package"
	OriginBundle   = "bundle"
	OriginPlatform = "platform"
	OriginCI       = "ci"
)

// EnvPackageNames lists the packages to build when no package argument is given.
const EnvPackageNames = "PACKAGE_NAMES"

type layer struct {
	origin  string
	section Section
}

// Settings is an immutable layered view over command-line arguments, the
// environment snapshot and the loaded model. It implements pipeline.Source.
//
// Env lookups consult, in order: the environment, the current package's
// section, the bundle section, the section for the running platform, and
// the CI section. The first layer that defines the key wins.
type Settings struct {
	args   map[string]string
	layers []layer
	model  *Model
	goos   string
}

// NewSettings builds the layered view. model may be nil.
func NewSettings(args, env map[string]string, model *Model, goos string) *Settings {
	if model == nil {
		model = NewModel()
	}
	s := &Settings{
		args:  maps.Clone(args),
		model: model,
		goos:  goos,
	}
	if s.args == nil {
		s.args = map[string]string{}
	}
	s.layers = []layer{
		{origin: OriginEnv, section: maps.Clone(env)},
		{origin: OriginBundle, section: model.Bundle},
		{origin: OriginPlatform, section: model.Platforms[goos]},
		{origin: OriginCI, section: model.CI},
	}
	return s
}

// argFallbacks lists, per argument, the env-style keys consulted when the
// argument was not passed. Keys are tried in order within each layer.
var argFallbacks = map[string][]string{
	pipeline.ArgCopyOption: {pipeline.EnvCopyOption, pipeline.EnvBuildInFileCopy},
	pipeline.ArgBuildMode:  {pipeline.EnvBuildMode},
}

// Arg implements pipeline.Source. A passed argument wins; some arguments fall
// back to env-style keys resolved through the layers.
func (s *Settings) Arg(name string) (string, bool) {
	if v, ok := s.args[name]; ok {
		return v, true
	}
	for _, l := range s.layers {
		for _, key := range argFallbacks[name] {
			if v, ok := l.section[key]; ok {
				return v, true
			}
		}
	}
	return "", false
}

// Env implements pipeline.Source.
func (s *Settings) Env(name string) (string, bool) {
	v, _, ok := s.lookup(name)
	return v, ok
}

// Origin reports which layer provides name, or "" when none does.
func (s *Settings) Origin(name string) string {
	_, origin, _ := s.lookup(name)
	return origin
}

// Get returns the value of an env-style key, or fallback when it is unset
// or empty.
func (s *Settings) Get(name, fallback string) string {
	if v, ok := s.Env(name); ok && v != "" {
		return v
	}
	return fallback
}

func (s *Settings) lookup(name string) (string, string, bool) {
	for _, l := range s.layers {
		if v, ok := l.section[name]; ok {
			return v, l.origin, true
		}
	}
	return "", "", false
}

// ForPackage returns settings for building the named package: the package
// argument is set to name and the package's section is layered directly
// below the environment.
func (s *Settings) ForPackage(name string) *Settings {
	args := maps.Clone(s.args)
	args[pipeline.ArgPkgName] = name

	layers := make([]layer, 0, len(s.layers)+1)
	layers = append(layers, s.layers[0])
	layers = append(layers, layer{origin: OriginPackage, section: s.model.Packages[name]})
	for _, l := range s.layers[1:] {
		if l.origin == OriginPackage {
			continue
		}
		layers = append(layers, l)
	}

	return &Settings{args: args, layers: layers, model: s.model, goos: s.goos}
}

// Packages returns the packages to build. An explicit package argument, even
// an empty one, means a single build of exactly that package; otherwise the
// comma-separated PACKAGE_NAMES list is used. A nil result means a single
// build with no package name.
func (s *Settings) Packages() []string {
	if name, ok := s.Arg(pipeline.ArgPkgName); ok {
		return []string{name}
	}
	raw, ok := s.Env(EnvPackageNames)
	if !ok {
		return nil
	}
	var names []string
	for _, name := range strings.Split(raw, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// Notify returns the notifier configuration, or nil.
func (s *Settings) Notify() *Notify {
	return s.model.Notify
}
