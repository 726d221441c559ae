// Package config loads per-run twinegen configuration from an optional
// twinegen.toml, environment variables, and built-in defaults. CLI
// flags override everything here; the file exists so a project can pin
// its output root and import prefixes once.
package config

import (
	"github.com/spf13/viper"
)

// Config is the per-run generation configuration.
type Config struct {
	// Out is the root directory generated files are written under.
	Out string `mapstructure:"out"`

	// PackageName overrides the program namespace as the Go package
	// identity of the generated code.
	PackageName string `mapstructure:"package_name"`

	// PackagePrefix is prepended to the import path of every included
	// program and of the generated package itself in remote units.
	PackagePrefix string `mapstructure:"package_prefix"`

	// RuntimeImport is the wire-protocol runtime package the generated
	// code imports.
	RuntimeImport string `mapstructure:"runtime_import"`
}

// SetDefaults installs the built-in defaults on a Viper instance.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("out", "gen-go")
	v.SetDefault("package_name", "")
	v.SetDefault("package_prefix", "")
	v.SetDefault("runtime_import", "github.com/twinekit/twine-go/twine")
}
