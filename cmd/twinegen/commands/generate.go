package commands

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/twinekit/twinegen/config"
	"github.com/twinekit/twinegen/errors"
	"github.com/twinekit/twinegen/gen"
	"github.com/twinekit/twinegen/idl"
	"github.com/twinekit/twinegen/logger"
)

var (
	generateOut           string
	generateConfigPath    string
	generatePackageName   string
	generatePackagePrefix string
	generateRuntimeImport string
)

// GenerateCmd represents the generate command
var GenerateCmd = &cobra.Command{
	Use:   "generate <ir-file>...",
	Short: "Generate Go packages from Twine IR files",
	Long: `Generate Go packages from Twine intermediate representation files.

Each IR file describes one interface program: its typedefs, enums,
constants, records, exceptions, and services. Every program produces a
package directory under the output root containing:
  - types.go       type declarations and wire codecs
  - constants.go   declared constants
  - <service>.go   client, processor, and envelope records per service
  - <service>-remote/  a runnable command-line client per service

Configuration is read from the nearest twinegen.toml and TWINEGEN_*
environment variables; flags override both.

Examples:
  twinegen generate tutorial.json
  twinegen generate -o build/gen-go shared.json tutorial.json
  twinegen generate --package-prefix example.com/gen/ tutorial.json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGenerate,
}

func init() {
	GenerateCmd.Flags().StringVarP(&generateOut, "out", "o", "", "Output root directory (default: config 'out', gen-go)")
	GenerateCmd.Flags().StringVar(&generateConfigPath, "config", "", "Explicit twinegen.toml path (default: nearest up the tree)")
	GenerateCmd.Flags().StringVar(&generatePackageName, "package-name", "", "Override the program namespace as package identity")
	GenerateCmd.Flags().StringVar(&generatePackagePrefix, "package-prefix", "", "Import path prefix for included programs")
	GenerateCmd.Flags().StringVar(&generateRuntimeImport, "runtime-import", "", "Wire-protocol runtime import path")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadGenerateConfig()
	if err != nil {
		return err
	}

	for _, path := range args {
		if err := generateOne(path, cfg); err != nil {
			return errors.Wrapf(err, "generating %s", path)
		}
	}
	return nil
}

func loadGenerateConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if generateConfigPath != "" {
		cfg, err = config.LoadFromFile(generateConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, errors.Wrap(err, "loading configuration")
	}

	if generateOut != "" {
		cfg.Out = generateOut
	}
	if generatePackageName != "" {
		cfg.PackageName = generatePackageName
	}
	if generatePackagePrefix != "" {
		cfg.PackagePrefix = generatePackagePrefix
	}
	if generateRuntimeImport != "" {
		cfg.RuntimeImport = generateRuntimeImport
	}
	return cfg, nil
}

func generateOne(path string, cfg *config.Config) error {
	program, err := idl.DecodeFile(path)
	if err != nil {
		return err
	}

	g := gen.New(program, gen.Options{
		PackageName:   cfg.PackageName,
		PackagePrefix: cfg.PackagePrefix,
		RuntimeImport: cfg.RuntimeImport,
	})
	outputs, err := g.Generate()
	if err != nil {
		return err
	}

	for _, out := range outputs {
		full := filepath.Join(cfg.Out, out.Path)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			return errors.Wrapf(err, "creating %s", filepath.Dir(full))
		}
		mode := os.FileMode(0o644)
		if out.Executable {
			mode = 0o755
		}
		if err := os.WriteFile(full, []byte(out.Content), mode); err != nil {
			return errors.Wrapf(err, "writing %s", full)
		}
		logger.Debugw("wrote unit", "path", full, "bytes", len(out.Content))
	}

	logger.Infow("generated program",
		"program", program.Name,
		"source", path,
		"units", len(outputs))
	return nil
}
