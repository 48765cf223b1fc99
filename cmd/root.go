package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"sdkbench/pkg/config"
	"sdkbench/pkg/observability"
)

const Version = "1.0.0"

var (
	jsonOutput bool
	verbose    bool
	configFile string

	// cfg is loaded by the root PersistentPreRunE before any subcommand runs
	cfg *config.Config

	logoStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#01FAC6")).Bold(true)
	tipMsgStyle    = lipgloss.NewStyle().PaddingLeft(1).Foreground(lipgloss.Color("190")).Italic(true)
	endingMsgStyle = lipgloss.NewStyle().PaddingLeft(1).Foreground(lipgloss.Color("170")).Bold(true)
)

const Logo = `
███████╗ ██████╗  ██╗  ██╗ ██████╗  ███████╗ ███╗   ██╗  ██████╗ ██╗  ██╗
██╔════╝ ██╔══██╗ ██║ ██╔╝ ██╔══██╗ ██╔════╝ ████╗  ██║ ██╔════╝ ██║  ██║
███████╗ ██║  ██║ █████╔╝  ██████╔╝ █████╗   ██╔██╗ ██║ ██║      ███████║
╚════██║ ██║  ██║ ██╔═██╗  ██╔══██╗ ██╔══╝   ██║╚██╗██║ ██║      ██╔══██║
███████║ ██████╔╝ ██║  ██╗ ██████╔╝ ███████╗ ██║ ╚████║ ╚██████╗ ██║  ██║
╚══════╝ ╚═════╝  ╚═╝  ╚═╝ ╚═════╝  ╚══════╝ ╚═╝  ╚═══╝  ╚═════╝ ╚═╝  ╚═╝
`

var rootCmd = &cobra.Command{
	Use:   "sdkbench",
	Short: "Functional-correctness harness for SDK integration samples",
	Long: Logo + `
sdkbench detects a project's language and test framework, installs its
dependencies, runs its test suite under a timeout and scores the outcome.

Supports pytest, Jest, Vitest, Mocha and go test.`,
	Version:           Version,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		observability.Sync()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// flagKeys binds command flags onto configuration keys so a flag, when set,
// wins over the config file and the environment
var flagKeys = map[string]string{
	"concurrency":  "fcorr.concurrency",
	"samples-dir":  "fcorr.samples_dir",
	"solution-dir": "fcorr.solution_dir",
	"log-format":   "logger.format",
}

func loadConfig(cmd *cobra.Command, args []string) error {
	v, err := config.NewViper(configFile)
	if err != nil {
		return err
	}
	if err := bindFlags(v, cmd.Flags()); err != nil {
		return err
	}
	if verbose {
		v.Set("logger.level", "debug")
	}

	loaded, err := config.NewConfigFromViper(v)
	if err != nil {
		return err
	}
	cfg = loaded
	observability.InitializeLogger(cfg.Logger)
	return nil
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind --%s: %w", name, err)
		}
	}
	return nil
}

func init() {
	rootCmd.SetVersionTemplate("sdkbench version {{.Version}}\n")

	rootCmd.AddCommand(fcorrCmd)
	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default: ./sdkbench.yaml when present)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging on stderr")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: console or json")
}
