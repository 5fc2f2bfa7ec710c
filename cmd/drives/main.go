package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/sigreer/drives/internal/config"
	"github.com/sigreer/drives/internal/logger"
	"github.com/sigreer/drives/internal/version"
)

var (
	cfgFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "drives",
	Short: "Block device and partition inventory",
	Long: `drives lists the block devices and partitions the kernel exposes under
/sys/block, with their sizes, mountpoints and GPT identifiers.

Discovery results can be saved as snapshots in a local SQLite database
and compared later.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("drives %s\n", version.Version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is /etc/drives/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(sizesCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(versionCmd)
}

// setup loads configuration and builds the logger every command uses.
func setup() (*config.Config, logger.Logger) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	return cfg, logger.New(cfg.Log.Level, cfg.Log.Format)
}

func fatal(log logger.Logger, msg string, err error) {
	log.Error(msg, "error", err)
	os.Exit(1)
}

// interactive reports whether stdout is a terminal; table headers are
// only printed for humans.
func interactive() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
