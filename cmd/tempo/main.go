package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/tempoapp/tempo/internal/backup"
	"github.com/tempoapp/tempo/internal/config"
	"github.com/tempoapp/tempo/internal/kv"
	"github.com/tempoapp/tempo/internal/logger"
	"github.com/tempoapp/tempo/internal/track"
	"github.com/tempoapp/tempo/internal/tui"
)

var rootCmd = &cobra.Command{
	Use:   "tempo",
	Short: "Terminal time tracker",
	Long:  `Tempo tracks your time across projects with a one-key timer, entries, and weekly reports.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, log, tr, cleanup := mustOpen()
		defer cleanup()

		if err := tui.Run(tr, cfg); err != nil {
			log.Error("tui exited", logger.F("error", err))
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

var exportCmd = &cobra.Command{
	Use:   "export [path]",
	Short: "Write all projects, entries and timer state to a JSON backup",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		_, _, tr, cleanup := mustOpen()
		defer cleanup()

		path := ""
		if len(args) > 0 {
			path = args[0]
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			path = filepath.Join(home, fmt.Sprintf("tempo-backup-%s.json", time.Now().Format("2006-01-02")))
		}

		if err := backup.Export(tr, path); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Exported %d projects and %d entries to %s\n",
			len(tr.Projects().All()), len(tr.Entries().All()), path)
	},
}

var importCmd = &cobra.Command{
	Use:   "import <path>",
	Short: "Replace all data with the contents of a JSON backup",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		_, _, tr, cleanup := mustOpen()
		defer cleanup()

		doc, err := backup.Import(tr, args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Imported %d projects and %d entries.\n", len(doc.Projects), len(doc.Entries))
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all projects, entries and timer state",
	Run: func(cmd *cobra.Command, args []string) {
		force, _ := cmd.Flags().GetBool("force")
		if !force {
			fmt.Fprintln(os.Stderr, "This deletes everything. Re-run with --force to confirm.")
			os.Exit(1)
		}

		_, _, tr, cleanup := mustOpen()
		defer cleanup()

		tr.Import(nil, nil, track.TimerState{})
		fmt.Println("All data deleted.")
	},
}

// mustOpen loads config, the logger and the tracker, exiting on any error.
// The returned cleanup closes the logger and the database.
func mustOpen() (*config.Config, *logger.Logger, *track.Tracker, func()) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:    logger.ParseLevel(cfg.LogLevel),
		FilePath: cfg.LogFile,
		Console:  cfg.LogConsole,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log: %v\n", err)
		os.Exit(1)
	}

	store, err := kv.Open(cfg.DBPath)
	if err != nil {
		log.Error("open database", logger.F("path", cfg.DBPath), logger.F("error", err))
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}

	tr := track.NewTracker(store, log)

	cleanup := func() {
		store.Close()
		log.Close()
	}
	return cfg, log, tr, cleanup
}

func init() {
	resetCmd.Flags().Bool("force", false, "Skip the confirmation check")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(resetCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
