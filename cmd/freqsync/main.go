package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/freqsync/freqsync/internal/app"
	"github.com/freqsync/freqsync/internal/config"
	"github.com/freqsync/freqsync/internal/target"
	"github.com/freqsync/freqsync/internal/targetmap"
	"github.com/freqsync/freqsync/internal/utils"
	"github.com/freqsync/freqsync/pkg/version"
)

var verbose bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "freqsync [group...]",
	Short: "Sync frequency snapshots to a remote database",
	Long: `FreqSync uploads locally generated frequency snapshots (master.json)
to a remote tabular database, writing only the records that changed since the
last successful upload.

Groups resolving to the same database are synced sequentially; distinct
databases are synced in parallel.`,
	Version: version.Short(),
	Args:    cobra.MinimumNArgs(1),
	RunE:    run,
}

func init() {
	// Sync flags
	rootCmd.PersistentFlags().String("date", "", "Snapshot date YYYY-MM-DD (default: latest, prefer today)")
	rootCmd.PersistentFlags().Bool("dry-run", false, "Simulate without writing to the target")
	rootCmd.PersistentFlags().String("database-id", "", "Override target database id (bypasses the target map)")
	rootCmd.PersistentFlags().String("target", "notion", "Target kind")
	rootCmd.PersistentFlags().String("root", "./companies", "Snapshots root directory")
	rootCmd.PersistentFlags().String("target-map", "./targets.yaml", "Group to database id map file")
	rootCmd.PersistentFlags().IntP("concurrency", "j", 5, "Concurrent operations per chunk")
	rootCmd.PersistentFlags().Int("chunk-size", 10, "Operations per chunk")
	rootCmd.PersistentFlags().Duration("chunk-delay", 300*time.Millisecond, "Pause between chunks")
	rootCmd.PersistentFlags().Duration("timeout", 30*time.Second, "Request timeout")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	// Bind flags to viper
	_ = viper.BindPFlag("snapshots.root", rootCmd.PersistentFlags().Lookup("root"))
	_ = viper.BindPFlag("snapshots.target_map", rootCmd.PersistentFlags().Lookup("target-map"))
	_ = viper.BindPFlag("target.kind", rootCmd.PersistentFlags().Lookup("target"))
	_ = viper.BindPFlag("target.timeout", rootCmd.PersistentFlags().Lookup("timeout"))
	_ = viper.BindPFlag("concurrency.operations", rootCmd.PersistentFlags().Lookup("concurrency"))
	_ = viper.BindPFlag("concurrency.chunk_size", rootCmd.PersistentFlags().Lookup("chunk-size"))
	_ = viper.BindPFlag("concurrency.chunk_delay", rootCmd.PersistentFlags().Lookup("chunk-delay"))

	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(versionCmd)
}

func run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	date, _ := cmd.Flags().GetString("date")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	databaseID, _ := cmd.Flags().GetString("database-id")

	groups := make([]string, 0, len(args))
	for _, arg := range args {
		for _, group := range strings.Split(arg, ",") {
			group = strings.TrimSpace(group)
			if group != "" {
				groups = append(groups, group)
			}
		}
	}
	if len(groups) == 0 {
		return fmt.Errorf("no groups given")
	}

	orchestrator, err := app.NewOrchestrator(app.Options{
		Config:     cfg,
		Verbose:    verbose,
		DryRun:     dryRun,
		Date:       date,
		DatabaseID: databaseID,
	})
	if err != nil {
		return err
	}
	defer orchestrator.Close()

	results := orchestrator.RunGroups(ctx, groups)

	if ctx.Err() != nil {
		return ctx.Err()
	}

	// Operation-level errors are reported in the stats but do not fail the
	// process; a group that could not run at all does.
	if failed := app.FailedGroups(results); failed > 0 {
		return fmt.Errorf("%d of %d groups failed", failed, len(results))
	}
	return nil
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check local setup",
	Long:  "Verifies that the configuration, snapshot tree and target map are usable.",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("Checking setup...")
		allPassed := true

		fmt.Print("  Config: ")
		cfg, err := config.Load()
		if err != nil {
			fmt.Printf("FAILED (%v)\n", err)
			return fmt.Errorf("configuration unusable")
		}
		fmt.Println("OK")

		fmt.Print("  Snapshots root: ")
		root := utils.ExpandPath(cfg.Snapshots.Root)
		if info, err := os.Stat(root); err == nil && info.IsDir() {
			fmt.Printf("OK (%s)\n", root)
		} else {
			fmt.Printf("FAILED (%s not found)\n", root)
			allPassed = false
		}

		fmt.Print("  Target map: ")
		if m, err := targetmap.Load(utils.ExpandPath(cfg.Snapshots.TargetMap)); err == nil {
			fmt.Printf("OK (%d groups)\n", len(m.Groups()))
		} else {
			fmt.Printf("FAILED (%v)\n", err)
			allPassed = false
		}

		fmt.Print("  Target kind: ")
		if _, err := target.ParseKind(cfg.Target.Kind); err == nil {
			fmt.Printf("OK (%s)\n", cfg.Target.Kind)
		} else {
			fmt.Printf("FAILED (%v)\n", err)
			allPassed = false
		}

		fmt.Print("  Target token: ")
		if cfg.Target.Token != "" {
			fmt.Println("OK")
		} else {
			fmt.Println("MISSING (set FREQSYNC_TARGET_TOKEN)")
			allPassed = false
		}

		fmt.Println()
		if allPassed {
			fmt.Println("All checks passed!")
		} else {
			fmt.Println("Some checks failed. Please resolve the issues above.")
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Full())
	},
}
