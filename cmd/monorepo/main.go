package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/monorepo/internal"
	"github.com/rios0rios0/monorepo/internal/infrastructure/controllers"
)

func buildRootCommand() *cobra.Command {
	//nolint:exhaustruct // Minimal Command initialization with required fields only
	cmd := &cobra.Command{
		Use:   "monorepo",
		Short: "Task orchestrator for repositories holding many projects",
		Long: `Discover the projects of a monorepo, run per-project operations in
dependency order with bounded parallelism, and release them together.

Examples:
  monorepo list --graph                 Show projects and their in-set dependencies
  monorepo build -j 4                   Build everything, four projects at a time
  monorepo run dev --projects '@acme/*' Run a script in matching projects
  monorepo release minor --dry-run      Show what a minor release would do`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	controllers.AddGlobalFlags(cmd)
	return cmd
}

func addSubcommands(rootCmd *cobra.Command, appContext *internal.AppInternal) {
	for _, controller := range appContext.GetControllers() {
		bind := controller.GetBind()
		ctrl := controller
		//nolint:exhaustruct // Minimal Command initialization with required fields only
		subCmd := &cobra.Command{
			Use:   bind.Use,
			Short: bind.Short,
			Long:  bind.Long,
			Args:  bind.Args,
			RunE: func(command *cobra.Command, arguments []string) error {
				return ctrl.Execute(command, arguments)
			},
		}
		ctrl.AddFlags(subCmd)
		rootCmd.AddCommand(subCmd)
	}
}

func main() {
	//nolint:exhaustruct // Minimal TextFormatter initialization with required fields only
	logger.SetFormatter(&logger.TextFormatter{
		ForceColors:   true,
		FullTimestamp: true,
	})
	if os.Getenv("DEBUG") == "true" {
		logger.SetLevel(logger.DebugLevel)
	}

	appContext, err := injectAppContext()
	if err != nil {
		logger.Fatalf("Error wiring 'monorepo': %s", err)
	}
	rootCmd := buildRootCommand()
	addSubcommands(rootCmd, appContext)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err = rootCmd.ExecuteContext(ctx); err != nil {
		logger.Errorf("Error executing 'monorepo': %s", err)
		stop()
		os.Exit(1)
	}
}
