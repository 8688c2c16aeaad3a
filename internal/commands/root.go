// Package commands wires the Proxium CLI: discovery and reconciliation
// of compose-declared services, proxy route editing, caddy daemon
// control, and the local API server.
package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"evalgo.org/proxium/internal/caddy"
	"evalgo.org/proxium/internal/config"
	"evalgo.org/proxium/internal/docker"
	"evalgo.org/proxium/internal/reconcile"
	"evalgo.org/proxium/internal/version"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "proxium",
	Short: "Reverse-proxy management for local compose projects",
	Long: `Proxium reconciles compose-declared services with live container
state and manages their caddy reverse-proxy routes: it discovers compose
files, decodes caddy labels, merges override files and engine status into
one view, and writes proxy configuration back without disturbing the rest
of the file.`,
	Version: version.Version,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("root", "", "directory searched for compose files (default: cwd)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(proxyCmd)
	rootCmd.AddCommand(caddyCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "%s" .Version}}
`)
}

func initConfig() {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// The flag outranks the config file and environment.
	if root, _ := rootCmd.PersistentFlags().GetString("root"); root != "" {
		cfg.Discovery.Root = root
	}
}

// newReconciler connects the collaborators a command needs. An
// unreachable engine is not fatal: the read path degrades and the
// reconciler runs with a nil engine.
func newReconciler(ctx context.Context) *reconcile.Reconciler {
	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	engine, err := docker.Connect(connectCtx, cfg.Docker.Socket)
	if err != nil {
		log.Printf("container engine unavailable: %v", err)
		engine = nil
	}

	admin := caddy.NewAdminClient(cfg.Caddy.AdminURL, cfg.Caddy.AdminTimeout)
	return reconcile.New(cfg, engine, admin)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		info := version.Get()
		fmt.Println(info.String())

		if cmd.Flag("verbose").Changed {
			fmt.Printf("\nDetails:\n")
			fmt.Printf("  Version:    %s\n", info.Version)
			fmt.Printf("  Git Commit: %s\n", info.GitCommit)
			fmt.Printf("  Built:      %s\n", info.BuildTime)
			fmt.Printf("  Go Version: %s\n", info.GoVersion)
			fmt.Printf("  Platform:   %s\n", info.Platform)
		}
	},
}

func init() {
	versionCmd.Flags().BoolP("verbose", "v", false, "verbose version output")
}
