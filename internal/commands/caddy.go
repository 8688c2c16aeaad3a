package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"evalgo.org/proxium/internal/caddy"
)

var caddyCmd = &cobra.Command{
	Use:   "caddy <status|start|stop|restart>",
	Short: "Inspect or control the caddy-proxy daemon",
	Args:  cobra.ExactArgs(1),
	RunE:  runCaddy,
}

func runCaddy(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	reconciler := newReconciler(ctx)
	admin := caddy.NewAdminClient(cfg.Caddy.AdminURL, cfg.Caddy.AdminTimeout)

	action := args[0]
	if action == "status" {
		snap := reconciler.Refresh(ctx)
		fmt.Printf("caddy-proxy: %s\n", snap.CaddyStatus)
		fmt.Printf("admin API:   reachable=%v\n", admin.IsReachable(ctx))
		if len(snap.ActiveDomains) > 0 {
			fmt.Printf("domains:     %s\n", strings.Join(snap.ActiveDomains, ", "))
		}
		return nil
	}

	control := caddy.NewController(reconciler.Engine(), caddy.DetectControlMethod())
	var err error
	switch action {
	case "start":
		err = control.Start(ctx)
	case "stop":
		err = control.Stop(ctx)
	case "restart":
		err = control.Restart(ctx)
	default:
		return fmt.Errorf("unknown action %q: use status, start, stop or restart", action)
	}
	if err != nil {
		return err
	}

	fmt.Printf("caddy-proxy %s: ok\n", action)
	return nil
}
