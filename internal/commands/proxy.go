package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"evalgo.org/proxium/internal/compose"
	"evalgo.org/proxium/internal/reconcile"
	"evalgo.org/proxium/models"
)

var (
	proxyDomain string
	proxyPort   int
	proxyTLS    string
)

var proxyCmd = &cobra.Command{
	Use:   "proxy",
	Short: "Manage reverse-proxy routes",
}

var proxyAddCmd = &cobra.Command{
	Use:   "add <service>",
	Short: "Add or update a service's reverse-proxy route",
	Long: `Write caddy labels and network wiring for a compose-declared service.
The backing compose file is mutated structurally; fields the engine does
not understand are preserved as-is. Domain defaults to
<service>.<project>.localhost and port to the first declared container
port.`,
	Args: cobra.ExactArgs(1),
	RunE: runProxyAdd,
}

var proxyPreviewCmd = &cobra.Command{
	Use:   "preview <service>",
	Short: "Show the labels a route would produce, without writing",
	Args:  cobra.ExactArgs(1),
	RunE:  runProxyPreview,
}

func init() {
	for _, c := range []*cobra.Command{proxyAddCmd, proxyPreviewCmd} {
		c.Flags().StringVar(&proxyDomain, "domain", "", "public hostname (default: <service>.<project>.localhost)")
		c.Flags().IntVar(&proxyPort, "port", 0, "backend container port (default: first declared port)")
		c.Flags().StringVar(&proxyTLS, "tls", models.DefaultTLS, "TLS policy")
	}
	proxyCmd.AddCommand(proxyAddCmd)
	proxyCmd.AddCommand(proxyPreviewCmd)
}

func resolveForm(reconciler *reconcile.Reconciler, snap *reconcile.Snapshot, index int) (models.ProxyConfig, error) {
	form, err := reconciler.DefaultForm(snap, reconcile.ViewProject, index)
	if err != nil {
		return models.ProxyConfig{}, err
	}
	if proxyDomain != "" {
		form.Domain = proxyDomain
	}
	if proxyPort != 0 {
		form.Port = proxyPort
	}
	form.TLS = proxyTLS
	return form, nil
}

func runProxyAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	reconciler := newReconciler(ctx)
	snap := reconciler.Refresh(ctx)

	index, err := findService(snap, reconcile.ViewProject, args[0])
	if err != nil {
		return err
	}
	form, err := resolveForm(reconciler, snap, index)
	if err != nil {
		return err
	}

	if err := reconciler.ApplyProxyConfig(ctx, snap, reconcile.ViewProject, index, form); err != nil {
		return err
	}

	fmt.Printf("Proxy added: %s -> :%d (tls %s)\n", form.Domain, form.Port, form.TLS)
	return nil
}

func runProxyPreview(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	reconciler := newReconciler(ctx)
	snap := reconciler.Refresh(ctx)

	index, err := findService(snap, reconcile.ViewProject, args[0])
	if err != nil {
		return err
	}
	form, err := resolveForm(reconciler, snap, index)
	if err != nil {
		return err
	}

	fmt.Println(compose.Preview(args[0], form))
	return nil
}
