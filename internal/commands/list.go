package commands

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"evalgo.org/proxium/internal/reconcile"
)

var listGlobal bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List reconciled services",
	Long: `List services declared in discovered compose files with their live
container status and proxy routes. With --global, list caddy-labeled
containers that have no compose declaration in the working tree instead.`,
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVar(&listGlobal, "global", false, "list runtime-only caddy containers")
}

func runList(cmd *cobra.Command, args []string) error {
	reconciler := newReconciler(cmd.Context())
	snap := reconciler.Refresh(cmd.Context())

	view := reconcile.ViewProject
	if listGlobal {
		view = reconcile.ViewGlobal
	}
	services := snap.Services(view)

	if len(services) == 0 {
		fmt.Println("No services found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SERVICE\tPROJECT\tSTATUS\tDOMAIN\tPORT\tPORTS")
	for _, svc := range services {
		domain, port := "-", "-"
		if svc.Proxy != nil {
			domain = svc.Proxy.Domain
			port = fmt.Sprintf("%d", svc.Proxy.Port)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			svc.Name, svc.Project, svc.Status, domain, port, formatPorts(svc.AvailablePorts))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\ncaddy-proxy: %s", snap.CaddyStatus)
	if len(snap.ActiveDomains) > 0 {
		fmt.Printf(", active domains: %s", strings.Join(snap.ActiveDomains, ", "))
	}
	fmt.Println()
	return nil
}

func formatPorts(ports []int) string {
	if len(ports) == 0 {
		return "-"
	}
	parts := make([]string, len(ports))
	for i, p := range ports {
		parts[i] = fmt.Sprintf("%d", p)
	}
	return strings.Join(parts, ",")
}

// findService locates a service by name within a view, returning its
// index.
func findService(snap *reconcile.Snapshot, view reconcile.View, name string) (int, error) {
	for i, svc := range snap.Services(view) {
		if svc.Name == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("service %q not found in %s view", name, view)
}
