// Package reconcile builds the merged view of declared and observed
// service state: compose files on disk, live containers in the engine,
// and active routes in the proxy daemon.
//
// Every refresh cycle constructs a fresh snapshot; nothing is mutated
// incrementally and nothing is persisted except the compose and
// override files themselves. All read-path dependencies degrade to
// empty or unknown results on failure so a snapshot is always produced.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/go-playground/validator/v10"

	"evalgo.org/proxium/internal/caddy"
	"evalgo.org/proxium/internal/compose"
	"evalgo.org/proxium/internal/config"
	"evalgo.org/proxium/internal/docker"
	"evalgo.org/proxium/models"
)

// View selects which service list an operation addresses: services
// declared in the working tree's compose files, or caddy-labeled
// containers observed only at runtime. The two views are kept
// structurally separate; there is no merge precedence between them.
type View string

const (
	ViewProject View = "project"
	ViewGlobal  View = "global"
)

var (
	// ErrNoSuchService is returned when a view index is out of range.
	ErrNoSuchService = errors.New("no such service")

	// ErrNotEditable is returned when a proxy config is applied to a
	// runtime-sourced service, which has no compose file to mutate.
	ErrNotEditable = errors.New("service has no compose declaration")
)

// Snapshot is one reconciled view of the machine, complete once every
// dependency query has returned or degraded.
type Snapshot struct {
	// Project holds services declared in discovered compose files,
	// override-merged and carrying live status.
	Project []models.Service

	// Global holds caddy-labeled containers with no declaration in the
	// working tree.
	Global []models.Service

	// ComposeFiles are the discovered file paths backing Project.
	ComposeFiles []string

	// CaddyStatus is the proxy daemon container state.
	CaddyStatus models.CaddyProxyStatus

	// ActiveDomains are the hostnames the daemon currently routes,
	// advisory only and not part of the merge.
	ActiveDomains []string
}

// Services returns the list the view addresses.
func (s *Snapshot) Services(view View) []models.Service {
	if view == ViewGlobal {
		return s.Global
	}
	return s.Project
}

// Reconciler runs refresh cycles and the single write path. The engine
// client may be nil (engine never reachable); every engine-dependent
// query then degrades.
type Reconciler struct {
	cfg      *config.Config
	engine   *docker.Client
	admin    *caddy.AdminClient
	validate *validator.Validate
}

// New assembles a reconciler. engine may be nil.
func New(cfg *config.Config, engine *docker.Client, admin *caddy.AdminClient) *Reconciler {
	return &Reconciler{
		cfg:      cfg,
		engine:   engine,
		admin:    admin,
		validate: validator.New(),
	}
}

// Engine exposes the engine client to collaborators (lifecycle
// control); nil when the engine was never reachable.
func (r *Reconciler) Engine() *docker.Client { return r.engine }

// Refresh runs one reconciliation cycle. The engine queries, the admin
// API query and the compose parsing have no data dependency on one
// another and run concurrently; the override and runtime-status merges
// are sequenced after extraction because they mutate its output.
func (r *Reconciler) Refresh(ctx context.Context) *Snapshot {
	snap := &Snapshot{CaddyStatus: models.CaddyUnknown}

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		if r.engine == nil {
			return
		}
		snap.CaddyStatus = r.engine.ProxyDaemonStatus(ctx)
		snap.Global = orEmpty(r.engine.ListCaddyServices(ctx))
	}()

	go func() {
		defer wg.Done()
		snap.ActiveDomains = r.admin.ActiveDomains(ctx)
	}()

	go func() {
		defer wg.Done()
		snap.ComposeFiles = compose.Discover(r.discoveryRoot())
		for _, file := range snap.ComposeFiles {
			doc, err := compose.Parse(file)
			if err != nil {
				// One bad file must not block the rest of the batch.
				log.Printf("skipping %s: %v", file, err)
				continue
			}
			_, services := compose.ExtractServices(doc, file)
			snap.Project = append(snap.Project, services...)
		}
		compose.MergeOverrides(snap.Project, snap.ComposeFiles)
	}()

	wg.Wait()

	if r.engine != nil {
		if err := r.engine.MergeRuntimeStatus(ctx, snap.Project); err != nil {
			log.Printf("runtime status unavailable: %v", err)
		}
	}

	return snap
}

func (r *Reconciler) discoveryRoot() string {
	if r.cfg.Discovery.Root != "" {
		return r.cfg.Discovery.Root
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return cwd
}

// orEmpty is the uniform read-path fallback: a failed dependency query
// yields its empty value instead of an error the caller must handle.
func orEmpty[T any](v []T, err error) []T {
	if err != nil {
		return nil
	}
	return v
}

// ApplyProxyConfig sets the reverse-proxy route for the service at
// index in the given view of snap: the backing compose file is
// re-parsed, structurally mutated and written back, then applied with
// compose up when so configured. This is the engine's only write path;
// its errors are always surfaced.
func (r *Reconciler) ApplyProxyConfig(ctx context.Context, snap *Snapshot, view View, index int, cfg models.ProxyConfig) error {
	if cfg.TLS == "" {
		cfg.TLS = models.DefaultTLS
	}
	if err := r.validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid proxy config: %w", err)
	}

	services := snap.Services(view)
	if index < 0 || index >= len(services) {
		return fmt.Errorf("%w: %s index %d", ErrNoSuchService, view, index)
	}
	svc := services[index]
	if svc.Source.Kind != models.SourceCompose {
		return fmt.Errorf("%w: %s", ErrNotEditable, svc.Name)
	}

	// Re-parse immediately before mutating to shrink the window against
	// concurrent external edits; there is no file locking.
	doc, err := compose.Parse(svc.Source.File)
	if err != nil {
		return err
	}
	compose.AddCaddyLabels(doc, svc.Source.ServiceName, cfg)
	if err := compose.Write(doc, svc.Source.File); err != nil {
		return err
	}

	if r.cfg.Docker.ApplyUp && r.engine != nil {
		if err := r.engine.ComposeUp(ctx, svc.Source.File); err != nil {
			return err
		}
	}
	return nil
}

// DefaultForm pre-fills an add-proxy form for the service at index:
// the deterministic default domain, the first available port, and the
// default TLS policy.
func (r *Reconciler) DefaultForm(snap *Snapshot, view View, index int) (models.ProxyConfig, error) {
	services := snap.Services(view)
	if index < 0 || index >= len(services) {
		return models.ProxyConfig{}, fmt.Errorf("%w: %s index %d", ErrNoSuchService, view, index)
	}
	svc := services[index]

	port := 80
	if len(svc.AvailablePorts) > 0 {
		port = svc.AvailablePorts[0]
	}
	return models.ProxyConfig{
		Domain: compose.DefaultDomain(svc.Name, svc.Project),
		Port:   port,
		TLS:    models.DefaultTLS,
	}, nil
}
