package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"evalgo.org/proxium/internal/compose"
	"evalgo.org/proxium/internal/reconcile"
	"evalgo.org/proxium/internal/version"
	"evalgo.org/proxium/models"
)

// ServicesResponse is the payload of GET /api/v1/services.
type ServicesResponse struct {
	View         reconcile.View   `json:"view"`
	Count        int              `json:"count"`
	Services     []models.Service `json:"services"`
	ComposeFiles []string         `json:"composeFiles,omitempty"`
}

// StatusResponse is the payload of GET /api/v1/status.
type StatusResponse struct {
	Caddy          models.CaddyProxyStatus `json:"caddy"`
	AdminReachable bool                    `json:"adminReachable"`
	ActiveDomains  []string                `json:"activeDomains"`
}

// ProxyFormResponse pre-fills the add-proxy form for one service.
type ProxyFormResponse struct {
	Service string             `json:"service"`
	Config  models.ProxyConfig `json:"config"`
	Preview string             `json:"preview"`
}

// ApplyResponse reports a successful proxy config write.
type ApplyResponse struct {
	Service string             `json:"service"`
	File    string             `json:"file"`
	Config  models.ProxyConfig `json:"config"`
}

func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"version": version.Get().Version,
	})
}

// listServices handles GET /api/v1/services?view=project|global
func (s *Server) listServices(c echo.Context) error {
	view, err := parseView(c.QueryParam("view"))
	if err != nil {
		return err
	}

	snap := s.reconciler.Refresh(c.Request().Context())
	services := snap.Services(view)

	resp := ServicesResponse{
		View:     view,
		Count:    len(services),
		Services: services,
	}
	if view == reconcile.ViewProject {
		resp.ComposeFiles = snap.ComposeFiles
	}
	return c.JSON(http.StatusOK, resp)
}

// getStatus handles GET /api/v1/status
func (s *Server) getStatus(c echo.Context) error {
	ctx := c.Request().Context()
	snap := s.reconciler.Refresh(ctx)

	return c.JSON(http.StatusOK, StatusResponse{
		Caddy:          snap.CaddyStatus,
		AdminReachable: s.admin.IsReachable(ctx),
		ActiveDomains:  snap.ActiveDomains,
	})
}

// getProxyForm handles GET /api/v1/services/:view/:index/form
func (s *Server) getProxyForm(c echo.Context) error {
	view, index, err := parseTarget(c)
	if err != nil {
		return err
	}

	snap := s.reconciler.Refresh(c.Request().Context())
	form, err := s.reconciler.DefaultForm(snap, view, index)
	if err != nil {
		return NotFoundError("Service not found", err.Error())
	}
	name := snap.Services(view)[index].Name

	return c.JSON(http.StatusOK, ProxyFormResponse{
		Service: name,
		Config:  form,
		Preview: compose.Preview(name, form),
	})
}

// applyProxy handles POST /api/v1/services/:view/:index/proxy
func (s *Server) applyProxy(c echo.Context) error {
	view, index, err := parseTarget(c)
	if err != nil {
		return err
	}

	var cfg models.ProxyConfig
	if err := c.Bind(&cfg); err != nil {
		return BadRequestError("Invalid request body", err.Error())
	}
	// Defaulted here, not just inside the apply path, so the response
	// echoes the config that was actually written.
	if cfg.TLS == "" {
		cfg.TLS = models.DefaultTLS
	}

	ctx := c.Request().Context()
	snap := s.reconciler.Refresh(ctx)

	if err := s.reconciler.ApplyProxyConfig(ctx, snap, view, index, cfg); err != nil {
		var verrs validator.ValidationErrors
		switch {
		case errors.Is(err, reconcile.ErrNoSuchService):
			return NotFoundError("Service not found", err.Error())
		case errors.Is(err, reconcile.ErrNotEditable):
			return BadRequestError("Service not editable", err.Error())
		case errors.As(err, &verrs):
			return BadRequestError("Invalid proxy config", err.Error())
		default:
			// Write and apply failures must reach the caller; masking
			// them would report a save that never happened.
			return InternalError("Failed to apply proxy config", err.Error())
		}
	}

	svc := snap.Services(view)[index]
	return c.JSON(http.StatusOK, ApplyResponse{
		Service: svc.Name,
		File:    svc.Source.File,
		Config:  cfg,
	})
}

// caddyAction handles POST /api/v1/caddy/:action
func (s *Server) caddyAction(c echo.Context) error {
	action := c.Param("action")
	ctx := c.Request().Context()

	var err error
	switch action {
	case "start":
		err = s.control.Start(ctx)
	case "stop":
		err = s.control.Stop(ctx)
	case "restart":
		err = s.control.Restart(ctx)
	default:
		return BadRequestError("Unknown action", "action must be start, stop or restart")
	}
	if err != nil {
		return InternalError("Caddy control failed", err.Error())
	}

	return c.JSON(http.StatusOK, map[string]string{"action": action, "result": "ok"})
}

func parseView(raw string) (reconcile.View, error) {
	switch raw {
	case "", string(reconcile.ViewProject):
		return reconcile.ViewProject, nil
	case string(reconcile.ViewGlobal):
		return reconcile.ViewGlobal, nil
	default:
		return "", BadRequestError("Invalid view", "view must be project or global")
	}
}

func parseTarget(c echo.Context) (reconcile.View, int, error) {
	view, err := parseView(c.Param("view"))
	if err != nil {
		return "", 0, err
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		return "", 0, BadRequestError("Invalid index", "index must be a non-negative integer")
	}
	return view, index, nil
}
