package server

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/piwi3910/LoadPlan/internal/engine"
	"github.com/piwi3910/LoadPlan/internal/export"
	"github.com/piwi3910/LoadPlan/internal/importer"
	"github.com/piwi3910/LoadPlan/internal/model"
	"github.com/piwi3910/LoadPlan/internal/store"
	"github.com/piwi3910/LoadPlan/internal/telemetry"
)

const metricsSource = "http"

// PlanRequest is the JSON form of a planning request.
type PlanRequest struct {
	Lines   []model.ProductLine `json:"lines"`
	GroupBy model.GroupKey      `json:"group_by,omitempty"`
	Share   bool                `json:"share,omitempty"`
}

// PlanResponse is returned by POST /api/plan.
type PlanResponse struct {
	Result   model.PlanResult `json:"result"`
	Errors   []string         `json:"errors,omitempty"`   // Rejected input rows
	Warnings []string         `json:"warnings,omitempty"` // Import warnings
	ShareID  string           `json:"share_id,omitempty"`
	ShareURL string           `json:"share_url,omitempty"`
}

// ShareRequest is the body of POST /api/share.
type ShareRequest struct {
	Source   string              `json:"source,omitempty"`
	Settings *model.PlanSettings `json:"settings,omitempty"`
	Result   model.PlanResult    `json:"result"`
}

// ShareResponse is returned by POST /api/share.
type ShareResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

func (s *Server) handleHealth(c echo.Context) error {
	if s.store != nil {
		if err := s.store.HealthCheck(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// handlePlan plans either an uploaded CSV/XLSX file (multipart field
// "file") or a JSON PlanRequest. The query parameters group_by and share
// apply to uploads; format=pdf returns the loading report instead of JSON.
func (s *Server) handlePlan(c echo.Context) error {
	var (
		lines    []model.ProductLine
		groupBy  = model.GroupKey(c.QueryParam("group_by"))
		share    = c.QueryParam("share") == "true"
		source   string
		errs     []string
		warnings []string
	)

	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		var req PlanRequest
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid plan request")
		}
		for i, l := range req.Lines {
			if err := l.Validate(); err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "line "+strconv.Itoa(i+1)+": "+err.Error())
			}
		}
		lines = req.Lines
		if req.GroupBy != "" {
			groupBy = req.GroupBy
		}
		share = share || req.Share
		source = "request"
	} else {
		fh, err := c.FormFile("file")
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Missing file upload")
		}
		f, err := fh.Open()
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Cannot read upload")
		}
		defer f.Close()

		imported := importer.ImportUpload(fh.Filename, f)
		s.metrics.RecordImportErrors(metricsSource, len(imported.Errors))
		if len(imported.Lines) == 0 {
			s.metrics.RecordFailure(metricsSource)
			return c.JSON(http.StatusBadRequest, PlanResponse{Errors: imported.Errors, Warnings: imported.Warnings})
		}
		lines, errs, warnings = imported.Lines, imported.Errors, imported.Warnings
		source = fh.Filename
	}

	settings := s.cfg.Settings
	if groupBy != "" {
		settings.GroupBy = groupBy
	}
	if err := settings.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	timer := telemetry.NewTimer()
	result := engine.New(settings,
		engine.WithPreferences(s.cfg.Preferences),
		engine.WithLogger(s.log),
	).Plan(lines)
	s.metrics.RecordPlan(metricsSource, result, timer.Duration())

	s.log.Info().
		Str("source", source).
		Int("products", result.Summary.TotalProducts).
		Int("unallocated", result.Summary.UnallocatedProducts).
		Msg("plan computed")

	if c.QueryParam("format") == "pdf" {
		return s.writePDF(c, result, settings)
	}

	resp := PlanResponse{Result: result, Errors: errs, Warnings: warnings}
	if share {
		id, err := s.share(c, store.SharedPlan{Source: source, Settings: settings, Result: result})
		if err != nil {
			return err
		}
		resp.ShareID, resp.ShareURL = id, s.shareURL(id)
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleShare(c echo.Context) error {
	var req ShareRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid share request")
	}
	if len(req.Result.Compartments) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Plan has no compartments")
	}
	settings := s.cfg.Settings
	if req.Settings != nil {
		settings = *req.Settings
	}

	id, err := s.share(c, store.SharedPlan{Source: req.Source, Settings: settings, Result: req.Result})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, ShareResponse{ID: id, URL: s.shareURL(id)})
}

func (s *Server) share(c echo.Context, plan store.SharedPlan) (string, error) {
	if s.store == nil {
		return "", echo.NewHTTPError(http.StatusServiceUnavailable, "Sharing is not configured")
	}
	id, err := s.store.SavePlan(c.Request().Context(), plan)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to store shared plan")
		return "", echo.NewHTTPError(http.StatusInternalServerError, "Failed to store plan")
	}
	s.metrics.RecordShare()
	return id, nil
}

func (s *Server) shareURL(id string) string {
	return strings.TrimSuffix(s.cfg.BaseURL, "/") + "/api/shared/" + id
}

func (s *Server) handleListShared(c echo.Context) error {
	if s.store == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Sharing is not configured")
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	plans, err := s.store.ListPlans(c.Request().Context(), limit)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list shared plans")
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list plans")
	}
	if plans == nil {
		plans = []store.PlanInfo{}
	}
	return c.JSON(http.StatusOK, plans)
}

func (s *Server) handleGetShared(c echo.Context) error {
	plan, err := s.lookup(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, plan)
}

func (s *Server) handleGetSharedPDF(c echo.Context) error {
	plan, err := s.lookup(c)
	if err != nil {
		return err
	}
	return s.writePDF(c, plan.Result, plan.Settings)
}

func (s *Server) lookup(c echo.Context) (*store.SharedPlan, error) {
	if s.store == nil {
		return nil, echo.NewHTTPError(http.StatusServiceUnavailable, "Sharing is not configured")
	}
	plan, err := s.store.GetPlan(c.Request().Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		return nil, echo.NewHTTPError(http.StatusNotFound, "Plan not found")
	}
	if err != nil {
		s.log.Error().Err(err).Str("id", c.Param("id")).Msg("failed to load shared plan")
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "Failed to load plan")
	}
	return plan, nil
}

func (s *Server) writePDF(c echo.Context, result model.PlanResult, settings model.PlanSettings) error {
	var buf bytes.Buffer
	if err := export.WritePDF(&buf, result, settings); err != nil {
		s.log.Error().Err(err).Msg("failed to render PDF")
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to render PDF")
	}
	return c.Blob(http.StatusOK, "application/pdf", buf.Bytes())
}
