package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"go.ngs.io/panchanga-api/internal/domain"
	"go.ngs.io/panchanga-api/internal/usecase"
)

// Handler handles HTTP requests for panchanga calculations.
type Handler struct {
	svc *usecase.Service
	now func() time.Time
}

// NewHandler creates a new HTTP handler.
func NewHandler(svc *usecase.Service) *Handler {
	return &Handler{
		svc: svc,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// statusFor maps a use case error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, usecase.ErrInvalidRequest),
		errors.Is(err, domain.ErrInvalidTimestamp),
		errors.Is(err, domain.ErrCoordinateOutOfRange),
		errors.Is(err, domain.ErrUnknownBody):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrEphemerisUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respond writes either the response or the mapped error.
func respond(c *gin.Context, response any, err error) {
	if err != nil {
		_ = c.Error(err)
		c.JSON(statusFor(err), gin.H{
			"error":      err.Error(),
			"request_id": c.GetString(requestIDKey),
		})
		return
	}
	c.JSON(http.StatusOK, response)
}

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", usecase.ErrInvalidRequest, fmt.Sprintf(format, args...))
}

// parseZone reads the tz parameter. It defaults to UTC.
func parseZone(c *gin.Context) (*time.Location, error) {
	tz := c.Query("tz")
	if tz == "" {
		return time.UTC, nil
	}
	zone, err := time.LoadLocation(tz)
	if err != nil {
		return nil, badRequest("invalid tz %q: %v", tz, err)
	}
	return zone, nil
}

// parseTime reads an RFC3339 parameter. An absent parameter yields the current time.
func (h *Handler) parseTime(c *gin.Context, name string) (time.Time, error) {
	s := c.Query(name)
	if s == "" {
		return h.now(), nil
	}
	inst, err := domain.ParseInstant(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s: %w", name, err)
	}
	return inst.Time(), nil
}

// parseDateOrTime accepts YYYY-MM-DD in zone or an RFC3339 timestamp.
func parseDateOrTime(name, s string, zone *time.Location) (time.Time, error) {
	if s == "" {
		return time.Time{}, badRequest("%s parameter is required", name)
	}
	if d, err := time.ParseInLocation(time.DateOnly, s, zone); err == nil {
		return d, nil
	}
	inst, err := domain.ParseInstant(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s (expected YYYY-MM-DD or RFC3339): %w", name, err)
	}
	return inst.Time(), nil
}

// parseLocation reads the required lat and lon parameters.
func parseLocation(c *gin.Context) (domain.Location, error) {
	latStr := c.Query("lat")
	lonStr := c.Query("lon")
	if latStr == "" || lonStr == "" {
		return domain.Location{}, badRequest("lat and lon parameters are required")
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return domain.Location{}, badRequest("invalid latitude: %v", err)
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return domain.Location{}, badRequest("invalid longitude: %v", err)
	}
	return domain.Location{Latitude: lat, Longitude: lon}, nil
}

// pointRequest reads time, lat, lon and tz.
func (h *Handler) pointRequest(c *gin.Context) (usecase.PointRequest, error) {
	loc, err := parseLocation(c)
	if err != nil {
		return usecase.PointRequest{}, err
	}
	zone, err := parseZone(c)
	if err != nil {
		return usecase.PointRequest{}, err
	}
	t, err := h.parseTime(c, "time")
	if err != nil {
		return usecase.PointRequest{}, err
	}
	return usecase.PointRequest{Time: t, Location: loc, Zone: zone}, nil
}

// positionsRequest reads time and bodies.
func (h *Handler) positionsRequest(c *gin.Context) (usecase.PositionsRequest, error) {
	t, err := h.parseTime(c, "time")
	if err != nil {
		return usecase.PositionsRequest{}, err
	}
	bodies, err := domain.ParseBodies(c.Query("bodies"))
	if err != nil {
		return usecase.PositionsRequest{}, err
	}
	return usecase.PositionsRequest{Time: t, Bodies: bodies}, nil
}

// GetPanchanga handles GET /v1/panchanga.
func (h *Handler) GetPanchanga(c *gin.Context) {
	req, err := h.pointRequest(c)
	if err != nil {
		respond(c, nil, err)
		return
	}
	resp, err := h.svc.Facts(c.Request.Context(), req)
	respond(c, resp, err)
}

// GetWindows handles GET /v1/panchanga/windows.
// The day is taken from date (YYYY-MM-DD in tz) or, when absent, from time.
func (h *Handler) GetWindows(c *gin.Context) {
	req, err := h.pointRequest(c)
	if err != nil {
		respond(c, nil, err)
		return
	}
	if date := c.Query("date"); date != "" {
		d, err := time.ParseInLocation(time.DateOnly, date, req.Zone)
		if err != nil {
			respond(c, nil, fmt.Errorf("%w: date %q (expected YYYY-MM-DD)", domain.ErrInvalidTimestamp, date))
			return
		}
		req.Time = d.Add(12 * time.Hour)
	}
	resp, err := h.svc.DayWindows(c.Request.Context(), req)
	respond(c, resp, err)
}

// GetPositions handles GET /v1/positions.
func (h *Handler) GetPositions(c *gin.Context) {
	req, err := h.positionsRequest(c)
	if err != nil {
		respond(c, nil, err)
		return
	}
	resp, err := h.svc.Positions(c.Request.Context(), req)
	respond(c, resp, err)
}

// GetMotion handles GET /v1/motion.
func (h *Handler) GetMotion(c *gin.Context) {
	req, err := h.positionsRequest(c)
	if err != nil {
		respond(c, nil, err)
		return
	}
	resp, err := h.svc.Motion(c.Request.Context(), req)
	respond(c, resp, err)
}

// GetStations handles GET /v1/motion/stations.
func (h *Handler) GetStations(c *gin.Context) {
	name := c.Query("body")
	if name == "" {
		respond(c, nil, badRequest("body parameter is required"))
		return
	}
	body, err := domain.ParseBody(name)
	if err != nil {
		respond(c, nil, err)
		return
	}
	zone, err := parseZone(c)
	if err != nil {
		respond(c, nil, err)
		return
	}
	from, err := parseDateOrTime("from", c.Query("from"), zone)
	if err != nil {
		respond(c, nil, err)
		return
	}
	to, err := parseDateOrTime("to", c.Query("to"), zone)
	if err != nil {
		respond(c, nil, err)
		return
	}
	resp, err := h.svc.Stations(c.Request.Context(), usecase.StationsRequest{Body: body, From: from, To: to})
	respond(c, resp, err)
}

// GetYogas handles GET /v1/yogas.
func (h *Handler) GetYogas(c *gin.Context) {
	req, err := h.pointRequest(c)
	if err != nil {
		respond(c, nil, err)
		return
	}
	resp, err := h.svc.Yogas(c.Request.Context(), req)
	respond(c, resp, err)
}

// GetYogasRange handles GET /v1/yogas/range.
func (h *Handler) GetYogasRange(c *gin.Context) {
	loc, err := parseLocation(c)
	if err != nil {
		respond(c, nil, err)
		return
	}
	zone, err := parseZone(c)
	if err != nil {
		respond(c, nil, err)
		return
	}
	from, err := parseDateOrTime("from", c.Query("from"), zone)
	if err != nil {
		respond(c, nil, err)
		return
	}
	to, err := parseDateOrTime("to", c.Query("to"), zone)
	if err != nil {
		respond(c, nil, err)
		return
	}
	resp, err := h.svc.YogasInRange(c.Request.Context(), usecase.RangeRequest{
		From:     from,
		To:       to,
		Location: loc,
		Zone:     zone,
	})
	respond(c, resp, err)
}

// GetRules handles GET /v1/yogas/rules.
func (h *Handler) GetRules(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Rules())
}

// GetNavatara handles GET /v1/navatara.
// Today's tara is included only when time is given.
func (h *Handler) GetNavatara(c *gin.Context) {
	birth := strings.TrimSpace(c.Query("birth"))
	if birth == "" {
		respond(c, nil, badRequest("birth parameter is required"))
		return
	}
	req := usecase.NavataraRequest{Birth: birth}
	if c.Query("time") != "" {
		t, err := h.parseTime(c, "time")
		if err != nil {
			respond(c, nil, err)
			return
		}
		req.Time = t
	}
	resp, err := h.svc.Navatara(c.Request.Context(), req)
	respond(c, resp, err)
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"time":          h.now().Format(time.RFC3339),
		"source":        h.svc.Source(),
		"rules_version": h.svc.RuleTable().Version(),
	})
}
