package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/shenikar/firechain/internal/config"
	"github.com/shenikar/firechain/internal/identity"
	"github.com/shenikar/firechain/internal/models"
	"github.com/shenikar/firechain/internal/service"
)

type Handler struct {
	incidentService     service.IncidentService
	verificationService service.VerificationService
	rewardService       service.RewardService
	fundService         service.FundService
	projectionService   service.ProjectionService
	identity            identity.Provider
	logger              *logrus.Logger
	validate            *validator.Validate
	cfg                 *config.Config
}

// Services - зависимости обработчиков
type Services struct {
	Incidents    service.IncidentService
	Verification service.VerificationService
	Rewards      service.RewardService
	Funds        service.FundService
	Projection   service.ProjectionService
}

func NewHandler(services Services, provider identity.Provider, logger *logrus.Logger, cfg *config.Config) *Handler {
	return &Handler{
		incidentService:     services.Incidents,
		verificationService: services.Verification,
		rewardService:       services.Rewards,
		fundService:         services.Funds,
		projectionService:   services.Projection,
		identity:            provider,
		logger:              logger,
		validate:            validator.New(),
		cfg:                 cfg,
	}
}

// bindJSON разбирает и валидирует тело запроса; при ошибке уже отвечает 400
func (h *Handler) bindJSON(c *gin.Context, log *logrus.Entry, input any) bool {
	if err := c.ShouldBindJSON(input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return false
	}
	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

func parseID(c *gin.Context, param string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + param})
		return 0, false
	}
	return id, true
}

// @Summary Report a fire incident
// @Description Record a new incident. The reporter is the authenticated actor.
// @Tags Incidents
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Security BearerAuth
// @Param incident body CreateIncidentRequest true "Incident report"
// @Success 201 {object} IncidentResponse
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 502 {object} map[string]string "Ledger rejected the entry"
// @Failure 504 {object} map[string]string "Ledger confirmation timed out"
// @Router /incidents [post]
func (h *Handler) createIncident(c *gin.Context) {
	var input CreateIncidentRequest
	log := h.logger.WithField("method", "createIncident")

	if !h.bindJSON(c, log, &input) {
		return
	}
	severity, err := models.ParseSeverity(input.Severity)
	if err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	incident, err := h.incidentService.CreateIncident(c.Request.Context(), DTOToIncidentReport(input, severity, actorFrom(c)))
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, ModelToIncidentResponse(incident))
}

// @Summary List incidents by id range
// @Description Read incidents with ids in [from, to]. Defaults to the first page of the registry. Unreadable ids are skipped.
// @Tags Incidents
// @Produce json
// @Param from query int false "First id" default(1)
// @Param to query int false "Last id"
// @Success 200 {object} IncidentListResponse
// @Failure 400 {object} map[string]string "Invalid range"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /incidents [get]
func (h *Handler) listIncidents(c *gin.Context) {
	log := h.logger.WithField("method", "listIncidents")
	ctx := c.Request.Context()

	from, err := strconv.ParseInt(c.DefaultQuery("from", "1"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from"})
		return
	}

	var to int64
	if raw := c.Query("to"); raw != "" {
		if to, err = strconv.ParseInt(raw, 10, 64); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to"})
			return
		}
	} else {
		total, err := h.incidentService.CountIncidents(ctx)
		if err != nil {
			respondError(c, log, err)
			return
		}
		to = min(total, from+int64(h.cfg.ListMaxRange)-1)
		if to < from {
			c.JSON(http.StatusOK, IncidentListResponse{From: from, To: to, Items: []*IncidentResponse{}})
			return
		}
	}

	incidents, count, err := h.projectionService.ListIncidents(ctx, from, to)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, IncidentListResponse{
		From:  from,
		To:    to,
		Count: count,
		Items: ModelsToIncidentResponses(incidents),
	})
}

// @Summary Count incidents
// @Description Number of incidents ever recorded; ids run from 1 to count.
// @Tags Incidents
// @Produce json
// @Success 200 {object} CountResponse
// @Router /incidents/count [get]
func (h *Handler) countIncidents(c *gin.Context) {
	count, err := h.incidentService.CountIncidents(c.Request.Context())
	if err != nil {
		respondError(c, h.logger.WithField("method", "countIncidents"), err)
		return
	}
	c.JSON(http.StatusOK, CountResponse{Count: count})
}

// @Summary Get incident by ID
// @Description Get a single incident by its ID.
// @Tags Incidents
// @Produce json
// @Param id path int true "Incident ID"
// @Success 200 {object} IncidentResponse
// @Failure 400 {object} map[string]string "Invalid incident ID"
// @Failure 404 {object} map[string]string "Incident not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /incidents/{id} [get]
func (h *Handler) getIncident(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	log := h.logger.WithField("method", "getIncident").WithField("id", id)

	incident, err := h.incidentService.GetIncident(c.Request.Context(), id)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToIncidentResponse(incident))
}

// @Summary Verify an incident
// @Description Move an incident to Verified, Resolved or FalseReport. Reporters cannot verify their own incidents.
// @Tags Incidents
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Security BearerAuth
// @Param id path int true "Incident ID"
// @Param verification body VerifyIncidentRequest true "Target status"
// @Success 200 {object} IncidentResponse
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Actor may not verify this incident"
// @Failure 404 {object} map[string]string "Incident not found"
// @Failure 409 {object} map[string]string "Illegal status transition"
// @Failure 502 {object} map[string]string "Ledger rejected the entry"
// @Failure 504 {object} map[string]string "Ledger confirmation timed out"
// @Router /incidents/{id}/verify [post]
func (h *Handler) verifyIncident(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	log := h.logger.WithField("method", "verifyIncident").WithField("id", id)

	var input VerifyIncidentRequest
	if !h.bindJSON(c, log, &input) {
		return
	}
	target, err := models.ParseStatus(input.Status)
	if err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	incident, err := h.verificationService.Verify(c.Request.Context(), id, target, actorFrom(c))
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToIncidentResponse(incident))
}

// @Summary Incident statistics
// @Description Totals by status and severity across the registry.
// @Tags Incidents
// @Produce json
// @Success 200 {object} models.IncidentStats
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /incidents/stats [get]
func (h *Handler) getStats(c *gin.Context) {
	stats, err := h.projectionService.Stats(c.Request.Context())
	if err != nil {
		respondError(c, h.logger.WithField("method", "getStats"), err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// @Summary Incidents of a reporter
// @Description Ids of incidents submitted by the reporter, in ascending order.
// @Tags Incidents
// @Produce json
// @Param reporter path string true "Reporter"
// @Success 200 {object} ReporterIncidentsResponse
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /reporters/{reporter}/incidents [get]
func (h *Handler) listReporterIncidents(c *gin.Context) {
	reporter := c.Param("reporter")
	log := h.logger.WithField("method", "listReporterIncidents").WithField("reporter", reporter)

	ids := []int64{}
	for id, err := range h.incidentService.ListIncidentsByReporter(c.Request.Context(), reporter) {
		if err != nil {
			respondError(c, log, err)
			return
		}
		ids = append(ids, id)
	}
	c.JSON(http.StatusOK, ReporterIncidentsResponse{Reporter: reporter, IncidentIDs: ids})
}

// @Summary Get application health status
// @Description Health of the application with the ledger backend and the last incident id.
// @Tags System
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse "Ledger unavailable"
// @Router /system/health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	resp := HealthResponse{Status: "ok", LedgerBackend: h.cfg.LedgerBackend}
	head, err := h.incidentService.CountIncidents(c.Request.Context())
	if err != nil {
		h.logger.WithField("method", "healthCheck").WithError(err).Error("Ledger is unavailable")
		resp.Status = "unavailable"
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	resp.IncidentHead = head
	c.JSON(http.StatusOK, resp)
}
