package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shenikar/city_emergency_response/internal/config"
	"github.com/shenikar/city_emergency_response/internal/models"
	"github.com/shenikar/city_emergency_response/internal/service"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	exerciseService service.ExerciseService
	logger          *logrus.Logger
	validate        *validator.Validate
	cfg             *config.Config
}

func NewHandler(exerciseService service.ExerciseService, logger *logrus.Logger, cfg *config.Config) *Handler {
	return &Handler{
		exerciseService: exerciseService,
		logger:          logger,
		validate:        validator.New(),
		cfg:             cfg,
	}
}

// @Summary Start an incident
// @Description Spawn an emergency scenario. Requires API key.
// @Tags Exercise
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param scenario body StartScenarioRequest true "Scenario"
// @Success 201 {object} EventResponse
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /scenarios [post]
func (h *Handler) startScenario(c *gin.Context) {
	var input StartScenarioRequest
	log := h.logger.WithField("method", "startScenario")

	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ev, err := h.exerciseService.StartScenario(c.Request.Context(), DTOToScenarioRequest(input))
	if err != nil {
		if errors.Is(err, models.ErrUnknownScenarioType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown scenario type"})
			return
		}
		log.WithError(err).Error("Failed to start scenario in service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusCreated, ModelToEventResponse(ev))
}

// @Summary Run a planning epoch
// @Description Plan the response to every active incident and work the task graph until it settles. Requires API key.
// @Tags Exercise
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} EpochResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 502 {object} map[string]string "Decision collaborator unavailable"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /epochs [post]
func (h *Handler) runEpoch(c *gin.Context) {
	log := h.logger.WithField("method", "runEpoch")

	report, err := h.exerciseService.RunEpoch(c.Request.Context())
	if err != nil {
		if errors.Is(err, models.ErrDispatchFailure) {
			log.WithError(err).Warn("Planning failed")
			c.JSON(http.StatusBadGateway, gin.H{"error": "decision collaborator unavailable"})
			return
		}
		log.WithError(err).Error("Failed to run epoch in service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, ReportToEpochResponse(report))
}

// @Summary Advance the clock
// @Description Tick the environment outside of an epoch. Requires API key.
// @Tags Exercise
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param advance body AdvanceRequest true "Minutes"
// @Success 200 {object} environment.TickReport
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /clock/advance [post]
func (h *Handler) advance(c *gin.Context) {
	var input AdvanceRequest
	log := h.logger.WithField("method", "advance")

	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rep, err := h.exerciseService.Advance(c.Request.Context(), input.Minutes)
	if err != nil {
		log.WithError(err).Warn("Failed to advance clock")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rep)
}

// @Summary Resolve an incident
// @Description Mark an incident resolved. Requires API key.
// @Tags Exercise
// @Security ApiKeyAuth
// @Param id path string true "Event ID"
// @Success 204 "No Content"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Event not found"
// @Router /events/{id}/resolve [post]
func (h *Handler) resolveEvent(c *gin.Context) {
	id := c.Param("id")
	log := h.logger.WithField("method", "resolveEvent").WithField("event_id", id)

	if err := h.exerciseService.ResolveEvent(c.Request.Context(), id); err != nil {
		if errors.Is(err, models.ErrEventNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
			return
		}
		log.WithError(err).Error("Failed to resolve event in service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary List incidents
// @Tags Observation
// @Produce json
// @Success 200 {array} EventResponse
// @Router /events [get]
func (h *Handler) listEvents(c *gin.Context) {
	c.JSON(http.StatusOK, ModelsToEventResponses(h.exerciseService.ListEvents(c.Request.Context())))
}

// @Summary List tasks of the current epoch
// @Tags Observation
// @Produce json
// @Success 200 {array} TaskResponse
// @Router /tasks [get]
func (h *Handler) listTasks(c *gin.Context) {
	c.JSON(http.StatusOK, ModelsToTaskResponses(h.exerciseService.ListTasks(c.Request.Context())))
}

// @Summary List response units
// @Tags Observation
// @Produce json
// @Success 200 {array} models.UnitState
// @Router /units [get]
func (h *Handler) listUnits(c *gin.Context) {
	c.JSON(http.StatusOK, h.exerciseService.ListUnits(c.Request.Context()))
}

// @Summary Query the resource ledger
// @Description Every parameter narrows the result; omitted parameters match anything.
// @Tags Observation
// @Produce json
// @Param type query string false "vehicle, personnel or equipment"
// @Param kind query string false "Resource kind, e.g. ambulance"
// @Param role query string false "Personnel role"
// @Param status query string false "available, in_use, maintenance or offline"
// @Param owner query string false "Owning unit"
// @Param home query string false "Home building ID"
// @Success 200 {array} models.Resource
// @Router /resources [get]
func (h *Handler) listResources(c *gin.Context) {
	c.JSON(http.StatusOK, h.exerciseService.ListResources(c.Request.Context(), QueryToFilter(c.Query)))
}

// @Summary Current state projection
// @Tags Observation
// @Produce json
// @Success 200 {object} datamanager.Snapshot
// @Router /snapshot [get]
func (h *Handler) getSnapshot(c *gin.Context) {
	c.JSON(http.StatusOK, h.exerciseService.Snapshot(c.Request.Context()))
}

// @Summary Context relevant to a task description
// @Tags Observation
// @Produce json
// @Param task query string false "Task description"
// @Param format query string false "json or text" default(json)
// @Success 200 {object} datamanager.RelevantContext
// @Router /context [get]
func (h *Handler) getContext(c *gin.Context) {
	rc := h.exerciseService.RelevantContext(c.Request.Context(), c.Query("task"))
	if c.Query("format") == "text" {
		c.String(http.StatusOK, rc.String())
		return
	}
	c.JSON(http.StatusOK, rc)
}

// @Summary Environment initial-state export
// @Tags Observation
// @Produce json
// @Success 200 {array} models.InitRecord
// @Router /initial-state [get]
func (h *Handler) getInitialState(c *gin.Context) {
	c.JSON(http.StatusOK, h.exerciseService.InitialState(c.Request.Context()))
}

// @Summary Task results of a run
// @Description Pass "latest" instead of a run ID for the newest results across runs.
// @Tags Observation
// @Produce json
// @Param id path string true "Run ID or latest"
// @Success 200 {array} models.TaskResult
// @Failure 400 {object} map[string]string "Invalid run ID"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /runs/{id}/results [get]
func (h *Handler) listResults(c *gin.Context) {
	runID := uuid.Nil
	if raw := c.Param("id"); raw != "latest" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run ID"})
			return
		}
		runID = id
	}
	log := h.logger.WithField("method", "listResults").WithField("run_id", runID)

	results, err := h.exerciseService.TaskResults(c.Request.Context(), runID)
	if err != nil {
		log.WithError(err).Error("Failed to list task results from service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, results)
}

// @Summary Run artifact by input hash
// @Tags Observation
// @Produce json
// @Param hash path string true "SHA-256 of unit name and step input"
// @Success 200 {object} models.RunArtifact
// @Failure 404 {object} map[string]string "Artifact not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /artifacts/{hash} [get]
func (h *Handler) getArtifact(c *gin.Context) {
	hash := c.Param("hash")
	log := h.logger.WithField("method", "getArtifact").WithField("hash", hash)

	a, err := h.exerciseService.GetArtifact(c.Request.Context(), hash)
	if err != nil {
		if errors.Is(err, models.ErrArtifactNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "artifact not found"})
			return
		}
		log.WithError(err).Error("Failed to get artifact from service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, a)
}

// @Summary Get application health status
// @Description Get health status of the application
// @Tags System
// @Produce json
// @Success 200 {object} map[string]string "Status OK"
// @Router /system/health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
