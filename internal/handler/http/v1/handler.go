package v1

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/menottiRicardo/blazestack/internal/service"
)

const (
	defaultPage  = 1
	defaultLimit = 10
)

// ImageStore сохраняет загруженное изображение и возвращает сгенерированное имя файла
type ImageStore interface {
	Save(fh *multipart.FileHeader) (string, error)
}

type Handler struct {
	incidentService service.IncidentService
	uploads         ImageStore
	logger          *logrus.Logger
	validate        *validator.Validate
}

func NewHandler(incidentService service.IncidentService, uploads ImageStore, logger *logrus.Logger) *Handler {
	return &Handler{
		incidentService: incidentService,
		uploads:         uploads,
		logger:          logger,
		validate:        newValidator(),
	}
}

// @Summary Create a new incident
// @Description Create a new incident report. Accepts JSON or multipart/form-data with an optional image file.
// @Tags Incidents
// @Accept json
// @Accept mpfd
// @Produce json
// @Param incident body CreateIncidentRequest true "Incident creation request"
// @Success 201 {object} IncidentResponse
// @Failure 400 {object} ErrorResponse "Validation error"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /incidents [post]
func (h *Handler) createIncident(c *gin.Context) {
	log := h.logger.WithField("method", "createIncident")

	var input CreateIncidentRequest

	if c.ContentType() == "multipart/form-data" {
		// Сначала обрабатывается файл: его тип проверяется до валидации полей
		fileHeader, err := c.FormFile("image")
		switch {
		case err == nil:
			filename, saveErr := h.uploads.Save(fileHeader)
			if saveErr != nil {
				log.WithError(saveErr).Warn("Failed to store uploaded image")
				h.handleError(c, log, saveErr)
				return
			}
			input.Image = filename
		case errors.Is(err, http.ErrMissingFile):
			// Файл не приложен, допускается текстовая ссылка в поле image
			input.Image = c.PostForm("image")
		default:
			log.WithError(err).Warn("Failed to read multipart form")
			c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body"})
			return
		}

		input.Title = c.PostForm("title")
		input.Description = c.PostForm("description")
		input.IncidentType = c.PostForm("incident_type")
		input.Location = c.PostForm("location")
	} else {
		if err := c.ShouldBindJSON(&input); err != nil {
			log.WithError(err).Warn("Failed to bind JSON")
			c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body"})
			return
		}
	}

	input.trimSpace()

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		h.handleError(c, log, asValidationError(err))
		return
	}

	model := DTOToIncidentModel(input)
	if err := h.incidentService.CreateIncident(c.Request.Context(), model); err != nil {
		log.WithError(err).Error("Failed to create incident in service")
		h.handleError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, ModelToIncidentResponse(model))
}

// @Summary Get a list of incidents
// @Description Get a paginated list of incidents in reverse chronological order.
// @Tags Incidents
// @Produce json
// @Param page query int false "Page number" default(1) minimum(1)
// @Param limit query int false "Number of items per page" default(10) minimum(1) maximum(100)
// @Success 200 {object} IncidentsListResponse
// @Failure 400 {object} ErrorResponse "Invalid pagination parameters"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /incidents [get]
func (h *Handler) listIncidents(c *gin.Context) {
	log := h.logger.WithField("method", "listIncidents")

	query := ListIncidentsQuery{
		Page:  parseIntOrDefault(c.Query("page"), defaultPage),
		Limit: parseIntOrDefault(c.Query("limit"), defaultLimit),
	}

	if err := h.validate.Struct(query); err != nil {
		log.WithError(err).Warn("Invalid pagination parameters")
		h.handleError(c, log, asValidationError(err))
		return
	}

	incidents, total, err := h.incidentService.ListIncidents(c.Request.Context(), query.Page, query.Limit)
	if err != nil {
		log.WithError(err).Error("Failed to list incidents from service")
		h.handleError(c, log, err)
		return
	}

	totalPages := int((total + int64(query.Limit) - 1) / int64(query.Limit))

	c.JSON(http.StatusOK, IncidentsListResponse{
		Incidents:  ModelsToIncidentResponses(incidents),
		Total:      total,
		Page:       query.Page,
		Limit:      query.Limit,
		TotalPages: totalPages,
	})
}

// @Summary Get incident by ID
// @Description Get a single incident by its ID.
// @Tags Incidents
// @Produce json
// @Param id path string true "Incident ID"
// @Success 200 {object} IncidentResponse
// @Failure 404 {object} ErrorResponse "Incident not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /incidents/{id} [get]
func (h *Handler) getIncident(c *gin.Context) {
	log := h.logger.WithField("method", "getIncident").WithField("id", c.Param("id"))

	incident, err := h.incidentService.GetIncident(c.Request.Context(), c.Param("id"))
	if err != nil {
		log.WithError(err).Warn("Failed to get incident from service")
		h.handleError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToIncidentResponse(incident))
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

// parseIntOrDefault приводит текстовый параметр запроса к int,
// при отсутствии или нечисловом значении возвращает значение по умолчанию
func parseIntOrDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
