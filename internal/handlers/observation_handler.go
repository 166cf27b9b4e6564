package handlers

import (
	"fmt"
	"mime/multipart"
	"strconv"
	"strings"

	"fishlog/internal/logging"
	"fishlog/internal/middleware"
	"fishlog/internal/models"
	"fishlog/internal/query"
	"fishlog/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// PhotoSaver stores an uploaded photo and returns the filename to persist.
// Remove undoes a Save whose record could not be written.
type PhotoSaver interface {
	Save(fh *multipart.FileHeader) (string, error)
	Remove(name string) error
}

// observationFields must all be present in an add or edit submission.
var observationFields = []string{"date", "location", "species", "count", "bait", "size", "water", "platform", "comments"}

// ObservationForm is the add/edit form submission.
type ObservationForm struct {
	Date          string `form:"date" validate:"datetime=2006-01-02"`
	Location      string `form:"location"`
	Species       string `form:"species"`
	Count         string `form:"count"`
	Bait          string `form:"bait"`
	Size          string `form:"size"`
	Water         string `form:"water"`
	Platform      string `form:"platform"`
	Comments      string `form:"comments"`
	Lat           string `form:"lat" validate:"omitempty,latitude"`
	Lng           string `form:"lng" validate:"omitempty,longitude"`
	ExistingImage string `form:"existing_image"`
}

// ObservationHandler handles HTTP requests for observations.
type ObservationHandler struct {
	service  *services.ObservationService
	photos   PhotoSaver
	validate *validator.Validate
}

// NewObservationHandler creates a new ObservationHandler.
func NewObservationHandler(service *services.ObservationService, photos PhotoSaver) *ObservationHandler {
	return &ObservationHandler{
		service:  service,
		photos:   photos,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the observation routes, each behind the guard for its role.
func (h *ObservationHandler) RegisterRoutes(router fiber.Router, guard middleware.Guard) {
	read := guard(models.RoleRead)
	write := guard(models.RoleWrite)

	router.Get("/", read, h.HandleList)
	router.Get("/report", read, h.HandleReport)
	router.Get("/map", read, h.HandleMap)

	router.Get("/add", write, h.HandleAddForm)
	router.Post("/add", write, h.HandleAdd)
	router.Get("/edit/:id<int>", write, h.HandleGetObservation)
	router.Post("/edit/:id<int>", write, h.HandleEdit)
	router.Get("/delete/:id<int>", write, h.HandleGetObservation)
	router.Post("/delete/:id<int>", write, h.HandleDelete)
}

func listCriteria(c *fiber.Ctx) query.ListCriteria {
	return query.ListCriteria{
		Start:   c.Query("start"),
		End:     c.Query("end"),
		Species: c.Query("species"),
		Sort:    c.Query("sort", query.SortNewest),
	}
}

// HandleList returns the filtered observations with quick stats.
func (h *ObservationHandler) HandleList(c *fiber.Ctx) error {
	res, err := h.service.List(listCriteria(c))
	if err != nil {
		return internalError(c, "Could not retrieve observations", err)
	}
	return c.JSON(res)
}

// HandleReport returns observations matching the advanced filters, as JSON or XLSX.
func (h *ObservationHandler) HandleReport(c *fiber.Ctx) error {
	rows, err := h.service.Report(query.ReportCriteria{
		Start:    c.Query("start"),
		End:      c.Query("end"),
		Species:  c.Query("species"),
		Location: c.Query("location"),
		Water:    c.Query("water"),
		Platform: c.Query("platform"),
		Sort:     c.Query("sort", query.SortNewest),
	})
	if err != nil {
		return internalError(c, "Could not build report", err)
	}

	if c.Query("format") == "xlsx" {
		data, err := h.service.ExportReport(rows)
		if err != nil {
			return internalError(c, "Could not export report", err)
		}
		c.Attachment("report.xlsx")
		return c.Send(data)
	}
	return c.JSON(fiber.Map{"rows": rows})
}

// HandleMap returns the list page rows with coordinates as a GeoJSON FeatureCollection.
func (h *ObservationHandler) HandleMap(c *fiber.Ctx) error {
	res, err := h.service.List(listCriteria(c))
	if err != nil {
		return internalError(c, "Could not retrieve observations", err)
	}
	body, err := h.service.MapFeatures(res.Data).MarshalJSON()
	if err != nil {
		return internalError(c, "Could not encode map data", err)
	}
	c.Set(fiber.HeaderContentType, "application/geo+json")
	return c.Send(body)
}

// HandleAddForm describes the add form.
func (h *ObservationHandler) HandleAddForm(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"fields":   observationFields,
		"optional": []string{"image", "lat", "lng"},
	})
}

// HandleAdd creates a new observation from a form submission.
func (h *ObservationHandler) HandleAdd(c *fiber.Ctx) error {
	o, problem := h.parseForm(c)
	if problem != nil {
		return c.Status(fiber.StatusBadRequest).JSON(problem)
	}

	image, err := h.savePhoto(c)
	if err != nil {
		return internalError(c, "Could not store photo", err)
	}
	o.Image = image

	id, err := h.service.Create(o)
	if err != nil {
		h.discardPhoto(image)
		return internalError(c, "Could not create observation", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Observation created",
		"id":      id,
	})
}

// HandleGetObservation returns one observation for the edit form or the delete confirmation.
func (h *ObservationHandler) HandleGetObservation(c *fiber.Ctx) error {
	id, ok := observationID(c)
	if !ok {
		return notFound(c)
	}
	o, err := h.service.Get(id)
	if err != nil {
		if services.IsNotFound(err) {
			return notFound(c)
		}
		return internalError(c, "Could not retrieve observation", err)
	}
	return c.JSON(fiber.Map{"record": o})
}

// HandleEdit overwrites an observation. The stored photo is kept unless a new one is uploaded.
func (h *ObservationHandler) HandleEdit(c *fiber.Ctx) error {
	id, ok := observationID(c)
	if !ok {
		return notFound(c)
	}
	if _, err := h.service.Get(id); err != nil {
		if services.IsNotFound(err) {
			return notFound(c)
		}
		return internalError(c, "Could not retrieve observation", err)
	}

	o, problem := h.parseForm(c)
	if problem != nil {
		return c.Status(fiber.StatusBadRequest).JSON(problem)
	}
	image, err := h.savePhoto(c)
	if err != nil {
		return internalError(c, "Could not store photo", err)
	}

	if err := h.service.Update(id, o, image); err != nil {
		h.discardPhoto(image)
		if services.IsNotFound(err) {
			return notFound(c)
		}
		return internalError(c, "Could not update observation", err)
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Observation %d updated", id),
	})
}

// HandleDelete permanently removes an observation.
func (h *ObservationHandler) HandleDelete(c *fiber.Ctx) error {
	id, ok := observationID(c)
	if !ok {
		return notFound(c)
	}
	if err := h.service.Delete(id); err != nil {
		if services.IsNotFound(err) {
			return notFound(c)
		}
		return internalError(c, "Could not delete observation", err)
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Observation %d deleted", id),
	})
}

// parseForm checks presence and format of the form fields. A non-nil map is the
// body of the 400 response.
func (h *ObservationHandler) parseForm(c *fiber.Ctx) (*models.Observation, fiber.Map) {
	if missing := missingFormFields(c, observationFields); len(missing) > 0 {
		return nil, fiber.Map{
			"message": "Missing required fields",
			"missing": missing,
		}
	}

	var form ObservationForm
	if err := c.BodyParser(&form); err != nil {
		return nil, fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		}
	}
	if err := h.validate.Struct(form); err != nil {
		return nil, fiber.Map{
			"message": "Validation failed",
			"errors":  validationMessages(err),
		}
	}

	return &models.Observation{
		Date:     form.Date,
		Location: form.Location,
		Species:  form.Species,
		Count:    form.Count,
		Bait:     form.Bait,
		Size:     form.Size,
		Water:    form.Water,
		Platform: form.Platform,
		Comments: form.Comments,
		Lat:      parseCoordinate(form.Lat),
		Lng:      parseCoordinate(form.Lng),
	}, nil
}

// savePhoto stores the uploaded image, if any. A nil result means no new photo.
func (h *ObservationHandler) savePhoto(c *fiber.Ctx) (*string, error) {
	fh, err := c.FormFile("image")
	if err != nil || fh == nil || fh.Filename == "" {
		return nil, nil
	}
	name, err := h.photos.Save(fh)
	if err != nil {
		return nil, err
	}
	logging.Info().Str("file", name).Msg("photo stored")
	return &name, nil
}

func (h *ObservationHandler) discardPhoto(name *string) {
	if name == nil {
		return
	}
	if err := h.photos.Remove(*name); err != nil {
		logging.Warn().Err(err).Str("file", *name).Msg("orphaned photo not removed")
	}
}

func observationID(c *fiber.Ctx) (uint, bool) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// parseCoordinate converts an already validated coordinate; empty means absent.
func parseCoordinate(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}
