package handlers

import (
	"errors"
	"fmt"

	"fishlog/internal/logging"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// missingFormFields returns the names absent from the submitted form. A key sent
// with an empty value counts as present.
func missingFormFields(c *fiber.Ctx, names []string) []string {
	form, formErr := c.MultipartForm()

	var missing []string
	for _, n := range names {
		if formErr == nil {
			if _, ok := form.Value[n]; ok {
				continue
			}
		} else if c.Request().PostArgs().Has(n) {
			continue
		}
		missing = append(missing, n)
	}
	return missing
}

func validationMessages(err error) map[string]string {
	errorMessages := make(map[string]string)
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		errorMessages["form"] = err.Error()
		return errorMessages
	}
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return errorMessages
}

func internalError(c *fiber.Ctx, message string, err error) error {
	logging.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg(message)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}

func notFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"message": "Observation not found",
	})
}
