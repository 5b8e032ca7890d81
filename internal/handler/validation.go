package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// formatValidationErrors converts validator errors into response details
func formatValidationErrors(err error) []fiber.Map {
	var details []fiber.Map
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, ve := range verrs {
			details = append(details, fiber.Map{
				"field": ve.Field(),
				"tag":   ve.Tag(),
				"param": ve.Param(),
			})
		}
	}
	return details
}
