package routes

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/sproutfin/sprout/internal/i18n"
)

// RegisterLanguageRoutes adds the display-language endpoints. A change takes
// effect on the response already; persistence happens in the background.
func RegisterLanguageRoutes(api fiber.Router, resolver *i18n.Resolver) {
	api.Get("/language", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"language":  resolver.Current(),
			"supported": i18n.Supported(),
		})
	})

	api.Put("/language", func(c *fiber.Ctx) error {
		var req struct {
			Language string `json:"language"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, "invalid payload")
		}

		lang, err := resolver.Change(strings.TrimSpace(req.Language))
		if err != nil {
			return fiber.NewError(http.StatusUnprocessableEntity, err.Error())
		}
		return c.JSON(fiber.Map{"language": lang})
	})
}
