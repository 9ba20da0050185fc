package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-ID"
	// deviceLocaleHeader carries the device's OS locale, e.g. "ja-JP".
	deviceLocaleHeader = "X-Device-Locale"

	// LocalRequestID and LocalDeviceLocale are the fiber.Ctx Locals keys
	// this middleware populates.
	LocalRequestID    = "request_id"
	LocalDeviceLocale = "device_locale"
)

// RequestContext tags each request with a stable identifier and extracts the
// reported device locale so handlers can resolve the display language.
func RequestContext() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqID := c.Get(requestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Set(requestIDHeader, reqID)
		c.Locals(LocalRequestID, reqID)

		locale := strings.TrimSpace(c.Get(deviceLocaleHeader))
		if locale == "" {
			// Accept-Language's first entry is close enough to an OS locale.
			locale = strings.TrimSpace(strings.SplitN(c.Get(fiber.HeaderAcceptLanguage), ",", 2)[0])
			if i := strings.IndexByte(locale, ';'); i >= 0 {
				locale = strings.TrimSpace(locale[:i])
			}
		}
		if locale != "" {
			c.Locals(LocalDeviceLocale, locale)
		}

		return c.Next()
	}
}
