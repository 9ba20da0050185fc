package routes

import (
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/sproutfin/sprout/internal/flow"
	"github.com/sproutfin/sprout/internal/i18n"
	"github.com/sproutfin/sprout/internal/middleware"
)

// sessionView is the read-only projection handed to the client after every
// event. Message keys come translated; raw state rides along for rendering.
type sessionView struct {
	ID         string        `json:"id"`
	Language   i18n.Language `json:"language"`
	State      flow.State    `json:"state"`
	ErrorText  string        `json:"errorText,omitempty"`
	NoticeText string        `json:"noticeText,omitempty"`
}

// requestLanguage picks the display language for one request from the
// device locale the middleware extracted.
func requestLanguage(c *fiber.Ctx, resolver *i18n.Resolver) i18n.Language {
	locale, _ := c.Locals(middleware.LocalDeviceLocale).(string)
	return resolver.ForRequest(locale)
}

func renderSession(c *fiber.Ctx, sess *flow.Session, resolver *i18n.Resolver) sessionView {
	lang := requestLanguage(c, resolver)
	state := sess.State()
	view := sessionView{ID: sess.ID, Language: lang, State: state}
	if state.Err != "" {
		view.ErrorText = resolver.Translate(lang, state.Err)
	}
	if state.Notice != "" {
		view.NoticeText = resolver.Translate(lang, state.Notice)
	}
	return view
}

// eventEnvelope is the wire form of a user interaction. Only the fields the
// named type uses are read; the rest stay zero.
type eventEnvelope struct {
	Type          string `json:"type"`
	Email         string `json:"email"`
	TermsAccepted bool   `json:"termsAccepted"`
	Index         int    `json:"index"`
	Value         string `json:"value"`
	FirstName     string `json:"firstName"`
	MiddleName    string `json:"middleName"`
	LastName      string `json:"lastName"`
	DateOfBirth   string `json:"dateOfBirth"`
	Nationality   string `json:"nationality"`
	Password      string `json:"password"`
	Confirm       string `json:"confirmPassword"`
}

// decodeEvent maps a wire envelope onto a machine event. Internal events,
// like the countdown tick and effect completions, are not accepted from the
// wire.
func decodeEvent(env eventEnvelope) (flow.Event, error) {
	switch env.Type {
	case "go_login":
		return flow.GoLogin{}, nil
	case "go_signup":
		return flow.GoSignUp{}, nil
	case "open_settings":
		return flow.OpenSettings{}, nil
	case "close_settings":
		return flow.CloseSettings{}, nil
	case "submit_login":
		return flow.SubmitLogin{Email: env.Email}, nil
	case "edit_signup":
		return flow.EditSignUp{Email: env.Email, TermsAccepted: env.TermsAccepted}, nil
	case "submit_signup":
		return flow.SubmitSignUp{}, nil
	case "set_otp_digit":
		return flow.SetOTPDigit{Index: env.Index, Value: env.Value}, nil
	case "clear_otp":
		return flow.ClearOTP{}, nil
	case "resend_code":
		return flow.ResendCode{}, nil
	case "edit_details":
		return flow.EditDetails{Form: flow.DetailsForm{
			FirstName:   env.FirstName,
			MiddleName:  env.MiddleName,
			LastName:    env.LastName,
			DateOfBirth: env.DateOfBirth,
			Nationality: env.Nationality,
			Password:    env.Password,
			Confirm:     env.Confirm,
		}}, nil
	case "submit_details":
		return flow.SubmitDetails{}, nil
	case "enroll_biometrics":
		return flow.EnrollBiometrics{}, nil
	case "skip_biometrics":
		return flow.SkipBiometrics{}, nil
	case "logout":
		return flow.Logout{}, nil
	default:
		return nil, fmt.Errorf("unknown event type %q", env.Type)
	}
}

// RegisterSessionRoutes adds the onboarding session endpoints.
func RegisterSessionRoutes(api fiber.Router, sessions *flow.Registry, resolver *i18n.Resolver, rateLimiter fiber.Handler) {
	api.Post("/sessions", func(c *fiber.Ctx) error {
		sess := sessions.Create(c.UserContext())
		return c.Status(http.StatusCreated).JSON(renderSession(c, sess, resolver))
	})

	api.Get("/sessions/:id", func(c *fiber.Ctx) error {
		sess, ok := sessions.Get(c.UserContext(), c.Params("id"))
		if !ok {
			return fiber.NewError(http.StatusNotFound, "session not found")
		}
		return c.JSON(renderSession(c, sess, resolver))
	})

	api.Post("/sessions/:id/events", rateLimiter, func(c *fiber.Ctx) error {
		sess, ok := sessions.Get(c.UserContext(), c.Params("id"))
		if !ok {
			return fiber.NewError(http.StatusNotFound, "session not found")
		}

		var env eventEnvelope
		if err := c.BodyParser(&env); err != nil {
			return fiber.NewError(http.StatusBadRequest, "invalid event payload")
		}
		ev, err := decodeEvent(env)
		if err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}

		sess.Dispatch(c.UserContext(), ev)
		return c.JSON(renderSession(c, sess, resolver))
	})

	api.Delete("/sessions/:id", func(c *fiber.Ctx) error {
		sessions.Remove(c.UserContext(), c.Params("id"))
		return c.SendStatus(http.StatusNoContent)
	})
}
