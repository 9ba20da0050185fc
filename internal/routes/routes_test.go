package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/sproutfin/sprout/internal/biometric"
	"github.com/sproutfin/sprout/internal/config"
	"github.com/sproutfin/sprout/internal/flow"
	"github.com/sproutfin/sprout/internal/gateway"
	"github.com/sproutfin/sprout/internal/i18n"
	"github.com/sproutfin/sprout/internal/logging"
	"github.com/sproutfin/sprout/internal/prefs"
	"github.com/sproutfin/sprout/internal/profile"
)

type stubGateway struct {
	lookupFound bool
}

func (g *stubGateway) LookupProfileByEmail(_ context.Context, email string) (gateway.Record, error) {
	if !g.lookupFound {
		return gateway.Record{}, gateway.ErrNotFound
	}
	return gateway.Record{ID: "u1", Email: email}, nil
}

func (g *stubGateway) RequestSignInCode(context.Context, string) error { return nil }

func (g *stubGateway) VerifyCode(context.Context, string, string) error { return nil }

func (g *stubGateway) CreateProfile(context.Context, profile.Profile) error { return nil }

func setupTestApp(t *testing.T, gw flow.Gateway) (*fiber.App, *i18n.Resolver) {
	t.Helper()
	logger := logging.Discard()
	store := prefs.NewMemoryStore()

	resolver, err := i18n.NewResolver(store, logger)
	if err != nil {
		t.Fatalf("build resolver: %v", err)
	}
	resolver.Resolve(context.Background(), "en-US")

	enroller := biometric.NewManager(&biometric.StaticProvider{Supported: true, Kind: "fingerprint"}, store, logger)
	registry := flow.NewRegistry(flow.DefaultRules(), flow.Ports{Gateway: gw, Biometrics: enroller}, flow.NewMemoryRepository(), logger)
	t.Cleanup(registry.Shutdown)

	app := fiber.New()
	cfg := config.Config{AppName: "sprout", AppEnv: "dev"}
	if err := Setup(app, Deps{Cfg: cfg, Logger: logger, Resolver: resolver, Sessions: registry}); err != nil {
		t.Fatalf("setup routes: %v", err)
	}
	return app, resolver
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test %s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var decoded map[string]any
	if len(payload) > 0 {
		_ = json.Unmarshal(payload, &decoded)
	}
	return resp.StatusCode, decoded
}

func createSession(t *testing.T, app *fiber.App) string {
	t.Helper()
	status, body := doJSON(t, app, fiber.MethodPost, "/api/v1/sessions", "")
	if status != fiber.StatusCreated {
		t.Fatalf("create session: expected 201 got %d", status)
	}
	id, _ := body["id"].(string)
	if id == "" {
		t.Fatalf("create session: missing id in %v", body)
	}
	return id
}

func screenOf(t *testing.T, body map[string]any) string {
	t.Helper()
	state, _ := body["state"].(map[string]any)
	if state == nil {
		t.Fatalf("response carries no state: %v", body)
	}
	screen, _ := state["screen"].(string)
	return screen
}

func TestCreateSessionStartsAtHome(t *testing.T) {
	app, _ := setupTestApp(t, &stubGateway{})

	status, body := doJSON(t, app, fiber.MethodPost, "/api/v1/sessions", "")
	if status != fiber.StatusCreated {
		t.Fatalf("expected 201 got %d", status)
	}
	if screen := screenOf(t, body); screen != "home" {
		t.Fatalf("expected home screen, got %q", screen)
	}
	if lang, _ := body["language"].(string); lang != "en" {
		t.Fatalf("expected resolved language on the view, got %v", body["language"])
	}
}

func TestEventNavigatesAndGetReflectsIt(t *testing.T) {
	app, _ := setupTestApp(t, &stubGateway{})
	id := createSession(t, app)

	status, body := doJSON(t, app, fiber.MethodPost, "/api/v1/sessions/"+id+"/events", `{"type":"go_signup"}`)
	if status != fiber.StatusOK {
		t.Fatalf("expected 200 got %d", status)
	}
	if screen := screenOf(t, body); screen != "signup" {
		t.Fatalf("expected signup screen, got %q", screen)
	}

	status, body = doJSON(t, app, fiber.MethodGet, "/api/v1/sessions/"+id, "")
	if status != fiber.StatusOK {
		t.Fatalf("get session: expected 200 got %d", status)
	}
	if screen := screenOf(t, body); screen != "signup" {
		t.Fatalf("get must reflect dispatched events, got %q", screen)
	}
}

func TestUnknownEventTypeRejected(t *testing.T) {
	app, _ := setupTestApp(t, &stubGateway{})
	id := createSession(t, app)

	status, _ := doJSON(t, app, fiber.MethodPost, "/api/v1/sessions/"+id+"/events", `{"type":"self_destruct"}`)
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for unknown event, got %d", status)
	}

	// Internal events must never be accepted from the wire.
	status, _ = doJSON(t, app, fiber.MethodPost, "/api/v1/sessions/"+id+"/events", `{"type":"tick"}`)
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for internal event, got %d", status)
	}
}

func TestUnknownSessionIs404(t *testing.T) {
	app, _ := setupTestApp(t, &stubGateway{})

	status, _ := doJSON(t, app, fiber.MethodGet, "/api/v1/sessions/nope", "")
	if status != fiber.StatusNotFound {
		t.Fatalf("expected 404 got %d", status)
	}
	status, _ = doJSON(t, app, fiber.MethodPost, "/api/v1/sessions/nope/events", `{"type":"go_login"}`)
	if status != fiber.StatusNotFound {
		t.Fatalf("expected 404 got %d", status)
	}
}

func TestLoginErrorComesTranslated(t *testing.T) {
	app, resolver := setupTestApp(t, &stubGateway{lookupFound: false})
	id := createSession(t, app)

	doJSON(t, app, fiber.MethodPost, "/api/v1/sessions/"+id+"/events", `{"type":"go_login"}`)
	status, body := doJSON(t, app, fiber.MethodPost, "/api/v1/sessions/"+id+"/events", `{"type":"submit_login","email":"a@b.com"}`)
	if status != fiber.StatusOK {
		t.Fatalf("expected 200 got %d", status)
	}

	want := resolver.Translate(i18n.English, "noAccountForEmail")
	if got, _ := body["errorText"].(string); got != want {
		t.Fatalf("expected translated error %q, got %q", want, got)
	}
}

func doJSONLocale(t *testing.T, app *fiber.App, method, path, body, locale string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	req.Header.Set("X-Device-Locale", locale)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test %s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var decoded map[string]any
	if len(payload) > 0 {
		_ = json.Unmarshal(payload, &decoded)
	}
	return resp.StatusCode, decoded
}

func TestDeviceLocaleSelectsViewLanguage(t *testing.T) {
	app, resolver := setupTestApp(t, &stubGateway{lookupFound: false})

	status, body := doJSONLocale(t, app, fiber.MethodPost, "/api/v1/sessions", "", "ja-JP")
	if status != fiber.StatusCreated {
		t.Fatalf("create session: expected 201 got %d", status)
	}
	if lang, _ := body["language"].(string); lang != "ja" {
		t.Fatalf("expected ja view for a ja device, got %v", body["language"])
	}
	id, _ := body["id"].(string)

	doJSONLocale(t, app, fiber.MethodPost, "/api/v1/sessions/"+id+"/events", `{"type":"go_login"}`, "ja-JP")
	_, body = doJSONLocale(t, app, fiber.MethodPost, "/api/v1/sessions/"+id+"/events", `{"type":"submit_login","email":"a@b.com"}`, "ja-JP")

	want := resolver.Translate(i18n.Japanese, "noAccountForEmail")
	if got, _ := body["errorText"].(string); got != want {
		t.Fatalf("expected Japanese error %q, got %q", want, got)
	}
}

func TestChosenLanguageOutranksDeviceLocale(t *testing.T) {
	app, _ := setupTestApp(t, &stubGateway{})

	if status, _ := doJSON(t, app, fiber.MethodPut, "/api/v1/language", `{"language":"en"}`); status != fiber.StatusOK {
		t.Fatalf("change language failed")
	}

	_, body := doJSONLocale(t, app, fiber.MethodPost, "/api/v1/sessions", "", "ja-JP")
	if lang, _ := body["language"].(string); lang != "en" {
		t.Fatalf("explicit choice must win over the device locale, got %v", body["language"])
	}
}

func TestLanguageRoundTrip(t *testing.T) {
	app, _ := setupTestApp(t, &stubGateway{})

	status, body := doJSON(t, app, fiber.MethodGet, "/api/v1/language", "")
	if status != fiber.StatusOK {
		t.Fatalf("expected 200 got %d", status)
	}
	if lang, _ := body["language"].(string); lang != "en" {
		t.Fatalf("expected en, got %v", body["language"])
	}

	status, body = doJSON(t, app, fiber.MethodPut, "/api/v1/language", `{"language":"ja"}`)
	if status != fiber.StatusOK {
		t.Fatalf("change language: expected 200 got %d", status)
	}
	if lang, _ := body["language"].(string); lang != "ja" {
		t.Fatalf("expected ja after change, got %v", body["language"])
	}

	status, _ = doJSON(t, app, fiber.MethodPut, "/api/v1/language", `{"language":"xx"}`)
	if status != fiber.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for unsupported code, got %d", status)
	}
}

func TestDeleteSessionForgetsIt(t *testing.T) {
	app, _ := setupTestApp(t, &stubGateway{})
	id := createSession(t, app)

	status, _ := doJSON(t, app, fiber.MethodDelete, "/api/v1/sessions/"+id, "")
	if status != fiber.StatusNoContent {
		t.Fatalf("expected 204 got %d", status)
	}
	status, _ = doJSON(t, app, fiber.MethodGet, "/api/v1/sessions/"+id, "")
	if status != fiber.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", status)
	}
}

func TestHealthzWithoutRedisInDev(t *testing.T) {
	app, _ := setupTestApp(t, &stubGateway{})

	status, body := doJSON(t, app, fiber.MethodGet, "/healthz", "")
	if status != fiber.StatusOK {
		t.Fatalf("expected 200 got %d", status)
	}
	if body["language"] != "en" {
		t.Fatalf("expected language on health payload, got %v", body)
	}
}
