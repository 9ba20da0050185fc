package i18n

import (
	"context"
	"testing"
	"time"

	"github.com/sproutfin/sprout/internal/logging"
	"github.com/sproutfin/sprout/internal/prefs"
)

func newResolver(t *testing.T, store prefs.Store) *Resolver {
	t.Helper()
	r, err := NewResolver(store, logging.Discard())
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}
	return r
}

func TestForRequestHonorsDeviceLocaleUntilChosen(t *testing.T) {
	r := newResolver(t, prefs.NewMemoryStore())
	r.Resolve(context.Background(), "en-US")

	if lang := r.ForRequest("ja-JP"); lang != Japanese {
		t.Fatalf("device locale should select ja, got %s", lang)
	}
	if lang := r.ForRequest(""); lang != English {
		t.Fatalf("no locale should fall back to the startup resolution, got %s", lang)
	}

	if _, err := r.Change("en"); err != nil {
		t.Fatalf("change: %v", err)
	}
	if lang := r.ForRequest("ja-JP"); lang != English {
		t.Fatalf("explicit choice must outrank the device locale, got %s", lang)
	}
}

func TestForRequestHonorsPersistedChoice(t *testing.T) {
	store := prefs.NewMemoryStore()
	if err := store.Set(context.Background(), prefs.KeyLanguage, "en"); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	r := newResolver(t, store)
	r.Resolve(context.Background(), "ja-JP")
	if lang := r.ForRequest("ja-JP"); lang != English {
		t.Fatalf("persisted choice must outrank the device locale, got %s", lang)
	}
}

func TestResolvePersistedBeatsDeviceLocale(t *testing.T) {
	store := prefs.NewMemoryStore()
	if err := store.Set(context.Background(), prefs.KeyLanguage, "ja"); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	r := newResolver(t, store)
	if lang := r.Resolve(context.Background(), "en-US"); lang != Japanese {
		t.Fatalf("expected ja, got %s", lang)
	}
}

func TestResolveDeviceLocaleSubtag(t *testing.T) {
	cases := []struct {
		locale string
		want   Language
	}{
		{"ja-JP", Japanese},
		{"ja_JP", Japanese},
		{"fr-FR", English},
		{"", English},
	}
	for _, tc := range cases {
		r := newResolver(t, prefs.NewMemoryStore())
		if lang := r.Resolve(context.Background(), tc.locale); lang != tc.want {
			t.Fatalf("locale %q: expected %s, got %s", tc.locale, tc.want, lang)
		}
	}
}

func TestResolveIgnoresInvalidPersistedValue(t *testing.T) {
	store := prefs.NewMemoryStore()
	if err := store.Set(context.Background(), prefs.KeyLanguage, "de"); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	r := newResolver(t, store)
	if lang := r.Resolve(context.Background(), "ja-JP"); lang != Japanese {
		t.Fatalf("invalid persisted value should fall through to locale, got %s", lang)
	}
}

func TestChangeNotifiesSubscribersAndPersists(t *testing.T) {
	store := prefs.NewMemoryStore()
	r := newResolver(t, store)
	r.Resolve(context.Background(), "en-US")

	var observed []Language
	cancel := r.Subscribe(func(lang Language) { observed = append(observed, lang) })
	defer cancel()

	if _, err := r.Change("ja"); err != nil {
		t.Fatalf("change: %v", err)
	}
	if r.Current() != Japanese {
		t.Fatalf("live value should switch synchronously")
	}
	if len(observed) != 1 || observed[0] != Japanese {
		t.Fatalf("expected one notification for ja, got %v", observed)
	}

	waitForWrites(t, store, prefs.KeyLanguage, 1)
}

func TestChangeSameValueStillWrites(t *testing.T) {
	store := prefs.NewMemoryStore()
	r := newResolver(t, store)
	r.Resolve(context.Background(), "en-US")

	notified := 0
	cancel := r.Subscribe(func(Language) { notified++ })
	defer cancel()

	if _, err := r.Change("en"); err != nil {
		t.Fatalf("change: %v", err)
	}
	if notified != 0 {
		t.Fatalf("no-op change must not churn observers, got %d notifications", notified)
	}
	waitForWrites(t, store, prefs.KeyLanguage, 1)
}

func TestChangeRejectsUnsupportedCode(t *testing.T) {
	r := newResolver(t, prefs.NewMemoryStore())
	r.Resolve(context.Background(), "en-US")

	if _, err := r.Change("fr"); err == nil {
		t.Fatalf("expected error for unsupported language")
	}
	if r.Current() != English {
		t.Fatalf("rejected change must not alter live value")
	}
}

func TestTranslateFallsBackToEnglish(t *testing.T) {
	r := newResolver(t, prefs.NewMemoryStore())
	r.Resolve(context.Background(), "ja-JP")

	if msg := r.Translate(r.Current(), "email"); msg == "" || msg == "email" {
		t.Fatalf("expected ja translation for email, got %q", msg)
	}
	if msg := r.Translate(Japanese, "definitely-missing-key"); msg != "definitely-missing-key" {
		t.Fatalf("missing key should echo the key, got %q", msg)
	}
}

// waitForWrites polls until the store has seen at least n writes for key; the
// resolver persists in the background.
func waitForWrites(t *testing.T, store *prefs.MemoryStore, key string, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if store.Writes(key) >= n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected %d writes for %s, saw %d", n, key, store.Writes(key))
}
