package i18n

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sproutfin/sprout/internal/prefs"
)

// Resolver owns the process-wide active language. It is the single writer;
// everything else observes it through Current, T or Subscribe.
type Resolver struct {
	store  prefs.Store
	logger *slog.Logger
	cat    catalog

	mu      sync.RWMutex
	current Language
	ready   bool
	// chosen marks an explicit selection (persisted or via Change), which
	// outranks any device-reported locale.
	chosen  bool
	subs    map[int]func(Language)
	nextSub int
}

// NewResolver builds a Resolver over the given preference store. Resolve must
// be called before any consumer reads the language.
func NewResolver(store prefs.Store, logger *slog.Logger) (*Resolver, error) {
	cat, err := loadCatalog()
	if err != nil {
		return nil, err
	}
	return &Resolver{
		store:  store,
		logger: logger,
		cat:    cat,
		subs:   map[int]func(Language){},
	}, nil
}

// Resolve determines the active language: persisted valid choice first, then
// the device locale's primary subtag, then the English fallback. It is the
// startup gate; the server must not accept traffic before it returns.
func (r *Resolver) Resolve(ctx context.Context, deviceLocale string) Language {
	lang := FromLocale(deviceLocale)
	chosen := false
	if stored, ok := prefs.ReadLanguage(ctx, r.store, r.logger); ok {
		if parsed, valid := Parse(stored); valid {
			lang = parsed
			chosen = true
		} else {
			r.logger.Warn("ignoring invalid persisted language", "value", stored)
		}
	}

	r.mu.Lock()
	r.current = lang
	r.chosen = chosen
	r.ready = true
	r.mu.Unlock()

	r.logger.Info("language resolved", "language", string(lang), "device_locale", deviceLocale)
	return lang
}

// Ready reports whether Resolve has completed.
func (r *Resolver) Ready() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ready
}

// Current returns the active language.
func (r *Resolver) Current() Language {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// ForRequest resolves the language for one request: an explicit selection
// wins, then the locale the device reported, then the startup resolution.
func (r *Resolver) ForRequest(deviceLocale string) Language {
	r.mu.RLock()
	current, chosen := r.current, r.chosen
	r.mu.RUnlock()
	if chosen || deviceLocale == "" {
		return current
	}
	return FromLocale(deviceLocale)
}

// Translate translates key in an explicit language, for callers rendering on
// behalf of a request or session rather than the process default.
func (r *Resolver) Translate(lang Language, key string) string {
	return r.cat.lookup(lang, key)
}

// Change switches the live language synchronously and persists the choice in
// the background. A persistence failure never rolls back the live value, and
// changing to the already-active language still performs the write.
func (r *Resolver) Change(code string) (Language, error) {
	lang, ok := Parse(code)
	if !ok {
		return "", fmt.Errorf("unsupported language %q", code)
	}

	r.mu.Lock()
	changed := r.current != lang
	r.current = lang
	r.chosen = true
	subs := make([]func(Language), 0, len(r.subs))
	for _, fn := range r.subs {
		subs = append(subs, fn)
	}
	r.mu.Unlock()

	if changed {
		for _, fn := range subs {
			fn(lang)
		}
	}

	go prefs.BestEffortSet(context.Background(), r.store, prefs.KeyLanguage, string(lang), r.logger)

	return lang, nil
}

// Subscribe registers an observer invoked on every effective language change.
// The returned function cancels the subscription.
func (r *Resolver) Subscribe(fn func(Language)) func() {
	r.mu.Lock()
	id := r.nextSub
	r.nextSub++
	r.subs[id] = fn
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.subs, id)
		r.mu.Unlock()
	}
}
