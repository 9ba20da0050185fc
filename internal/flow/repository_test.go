package flow

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/sproutfin/sprout/internal/logging"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestRedisRepositoryRoundTrip(t *testing.T) {
	repo := NewRedisRepository(newTestRedis(t), time.Hour)
	ctx := context.Background()

	state := NewState()
	state.Screen = ScreenVerifyOTP
	state.Email = "a@b.com"
	state.ResendIn = 42
	snap := Snapshot{ID: "s-1", State: state, UpdatedAt: time.Now().UTC()}

	if err := repo.Save(ctx, snap); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := repo.Find(ctx, "s-1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.State.Screen != ScreenVerifyOTP || got.State.Email != "a@b.com" || got.State.ResendIn != 42 {
		t.Fatalf("snapshot state lost fields: %+v", got.State)
	}

	if err := repo.Delete(ctx, "s-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.Find(ctx, "s-1"); !errors.Is(err, ErrSnapshotNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestRedisRepositoryMissingSession(t *testing.T) {
	repo := NewRedisRepository(newTestRedis(t), 0)
	if _, err := repo.Find(context.Background(), "nope"); !errors.Is(err, ErrSnapshotNotFound) {
		t.Fatalf("expected ErrSnapshotNotFound, got %v", err)
	}
}

func TestSnapshotNeverCarriesPassword(t *testing.T) {
	client := newTestRedis(t)
	repo := NewRedisRepository(client, time.Hour)
	ctx := context.Background()

	state := NewState()
	state.Screen = ScreenPersonalDetails
	state.Details.Password = "Ajman@2023"
	state.Details.Confirm = "Ajman@2023"
	if err := repo.Save(ctx, Snapshot{ID: "s-2", State: state, UpdatedAt: time.Now().UTC()}); err != nil {
		t.Fatalf("save: %v", err)
	}

	raw, err := client.Get(ctx, sessionPrefix+"s-2").Result()
	if err != nil {
		t.Fatalf("read raw: %v", err)
	}
	if strings.Contains(raw, "Ajman@2023") {
		t.Fatalf("password leaked into stored snapshot: %s", raw)
	}

	got, err := repo.Find(ctx, "s-2")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.State.Details.Password != "" {
		t.Fatalf("restored snapshot must not hold a password")
	}
}

func TestMemoryRepositoryIsolation(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	state := NewState()
	state.FieldErrors = map[string]string{"firstName": "First name is required"}
	if err := repo.Save(ctx, Snapshot{ID: "s-3", State: state}); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := repo.Find(ctx, "s-3")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	got.State.FieldErrors["firstName"] = "mutated"

	again, err := repo.Find(ctx, "s-3")
	if err != nil {
		t.Fatalf("find again: %v", err)
	}
	if again.State.FieldErrors["firstName"] != "First name is required" {
		t.Fatalf("stored snapshot must not alias caller maps")
	}
}

func TestRegistryRestoresSnapshotAfterRestart(t *testing.T) {
	repo := NewRedisRepository(newTestRedis(t), time.Hour)
	logger := logging.Discard()
	ports := Ports{Gateway: &fakeGateway{}, Biometrics: &fakeBiometrics{}}
	ctx := context.Background()

	first := NewRegistry(DefaultRules(), ports, repo, logger)
	first.TickEvery = time.Hour // keep the countdown quiet during the test
	sess := first.Create(ctx)
	sess.Dispatch(ctx, GoSignUp{})
	sess.Dispatch(ctx, EditSignUp{Email: "a@b.com", TermsAccepted: true})
	sess.Dispatch(ctx, SubmitSignUp{})
	id := sess.ID
	first.Shutdown()

	second := NewRegistry(DefaultRules(), ports, repo, logger)
	second.TickEvery = time.Hour
	restored, ok := second.Get(ctx, id)
	if !ok {
		t.Fatalf("expected session restored from snapshot")
	}
	defer second.Shutdown()

	state := restored.State()
	if state.Screen != ScreenVerifyOTP || state.Email != "a@b.com" {
		t.Fatalf("restored state wrong: %+v", state)
	}
	if state.Busy() {
		t.Fatalf("restored sessions must not carry a dead in-flight operation")
	}
}

func TestRegistryGetUnknownSession(t *testing.T) {
	reg := NewRegistry(DefaultRules(), Ports{Gateway: &fakeGateway{}, Biometrics: &fakeBiometrics{}}, NewMemoryRepository(), logging.Discard())
	if _, ok := reg.Get(context.Background(), "missing"); ok {
		t.Fatalf("unknown id must not produce a session")
	}
}

func TestRegistryRemoveDeletesSnapshot(t *testing.T) {
	repo := NewMemoryRepository()
	reg := NewRegistry(DefaultRules(), Ports{Gateway: &fakeGateway{}, Biometrics: &fakeBiometrics{}}, repo, logging.Discard())
	ctx := context.Background()

	sess := reg.Create(ctx)
	reg.Remove(ctx, sess.ID)

	if _, err := repo.Find(ctx, sess.ID); !errors.Is(err, ErrSnapshotNotFound) {
		t.Fatalf("expected snapshot gone after remove, got %v", err)
	}
	if _, ok := reg.Get(ctx, sess.ID); ok {
		t.Fatalf("removed session must not be retrievable")
	}
}
