package sqlite

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/sleepwatch/internal/constants"
	"github.com/julianstephens/sleepwatch/internal/models"
	"github.com/julianstephens/sleepwatch/internal/storage"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), "nested", "sleepwatch.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreSetGetDelete(t *testing.T) {
	store := setupTestStore(t)

	if _, ok, err := store.Get(constants.KeyTemperature); err != nil || ok {
		t.Fatalf("Get on empty store = (%v, %v), want absent", ok, err)
	}

	err := store.Set(map[string]string{
		constants.KeyTemperature: "21.5",
		constants.KeyHumidity:    "55",
	})
	if err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	v, ok, err := store.Get(constants.KeyTemperature)
	if err != nil || !ok || v != "21.5" {
		t.Errorf("Get(temperature) = (%q, %v, %v), want 21.5", v, ok, err)
	}

	// Last write wins.
	if err := store.Set(map[string]string{constants.KeyTemperature: "19"}); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	if v, _, _ := store.Get(constants.KeyTemperature); v != "19" {
		t.Errorf("Get(temperature) = %q after overwrite, want 19", v)
	}

	if err := store.Delete(constants.KeyTemperature, "missing"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, ok, _ := store.Get(constants.KeyTemperature); ok {
		t.Error("temperature should be gone after Delete")
	}
	if _, ok, _ := store.Get(constants.KeyHumidity); !ok {
		t.Error("humidity should survive deleting another key")
	}
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sleepwatch.db")
	first := NewStore(path)
	if err := first.Init(); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	if err := first.Set(map[string]string{constants.KeyAlarmTime: "3600"}); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	first.Close()

	second := NewStore(path)
	if err := second.Load(); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	defer second.Close()

	if v, ok, _ := second.Get(constants.KeyAlarmTime); !ok || v != "3600" {
		t.Errorf("Get(alarm_time) = (%q, %v), want 3600", v, ok)
	}
}

func TestLoadUninitialized(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "absent.db"))
	if err := store.Load(); !errors.Is(err, storage.ErrNotInitialized) {
		t.Errorf("Load() error = %v, want ErrNotInitialized", err)
	}
}

func TestLoadRejectsNewerSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sleepwatch.db")
	store := NewStore(path)
	if err := store.Init(); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	runner, err := store.Runner()
	if err != nil {
		t.Fatalf("Runner() failed: %v", err)
	}
	if err := runner.SetVersion(99); err != nil {
		t.Fatalf("SetVersion failed: %v", err)
	}
	store.Close()

	reopened := NewStore(path)
	defer reopened.Close()
	if err := reopened.Load(); err == nil {
		t.Error("Load() should reject a schema newer than the build")
	}
}

func TestCachedStateRoundTrip(t *testing.T) {
	store := setupTestStore(t)
	today := models.Date{Year: 2024, Month: 3, Day: 10}
	target := time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC)

	alarm := models.AlarmState{OffsetSeconds: 82800, Hour: 9, Minute: 0, Timestamp: target}
	if err := storage.SaveAlarm(store, alarm); err != nil {
		t.Fatalf("SaveAlarm() failed: %v", err)
	}
	if err := storage.SaveRatedToday(store, true, today); err != nil {
		t.Fatalf("SaveRatedToday() failed: %v", err)
	}

	cached, err := storage.LoadCached(store, today)
	if err != nil {
		t.Fatalf("LoadCached() failed: %v", err)
	}
	if cached.Alarm.OffsetSeconds != 82800 || cached.Alarm.Hour != 9 || !cached.Alarm.Timestamp.Equal(target) {
		t.Errorf("cached alarm = %+v, want %+v", cached.Alarm, alarm)
	}
	if !cached.HasRatedToday {
		t.Error("rated flag should be restored on the same day")
	}

	if err := storage.ClearAlarm(store); err != nil {
		t.Fatalf("ClearAlarm() failed: %v", err)
	}
	for _, key := range constants.AlarmKeys {
		if _, ok, _ := store.Get(key); ok {
			t.Errorf("%s should be removed by ClearAlarm", key)
		}
	}
}
