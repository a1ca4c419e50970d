package store

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/opencode-ai/themekit/internal/models"
	"github.com/opencode-ai/themekit/internal/registry"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, storage Storage, opts ...Option) *Store {
	t.Helper()
	opts = append([]Option{WithLogger(zerolog.Nop())}, opts...)
	return New(registry.Builtin(), storage, opts...)
}

func defaultState() models.ThemeState {
	return models.ThemeState{
		SelectedThemeID: registry.DefaultThemeID,
		IsDark:          true,
		Customization:   models.DefaultCustomization(),
	}
}

func TestFreshStoreUsesDefaults(t *testing.T) {
	s := newTestStore(t, NewMemoryStorage())

	assert.False(t, s.HasHydrated())
	assert.Equal(t, defaultState(), s.State())
	assert.True(t, s.HasHydrated())
}

func TestCorruptStorageFallsBackToDefaults(t *testing.T) {
	cases := map[string]string{
		"invalid json":      `{"themeId": "ocean",`,
		"not an object":     `[1,2,3]`,
		"null":              `null`,
		"wrong field types": `{"version":1,"themeId":"ocean","isDark":"yes"}`,
		"wrong color type":  `{"version":1,"themeId":"ocean","isDark":false,"customization":{"primaryColor":"red"}}`,
		"unknown theme":     `{"version":1,"themeId":"vaporwave","isDark":false}`,
		"future version":    `{"version":7,"themeId":"ocean","isDark":false}`,
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			storage := NewMemoryStorage()
			require.NoError(t, storage.Save(DefaultKey, []byte(raw)))

			s := newTestStore(t, storage)
			require.NotPanics(t, s.Rehydrate)
			assert.Equal(t, defaultState(), s.State())
			assert.True(t, s.HasHydrated())
		})
	}
}

type brokenStorage struct{}

func (brokenStorage) Load(string) ([]byte, error) { return nil, errors.New("disk on fire") }
func (brokenStorage) Save(string, []byte) error   { return errors.New("disk on fire") }
func (brokenStorage) Remove(string) error         { return errors.New("disk on fire") }

func TestStorageFailuresAreNeverSurfaced(t *testing.T) {
	s := newTestStore(t, brokenStorage{})

	assert.Equal(t, defaultState(), s.State())

	assert.Equal(t, ThemeApplied, s.SetTheme("ocean"))
	assert.False(t, s.ToggleDarkMode())
	s.Reset()
	assert.Equal(t, defaultState(), s.State())
}

func TestRehydrateRestoresRecord(t *testing.T) {
	storage := NewMemoryStorage()
	raw := `{"version":1,"themeId":"forest","isDark":false,"customization":{
		"primaryColor":{"h":10,"s":20,"l":30},
		"secondaryColor":{"h":40,"s":50,"l":60},
		"accentColor":{"h":70,"s":80,"l":90},
		"borderRadius":1.5,"fontSize":1.25}}`
	require.NoError(t, storage.Save(DefaultKey, []byte(raw)))

	s := newTestStore(t, storage)
	state := s.State()

	assert.Equal(t, "forest", state.SelectedThemeID)
	assert.False(t, state.IsDark)
	assert.Equal(t, models.Customization{
		PrimaryColor:   models.HSL{H: 10, S: 20, L: 30},
		SecondaryColor: models.HSL{H: 40, S: 50, L: 60},
		AccentColor:    models.HSL{H: 70, S: 80, L: 90},
		BorderRadius:   1.5,
		FontSize:       1.25,
	}, state.Customization)
}

func TestRehydrateAcceptsUnversionedRecord(t *testing.T) {
	storage := NewMemoryStorage()
	raw := `{"themeId":"ocean","isDark":false,"customization":{
		"primaryColor":{"h":10,"s":20,"l":30},
		"secondaryColor":{"h":40,"s":50,"l":60},
		"accentColor":{"h":70,"s":80,"l":90},
		"borderRadius":2,"fontSize":1}}`
	require.NoError(t, storage.Save(DefaultKey, []byte(raw)))

	state := newTestStore(t, storage).State()

	assert.Equal(t, "ocean", state.SelectedThemeID)
	assert.False(t, state.IsDark)
	assert.Equal(t, 2.0, state.Customization.BorderRadius)
	assert.Equal(t, models.HSL{H: 10, S: 20, L: 30}, state.Customization.PrimaryColor)
}

func TestWrittenRecordCarriesVersion(t *testing.T) {
	storage := NewMemoryStorage()
	s := newTestStore(t, storage)
	s.SetTheme("forest")

	data, err := storage.Load(DefaultKey)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"version":1`)
	assert.Contains(t, string(data), `"themeId":"forest"`)
}

func TestRehydrateFillsMissingCustomizationFields(t *testing.T) {
	storage := NewMemoryStorage()
	raw := `{"version":1,"themeId":"ocean","isDark":false,"customization":{
		"primaryColor":{"h":10,"s":20},
		"accentColor":{"h":999,"s":20,"l":30},
		"borderRadius":-2,
		"fontSize":1.1}}`
	require.NoError(t, storage.Save(DefaultKey, []byte(raw)))

	state := newTestStore(t, storage).State()
	defaults := models.DefaultCustomization()

	assert.Equal(t, "ocean", state.SelectedThemeID)
	assert.Equal(t, defaults.PrimaryColor, state.Customization.PrimaryColor)
	assert.Equal(t, defaults.SecondaryColor, state.Customization.SecondaryColor)
	assert.Equal(t, defaults.AccentColor, state.Customization.AccentColor)
	assert.Equal(t, defaults.BorderRadius, state.Customization.BorderRadius)
	assert.Equal(t, 1.1, state.Customization.FontSize)
}

func TestRehydrateMissingIsDarkDefaultsToDark(t *testing.T) {
	storage := NewMemoryStorage()
	require.NoError(t, storage.Save(DefaultKey, []byte(`{"version":1,"themeId":"ocean"}`)))

	state := newTestStore(t, storage).State()
	assert.Equal(t, "ocean", state.SelectedThemeID)
	assert.True(t, state.IsDark)
	assert.Equal(t, models.DefaultCustomization(), state.Customization)
}

func TestHydrationCompletesOnceAndNeverRegresses(t *testing.T) {
	s := newTestStore(t, NewMemoryStorage())

	select {
	case <-s.Hydrated():
		t.Fatal("hydrated channel closed before first access")
	default:
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Rehydrate()
		}()
	}
	wg.Wait()

	select {
	case <-s.Hydrated():
	case <-time.After(time.Second):
		t.Fatal("hydration did not complete")
	}

	s.SetTheme("ocean")
	s.ToggleDarkMode()
	s.ResetCustomization()
	s.Reset()
	assert.True(t, s.HasHydrated())
}

func TestMutationsPersistFullRecord(t *testing.T) {
	storage := NewMemoryStorage()
	s := newTestStore(t, storage)

	s.SetTheme("sunset")
	s.SetIsDark(false)
	radius := 2.0
	s.UpdateCustomization(models.CustomizationPatch{BorderRadius: &radius})
	assert.Equal(t, 3, storage.Writes())

	reloaded := newTestStore(t, storage).State()
	assert.Equal(t, s.State(), reloaded)
	assert.Equal(t, "sunset", reloaded.SelectedThemeID)
	assert.False(t, reloaded.IsDark)
	assert.Equal(t, 2.0, reloaded.Customization.BorderRadius)
}

func TestSetThemeOutcomes(t *testing.T) {
	s := newTestStore(t, NewMemoryStorage())

	assert.Equal(t, ThemeApplied, s.SetTheme("ocean"))
	assert.Equal(t, ThemeUnchanged, s.SetTheme("ocean"))
	assert.Equal(t, ThemeFellBack, s.SetTheme("nope"))
	assert.Equal(t, registry.DefaultThemeID, s.State().SelectedThemeID)
}

func TestLockedThemeIgnoresOtherIDs(t *testing.T) {
	storage := NewMemoryStorage()
	s := newTestStore(t, storage, WithLockedTheme("forest"))

	assert.Equal(t, "forest", s.State().SelectedThemeID)

	for _, id := range []string{"ocean", "sunset", "paper", registry.DefaultThemeID, "unknown", ""} {
		assert.Equal(t, ThemeLockIgnored, s.SetTheme(id), id)
		assert.Equal(t, "forest", s.State().SelectedThemeID, id)
	}
	assert.Zero(t, storage.Writes(), "ignored requests must not write")

	assert.Equal(t, ThemeUnchanged, s.SetTheme("forest"))
	assert.Equal(t, "forest", s.LockedTheme())
}

func TestLockedThemeRejectsPersistedOtherTheme(t *testing.T) {
	storage := NewMemoryStorage()
	require.NoError(t, storage.Save(DefaultKey, []byte(`{"version":1,"themeId":"ocean","isDark":false}`)))

	s := newTestStore(t, storage, WithLockedTheme("forest"))
	state := s.State()
	assert.Equal(t, "forest", state.SelectedThemeID)
	assert.True(t, state.IsDark)
}

func TestLockedToUnknownThemeLocksToDefault(t *testing.T) {
	s := newTestStore(t, NewMemoryStorage(), WithLockedTheme("ghost"))
	assert.Equal(t, registry.DefaultThemeID, s.LockedTheme())
	assert.Equal(t, ThemeLockIgnored, s.SetTheme("ocean"))
}

func TestWithDefaultTheme(t *testing.T) {
	s := newTestStore(t, NewMemoryStorage(), WithDefaultTheme("ocean"))
	assert.Equal(t, "ocean", s.State().SelectedThemeID)

	s = newTestStore(t, NewMemoryStorage(), WithDefaultTheme("ghost"))
	assert.Equal(t, registry.DefaultThemeID, s.State().SelectedThemeID)
}

func TestUpdateCustomizationIsIdempotent(t *testing.T) {
	s := newTestStore(t, NewMemoryStorage())
	primary := models.HSL{H: 1, S: 2, L: 3}
	font := 1.2
	patch := models.CustomizationPatch{PrimaryColor: &primary, FontSize: &font}

	first := s.UpdateCustomization(patch)
	second := s.UpdateCustomization(patch)

	assert.Equal(t, first, second)
	expected := models.DefaultCustomization()
	expected.PrimaryColor = primary
	expected.FontSize = font
	assert.Equal(t, expected, s.State().Customization)
}

func TestToggleDarkModeTwiceRestores(t *testing.T) {
	s := newTestStore(t, NewMemoryStorage())
	before := s.State()
	s.ToggleDarkMode()
	s.ToggleDarkMode()
	assert.Equal(t, before, s.State())
}

func TestResetClearsStorage(t *testing.T) {
	storage := NewMemoryStorage()
	s := newTestStore(t, storage)
	s.SetTheme("paper")
	s.ResetCustomization()

	s.Reset()

	_, err := storage.Load(DefaultKey)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, defaultState(), s.State())
	assert.True(t, s.HasHydrated())
}

func TestCustomKey(t *testing.T) {
	storage := NewMemoryStorage()
	s := newTestStore(t, storage, WithKey("tenant:theme"))
	s.SetTheme("ocean")

	_, err := storage.Load("tenant:theme")
	assert.NoError(t, err)
	_, err = storage.Load(DefaultKey)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStorageRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")
	storage := NewFileStorage(dir)

	_, err := storage.Load(DefaultKey)
	require.ErrorIs(t, err, ErrNotFound)

	s := newTestStore(t, storage)
	s.SetTheme("forest")
	s.SetIsDark(false)

	assert.FileExists(t, storage.Path(DefaultKey))
	assert.Equal(t, "themekit_theme-config.json", filepath.Base(storage.Path(DefaultKey)))

	state := newTestStore(t, NewFileStorage(dir)).State()
	assert.Equal(t, "forest", state.SelectedThemeID)
	assert.False(t, state.IsDark)

	require.NoError(t, storage.Remove(DefaultKey))
	require.NoError(t, storage.Remove(DefaultKey))
}
