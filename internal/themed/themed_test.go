package themed

import (
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/opencode-ai/themekit/internal/applicator"
	"github.com/opencode-ai/themekit/internal/config"
	"github.com/opencode-ai/themekit/internal/models"
	"github.com/opencode-ai/themekit/internal/registry"
	"github.com/opencode-ai/themekit/internal/store"
	"github.com/opencode-ai/themekit/internal/theme"
)

func newFacade(t *testing.T, opts ...store.Option) (*theme.Facade, *applicator.MemoryDocument) {
	t.Helper()
	reg := registry.Builtin()
	doc := applicator.NewMemoryDocument()
	opts = append([]store.Option{store.WithLogger(zerolog.Nop())}, opts...)
	st := store.New(reg, store.NewMemoryStorage(), opts...)
	app := applicator.New(doc, applicator.WithTransitionDelay(time.Millisecond), applicator.WithLogger(zerolog.Nop()))
	return theme.New(reg, st, app, theme.WithLogger(zerolog.Nop())), doc
}

// startDaemon serves a daemon over bufconn and returns a connected client.
func startDaemon(t *testing.T, opts Options, storeOpts ...store.Option) (*Client, *theme.Facade) {
	t.Helper()
	facade, doc := newFacade(t, storeOpts...)
	if opts.Document == nil {
		opts.Document = doc
	}
	opts.Version = "test-version"

	daemon, err := New(config.DefaultConfig(), facade, zerolog.Nop(), opts)
	require.NoError(t, err)

	listener := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- daemon.Serve(ctx, listener) }()

	client, err := Dial("passthrough:///bufnet", grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return listener.DialContext(ctx)
	}))
	require.NoError(t, err)

	t.Cleanup(func() {
		client.Close()
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("daemon did not stop")
		}
	})
	return client, facade
}

func TestNewRequiresFacade(t *testing.T) {
	_, err := New(config.DefaultConfig(), nil, zerolog.Nop(), Options{})
	require.ErrorIs(t, err, ErrNoFacade)

	_, err = New(nil, nil, zerolog.Nop(), Options{})
	require.Error(t, err)
}

func TestNewDefaultsAddress(t *testing.T) {
	facade, _ := newFacade(t)
	cfg := config.DefaultConfig()
	cfg.Daemon.Host = ""
	cfg.Daemon.Port = 0

	daemon, err := New(cfg, facade, zerolog.Nop(), Options{})
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:50061", daemon.bindAddr())
	assert.NotNil(t, daemon.Server())
	assert.Equal(t, theme.StateSteady, facade.Lifecycle())
}

func TestPingAndState(t *testing.T) {
	client, _ := startDaemon(t, Options{})
	ctx := context.Background()

	ping, err := client.Ping(ctx)
	require.NoError(t, err)
	assert.Equal(t, "test-version", ping.Version)
	assert.True(t, ping.Hydrated)

	state, err := client.GetState(ctx)
	require.NoError(t, err)
	assert.Equal(t, registry.DefaultThemeID, state.ThemeID)
	assert.Equal(t, "Neutral Pro", state.ThemeName)
	assert.True(t, state.IsDark)
	assert.Equal(t, models.DefaultCustomization(), state.Customization)
}

func TestListThemes(t *testing.T) {
	client, _ := startDaemon(t, Options{})
	themes, err := client.ListThemes(context.Background())
	require.NoError(t, err)

	ids := make([]string, 0, len(themes))
	for _, info := range themes {
		ids = append(ids, info.ID)
	}
	assert.Equal(t, registry.Builtin().IDs(), ids)
}

func TestSetThemeOutcomes(t *testing.T) {
	client, facade := startDaemon(t, Options{})
	ctx := context.Background()

	state, err := client.SetTheme(ctx, "ocean")
	require.NoError(t, err)
	assert.Equal(t, "ocean", state.ThemeID)
	assert.Equal(t, store.ThemeApplied.String(), state.Outcome)
	assert.Equal(t, "ocean", facade.Theme())

	state, err = client.SetTheme(ctx, "missing")
	require.NoError(t, err)
	assert.Equal(t, registry.DefaultThemeID, state.ThemeID)
	assert.Equal(t, store.ThemeFellBack.String(), state.Outcome)

	_, err = client.SetTheme(ctx, "  ")
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestSetThemeLocked(t *testing.T) {
	client, _ := startDaemon(t, Options{}, store.WithLockedTheme("forest"))
	state, err := client.SetTheme(context.Background(), "ocean")
	require.NoError(t, err)
	assert.Equal(t, "forest", state.ThemeID)
	assert.Equal(t, "forest", state.LockedTheme)
	assert.Equal(t, store.ThemeLockIgnored.String(), state.Outcome)
}

func TestMutators(t *testing.T) {
	client, facade := startDaemon(t, Options{})
	ctx := context.Background()

	state, err := client.ToggleDarkMode(ctx)
	require.NoError(t, err)
	assert.False(t, state.IsDark)

	radius := 2.0
	primary := models.HSL{H: 10, S: 20, L: 30}
	state, err = client.UpdateCustomization(ctx, models.CustomizationPatch{BorderRadius: &radius, PrimaryColor: &primary})
	require.NoError(t, err)
	assert.Equal(t, 2.0, state.Customization.BorderRadius)
	assert.Equal(t, primary, state.Customization.PrimaryColor)
	assert.Equal(t, "1rem", facade.Variables()[models.VarRadius])

	bad := -1.0
	_, err = client.UpdateCustomization(ctx, models.CustomizationPatch{FontSize: &bad})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	state, err = client.ResetCustomization(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultCustomization(), state.Customization)
}

func TestGetCSS(t *testing.T) {
	client, facade := startDaemon(t, Options{})
	facade.ForceApply()
	time.Sleep(20 * time.Millisecond)

	css, err := client.GetCSS(context.Background())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(css.CSS, ":root {"))
	assert.Contains(t, css.CSS, "--font-size-multiplier: 1;")
	assert.True(t, css.Variables.Equal(facade.Variables()))
}

func TestGetCSSWithoutDocument(t *testing.T) {
	facade, _ := newFacade(t)
	server, err := NewServer(facade, zerolog.Nop())
	require.NoError(t, err)

	resp, err := server.GetCSS(context.Background(), &emptypb.Empty{})
	require.NoError(t, err)

	var css CSS
	require.NoError(t, fromStruct(resp, &css))
	assert.Contains(t, css.CSS, "--radius: 0.5rem;")
}

func TestRateLimitedCalls(t *testing.T) {
	limiter := NewRateLimiter(
		WithNow(func() time.Time { return time.Unix(0, 0) }),
		WithMethodLimits(map[string]RateLimitConfig{
			MethodToggleDarkMode: {RequestsPerSecond: 1, BurstSize: 2},
		}),
	)
	client, _ := startDaemon(t, Options{RateLimiter: limiter})
	ctx := context.Background()

	_, err := client.ToggleDarkMode(ctx)
	require.NoError(t, err)
	_, err = client.ToggleDarkMode(ctx)
	require.NoError(t, err)
	_, err = client.ToggleDarkMode(ctx)
	assert.Equal(t, codes.ResourceExhausted, status.Code(err))

	_, err = client.GetState(ctx)
	require.NoError(t, err)
}

func TestRateLimiterRefill(t *testing.T) {
	now := time.Unix(0, 0)
	limiter := NewRateLimiter(
		WithNow(func() time.Time { return now }),
		WithMethodLimits(map[string]RateLimitConfig{"/x": {RequestsPerSecond: 10, BurstSize: 1}}),
	)

	assert.True(t, limiter.Allow("/x"))
	assert.False(t, limiter.Allow("/x"))

	now = now.Add(100 * time.Millisecond)
	assert.True(t, limiter.Allow("/x"))
	assert.True(t, limiter.Allow("/unlimited"))
}

func TestRunReturnsOnCanceledContext(t *testing.T) {
	facade, _ := newFacade(t)
	daemon, err := New(config.DefaultConfig(), facade, zerolog.Nop(), Options{Port: 50098})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- daemon.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after context cancellation")
	}
}
