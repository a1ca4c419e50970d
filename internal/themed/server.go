package themed

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/opencode-ai/themekit/internal/applicator"
	"github.com/opencode-ai/themekit/internal/models"
	"github.com/opencode-ai/themekit/internal/theme"
)

// ErrNoFacade is returned when a server is built without a facade.
var ErrNoFacade = errors.New("theme facade is required")

// Server implements ThemeServiceServer on top of a theme.Facade.
type Server struct {
	facade    *theme.Facade
	document  *applicator.MemoryDocument
	logger    zerolog.Logger
	startedAt time.Time
	version   string
}

var _ ThemeServiceServer = (*Server)(nil)

// ServerOption configures the Server.
type ServerOption func(*Server)

// WithVersion sets the daemon version.
func WithVersion(version string) ServerOption {
	return func(s *Server) {
		s.version = version
	}
}

// WithDocument makes GetCSS render the document the facade applies to,
// including any active transition suppression rule.
func WithDocument(doc *applicator.MemoryDocument) ServerOption {
	return func(s *Server) {
		s.document = doc
	}
}

// NewServer creates a gRPC service backed by facade.
func NewServer(facade *theme.Facade, logger zerolog.Logger, opts ...ServerOption) (*Server, error) {
	if facade == nil {
		return nil, ErrNoFacade
	}

	s := &Server{
		facade:    facade,
		logger:    logger,
		startedAt: time.Now(),
		version:   "dev",
	}
	for _, opt := range opts {
		opt(s)
	}

	facade.Mount()
	return s, nil
}

// Ping reports liveness.
func (s *Server) Ping(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return reply(PingReply{
		Version:   s.version,
		StartedAt: s.startedAt.UTC(),
		Hydrated:  s.facade.HasHydrated(),
	})
}

// GetState returns the current theme state.
func (s *Server) GetState(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return reply(s.state(""))
}

// ListThemes returns every registered theme in registry order.
func (s *Server) ListThemes(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	defs := s.facade.Themes()
	list := ThemeList{Themes: make([]ThemeInfo, 0, len(defs))}
	for _, def := range defs {
		list.Themes = append(list.Themes, ThemeInfo{
			ID:               def.ID,
			Name:             def.Name,
			SupportsDarkMode: def.SupportsDarkMode,
			PreviewColors:    def.PreviewColors,
		})
	}
	return reply(list)
}

// SetTheme selects a theme. Unknown ids fall back to the default and locked
// installations ignore the request; both are reported in outcome.
func (s *Server) SetTheme(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in SetThemeRequest
	if err := fromStruct(req, &in); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid request: %v", err)
	}
	if strings.TrimSpace(in.ThemeID) == "" {
		return nil, status.Error(codes.InvalidArgument, "themeId is required")
	}

	outcome := s.facade.SelectTheme(in.ThemeID)
	s.logger.Debug().Str("requested", in.ThemeID).Str("outcome", outcome.String()).Msg("set theme")
	return reply(s.state(outcome.String()))
}

// ToggleDarkMode flips dark mode.
func (s *Server) ToggleDarkMode(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	s.facade.ToggleDarkMode()
	return reply(s.state(""))
}

// UpdateCustomization merges a partial customization.
func (s *Server) UpdateCustomization(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var patch models.CustomizationPatch
	if err := fromStruct(req, &patch); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid customization: %v", err)
	}
	if err := validatePatch(patch); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	s.facade.UpdateCustomization(patch)
	return reply(s.state(""))
}

func validatePatch(patch models.CustomizationPatch) error {
	errs := &models.ValidationErrors{}
	colors := []struct {
		field string
		value *models.HSL
	}{
		{"primaryColor", patch.PrimaryColor},
		{"secondaryColor", patch.SecondaryColor},
		{"accentColor", patch.AccentColor},
	}
	for _, c := range colors {
		if c.value != nil && !c.value.Valid() {
			errs.AddMessage(c.field, "hue must be 0-360 and saturation/lightness 0-100")
		}
	}
	if patch.BorderRadius != nil && *patch.BorderRadius <= 0 {
		errs.AddMessage("borderRadius", "must be positive")
	}
	if patch.FontSize != nil && *patch.FontSize <= 0 {
		errs.AddMessage("fontSize", "must be positive")
	}
	return errs.Err()
}

// ResetCustomization restores the default customization.
func (s *Server) ResetCustomization(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	s.facade.ResetCustomization()
	return reply(s.state(""))
}

// GetCSS returns the resolved variables and their :root block.
func (s *Server) GetCSS(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	vars := s.facade.Variables()

	doc := s.document
	if doc == nil {
		doc = applicator.NewMemoryDocument()
		for _, key := range vars.Keys() {
			doc.SetProperty(key, vars[key])
		}
	}
	return reply(CSS{CSS: doc.CSS(), Variables: vars})
}

func (s *Server) state(outcome string) State {
	st := s.facade.State()
	return State{
		ThemeID:       st.SelectedThemeID,
		ThemeName:     s.facade.Definition().Name,
		IsDark:        st.IsDark,
		LockedTheme:   s.facade.LockedTheme(),
		Customization: st.Customization,
		Outcome:       outcome,
	}
}

func reply(v any) (*structpb.Struct, error) {
	out, err := toStruct(v)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}
