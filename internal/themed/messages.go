package themed

import (
	"encoding/json"
	"fmt"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/opencode-ai/themekit/internal/models"
)

// State is the wire shape of the current theme state.
type State struct {
	ThemeID       string               `json:"themeId"`
	ThemeName     string               `json:"themeName"`
	IsDark        bool                 `json:"isDark"`
	LockedTheme   string               `json:"lockedTheme,omitempty"`
	Customization models.Customization `json:"customization"`
	Outcome       string               `json:"outcome,omitempty"`
}

// ThemeInfo is the wire shape of one registered theme.
type ThemeInfo struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	SupportsDarkMode bool     `json:"supportsDarkMode"`
	PreviewColors    []string `json:"previewColors,omitempty"`
}

// ThemeList is the ListThemes reply.
type ThemeList struct {
	Themes []ThemeInfo `json:"themes"`
}

// SetThemeRequest is the SetTheme request.
type SetThemeRequest struct {
	ThemeID string `json:"themeId"`
}

// CSS is the GetCSS reply.
type CSS struct {
	CSS       string             `json:"css"`
	Variables models.VariableSet `json:"variables"`
}

// PingReply reports daemon liveness.
type PingReply struct {
	Version   string    `json:"version"`
	StartedAt time.Time `json:"startedAt"`
	Hydrated  bool      `json:"hydrated"`
}

// toStruct converts a JSON-tagged value into a Struct.
func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("failed to convert message: %w", err)
	}
	return out, nil
}

// fromStruct decodes a Struct into a JSON-tagged value.
func fromStruct(s *structpb.Struct, v any) error {
	if s == nil {
		s = &structpb.Struct{}
	}
	data, err := protojson.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode message: %w", err)
	}
	return nil
}
