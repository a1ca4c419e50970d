package themed

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/opencode-ai/themekit/internal/models"
)

// Client calls a running theme daemon.
type Client struct {
	conn *grpc.ClientConn
}

// Dial connects to a daemon at target. Extra options are appended after the
// default insecure transport credentials.
func Dial(target string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", target, err)
	}
	return &Client{conn: conn}, nil
}

// Close releases the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) invoke(ctx context.Context, method string, in any, out any) error {
	var req any = &emptypb.Empty{}
	if in != nil {
		s, err := toStruct(in)
		if err != nil {
			return err
		}
		req = s
	}

	resp := &structpb.Struct{}
	if err := c.conn.Invoke(ctx, method, req, resp); err != nil {
		return err
	}
	return fromStruct(resp, out)
}

// Ping checks the daemon is serving.
func (c *Client) Ping(ctx context.Context) (*PingReply, error) {
	var out PingReply
	if err := c.invoke(ctx, MethodPing, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetState returns the current theme state.
func (c *Client) GetState(ctx context.Context) (*State, error) {
	return c.state(ctx, MethodGetState, nil)
}

// ListThemes returns the registered themes.
func (c *Client) ListThemes(ctx context.Context) ([]ThemeInfo, error) {
	var out ThemeList
	if err := c.invoke(ctx, MethodListThemes, nil, &out); err != nil {
		return nil, err
	}
	return out.Themes, nil
}

// SetTheme selects a theme; State.Outcome reports what happened.
func (c *Client) SetTheme(ctx context.Context, id string) (*State, error) {
	return c.state(ctx, MethodSetTheme, SetThemeRequest{ThemeID: id})
}

// ToggleDarkMode flips dark mode.
func (c *Client) ToggleDarkMode(ctx context.Context) (*State, error) {
	return c.state(ctx, MethodToggleDarkMode, nil)
}

// UpdateCustomization merges patch into the customization.
func (c *Client) UpdateCustomization(ctx context.Context, patch models.CustomizationPatch) (*State, error) {
	return c.state(ctx, MethodUpdateCustomization, patch)
}

// ResetCustomization restores the default customization.
func (c *Client) ResetCustomization(ctx context.Context) (*State, error) {
	return c.state(ctx, MethodResetCustomization, nil)
}

// GetCSS returns the resolved variables and their :root block.
func (c *Client) GetCSS(ctx context.Context) (*CSS, error) {
	var out CSS
	if err := c.invoke(ctx, MethodGetCSS, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) state(ctx context.Context, method string, in any) (*State, error) {
	var out State
	if err := c.invoke(ctx, method, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
