package mcpclient

import (
	"context"
	"os/exec"

	"github.com/bububa/ljson"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/agentui/tools"
	"github.com/effective-security/agentui/utils"
	"github.com/effective-security/xlog"
	mcp "github.com/metoro-io/mcp-golang"
	mcphttp "github.com/metoro-io/mcp-golang/transport/http"
	"github.com/metoro-io/mcp-golang/transport/stdio"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/agentui", "mcpclient")

// ErrNotConnected is returned when the client is used before Connect.
var ErrNotConnected = errors.New("server is not connected")

// Client is the MCP protocol surface the ServerClient depends on.
type Client interface {
	Initialize(ctx context.Context) (*mcp.InitializeResponse, error)
	ListTools(ctx context.Context, cursor *string) (*mcp.ToolsResponse, error)
	CallTool(ctx context.Context, name string, arguments any) (*mcp.ToolResponse, error)
}

// ServerClient manages the connection to one remote tool server and
// caches its advertised tools.
type ServerClient struct {
	cfg    *ServerConfig
	client Client
	cmd    *exec.Cmd
	tools  []tools.Definition
}

// New creates a disconnected ServerClient for the configuration.
func New(cfg *ServerConfig) *ServerClient {
	return &ServerClient{cfg: cfg}
}

// NewFromClient wraps an already-connected protocol client, used to
// attach custom transports.
func NewFromClient(name string, client Client) *ServerClient {
	return &ServerClient{
		cfg:    &ServerConfig{Name: name},
		client: client,
	}
}

// Name returns the origin identifier.
func (s *ServerClient) Name() string {
	return s.cfg.Name
}

// Connect starts the transport, initializes the MCP session, and
// fetches the advertised tools.
func (s *ServerClient) Connect(ctx context.Context) error {
	if s.client == nil {
		switch {
		case s.cfg.URL != "":
			transport := mcphttp.NewHTTPClientTransport("/mcp").WithBaseURL(s.cfg.URL)
			s.client = mcp.NewClient(transport)
		case s.cfg.Command != "":
			cmd := exec.Command(s.cfg.Command, s.cfg.Args...)
			stdin, err := cmd.StdinPipe()
			if err != nil {
				return errors.WithMessage(err, "failed to open stdin pipe")
			}
			stdout, err := cmd.StdoutPipe()
			if err != nil {
				return errors.WithMessage(err, "failed to open stdout pipe")
			}
			if err := cmd.Start(); err != nil {
				return errors.WithMessagef(err, "failed to start server %q", s.cfg.Name)
			}
			s.cmd = cmd
			s.client = mcp.NewClient(stdio.NewStdioServerTransportWithIO(stdout, stdin))
		default:
			return errors.Newf("server %q: either command or url is required", s.cfg.Name)
		}
	}

	if _, err := s.client.Initialize(ctx); err != nil {
		return errors.WithMessagef(err, "failed to initialize server %q", s.cfg.Name)
	}
	if err := s.fetchTools(ctx); err != nil {
		return err
	}
	logger.ContextKV(ctx, xlog.INFO,
		"connected_server", s.cfg.Name,
		"tools", len(s.tools))
	return nil
}

// Disconnect releases the connection and stops the subprocess, if any.
func (s *ServerClient) Disconnect(ctx context.Context) error {
	s.client = nil
	s.tools = nil
	if s.cmd != nil && s.cmd.Process != nil {
		if err := s.cmd.Process.Kill(); err != nil {
			return errors.WithMessagef(err, "failed to stop server %q", s.cfg.Name)
		}
		_ = s.cmd.Wait()
		s.cmd = nil
	}
	return nil
}

// Tools returns the cached tool definitions advertised by the server.
func (s *ServerClient) Tools() []tools.Definition {
	return s.tools
}

func (s *ServerClient) fetchTools(ctx context.Context) error {
	var defs []tools.Definition
	var cursor *string
	for {
		resp, err := s.client.ListTools(ctx, cursor)
		if err != nil {
			return errors.WithMessagef(err, "failed to list tools from server %q", s.cfg.Name)
		}
		for _, tool := range resp.Tools {
			description := ""
			if tool.Description != nil {
				description = *tool.Description
			}
			defs = append(defs, tools.Definition{
				Name:        tool.Name,
				Description: description,
				Parameters:  tool.InputSchema,
			})
		}
		if resp.NextCursor == nil || *resp.NextCursor == "" {
			break
		}
		cursor = resp.NextCursor
	}
	s.tools = defs
	return nil
}

// CallTool executes the named tool with a JSON argument string and
// returns the content items encoded as a JSON string.
func (s *ServerClient) CallTool(ctx context.Context, name string, arguments string) (string, error) {
	if s.client == nil {
		return "", errors.WithStack(ErrNotConnected)
	}

	args := map[string]any{}
	if arguments != "" {
		if err := ljson.Unmarshal(utils.BytesTrimBackticks([]byte(arguments)), &args); err != nil {
			return "", errors.WithMessagef(err, "invalid arguments for tool %q", name)
		}
	}

	resp, err := s.client.CallTool(ctx, name, args)
	if err != nil {
		return "", errors.WithMessagef(err, "failed to call tool %q on server %q", name, s.cfg.Name)
	}
	if resp == nil || len(resp.Content) == 0 {
		return "[]", nil
	}
	return utils.ToJSON(resp.Content), nil
}
