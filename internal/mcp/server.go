package mcp

import (
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/officina/internal/config"
	"github.com/rpggio/officina/internal/transport"
)

// Services contains the domain services exposed as tools.
type Services = transport.Services

// LocalPrincipal is attached to calls when auth is off.
const LocalPrincipal = "local"

// Config contains server configuration.
type Config struct {
	Services      Services
	Resolver      transport.PrincipalResolver
	AuthEnabled   bool
	TransportMode string
	Version       string
	Logger        *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	version := cfg.Version
	if version == "" {
		version = "dev"
	}
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "officina",
		Version: version,
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	// Later middleware wraps earlier middleware, so auth runs before logging
	// and the logged principal is known.
	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))
	// Stdio is a local process; only HTTP carries bearer tokens.
	if cfg.TransportMode != config.ModeStdio && cfg.AuthEnabled && cfg.Resolver != nil {
		server.AddReceivingMiddleware(authMiddleware(cfg.Resolver))
	} else {
		server.AddReceivingMiddleware(noAuthMiddleware(LocalPrincipal))
	}

	registerTools(server, cfg.Services)

	return server
}
