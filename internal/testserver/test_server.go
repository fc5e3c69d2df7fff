package testserver

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/officina/internal/config"
	"github.com/rpggio/officina/internal/domain/dashboard"
	"github.com/rpggio/officina/internal/domain/dependent"
	"github.com/rpggio/officina/internal/domain/project"
	"github.com/rpggio/officina/internal/domain/snippet"
	"github.com/rpggio/officina/internal/mcp"
	"github.com/rpggio/officina/internal/sqlite"
	"github.com/rpggio/officina/internal/transport"
	"github.com/stretchr/testify/require"
)

// TestServer is a full HTTP stack over an in-memory SQLite database.
type TestServer struct {
	Server   *httptest.Server
	DB       *sqlite.DB
	Token    string
	Services transport.Services
}

// Option adjusts the server before it starts.
type Option func(*settings)

type settings struct {
	integrity dependent.Options
	maxUpload int64
}

// WithIntegrity sets the reference integrity options for quotes and contracts.
func WithIntegrity(opts dependent.Options) Option {
	return func(s *settings) { s.integrity = opts }
}

// WithMaxUpload caps attachment uploads.
func WithMaxUpload(n int64) Option {
	return func(s *settings) { s.maxUpload = n }
}

// New starts a server that accepts token as its only API key.
func New(t *testing.T, token string, opts ...Option) *TestServer {
	t.Helper()

	set := settings{maxUpload: config.Default().Upload.MaxBytes}
	for _, opt := range opts {
		opt(&set)
	}

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	store := sqlite.NewDocumentRepository(db)
	projects := project.NewService(store, nil)
	snippets := snippet.NewService(store, nil)
	services := transport.Services{
		Projects:  projects,
		Quotes:    dependent.NewService(dependent.Quotes, store, projects, set.integrity, nil),
		Contracts: dependent.NewService(dependent.Contracts, store, projects, set.integrity, nil),
		Snippets:  snippets,
		Dashboard: dashboard.NewService(projects, snippets),
	}

	resolver := transport.NewStaticKeys(map[string]string{"test": token})
	mcpServer := mcp.NewServer(mcp.Config{
		Services:      services,
		Resolver:      resolver,
		AuthEnabled:   true,
		TransportMode: config.ModeHTTP,
	})
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(func(*http.Request) *sdkmcp.Server {
		return mcpServer
	}, nil)

	server := httptest.NewServer(transport.NewServer(services, transport.Options{
		Auth:           transport.AuthMiddleware(resolver),
		MaxUploadBytes: set.maxUpload,
		MCP:            mcpHandler,
	}))

	ts := &TestServer{
		Server:   server,
		DB:       db,
		Token:    token,
		Services: services,
	}

	t.Cleanup(func() {
		server.Close()
		_ = db.Close()
	})

	return ts
}

// Do sends an authenticated request to the server.
func (ts *TestServer) Do(t *testing.T, req *http.Request) *http.Response {
	t.Helper()
	req.Header.Set("Authorization", "Bearer "+ts.Token)
	resp, err := ts.Server.Client().Do(req)
	require.NoError(t, err)
	return resp
}
