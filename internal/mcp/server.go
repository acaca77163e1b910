// ABOUTME: MCP server setup for the biosync fitness tracker.
// ABOUTME: Exposes workout, goal, biometric, and reporting services as MCP tools.
package mcp

import (
	"context"
	"errors"
	"io"

	"github.com/charmbracelet/log"
	"github.com/harperreed/biosync/internal/biometrics"
	"github.com/harperreed/biosync/internal/goals"
	"github.com/harperreed/biosync/internal/models"
	"github.com/harperreed/biosync/internal/report"
	"github.com/harperreed/biosync/internal/workouts"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Version is reported to MCP clients.
const Version = "1.0.0"

// Services are the domain services the server delegates to.
type Services struct {
	Workouts   *workouts.Builder
	Goals      *goals.Engine
	Biometrics *biometrics.Service
	Reports    *report.Reporter
}

// Server wraps the MCP server with service access for a single user.
type Server struct {
	mcpServer *mcp.Server
	svc       Services
	user      models.UserID
	logger    *log.Logger
}

// NewServer creates a new MCP server acting on behalf of user.
func NewServer(user models.UserID, svc Services, logger *log.Logger) (*Server, error) {
	if !user.Valid() {
		return nil, models.Invalid("user", "is required")
	}
	if svc.Workouts == nil || svc.Goals == nil || svc.Biometrics == nil || svc.Reports == nil {
		return nil, errors.New("mcp: all services are required")
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "biosync",
			Version: Version,
		},
		nil,
	)

	s := &Server{
		mcpServer: mcpServer,
		svc:       svc,
		user:      user,
		logger:    logger.WithPrefix("mcp"),
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("serving", "user", s.user)
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}
