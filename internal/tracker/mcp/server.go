// Package mcp exposes the tracker's reference and match data as MCP
// tools over a stdio transport.
package mcp

import (
	"context"
	"io"
	"log"
	"sort"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/deadlock-tools/tracker/internal/tracker/storage"
)

// Version reported to MCP clients during initialization.
const Version = "0.1.0"

// Server wires the tracker tools onto an MCP server.
type Server struct {
	server *mcp.Server
	logger *log.Logger
}

// NewServer builds an MCP server with every tracker tool registered.
func NewServer(store storage.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	server := mcp.NewServer(&mcp.Implementation{Name: "tracker", Version: Version}, nil)
	mcp.AddTool(server, ListHeroesTool(), ListHeroesHandler(store))
	mcp.AddTool(server, ListItemsTool(), ListItemsHandler(store))
	mcp.AddTool(server, GetItemTool(), GetItemHandler(store))
	mcp.AddTool(server, ListPlayersTool(), ListPlayersHandler(store))
	mcp.AddTool(server, PlayerMatchesTool(), PlayerMatchesHandler(store))
	mcp.AddTool(server, MatchTimelineTool(), MatchTimelineHandler(store))
	mcp.AddTool(server, StatsTool(), StatsHandler(store))
	return &Server{server: server, logger: logger}
}

// Serve runs the MCP server on stdio and blocks until the client
// disconnects or the context ends.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Printf("mcp server listening on stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func sortTimeline(events []TimelineEventResult) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].GameTimeS != events[j].GameTimeS {
			return events[i].GameTimeS < events[j].GameTimeS
		}
		return events[i].Kind < events[j].Kind
	})
}
