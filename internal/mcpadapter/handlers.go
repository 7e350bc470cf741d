package mcpadapter

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/povarna/generative-ai-agents/agent-fwk/internal/models"
)

type ChatService interface {
	Chat(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error)
}

type FrameworkService interface {
	VersionInfo() models.VersionInfo
	AvailableVersions(ctx context.Context) []models.FrameworkVersion
	MigrationInfo(target string) (models.MigrationInfo, error)
}

// ChatInput is the MCP tool input schema (matches HTTP API field names).
type ChatInput struct {
	Message        string         `json:"message" jsonschema:"user message"`
	Context        map[string]any `json:"context,omitempty" jsonschema:"optional context for the conversation"`
	UserID         string         `json:"user_id,omitempty" jsonschema:"optional user identifier"`
	ConversationID string         `json:"conversation_id,omitempty" jsonschema:"optional conversation identifier"`
}

// ChatOutput flattens ChatResponse into plain JSON types for the tool schema.
type ChatOutput struct {
	Response         string  `json:"response"`
	AgentName        string  `json:"agent_name"`
	RequestID        string  `json:"request_id,omitempty"`
	Timestamp        string  `json:"timestamp"`
	ProcessingTimeMs float64 `json:"processing_time_ms"`
}

type MigrationInfoInput struct {
	TargetVersion string `json:"target_version" jsonschema:"target framework version, e.g. v1.2.0"`
}

type Empty struct{}

// AvailableVersionsOutput wraps the list because tool output must be an object.
type AvailableVersionsOutput struct {
	Versions []models.FrameworkVersion `json:"versions"`
}

// NewChatHandler returns a tool handler that sends the message to the agent.
// Pass the returned function to mcp.AddTool.
func NewChatHandler(agent ChatService) func(context.Context, *mcp.CallToolRequest, ChatInput) (*mcp.CallToolResult, ChatOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ChatInput) (*mcp.CallToolResult, ChatOutput, error) {
		chatReq := models.ChatRequest{
			Message: input.Message,
			Context: input.Context,
		}
		if input.UserID != "" {
			chatReq.UserID = &input.UserID
		}
		if input.ConversationID != "" {
			chatReq.ConversationID = &input.ConversationID
		}

		resp, err := agent.Chat(ctx, chatReq)
		if err != nil {
			return nil, ChatOutput{}, err
		}

		requestID, _ := resp.Context["request_id"].(string)
		return nil, ChatOutput{
			Response:         resp.Response,
			AgentName:        resp.AgentName,
			RequestID:        requestID,
			Timestamp:        resp.Timestamp.Format(time.RFC3339Nano),
			ProcessingTimeMs: resp.ProcessingTimeMs,
		}, nil
	}
}

func NewFrameworkVersionHandler(fwk FrameworkService) func(context.Context, *mcp.CallToolRequest, Empty) (*mcp.CallToolResult, models.VersionInfo, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, _ Empty) (*mcp.CallToolResult, models.VersionInfo, error) {
		return nil, fwk.VersionInfo(), nil
	}
}

func NewAvailableVersionsHandler(fwk FrameworkService) func(context.Context, *mcp.CallToolRequest, Empty) (*mcp.CallToolResult, AvailableVersionsOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, _ Empty) (*mcp.CallToolResult, AvailableVersionsOutput, error) {
		versions := fwk.AvailableVersions(ctx)
		if versions == nil {
			versions = []models.FrameworkVersion{}
		}
		return nil, AvailableVersionsOutput{Versions: versions}, nil
	}
}

func NewMigrationInfoHandler(fwk FrameworkService) func(context.Context, *mcp.CallToolRequest, MigrationInfoInput) (*mcp.CallToolResult, models.MigrationInfo, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input MigrationInfoInput) (*mcp.CallToolResult, models.MigrationInfo, error) {
		info, err := fwk.MigrationInfo(input.TargetVersion)
		return nil, info, err
	}
}

// NewServer registers the agent tools on a fresh MCP server.
func NewServer(name, version string, agent ChatService, fwk FrameworkService) *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    name,
			Version: version,
		}, nil,
	)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "chat",
		Description: "Send a message to the agent and get its reply. Optional user and conversation ids keep history per conversation.",
	}, NewChatHandler(agent))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "framework_version",
		Description: "Current framework, agent and installed framework versions",
	}, NewFrameworkVersionHandler(fwk))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "available_versions",
		Description: "Published framework versions, newest first",
	}, NewAvailableVersionsHandler(fwk))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "migration_info",
		Description: "Breaking changes and code migration steps needed to reach a target framework version",
	}, NewMigrationInfoHandler(fwk))

	return server
}
