package mcpadapter

import (
	"context"
	"testing"

	"github.com/povarna/generative-ai-agents/agent-fwk/internal/api/mocks"
	"github.com/povarna/generative-ai-agents/agent-fwk/internal/models"
	"go.uber.org/mock/gomock"
)

func TestChatHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	agent := mocks.NewMockChatService(ctrl)

	agent.EXPECT().
		Chat(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
			if req.UserID == nil || *req.UserID != "u-1" {
				t.Errorf("Expected user id u-1, got %v", req.UserID)
			}
			if req.ConversationID != nil {
				t.Errorf("Expected unset conversation id, got %v", *req.ConversationID)
			}
			return &models.ChatResponse{
				Response: "hi " + req.Message,
				Context:  map[string]any{"request_id": "echo-agent-1"},
			}, nil
		})

	_, out, err := NewChatHandler(agent)(context.Background(), nil, ChatInput{Message: "there", UserID: "u-1"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if out.Response != "hi there" {
		t.Errorf("Expected 'hi there', got %q", out.Response)
	}
	if out.RequestID != "echo-agent-1" {
		t.Errorf("Expected request id, got %q", out.RequestID)
	}
}

func TestFrameworkHandlers(t *testing.T) {
	ctrl := gomock.NewController(t)
	fwk := mocks.NewMockFrameworkService(ctrl)

	fwk.EXPECT().VersionInfo().Return(models.VersionInfo{CurrentVersion: "1.1.0"})
	fwk.EXPECT().AvailableVersions(gomock.Any()).Return(nil)
	fwk.EXPECT().MigrationInfo("1.2.0").Return(models.MigrationInfo{MigrationAvailable: true, ToVersion: "1.2.0"}, nil)

	ctx := context.Background()

	_, version, _ := NewFrameworkVersionHandler(fwk)(ctx, nil, Empty{})
	if version.CurrentVersion != "1.1.0" {
		t.Errorf("Unexpected version: %+v", version)
	}

	_, available, _ := NewAvailableVersionsHandler(fwk)(ctx, nil, Empty{})
	if available.Versions == nil || len(available.Versions) != 0 {
		t.Errorf("Expected empty non-nil list, got %#v", available.Versions)
	}

	_, info, err := NewMigrationInfoHandler(fwk)(ctx, nil, MigrationInfoInput{TargetVersion: "1.2.0"})
	if err != nil || !info.MigrationAvailable {
		t.Errorf("Unexpected migration info: %+v, %v", info, err)
	}
}

func TestNewServer(t *testing.T) {
	ctrl := gomock.NewController(t)
	if NewServer("echo-agent", "1.0.0", mocks.NewMockChatService(ctrl), mocks.NewMockFrameworkService(ctrl)) == nil {
		t.Fatal("Expected server")
	}
}
