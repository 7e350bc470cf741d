package agent

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/povarna/generative-ai-agents/agent-fwk/internal/config"
	"github.com/povarna/generative-ai-agents/agent-fwk/internal/conversation"
	"github.com/povarna/generative-ai-agents/agent-fwk/internal/llm"
	"github.com/povarna/generative-ai-agents/agent-fwk/internal/llm/gateway"
	"github.com/povarna/generative-ai-agents/agent-fwk/internal/models"
	"github.com/rs/zerolog"
)

//go:generate mockgen -destination=mocks/mock_chatter.go -package=mocks . Chatter

// Chatter is the LLM surface the processor needs; *gateway.Gateway satisfies it.
type Chatter interface {
	Chat(ctx context.Context, input gateway.ChatInput) (string, error)
	ModelInfo() gateway.ModelInfo
}

const connectionTestPrompt = "Respond with just 'OK' to confirm connection."

type LLMProcessor struct {
	cfg          *config.AgentConfig
	llm          Chatter
	store        conversation.Store
	historyLimit int
	systemPrompt string
	logger       *zerolog.Logger
}

type LLMOption func(*LLMProcessor)

// WithSystemPrompt replaces the prompt derived from the agent's name and
// description.
func WithSystemPrompt(prompt string) LLMOption {
	return func(p *LLMProcessor) { p.systemPrompt = prompt }
}

// WithConversationStore enables history for requests that carry a
// conversation id. At most limit prior turns are sent to the model; zero
// keeps the default of 20.
func WithConversationStore(store conversation.Store, limit int) LLMOption {
	return func(p *LLMProcessor) {
		p.store = store
		if limit > 0 {
			p.historyLimit = limit
		}
	}
}

func NewLLMProcessor(cfg *config.AgentConfig, chatter Chatter, logger *zerolog.Logger, opts ...LLMOption) *LLMProcessor {
	p := &LLMProcessor{
		cfg:          cfg,
		llm:          chatter,
		historyLimit: 20,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func DefaultSystemPrompt(name, description string) string {
	return fmt.Sprintf(`You are %[1]s, a specialized AI assistant.

Description: %[2]s

Your role is to help users with tasks related to your specialization. Be helpful, accurate, and professional in your responses. Always stay in character as %[1]s.

Guidelines:
- Provide clear, actionable responses
- Ask clarifying questions when needed
- Acknowledge limitations honestly
- Maintain a friendly but professional tone
`, name, description)
}

func (p *LLMProcessor) SystemPrompt() string {
	if p.systemPrompt != "" {
		return p.systemPrompt
	}
	return DefaultSystemPrompt(p.cfg.Name, p.cfg.Description)
}

func (p *LLMProcessor) fallbackResponse() string {
	return fmt.Sprintf("I apologize, but I'm experiencing technical difficulties. As %s, I'm temporarily unable to process your request. Please try again later.", p.cfg.Name)
}

func (p *LLMProcessor) ProcessMessage(ctx context.Context, message string, msgContext map[string]any, opts ...MessageOption) (string, error) {
	meta := ResolveMessageOptions(opts...)
	enhanced := p.enhanceContext(msgContext, meta)

	var history []llm.Message
	if meta.ConversationID != nil && p.store != nil {
		turns, err := p.store.History(ctx, *meta.ConversationID, p.historyLimit)
		if err != nil {
			p.logger.Warn().Err(err).Str("conversation_id", *meta.ConversationID).Msg("Failed to load conversation history")
		}
		for _, turn := range turns {
			history = append(history, llm.Message{Role: turn.Role, Content: turn.Content})
		}
	}

	reply, err := p.llm.Chat(ctx, gateway.ChatInput{
		Message:      message,
		SystemPrompt: withContext(p.SystemPrompt(), enhanced),
		History:      history,
	})
	if err != nil {
		p.logger.Error().Err(err).Msg("LLM processing error")
		return p.fallbackResponse(), nil
	}

	if meta.ConversationID != nil && p.store != nil {
		now := time.Now().UTC()
		err := p.store.Append(ctx, *meta.ConversationID,
			conversation.Turn{Role: llm.RoleUser, Content: message, At: now},
			conversation.Turn{Role: llm.RoleAssistant, Content: reply, At: now},
		)
		if err != nil {
			p.logger.Warn().Err(err).Str("conversation_id", *meta.ConversationID).Msg("Failed to store conversation turn")
		}
	}

	return reply, nil
}

// enhanceContext merges the request context with the agent identity and
// the message identifiers. Unset identifiers are left out.
func (p *LLMProcessor) enhanceContext(msgContext map[string]any, meta MessageMeta) map[string]any {
	enhanced := make(map[string]any, len(msgContext)+4)
	for k, v := range msgContext {
		enhanced[k] = v
	}
	enhanced["agent_name"] = p.cfg.Name
	enhanced["agent_description"] = p.cfg.Description
	if meta.UserID != nil {
		enhanced["user_id"] = *meta.UserID
	}
	if meta.ConversationID != nil {
		enhanced["conversation_id"] = *meta.ConversationID
	}
	return enhanced
}

func withContext(prompt string, msgContext map[string]any) string {
	if len(msgContext) == 0 {
		return prompt
	}

	keys := make([]string, 0, len(msgContext))
	for k := range msgContext {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(strings.TrimRight(prompt, "\n"))
	b.WriteString("\n\nContext:\n")
	for _, k := range keys {
		fmt.Fprintf(&b, "- %s: %v\n", k, msgContext[k])
	}
	return b.String()
}

// OnStartup checks the provider is reachable. A failure is logged and does
// not stop the agent.
func (p *LLMProcessor) OnStartup(ctx context.Context) error {
	reply, err := p.llm.Chat(ctx, gateway.ChatInput{Message: "Hello", SystemPrompt: connectionTestPrompt})
	if err != nil {
		p.logger.Warn().Err(err).Msg("LLM connection test failed")
		return nil
	}

	if len(reply) > 20 {
		reply = reply[:20]
	}
	p.logger.Info().Str("reply", reply).Msg("LLM connection test successful")
	return nil
}

func (p *LLMProcessor) Capabilities() []models.AgentCapability {
	info := p.llm.ModelInfo()
	return []models.AgentCapability{
		{
			Name:        "llm_conversation",
			Version:     "1.1.0",
			Description: fmt.Sprintf("LLM-powered conversations using %s %s", info.Provider, info.Model),
			Enabled:     true,
		},
		{
			Name:        "context_awareness",
			Version:     "1.1.0",
			Description: "Contextual understanding and response generation",
			Enabled:     true,
		},
	}
}

func (p *LLMProcessor) ModelInfo() gateway.ModelInfo {
	return p.llm.ModelInfo()
}
