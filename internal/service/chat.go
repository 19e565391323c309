package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joshcord99/stoxai/internal/domain"
)

// DefaultChatTimeout bounds a single provider call.
const DefaultChatTimeout = 30 * time.Second

// ChatContext is the user information the assistant was seeded with.
type ChatContext struct {
	Name      string   `json:"name"`
	Watchlist []string `json:"watchlist"`
}

// ChatReply is the result of ChatService.Ask.
type ChatReply struct {
	Response  string
	Context   ChatContext
	AIEnabled bool
}

// ChatService answers watchlist questions through an optional provider.
// Without a provider, or when the provider fails, it replies with a canned
// message built from the user's watchlist.
type ChatService struct {
	users    domain.UserRepository
	provider domain.ChatProvider
	timeout  time.Duration
}

// NewChatService creates a ChatService. provider may be nil.
func NewChatService(users domain.UserRepository, provider domain.ChatProvider, timeout time.Duration) *ChatService {
	if timeout <= 0 {
		timeout = DefaultChatTimeout
	}
	return &ChatService{users: users, provider: provider, timeout: timeout}
}

// Ask answers question for the given user.
func (s *ChatService) Ask(ctx context.Context, userID int64, question string) (*ChatReply, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is required", domain.ErrValidation)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	cc := ChatContext{Name: user.FullName(), Watchlist: user.Watchlist}
	if cc.Watchlist == nil {
		cc.Watchlist = []string{}
	}

	if s.provider == nil {
		return &ChatReply{
			Response: fallbackReply(user, "This is a basic response. For enhanced AI analysis, please configure an AI service integration."),
			Context:  cc,
		}, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	answer, err := s.provider.Complete(callCtx, systemPrompt(user), question)
	if err != nil {
		slog.Warn("chat provider failed", "user_id", userID, "error", fmt.Errorf("%w: %w", domain.ErrUpstream, err))
		return &ChatReply{
			Response: fallbackReply(user, "I'm experiencing some technical difficulties with my AI analysis right now. Please try again later for enhanced insights."),
			Context:  cc,
		}, nil
	}

	return &ChatReply{Response: answer, Context: cc, AIEnabled: true}, nil
}

func watchlistSummary(tickers []string) string {
	if len(tickers) == 0 {
		return "None"
	}
	return strings.Join(tickers, ", ")
}

func greetingName(u *domain.User) string {
	if u.FirstName == nil || *u.FirstName == "" {
		return "there"
	}
	return *u.FirstName
}

func fallbackReply(u *domain.User, tail string) string {
	return fmt.Sprintf("Hello %s! I can see you have %d items in your watchlist: %s.\n\n%s",
		greetingName(u), len(u.Watchlist), watchlistSummary(u.Watchlist), tail)
}

func systemPrompt(u *domain.User) string {
	var b strings.Builder
	b.WriteString("You are an expert financial analyst and AI assistant specializing in stock and cryptocurrency analysis.\n\n")
	b.WriteString("User Information:\n")
	fmt.Fprintf(&b, "- Name: %s\n", u.FullName())
	fmt.Fprintf(&b, "- Watchlist: %s\n\n", watchlistSummary(u.Watchlist))
	b.WriteString("Provide personalized, helpful financial analysis based on the user's question. ")
	b.WriteString("If they ask about specific stocks or crypto, give detailed insights. ")
	b.WriteString("If they ask general questions, provide educational financial advice.")
	return b.String()
}
