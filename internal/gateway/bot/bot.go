package bot

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Xausdorf/mattermost-governance/internal/domain"
	"github.com/Xausdorf/mattermost-governance/internal/host"
	"github.com/Xausdorf/mattermost-governance/internal/usecase"
	"github.com/mattermost/mattermost-server/v6/model"
)

const (
	maxRetries    = 5
	retryInterval = 3 * time.Second
)

var ErrMissingSettings = errors.New("mattermost token and server url must be set")

type Config struct {
	mmUserName string
	mmTeamName string
	mmToken    string
	mmServer   string
	// mmEventsChannel - channel ID where governance events are broadcast, optional.
	mmEventsChannel string
}

func LoadConfig() (Config, error) {
	var cfg Config

	cfg.mmUserName = os.Getenv("MM_USERNAME")
	if cfg.mmUserName == "" {
		cfg.mmUserName = "GovernanceBot"
	}
	cfg.mmTeamName = os.Getenv("MM_TEAM")
	if cfg.mmTeamName == "" {
		cfg.mmTeamName = "GovernanceBot"
	}
	cfg.mmToken = os.Getenv("MM_TOKEN")
	cfg.mmServer = os.Getenv("MM_SERVER")
	if cfg.mmToken == "" || cfg.mmServer == "" {
		return cfg, ErrMissingSettings
	}
	cfg.mmEventsChannel = os.Getenv("MM_EVENTS_CHANNEL")

	return cfg, nil
}

// BroadcastsEvents reports whether an events channel is configured.
func (c Config) BroadcastsEvents() bool {
	return c.mmEventsChannel != ""
}

// poster is the part of model.Client4 used to reply.
type poster interface {
	CreatePost(post *model.Post) (*model.Post, *model.Response, error)
}

type PollingBot struct {
	cfg             Config
	client          *model.Client4
	poster          poster
	webSocketClient *model.WebSocketClient
	user            *model.User
	team            *model.Team
	gov             *usecase.Governance
	logger          *slog.Logger
}

func NewPollingBot(cfg Config, gov *usecase.Governance, logger *slog.Logger) (*PollingBot, error) {
	var bot PollingBot

	bot.cfg = cfg
	bot.logger = usecase.ResolveLogger(logger)
	bot.client = model.NewAPIv4Client(bot.cfg.mmServer)
	bot.client.SetToken(bot.cfg.mmToken)
	bot.poster = bot.client

	user, _, err := bot.client.GetMe("")
	if err != nil {
		return nil, fmt.Errorf("could not log in to mattermost: %w", err)
	}
	bot.logger.Info("logged in to mattermost", "user_id", user.Id, "username", user.Username)
	bot.user = user

	team, _, err := bot.client.GetTeamByName(cfg.mmTeamName, "")
	if err != nil {
		return nil, fmt.Errorf("could not find team %q: %w", cfg.mmTeamName, err)
	}
	bot.logger.Info("team found", "team_id", team.Id, "team", team.Name)
	bot.team = team

	bot.gov = gov

	return &bot, nil
}

// Listen handles posted messages until ctx is cancelled, reconnecting the
// websocket up to maxRetries times.
func (b *PollingBot) Listen(ctx context.Context) error {
	for i := 0; i < maxRetries; i++ {
		var err error
		b.webSocketClient, err = model.NewWebSocketClient4(b.cfg.mmServer, b.client.AuthToken)
		if err != nil {
			b.logger.Warn("could not connect mattermost websocket, retrying", "error", err.Error())
			select {
			case <-time.After(retryInterval):
				continue
			case <-ctx.Done():
				return nil
			}
		}
		b.logger.Info("mattermost websocket connected")

		b.webSocketClient.Listen()

		b.logger.Info("governance bot listening now")
		if done := b.consume(ctx); done {
			return nil
		}
		b.logger.Warn("mattermost websocket closed, reconnecting")
	}
	return errors.New("could not connect mattermost websocket, max retries exceeded")
}

func (b *PollingBot) consume(ctx context.Context) bool {
	for {
		select {
		case event, ok := <-b.webSocketClient.EventChannel:
			if !ok {
				return false
			}
			go b.handleWebSocketEvent(ctx, event)
		case <-ctx.Done():
			return true
		}
	}
}

func (b *PollingBot) Close() {
	if b.webSocketClient != nil {
		b.logger.Info("closing mattermost websocket connection")
		b.webSocketClient.Close()
	}
}

func (b *PollingBot) handleWebSocketEvent(ctx context.Context, event *model.WebSocketEvent) {
	if event.EventType() != model.WebsocketEventPosted {
		return
	}

	post := &model.Post{}
	eventData, ok := event.GetData()["post"].(string)
	if !ok {
		b.logger.Warn("could not cast event data to string")
		return
	}
	if err := json.Unmarshal([]byte(eventData), &post); err != nil {
		b.logger.Warn("could not unmarshal event to *model.Post", "error", err.Error())
		return
	}

	if post.UserId == b.user.Id {
		return
	}

	b.handlePost(ctx, post)
}

func (b *PollingBot) handlePost(ctx context.Context, post *model.Post) {
	b.logger.Debug("handling post", "post_id", post.Id, "user_id", post.UserId, "msg", post.Message)

	// CSV reading for splitting a string at spaces, except spaces inside quotation marks.
	r := csv.NewReader(strings.NewReader(post.Message))
	r.Comma = ' '
	tokens, err := r.Read()
	if err != nil {
		b.logger.Debug("could not split post's message", "post_id", post.Id, "error", err.Error())
		return
	}
	if len(tokens) == 0 {
		return
	}

	ctx = host.WithCaller(ctx, domain.AccountID(post.UserId))

	switch tokens[0] {
	case "/poll_create":
		b.handleCreate(ctx, post, tokens[1:])
	case "/poll_vote":
		b.handleVote(ctx, post, tokens[1:])
	case "/poll_withdraw":
		b.handleWithdraw(ctx, post, tokens[1:])
	case "/poll_info":
		b.handleInfo(ctx, post, tokens[1:])
	case "/help":
		b.handleHelp(ctx, post, tokens[1:])
	}
}

func (b *PollingBot) Respond(_ context.Context, post *model.Post, msg string) {
	resp := &model.Post{}
	resp.ChannelId = post.ChannelId
	resp.Message = msg
	resp.RootId = post.Id

	if _, _, err := b.poster.CreatePost(resp); err != nil {
		b.logger.Error("could not respond to post", "post_id", post.Id, "error", err.Error())
	}
}

// Emit broadcasts governance events to the configured events channel.
func (b *PollingBot) Emit(ctx context.Context, _ domain.Timestamp, event domain.Event) {
	if !b.cfg.BroadcastsEvents() {
		return
	}

	post := &model.Post{
		ChannelId: b.cfg.mmEventsChannel,
		Message:   describeEvent(event),
	}
	if _, _, err := b.poster.CreatePost(post); err != nil {
		b.logger.ErrorContext(ctx, "could not broadcast event", "event", event.EventName(), "error", err.Error())
	}
}

var _ host.Sink = (*PollingBot)(nil)
