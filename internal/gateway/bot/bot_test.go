package bot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Xausdorf/mattermost-governance/internal/domain"
	"github.com/Xausdorf/mattermost-governance/internal/host"
	"github.com/Xausdorf/mattermost-governance/internal/repository/memory"
	"github.com/Xausdorf/mattermost-governance/internal/usecase"
	"github.com/mattermost/mattermost-server/v6/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const t0 = domain.Timestamp(1_700_000_000_000)

type manualClock struct {
	now domain.Timestamp
}

func (c *manualClock) Now() time.Time {
	return c.now.Time()
}

type fakePoster struct {
	posts []*model.Post
	err   error
}

func (p *fakePoster) CreatePost(post *model.Post) (*model.Post, *model.Response, error) {
	p.posts = append(p.posts, post)
	return post, nil, p.err
}

func (p *fakePoster) last() *model.Post {
	if len(p.posts) == 0 {
		return nil
	}
	return p.posts[len(p.posts)-1]
}

func newTestBot(t *testing.T, cfg Config) (*PollingBot, *fakePoster, *manualClock) {
	t.Helper()
	clock := &manualClock{now: t0}
	poster := &fakePoster{}
	rt := host.NewRuntime(clock)
	b := &PollingBot{
		cfg:    cfg,
		poster: poster,
		user:   &model.User{Id: "bot"},
		gov:    usecase.NewGovernance(memory.NewPollRepository(), memory.NewVoteRepository(), rt, nil),
		logger: usecase.ResolveLogger(nil),
	}
	rt.Subscribe(b)
	return b, poster, clock
}

func say(b *PollingBot, userID string, msg string) {
	b.handlePost(context.Background(), &model.Post{Id: "post-" + msg, ChannelId: "town-square", UserId: userID, Message: msg})
}

func TestCommands(t *testing.T) {
	b, poster, clock := newTestBot(t, Config{})

	say(b, "alice", "/poll_create p1 3 1700000000010 1700000000020")
	require.Len(t, poster.posts, 1)
	assert.Contains(t, poster.last().Message, "Poll succesfully created!\nID: p1")
	assert.Equal(t, "town-square", poster.last().ChannelId)
	assert.Equal(t, "post-/poll_create p1 3 1700000000010 1700000000020", poster.last().RootId)

	say(b, "alice", "/poll_create p1 3 1700000000010 1700000000020")
	assert.Equal(t, "A poll with this ID already exists", poster.last().Message)

	say(b, "alice", "/poll_info p1")
	assert.Contains(t, poster.last().Message, "Options: 1..3")

	clock.now = t0 + 12
	say(b, "alice", "/poll_vote p1 1 100")
	assert.Equal(t, "Vote successfully registered", poster.last().Message)

	say(b, "alice", "/poll_vote p1 2 50")
	assert.Equal(t, "You have already voted for another option in this poll", poster.last().Message)

	say(b, "alice", "/poll_withdraw p1")
	assert.Equal(t, "Poll is not finished yet, funds can be withdrawn after it ends", poster.last().Message)

	clock.now = t0 + 21
	say(b, "alice", "/poll_withdraw p1")
	assert.Equal(t, "Funds succesfully withdrawn", poster.last().Message)

	say(b, "alice", "/poll_withdraw p1")
	assert.Equal(t, "Your funds are already withdrawn", poster.last().Message)

	say(b, "bob", "/poll_withdraw p1")
	assert.Equal(t, "You have no votes in this poll", poster.last().Message)
}

func TestCommandArguments(t *testing.T) {
	tests := []struct {
		msg  string
		want string
	}{
		{"/poll_create p1 3", "There must be 4 arguments: poll ID, number of options, start and end time"},
		{"/poll_create p1 three 1 2", "Number of options must be a positive integer"},
		{"/poll_create p1 3 yesterday 2", "Start time must be unix milliseconds or RFC3339"},
		{"/poll_create p1 3 1700000000010 later", "End time must be unix milliseconds or RFC3339"},
		{"/poll_vote p1 1", "There must be 3 arguments: poll ID, option's number and number of votes"},
		{"/poll_vote p1 first 1", "Option must be an integer: option's number"},
		{"/poll_vote p1 1 many", "Number of votes must be an integer"},
		{"/poll_vote p1 1 0", "Number of votes must be positive"},
		{"/poll_withdraw", "There must be 1 argument: poll ID"},
		{"/poll_info", "There must be 1 argument: poll ID"},
		{"/poll_info missing", "There is no poll with such ID. Try again"},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			b, poster, _ := newTestBot(t, Config{})
			say(b, "alice", tt.msg)
			require.NotNil(t, poster.last())
			assert.Equal(t, tt.want, poster.last().Message)
		})
	}
}

func TestQuotedPollID(t *testing.T) {
	b, poster, _ := newTestBot(t, Config{})

	say(b, "alice", `/poll_create "budget 2027" 2 2030-01-01T00:00:00Z 2030-01-02T00:00:00Z`)
	assert.Contains(t, poster.last().Message, "ID: budget 2027")

	say(b, "alice", `/poll_info "budget 2027"`)
	assert.Contains(t, poster.last().Message, "Open from 2030-01-01T00:00:00Z to 2030-01-02T00:00:00Z")
}

func TestIgnoresOtherMessages(t *testing.T) {
	b, poster, _ := newTestBot(t, Config{})

	say(b, "alice", "hello there")
	say(b, "alice", `"unbalanced`)
	assert.Empty(t, poster.posts)
}

func TestHandleWebSocketEventSkipsOwnPosts(t *testing.T) {
	b, poster, _ := newTestBot(t, Config{})

	event := model.NewWebSocketEvent(model.WebsocketEventPosted, "", "town-square", "", nil)
	event.Add("post", `{"id":"p","channel_id":"town-square","user_id":"bot","message":"/help"}`)
	b.handleWebSocketEvent(context.Background(), event)
	assert.Empty(t, poster.posts)

	event = model.NewWebSocketEvent(model.WebsocketEventPosted, "", "town-square", "", nil)
	event.Add("post", `{"id":"p","channel_id":"town-square","user_id":"alice","message":"/help"}`)
	b.handleWebSocketEvent(context.Background(), event)
	require.Len(t, poster.posts, 1)
	assert.Contains(t, poster.last().Message, "/poll_withdraw")
}

func TestEmitBroadcastsToEventsChannel(t *testing.T) {
	b, poster, clock := newTestBot(t, Config{mmEventsChannel: "governance"})

	say(b, "alice", "/poll_create p1 2 1700000000010 1700000000020")
	clock.now = t0 + 10
	say(b, "alice", "/poll_vote p1 2 5")

	var broadcasts []string
	for _, p := range poster.posts {
		if p.ChannelId == "governance" {
			broadcasts = append(broadcasts, p.Message)
		}
	}
	require.Len(t, broadcasts, 2)
	assert.Contains(t, broadcasts[0], "Poll p1 created: options 1..2")
	assert.Equal(t, "Account alice added 5 votes to option 2 in poll p1", broadcasts[1])
}

func TestEmitWithoutChannelIsNoop(t *testing.T) {
	b, poster, _ := newTestBot(t, Config{})
	b.Emit(context.Background(), t0, domain.FundsWithdrawn{Voter: "alice", Amount: 1})
	assert.Empty(t, poster.posts)
}

func TestRespondSurvivesPostFailure(t *testing.T) {
	b, poster, _ := newTestBot(t, Config{})
	poster.err = errors.New("mattermost is down")

	assert.NotPanics(t, func() { say(b, "alice", "/help") })
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("MM_USERNAME", "")
	t.Setenv("MM_TEAM", "")
	t.Setenv("MM_TOKEN", "token")
	t.Setenv("MM_SERVER", "https://chat.example.com")
	t.Setenv("MM_EVENTS_CHANNEL", "governance")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "GovernanceBot", cfg.mmUserName)
	assert.True(t, cfg.BroadcastsEvents())

	t.Setenv("MM_TOKEN", "")
	_, err = LoadConfig()
	assert.ErrorIs(t, err, ErrMissingSettings)
}
