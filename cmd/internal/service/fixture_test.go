package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"newsnotes/cmd/internal/contract"
	"newsnotes/cmd/internal/domain/database/repository"
	"newsnotes/cmd/internal/domain/entity"
	"newsnotes/cmd/internal/domain/events"
	"newsnotes/cmd/internal/domain/policy"
	"newsnotes/cmd/internal/infrastructure/aws/websocket"
	"newsnotes/cmd/internal/testutil"
	"newsnotes/cmd/internal/utils"
	"newsnotes/cmd/internal/utils/uid"
	"newsnotes/cmd/internal/utils/validators"
)

const (
	testLoginURL = "/auth/login/"
	testSecret   = "0123456789abcdef0123456789abcdef"
)

type fixture struct {
	db    *gorm.DB
	guard *policy.Guard

	newsRepo    *repository.DefaultNewsRepository
	commentRepo *repository.DefaultCommentRepository
	noteRepo    *repository.DefaultNoteRepository
	userRepo    *repository.DefaultUserRepository

	news     *DefaultNewsService
	comments *DefaultCommentService
	notes    *DefaultNoteService
	users    *UserService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureOn(t, testutil.NewDB(t))
}

func newFixtureOn(t *testing.T, db *gorm.DB) *fixture {
	t.Helper()
	validate := validators.New()
	guard := policy.NewGuard(testLoginURL)

	f := &fixture{
		db:          db,
		guard:       guard,
		newsRepo:    repository.NewNewsRepository(db),
		commentRepo: repository.NewCommentRepository(db),
		noteRepo:    repository.NewNoteRepository(db),
		userRepo:    repository.NewUserRepository(db),
	}

	tokens, err := utils.NewHMACTokens(testSecret, time.Hour)
	require.NoError(t, err)
	auth := NewLocalAuthenticator(tokens)
	auth.Cost = 4 // bcrypt.MinCost keeps the tests fast

	f.news = NewNewsService(f.newsRepo, f.commentRepo, guard, validate, 10, time.Minute)
	f.comments = NewCommentService(f.commentRepo, f.newsRepo, guard, validate, nil)
	f.notes = NewNoteService(f.noteRepo, guard, validate)
	f.users = NewUserService(f.userRepo, auth, validate)
	return f
}

func (f *fixture) user(t *testing.T, username string) *entity.User {
	t.Helper()
	user := &entity.User{ID: uid.Generate(), SubUUID: username + "-sub", Username: username, Active: true}
	require.NoError(t, f.userRepo.Create(user))
	return user
}

func (f *fixture) seedNews(t *testing.T, count int) []*contract.NewsResponse {
	t.Helper()
	var b strings.Builder
	b.WriteString("[")
	for i := 0; i < count; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		// One day apart, oldest first
		date := time.Date(2024, 1, 1+i, 0, 0, 0, 0, time.UTC).Format(time.DateOnly)
		b.WriteString(`{"title":"News ` + date + `","text":"Body","date":"` + date + `"}`)
	}
	b.WriteString("]")

	imported, err := f.news.ImportNews(strings.NewReader(b.String()))
	require.NoError(t, err)
	require.Equal(t, count, imported)

	home, apierr := f.news.GetHome(policy.Anonymous("/"))
	require.Nil(t, apierr)
	return home.ObjectList
}

func (f *fixture) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Count(&n).Error)
	return n
}

func as(user *entity.User) policy.Requester {
	return policy.AuthenticatedAs(user, "/")
}

// recordingGateway stores every message instead of calling API Gateway.
// Connections listed in gone answer like readers that left without a $disconnect.
type recordingGateway struct {
	mu      sync.Mutex
	posts   map[string][]any
	deleted []string
	gone    map[string]bool
}

func newRecordingGateway() *recordingGateway {
	return &recordingGateway{posts: make(map[string][]any), gone: make(map[string]bool)}
}

func (g *recordingGateway) PostToConnection(_ context.Context, connID string, data any) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.gone[connID] {
		return fmt.Errorf("%w: %s", websocket.ErrConnectionGone, connID)
	}
	g.posts[connID] = append(g.posts[connID], data)
	return nil
}

func (g *recordingGateway) DeleteConnection(_ context.Context, connID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.deleted = append(g.deleted, connID)
	return nil
}

func (g *recordingGateway) postsTo(connID string) []any {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]any(nil), g.posts[connID]...)
}

// channelNotifier forwards broadcasts to a channel.
type channelNotifier struct {
	ch chan events.SocketEvent
}

func (n *channelNotifier) BroadcastToNews(_ context.Context, _ int64, evt events.SocketEvent) {
	n.ch <- evt
}
