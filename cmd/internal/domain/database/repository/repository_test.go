package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"newsnotes/cmd/internal/domain/entity"
	"newsnotes/cmd/internal/testutil"
	"newsnotes/cmd/internal/utils/uid"
)

func seedUser(t *testing.T, db *gorm.DB, username string) *entity.User {
	t.Helper()
	user := &entity.User{ID: uid.Generate(), SubUUID: username + "-sub", Username: username, Active: true}
	require.NoError(t, NewUserRepository(db).Create(user))
	return user
}

func TestNewsFindLatestOrdersAndLimits(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewNewsRepository(db)

	var items []*entity.News
	for i := 0; i < 12; i++ {
		items = append(items, &entity.News{
			ID:          uid.Generate(),
			Title:       "news",
			Text:        "text",
			PublishedAt: int64(1_000 + i),
		})
	}
	require.NoError(t, repo.CreateAll(items))

	latest, err := repo.FindLatest(10)
	require.NoError(t, err)
	require.Len(t, latest, 10)

	assert.Equal(t, int64(1_011), latest[0].PublishedAt)
	for i := 1; i < len(latest); i++ {
		assert.Greater(t, latest[i-1].PublishedAt, latest[i].PublishedAt)
	}
}

func TestNewsFindByIDMissing(t *testing.T) {
	db := testutil.NewDB(t)

	news, err := NewNewsRepository(db).FindByID(42)
	require.NoError(t, err)
	assert.Nil(t, news)
}

func TestCommentsFindByNewsIDAscending(t *testing.T) {
	db := testutil.NewDB(t)
	user := seedUser(t, db, "reader")
	repo := NewCommentRepository(db)

	newsID := uid.Generate()
	for _, createdAt := range []int64{300, 100, 200} {
		require.NoError(t, repo.Create(&entity.Comment{
			ID:        uid.Generate(),
			NewsID:    newsID,
			AuthorID:  user.ID,
			Text:      "hello",
			CreatedAt: createdAt,
			UpdatedAt: createdAt,
		}))
	}

	comments, err := repo.FindByNewsID(newsID)
	require.NoError(t, err)
	require.Len(t, comments, 3)

	assert.Equal(t, int64(100), comments[0].CreatedAt)
	assert.Equal(t, int64(200), comments[1].CreatedAt)
	assert.Equal(t, int64(300), comments[2].CreatedAt)
	assert.Equal(t, "reader", comments[0].Author.Username)
}

func TestNoteCreateIfSlugFree(t *testing.T) {
	db := testutil.NewDB(t)
	user := seedUser(t, db, "writer")
	repo := NewNoteRepository(db)

	first := &entity.Note{ID: uid.Generate(), Title: "a", Text: "a", Slug: "same", AuthorID: user.ID}
	created, err := repo.CreateIfSlugFree(first)
	require.NoError(t, err)
	assert.True(t, created)

	second := &entity.Note{ID: uid.Generate(), Title: "b", Text: "b", Slug: "same", AuthorID: user.ID}
	created, err = repo.CreateIfSlugFree(second)
	require.NoError(t, err)
	assert.False(t, created)

	notes, err := repo.FindByAuthorID(user.ID)
	require.NoError(t, err)
	assert.Len(t, notes, 1)
}

func TestNoteExistsBySlugExcludesSelf(t *testing.T) {
	db := testutil.NewDB(t)
	user := seedUser(t, db, "writer")
	repo := NewNoteRepository(db)

	note := &entity.Note{ID: uid.Generate(), Title: "a", Text: "a", Slug: "mine", AuthorID: user.ID}
	_, err := repo.CreateIfSlugFree(note)
	require.NoError(t, err)

	taken, err := repo.ExistsBySlug("mine", 0)
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = repo.ExistsBySlug("mine", note.ID)
	require.NoError(t, err)
	assert.False(t, taken)

	note.Text = "changed"
	saved, err := repo.UpdateIfSlugFree(note)
	require.NoError(t, err)
	assert.True(t, saved)
}

func TestUserFindActiveBySubSkipsInactive(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)
	user := seedUser(t, db, "sleeper")

	found, err := repo.FindActiveBySub(user.SubUUID)
	require.NoError(t, err)
	require.NotNil(t, found)

	user.Active = false
	require.NoError(t, repo.Save(user))

	found, err = repo.FindActiveBySub(user.SubUUID)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestConnectionFindStale(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewConnectionRepository(db)

	now := int64(10_000_000)
	require.NoError(t, repo.Save(&entity.Connection{ConnectionID: "fresh", NewsID: 1, ExpiresAt: now + 1000, LastHeartbeatAt: now}))
	require.NoError(t, repo.Save(&entity.Connection{ConnectionID: "expired", NewsID: 1, ExpiresAt: now - 1, LastHeartbeatAt: now}))
	require.NoError(t, repo.Save(&entity.Connection{ConnectionID: "silent", NewsID: 2, ExpiresAt: now + 1000, LastHeartbeatAt: now - 120_000}))

	stale, err := repo.FindStale(now, 70_000)
	require.NoError(t, err)

	var ids []string
	for _, c := range stale {
		ids = append(ids, c.ConnectionID)
	}
	assert.ElementsMatch(t, []string{"expired", "silent"}, ids)

	following, err := repo.FindByNewsID(1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"fresh", "expired"}, following)

	require.NoError(t, repo.Delete("expired"))
	following, err = repo.FindByNewsID(1)
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh"}, following)
}

func TestNoteCreateIfSlugFreeLosesToConcurrentWriter(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewNoteRepository(db)
	author := seedUser(t, db, "author")

	// Another writer takes the slug between the existence check and the insert
	injected := false
	err := db.Callback().Create().Before("gorm:create").Register("test:concurrent_writer", func(tx *gorm.DB) {
		if injected || tx.Statement.Table != "notes" {
			return
		}
		injected = true
		err := tx.Session(&gorm.Session{NewDB: true}).Exec(
			"INSERT INTO notes (id, title, text, slug, author_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
			uid.Generate(), "Winner", "text", "contested", author.ID, 1, 1,
		).Error
		if err != nil {
			_ = tx.AddError(err)
		}
	})
	require.NoError(t, err)

	note := &entity.Note{ID: uid.Generate(), Title: "Loser", Text: "text", Slug: "contested", AuthorID: author.ID, CreatedAt: 1, UpdatedAt: 1}
	saved, err := repo.CreateIfSlugFree(note)

	require.True(t, injected)
	require.NoError(t, err)
	assert.False(t, saved)

	// The whole transaction rolls back, the competing insert included
	var count int64
	require.NoError(t, db.Model(&entity.Note{}).Count(&count).Error)
	assert.Zero(t, count)
}
