package member

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"devwrite/internal/domain/config"
	domainerr "devwrite/internal/domain/errors"
	devmail "devwrite/internal/mail"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []devmail.Message
	err  error
}

func (r *recordingSender) Send(msg devmail.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, msg)
	return nil
}

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "members.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(openTestDB(t))

	got, err := repo.FindByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Nil(t, got)

	m := &Member{Name: "Ada", Email: " Ada@Example.com ", CareerPath: "Backend"}
	require.NoError(t, repo.Insert(ctx, m))
	assert.NotZero(t, m.ID)

	got, err = repo.FindByEmail(ctx, "ADA@example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Ada", got.Name)
	assert.Equal(t, "ada@example.com", got.Email)
	assert.Equal(t, "Backend", got.CareerPath)
	assert.False(t, got.CreatedAt.IsZero())

	err = repo.Insert(ctx, &Member{Name: "Other", Email: "ada@example.com"})
	assert.ErrorIs(t, err, ErrAlreadyMember)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMigrationsAreIdempotent(t *testing.T) {
	db := openTestDB(t)
	version, dirty, err := RunMigrations(db)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)
}

func TestServiceJoin(t *testing.T) {
	ctx := context.Background()
	sender := &recordingSender{}
	svc := NewService(NewRepository(openTestDB(t)), sender, config.Default().Mail)

	m, err := svc.Join(ctx, Application{
		Name:       "Ada",
		Email:      "ada@example.com",
		CareerPath: "Frontend",
		Experience: "1-3 years",
		PublishAt:  "next month",
		WhyJoin:    "to write",
	})
	require.NoError(t, err)
	assert.Equal(t, "Frontend", m.CareerPath)

	svc.Wait()
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "ada@example.com", sender.sent[0].To)
	assert.Contains(t, sender.sent[0].HTML, "Hello Ada,")

	_, err = svc.Join(ctx, Application{Name: "Ada again", Email: "ada@example.com"})
	assert.ErrorIs(t, err, ErrAlreadyMember)
	assert.EqualError(t, err, "You are already a member")
}

func TestServiceJoinValidation(t *testing.T) {
	svc := NewService(NewRepository(openTestDB(t)), &recordingSender{}, config.Default().Mail)

	_, err := svc.Join(context.Background(), Application{Email: "not-an-address"})
	require.ErrorIs(t, err, domainerr.ErrInvalid)

	var ve domainerr.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, map[string]string{
		"name":  "is required",
		"email": "is not a valid address",
	}, ve.Fields())
}

func TestServiceJoinMailFailureKeepsMember(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(openTestDB(t))
	svc := NewService(repo, &recordingSender{err: errors.New("smtp down")}, config.Default().Mail)

	_, err := svc.Join(ctx, Application{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)
	svc.Wait()

	got, err := repo.FindByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.NotNil(t, got)
}
