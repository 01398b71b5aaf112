package lookup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRequester struct {
	id   string
	kind Kind
	err  error
}

func (f *fakeRequester) Request(_ context.Context, _ string, kind Kind) (string, error) {
	f.kind = kind
	return f.id, f.err
}

type fakeAwaiter struct {
	payload []byte
	ok      bool
}

func (f *fakeAwaiter) Await(context.Context, string, time.Duration) ([]byte, bool) {
	return f.payload, f.ok
}

func TestFollowersParsesResponseBody(t *testing.T) {
	c := NewClient(
		&fakeRequester{id: "corr-1"},
		&fakeAwaiter{payload: []byte(`{"followers":["f1","f2"]}`), ok: true},
		time.Second,
	)

	followers, err := c.Followers(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"f1", "f2"}, followers)
}

func TestBlockedUsersParsesResponseBody(t *testing.T) {
	req := &fakeRequester{id: "corr-2"}
	c := NewClient(
		req,
		&fakeAwaiter{payload: []byte(`{"blocked_users":["b1"]}`), ok: true},
		time.Second,
	)

	blocked, err := c.BlockedUsers(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"b1"}, blocked)
	assert.Equal(t, KindBlockedUsers, req.kind)
}

func TestFollowersTimeoutIsErrNoResponse(t *testing.T) {
	c := NewClient(&fakeRequester{id: "corr-3"}, &fakeAwaiter{ok: false}, time.Second)

	_, err := c.Followers(context.Background(), "user-1")
	assert.ErrorIs(t, err, ErrNoResponse)
}

func TestFollowersRequestFailureIsHard(t *testing.T) {
	c := NewClient(&fakeRequester{err: errors.New("broker down")}, &fakeAwaiter{ok: true}, time.Second)

	_, err := c.Followers(context.Background(), "user-1")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoResponse)
}
