package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"pulse/internal/cache"
	"pulse/internal/domain/event"
	"pulse/internal/domain/user"
	"pulse/internal/lookup"
	"pulse/internal/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLookup struct {
	mu        sync.Mutex
	followers []string
	blocked   []string
	err       error
	calls     int
}

func (f *fakeLookup) Followers(context.Context, string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.followers, f.err
}

func (f *fakeLookup) BlockedUsers(context.Context, string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.blocked, f.err
}

type fakeUsers struct {
	ref *user.Reference
}

func (f *fakeUsers) GetByID(context.Context, string) (*user.Reference, error) {
	if f.ref == nil {
		return nil, errors.New("no rows")
	}
	return f.ref, nil
}

func newTestServer(t *testing.T, lk *fakeLookup, users *fakeUsers, bus notify.Bus) *httptest.Server {
	t.Helper()

	dispatcher := notify.NewDispatcher(cache.NewMemory(), lk, bus, 5*time.Minute, 24*time.Hour)
	h := NewHandlers(dispatcher, lk, bus, users, time.Minute)

	srv := httptest.NewServer(NewRouter(h))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	return resp
}

func TestLikeHookAcceptsAndNotifies(t *testing.T) {
	bus := notify.NewMemoryBus()
	srv := newTestServer(t, &fakeLookup{}, &fakeUsers{}, bus)

	author, err := bus.Subscribe(context.Background(), "A")
	require.NoError(t, err)

	resp := postJSON(t, srv.URL+"/events/likes", `{"post_id":"p1","liker_id":"L","author_id":"A"}`)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	select {
	case frame := <-author.Messages():
		var n event.Notification
		require.NoError(t, json.Unmarshal(frame, &n))
		assert.Equal(t, event.TypePostLiked, n.Type)
	case <-time.After(time.Second):
		t.Fatal("author received no notification")
	}
}

func TestPostHookAcceptsDespiteLookupFailure(t *testing.T) {
	// The caller's action already succeeded; notification failure must
	// never surface.
	bus := notify.NewMemoryBus()
	srv := newTestServer(t, &fakeLookup{err: errors.New("kafka down")}, &fakeUsers{}, bus)

	resp := postJSON(t, srv.URL+"/events/posts", `{"post_id":"p1","author_id":"A"}`)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
}

func TestEventHooksRejectBadBodies(t *testing.T) {
	srv := newTestServer(t, &fakeLookup{}, &fakeUsers{}, notify.NewMemoryBus())

	for _, tc := range []struct {
		path string
		body string
	}{
		{"/events/posts", `{}`},
		{"/events/posts", `not json`},
		{"/events/likes", `{"post_id":"p1"}`},
		{"/events/comments", `{"post_id":"p1","author_id":"A"}`},
	} {
		resp := postJSON(t, srv.URL+tc.path, tc.body)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "%s %s", tc.path, tc.body)
	}
}

func TestFollowersEndpoint(t *testing.T) {
	srv := newTestServer(t, &fakeLookup{followers: []string{"f1", "f2"}}, &fakeUsers{}, notify.NewMemoryBus())

	resp, err := http.Get(srv.URL + "/lookup/followers/u1")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string][]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, []string{"f1", "f2"}, body["followers"])
}

func TestFollowersEndpointTimeout(t *testing.T) {
	srv := newTestServer(t, &fakeLookup{err: lookup.ErrNoResponse}, &fakeUsers{}, notify.NewMemoryBus())

	resp, err := http.Get(srv.URL + "/lookup/followers/u1")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusGatewayTimeout, resp.StatusCode)
}

func TestGetUserFromReplica(t *testing.T) {
	users := &fakeUsers{ref: &user.Reference{UserID: "u1", Username: "alice", IsActive: true}}
	srv := newTestServer(t, &fakeLookup{}, users, notify.NewMemoryBus())

	resp, err := http.Get(srv.URL + "/users/u1")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var ref user.Reference
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ref))
	assert.Equal(t, "alice", ref.Username)
}

func TestGetUserNotFound(t *testing.T) {
	srv := newTestServer(t, &fakeLookup{}, &fakeUsers{}, notify.NewMemoryBus())

	resp, err := http.Get(srv.URL + "/users/ghost")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
