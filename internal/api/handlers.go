package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"pulse/internal/domain/user"
	"pulse/internal/lookup"
	"pulse/internal/notify"

	"github.com/go-chi/chi/v5"
)

type userReader interface {
	GetByID(ctx context.Context, userID string) (*user.Reference, error)
}

type lookupClient interface {
	Followers(ctx context.Context, userID string) ([]string, error)
	BlockedUsers(ctx context.Context, userID string) ([]string, error)
}

type Handlers struct {
	dispatcher *notify.Dispatcher
	lookup     lookupClient
	bus        notify.Bus
	users      userReader
	heartbeat  time.Duration
}

func NewHandlers(dispatcher *notify.Dispatcher, lookupClient lookupClient, bus notify.Bus, users userReader, heartbeat time.Duration) *Handlers {
	return &Handlers{
		dispatcher: dispatcher,
		lookup:     lookupClient,
		bus:        bus,
		users:      users,
		heartbeat:  heartbeat,
	}
}

// PostCreated is the hook the content service calls after a post is
// stored. The response never depends on the notification outcome.
func (h *Handlers) PostCreated(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PostID   string `json:"post_id"`
		AuthorID string `json:"author_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PostID == "" || req.AuthorID == "" {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	// The follower lookup may wait up to the configured timeout; the
	// caller's request must not.
	go h.dispatcher.NewPost(context.Background(), req.PostID, req.AuthorID)

	accepted(w)
}

func (h *Handlers) PostLiked(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PostID   string `json:"post_id"`
		LikerID  string `json:"liker_id"`
		AuthorID string `json:"author_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PostID == "" || req.LikerID == "" || req.AuthorID == "" {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	go h.dispatcher.PostLiked(context.Background(), req.PostID, req.LikerID, req.AuthorID)

	accepted(w)
}

func (h *Handlers) PostCommented(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PostID      string `json:"post_id"`
		CommenterID string `json:"commenter_id"`
		AuthorID    string `json:"author_id"`
		Text        string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PostID == "" || req.CommenterID == "" || req.AuthorID == "" {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	go h.dispatcher.NewComment(context.Background(), req.PostID, req.CommenterID, req.AuthorID, req.Text)

	accepted(w)
}

// Followers serves a follower list to collaborating services through the
// correlation RPC.
func (h *Handlers) Followers(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	if userID == "" {
		http.Error(w, "missing user id", http.StatusBadRequest)
		return
	}

	followers, err := h.lookup.Followers(r.Context(), userID)
	if err != nil {
		if errors.Is(err, lookup.ErrNoResponse) {
			http.Error(w, "identity service did not respond", http.StatusGatewayTimeout)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string][]string{"followers": followers})
}

func (h *Handlers) BlockedUsers(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	if userID == "" {
		http.Error(w, "missing user id", http.StatusBadRequest)
		return
	}

	blocked, err := h.lookup.BlockedUsers(r.Context(), userID)
	if err != nil {
		if errors.Is(err, lookup.ErrNoResponse) {
			http.Error(w, "identity service did not respond", http.StatusGatewayTimeout)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string][]string{"blocked_users": blocked})
}

// GetUser reads the local identity replica.
func (h *Handlers) GetUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	if userID == "" {
		http.Error(w, "missing user id", http.StatusBadRequest)
		return
	}

	ref, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}

	writeJSON(w, ref)
}

func accepted(w http.ResponseWriter) {
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"status": "accepted"})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
