package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/mlukic/flare/internal/service"
	"github.com/mlukic/flare/internal/transport/http/middleware"
)

type FriendHandler struct {
	friendService *service.FriendService
}

func NewFriendHandler(friendService *service.FriendService) *FriendHandler {
	return &FriendHandler{friendService: friendService}
}

func (h *FriendHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var input struct {
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if input.Username == "" {
		writeMessage(w, http.StatusBadRequest, "Username is required")
		return
	}

	req, err := h.friendService.SendRequest(r.Context(), userID, input.Username)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCannotFriendSelf):
			writeMessage(w, http.StatusBadRequest, "You cannot add yourself")
		case errors.Is(err, service.ErrUserNotFound):
			writeMessage(w, http.StatusNotFound, "User not found")
		case errors.Is(err, service.ErrAlreadyFriends):
			writeMessage(w, http.StatusBadRequest, "Already friends")
		case errors.Is(err, service.ErrRequestPending):
			writeMessage(w, http.StatusBadRequest, "Friend request already pending")
		default:
			log.Printf("ERROR send friend request: %v", err)
			writeMessage(w, http.StatusInternalServerError, "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Friend request sent",
		"request": req,
	})
}

func (h *FriendHandler) Respond(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var input struct {
		RequestID string `json:"requestId"`
		Action    string `json:"action"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	requestID, err := uuid.Parse(input.RequestID)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request ID")
		return
	}

	friends, err := h.friendService.Respond(r.Context(), userID, requestID, input.Action)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAction):
			writeMessage(w, http.StatusBadRequest, "Invalid action")
		case errors.Is(err, service.ErrRequestNotFound):
			writeMessage(w, http.StatusNotFound, "Friend request not found")
		case errors.Is(err, service.ErrRequestAlreadyResolved):
			writeMessage(w, http.StatusBadRequest, "Friend request already resolved")
		default:
			log.Printf("ERROR respond friend request: %v", err)
			writeMessage(w, http.StatusInternalServerError, "Something went wrong")
		}
		return
	}

	if input.Action == service.ActionReject {
		writeMessage(w, http.StatusOK, "Friend request rejected")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Friend request accepted",
		"friends": friends,
	})
}

func (h *FriendHandler) ListFriends(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	friends, err := h.friendService.ListFriends(r.Context(), userID)
	if err != nil {
		log.Printf("ERROR list friends: %v", err)
		writeMessage(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"friends": friends})
}

func (h *FriendHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	incoming, err := h.friendService.ListIncomingRequests(r.Context(), userID)
	if err != nil {
		log.Printf("ERROR list incoming requests: %v", err)
		writeMessage(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	outgoing, err := h.friendService.ListOutgoingRequests(r.Context(), userID)
	if err != nil {
		log.Printf("ERROR list outgoing requests: %v", err)
		writeMessage(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"incoming": incoming,
		"outgoing": outgoing,
	})
}
