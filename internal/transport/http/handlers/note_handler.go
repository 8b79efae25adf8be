package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/mlukic/flare/internal/service"
	"github.com/mlukic/flare/internal/transport/http/middleware"
	"github.com/mlukic/flare/pkg/validator"
)

type NoteHandler struct {
	noteService *service.NoteService
}

func NewNoteHandler(noteService *service.NoteService) *NoteHandler {
	return &NoteHandler{noteService: noteService}
}

func (h *NoteHandler) Send(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var input struct {
		RecipientID string `json:"recipientId"`
		Content     string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if errs := validator.ValidateNoteContent(input.Content); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	recipientID, err := uuid.Parse(input.RecipientID)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid recipient")
		return
	}

	note, err := h.noteService.Send(r.Context(), userID, recipientID, input.Content)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrContentLength):
			writeMessage(w, http.StatusBadRequest, "Content must be between 1 and 300 characters")
		case errors.Is(err, service.ErrRecipientNotFound):
			writeMessage(w, http.StatusNotFound, "Recipient not found")
		case errors.Is(err, service.ErrRecipientNotFriend):
			writeMessage(w, http.StatusForbidden, "Recipient is not your friend")
		default:
			log.Printf("ERROR send note: %v", err)
			writeMessage(w, http.StatusInternalServerError, "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Note sent",
		"note":    note,
	})
}

func (h *NoteHandler) Inbox(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	notes, err := h.noteService.Inbox(r.Context(), userID)
	if err != nil {
		log.Printf("ERROR inbox: %v", err)
		writeMessage(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"notes": notes})
}

func (h *NoteHandler) Outbox(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	notes, err := h.noteService.Outbox(r.Context(), userID)
	if err != nil {
		log.Printf("ERROR outbox: %v", err)
		writeMessage(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"notes": notes})
}

func (h *NoteHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	noteID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid note id")
		return
	}

	if _, err := h.noteService.MarkRead(r.Context(), userID, noteID); err != nil {
		if errors.Is(err, service.ErrNoteNotFound) {
			writeMessage(w, http.StatusNotFound, "Note not found")
		} else {
			log.Printf("ERROR mark read: %v", err)
			writeMessage(w, http.StatusInternalServerError, "Something went wrong")
		}
		return
	}

	writeMessage(w, http.StatusOK, "Note marked as read")
}

func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	noteID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid note id")
		return
	}

	if err := h.noteService.Delete(r.Context(), userID, noteID); err != nil {
		if errors.Is(err, service.ErrNoteNotFound) {
			writeMessage(w, http.StatusNotFound, "Note not found")
		} else {
			log.Printf("ERROR delete note: %v", err)
			writeMessage(w, http.StatusInternalServerError, "Something went wrong")
		}
		return
	}

	writeMessage(w, http.StatusOK, "Note deleted")
}
