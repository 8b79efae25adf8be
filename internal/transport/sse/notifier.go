package sse

import (
	"github.com/google/uuid"
	"github.com/mlukic/flare/internal/domain"
)

// RegistryNotifier implements service.Notifier over the stream registry.
type RegistryNotifier struct {
	registry *Registry
}

func NewRegistryNotifier(registry *Registry) *RegistryNotifier {
	return &RegistryNotifier{registry: registry}
}

func (n *RegistryNotifier) NoteCreated(note *domain.Note) {
	n.registry.Publish(note.RecipientID, EventNote, note)
}

type noteStatusPayload struct {
	NoteID uuid.UUID `json:"noteId"`
	Status string    `json:"status"`
}

func (n *RegistryNotifier) NoteRead(senderID, noteID uuid.UUID) {
	n.registry.Publish(senderID, EventNoteStatus, noteStatusPayload{
		NoteID: noteID,
		Status: domain.NoteStatusRead,
	})
}
