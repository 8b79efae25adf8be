package sse

import "fmt"

// Event names pushed to clients.
const (
	EventConnected  = "connected"
	EventNote       = "note"
	EventNoteStatus = "note-status"
)

// keepAliveFrame is a comment line; EventSource ignores it, but it keeps
// intermediaries from idling out the connection.
var keepAliveFrame = []byte(": keep-alive\n\n")

// formatEvent frames a named event per the text/event-stream protocol.
func formatEvent(event string, data []byte) []byte {
	return []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", event, data))
}
