package chat

import "context"

// Push channel event names.
const (
	EventConnect        = "connect"
	EventUserInfo       = "user_info"
	EventNewMessage     = "new_message"
	EventMessageHistory = "message_history"
	EventSessionEnded   = "session_ended"
	EventSendMessage    = "send_message"
)

// UserInfo is the payload of the user_info event.
type UserInfo struct {
	Username string `json:"username"`
}

// Handler receives inbound push events, one method per event kind.
type Handler interface {
	Connected()
	UserInfo(info UserInfo)
	NewMessage(msg Message)
	MessageHistory(msgs []Message)
	SessionEnded()
}

// Sender emits outbound events on the push channel.
type Sender interface {
	SendMessage(ctx context.Context, text string) error
}
