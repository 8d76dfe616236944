package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/taskflowhq/taskflow/internal/core/chat"
)

// SendMessageRequest is the payload for SendMessage.
type SendMessageRequest struct {
	ReceiverID string `json:"receiverId"`
	Content    string `json:"content"`
}

// Conversation fetches the full message history between the current user
// and otherUserID, oldest first.
func (c *Client) Conversation(ctx context.Context, otherUserID string) ([]chat.Message, error) {
	var out []chat.Message
	err := c.do(ctx, http.MethodGet, "/Chat/"+url.PathEscape(otherUserID), nil, &out)
	return out, err
}

// SendMessage posts a direct message and returns the server-confirmed
// message with its assigned ID and timestamp.
func (c *Client) SendMessage(ctx context.Context, receiverID, content string) (chat.Message, error) {
	var out chat.Message
	err := c.do(ctx, http.MethodPost, "/Chat/send", SendMessageRequest{
		ReceiverID: receiverID,
		Content:    content,
	}, &out)
	return out, err
}
