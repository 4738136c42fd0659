package common

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// FeedDirection is the pagination direction encoded inside a cursor.
type FeedDirection string

const (
	DirectionForward  FeedDirection = "forward"
	DirectionBackward FeedDirection = "backward"
)

// FeedCursor is the decoded form of an opaque pagination token. Clients must
// treat the encoded string as opaque; the fields are not part of the public
// contract.
type FeedCursor struct {
	ItemID    string        `json:"id"`
	Timestamp int64         `json:"ts"`
	Direction FeedDirection `json:"dir"`
}

// Encode serializes the cursor into an opaque URL-safe token.
func (c FeedCursor) Encode() string {
	data, err := json.Marshal(c)
	if err != nil {
		return ""
	}
	return base64.URLEncoding.EncodeToString(data)
}

// DecodeFeedCursor parses an opaque token back into a cursor. An empty token
// decodes to nil without error.
func DecodeFeedCursor(token string) (*FeedCursor, error) {
	if token == "" {
		return nil, nil
	}

	data, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("invalid cursor format: %w", err)
	}

	var c FeedCursor
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("invalid cursor data: %w", err)
	}
	if c.Direction != DirectionForward && c.Direction != DirectionBackward {
		return nil, fmt.Errorf("invalid cursor direction: %q", c.Direction)
	}

	return &c, nil
}
