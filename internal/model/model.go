package model

import "time"

// User is an account addressable by its mail alias.
type User struct {
	ID        string    `json:"id"`
	Alias     string    `json:"alias"`
	CreatedAt time.Time `json:"created_at"`
}

// Article is a deduplicated message body. The rendered body itself lives
// in object storage under ObjectKey; at most one Article exists per
// ContentHash.
type Article struct {
	ID          string    `json:"id"`
	ContentHash string    `json:"content_hash"`
	ObjectKey   string    `json:"-"`
	Subject     *string   `json:"subject"`
	Sender      *string   `json:"sender"`
	CreatedAt   time.Time `json:"created_at"`
}

// InboxEntry links a user to an article. Entries are never deduplicated;
// two deliveries of the same body produce two entries.
type InboxEntry struct {
	ID         string    `json:"id"`
	UserID     string    `json:"-"`
	ArticleID  string    `json:"article_id"`
	Subject    *string   `json:"subject"`
	Sender     *string   `json:"sender"`
	ReceivedAt time.Time `json:"received_at"`
}
