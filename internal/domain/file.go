package domain

import "time"

// File is a binary attachment owned by a ticket. Content is omitted by
// listing queries and loaded only for downloads.
type File struct {
	ID        string
	TicketID  string
	Name      string
	MimeType  string
	Size      int64
	Content   []byte
	CreatedAt time.Time
}
