package domain

import "time"

// Book is a catalog item. ImageRef holds the bare asset reference as
// persisted in the image_url column; resolving it to a retrievable URL is
// the transport layer's job.
type Book struct {
	ID         string
	Title      string
	Author     string
	Subject    string
	ISBN       string
	RackNumber string
	ImageRef   string
	CreatedAt  time.Time
}
