package follow

import "time"

// Follow is a viewer-to-author subscription edge. The composite primary key
// makes the (user, author) pair unique at the schema level, so concurrent
// duplicate follow requests collapse into one row.
type Follow struct {
	UserID    uint `gorm:"primaryKey"`
	AuthorID  uint `gorm:"primaryKey"`
	CreatedAt time.Time
}
