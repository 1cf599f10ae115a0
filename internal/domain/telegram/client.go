package telegram

// Group is a chat the bot delivers birthday notifications into.
type Group struct {
	ID    int64
	Title string
}

// Destination is the resolved delivery target within a group. For Telegram
// this is the group chat itself; the indirection keeps the notification flow
// independent of how a platform picks its announcement channel.
type Destination struct {
	ChatID int64
}

// Member is a group member addressed by a notification.
type Member struct {
	UserID    int64
	FirstName string
	Mention   string // platform-specific reference, opaque to the composer
}

// Client defines an interface for resolving notification targets and sending
// messages via a Telegram bot. This helps in decoupling the application logic
// from the specific bot library.
type Client interface {
	ResolveGroup(groupID int64) (*Group, error)
	ResolveDestination(g *Group) (*Destination, error)
	ResolveMember(g *Group, userID int64) (*Member, error)
	Send(d *Destination, text string) error
}
