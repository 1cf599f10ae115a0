package telegram

import (
	"fmt"

	domainTelegram "birthday_notification_bot/internal/domain/telegram"

	"gopkg.in/telebot.v3"
)

// TelebotAdapter implements the domain Client interface using the
// gopkg.in/telebot.v3 library.
type TelebotAdapter struct {
	bot *telebot.Bot
}

func NewTelebotAdapter(b *telebot.Bot) *TelebotAdapter {
	return &TelebotAdapter{bot: b}
}

func (tba *TelebotAdapter) ResolveGroup(groupID int64) (*domainTelegram.Group, error) {
	chat, err := tba.bot.ChatByID(groupID)
	if err != nil {
		return nil, fmt.Errorf("chat lookup failed: %w", err)
	}
	return &domainTelegram.Group{ID: chat.ID, Title: chat.Title}, nil
}

// ResolveDestination picks where notifications for a group land. On Telegram
// the group chat itself is the announcement channel.
func (tba *TelebotAdapter) ResolveDestination(g *domainTelegram.Group) (*domainTelegram.Destination, error) {
	return &domainTelegram.Destination{ChatID: g.ID}, nil
}

func (tba *TelebotAdapter) ResolveMember(g *domainTelegram.Group, userID int64) (*domainTelegram.Member, error) {
	member, err := tba.bot.ChatMemberOf(&telebot.Chat{ID: g.ID}, &telebot.User{ID: userID})
	if err != nil {
		return nil, fmt.Errorf("member lookup failed: %w", err)
	}
	if member.Role == telebot.Left || member.Role == telebot.Kicked {
		return nil, fmt.Errorf("user %d is no longer in chat %d", userID, g.ID)
	}
	u := member.User
	return &domainTelegram.Member{
		UserID:    u.ID,
		FirstName: u.FirstName,
		Mention:   fmt.Sprintf("[%s](tg://user?id=%d)", u.FirstName, u.ID),
	}, nil
}

func (tba *TelebotAdapter) Send(d *domainTelegram.Destination, text string) error {
	_, err := tba.bot.Send(&telebot.Chat{ID: d.ChatID}, text, &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
	return err
}
