package telegram

import (
	"context"

	"birthday_notification_bot/internal/app"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// SubscribedUpdates lists the update types the bot requests from Telegram.
// The Bot API excludes chat_member from its default set, so the ban hook
// only fires when it is asked for explicitly.
var SubscribedUpdates = []string{"message", "chat_member"}

// RegisterMembershipHandlers wires group-membership events to the birthday
// record lifecycle: joining re-enables a previously shared birthday, leaving
// suppresses it, a ban forgets it immediately.
func RegisterMembershipHandlers(
	ctx context.Context,
	b *telebot.Bot,
	birthdayService *app.BirthdayService,
	baseLogger *logrus.Entry,
) {
	handlerLogger := baseLogger.WithField("handler_group", "membership")

	b.Handle(telebot.OnUserJoined, func(c telebot.Context) error {
		chatID := c.Chat().ID
		for _, user := range joinedUsers(c.Message()) {
			if err := birthdayService.EnableNotifications(ctx, user.ID, chatID); err != nil {
				handlerLogger.WithError(err).WithFields(logrus.Fields{
					"user_id": user.ID, "chat_id": chatID,
				}).Error("Failed to re-enable birthday on join")
			}
		}
		return nil
	})

	b.Handle(telebot.OnUserLeft, func(c telebot.Context) error {
		left := c.Message().UserLeft
		if left == nil {
			return nil
		}
		chatID := c.Chat().ID
		if err := birthdayService.DisableNotifications(ctx, left.ID, chatID); err != nil {
			handlerLogger.WithError(err).WithFields(logrus.Fields{
				"user_id": left.ID, "chat_id": chatID,
			}).Error("Failed to disable birthday on leave")
		}
		return nil
	})

	// chat_member updates carry the ban signal the plain message events lack.
	b.Handle(telebot.OnChatMember, func(c telebot.Context) error {
		upd := c.ChatMember()
		if upd == nil || upd.NewChatMember == nil || upd.NewChatMember.User == nil {
			return nil
		}
		userID := upd.NewChatMember.User.ID
		chatID := upd.Chat.ID
		logCtx := handlerLogger.WithFields(logrus.Fields{"user_id": userID, "chat_id": chatID})

		switch upd.NewChatMember.Role {
		case telebot.Kicked:
			logCtx.Info("Member banned, forgetting birthday")
			if err := birthdayService.ForgetUser(ctx, userID, chatID); err != nil {
				logCtx.WithError(err).Error("Failed to forget birthday on ban")
			}
		case telebot.Left:
			if err := birthdayService.DisableNotifications(ctx, userID, chatID); err != nil {
				logCtx.WithError(err).Error("Failed to disable birthday on leave")
			}
		case telebot.Member, telebot.Administrator, telebot.Creator:
			if err := birthdayService.EnableNotifications(ctx, userID, chatID); err != nil {
				logCtx.WithError(err).Error("Failed to re-enable birthday on join")
			}
		}
		return nil
	})
}

func joinedUsers(m *telebot.Message) []telebot.User {
	if m == nil {
		return nil
	}
	if len(m.UsersJoined) > 0 {
		return m.UsersJoined
	}
	if m.UserJoined != nil {
		return []telebot.User{*m.UserJoined}
	}
	return nil
}
