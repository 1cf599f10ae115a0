package telegram

import (
	"context"
	"fmt"
	"strings"

	"birthday_notification_bot/internal/app"
	"birthday_notification_bot/internal/domain/birthday"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

func RegisterBirthdayHandlers(
	ctx context.Context,
	b *telebot.Bot,
	birthdayService *app.BirthdayService,
	baseLogger *logrus.Entry,
) {
	handlerLogger := baseLogger.WithField("handler_group", "birthday")

	b.Handle("/birthday", func(c telebot.Context) error {
		senderID := c.Sender().ID
		chatID := c.Chat().ID
		payload := strings.TrimSpace(c.Message().Payload)

		logCtx := handlerLogger.WithFields(logrus.Fields{
			"command":   "/birthday",
			"sender_id": senderID,
			"chat_id":   chatID,
		})

		// Bare /birthday echoes the stored date.
		if payload == "" {
			logCtx.Info("Processing /birthday lookup")
			stored, err := birthdayService.GetBirthday(ctx, senderID, chatID)
			if err == app.ErrBirthdayNotSet {
				return c.Reply("You haven't set your birthday yet.")
			}
			if err != nil {
				logCtx.WithError(err).Error("Failed to look up birthday")
				return c.Reply("Something went wrong while looking up your birthday. Please try again later.")
			}
			return c.Reply(fmt.Sprintf("Your birthday is on `%s`", stored.DateString()),
				&telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
		}

		logCtx.Info("Processing /birthday set")
		stored, err := birthdayService.SetBirthday(ctx, senderID, chatID, payload)
		switch {
		case err == birthday.ErrDateUnparsable:
			return c.Reply("The birthday you've entered cannot be parsed. 😔")
		case err == birthday.ErrDateInFuture:
			return c.Reply("You cannot be born in the future.")
		case err != nil:
			logCtx.WithError(err).Error("Failed to set birthday")
			return c.Reply("Something went wrong while saving your birthday. Please try again later.")
		}
		return c.Reply(fmt.Sprintf("Your birthday was set to `%s`", stored.DateString()),
			&telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
	})

	deleteHandler := func(c telebot.Context) error {
		senderID := c.Sender().ID
		chatID := c.Chat().ID

		logCtx := handlerLogger.WithFields(logrus.Fields{
			"command":   "/birthday_delete",
			"sender_id": senderID,
			"chat_id":   chatID,
		})
		logCtx.Info("Processing birthday deletion")

		err := birthdayService.DeleteBirthday(ctx, senderID, chatID)
		if err == app.ErrBirthdayNotSet {
			return c.Reply("You haven't set a birthday that you could delete.")
		}
		if err != nil {
			logCtx.WithError(err).Error("Failed to delete birthday")
			return c.Reply("Something went wrong while deleting your birthday. Please try again later.")
		}
		return c.Reply("Your birthday was successfully deleted.")
	}

	b.Handle("/birthday_delete", deleteHandler)
	b.Handle("/unbirthday", deleteHandler)
}
