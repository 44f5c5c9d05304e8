// Package confirmation turns a freshly minted confirm token into an email
// job: it builds the confirmation link and hands it to the queue publisher.
// Actual delivery happens in the email_sender binary.
package confirmation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	sl "social_service/internal/lib/logger"
	"social_service/internal/models"
)

type Publisher interface {
	SendMessage(ctx context.Context, msg models.EmailMessage) error
}

func ConfirmationLink(baseURL, token string) string {
	return fmt.Sprintf("%s/confirm?token=%s", baseURL, token)
}

func SendConfirmationEmail(
	ctx context.Context,
	log *slog.Logger,
	pub Publisher,
	baseURL, token, email string,
) error {
	const op = "confirmation.SendConfirmationEmail"

	msg := models.EmailMessage{
		Email:   email,
		Subject: "Confirm your email",
		Link:    ConfirmationLink(baseURL, token),
		SentAt:  time.Now(),
	}

	if err := pub.SendMessage(ctx, msg); err != nil {
		log.Error("failed to publish confirmation email",
			slog.String("op", op), sl.Email(email), sl.Err(err))

		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("confirmation email queued", sl.Email(email))

	return nil
}
