package messaging

import (
	"context"
	"fmt"

	"journal-backend/internal/pkg/config"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

const promptTitle = "Today's reflection"

// FCMPusher sends prompt notifications through Firebase Cloud Messaging.
type FCMPusher struct {
	client *messaging.Client
}

func NewFCMPusher(ctx context.Context, cfg config.MessagingConfig) (*FCMPusher, error) {
	if cfg.FirebaseCredentialsFile == "" {
		return nil, fmt.Errorf("firebase credentials file not configured")
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(cfg.FirebaseCredentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to init firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to init messaging client: %w", err)
	}

	return &FCMPusher{client: client}, nil
}

func (p *FCMPusher) SendPrompt(ctx context.Context, fcmToken string, question string) error {
	msg := &messaging.Message{
		Notification: &messaging.Notification{
			Title: promptTitle,
			Body:  question,
		},
		Data:  map[string]string{"type": "daily_prompt"},
		Token: fcmToken,
	}

	if _, err := p.client.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send prompt push: %w", err)
	}
	return nil
}

// NopPusher stands in when FCM is not configured (local dev, tests).
type NopPusher struct{}

func (NopPusher) SendPrompt(context.Context, string, string) error {
	return nil
}
