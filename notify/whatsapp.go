package notify

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
)

// MaxWhatsAppMessage is the Twilio body limit for WhatsApp messages
const MaxWhatsAppMessage = 1600

const whatsappPrefix = "whatsapp:"

// MessageCreator is the part of the Twilio REST API the notifier needs
type MessageCreator interface {
	CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error)
}

// WhatsAppNotifier sends the message to the cleaners through Twilio
type WhatsAppNotifier struct {
	api    MessageCreator
	from   string
	to     []string
	logger *zap.Logger
}

// NewWhatsAppNotifier creates a notifier on top of a Twilio message API
func NewWhatsAppNotifier(api MessageCreator, from string, to []string, logger *zap.Logger) *WhatsAppNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WhatsAppNotifier{api: api, from: from, to: to, logger: logger}
}

// NewWhatsAppNotifierFromEnv builds the Twilio client from TWILIO_ACCOUNT_SID and TWILIO_AUTH_TOKEN.
// An empty from falls back to TWILIO_FROM_NUMBER.
func NewWhatsAppNotifierFromEnv(from string, to []string, logger *zap.Logger) (*WhatsAppNotifier, error) {
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")
	if from == "" {
		from = os.Getenv("TWILIO_FROM_NUMBER")
	}
	if accountSid == "" || authToken == "" || from == "" {
		return nil, fmt.Errorf("twilio credentials are not fully configured")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username:   accountSid,
		Password:   authToken,
		AccountSid: accountSid,
	})
	return NewWhatsAppNotifier(client.Api, from, to, logger), nil
}

// Notify sends text to every recipient
func (n *WhatsAppNotifier) Notify(ctx context.Context, text string) error {
	var errs []error
	for _, to := range n.to {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := n.send(to, text); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (n *WhatsAppNotifier) send(to, text string) error {
	for _, chunk := range SplitMessage(text, MaxWhatsAppMessage) {
		params := &openapi.CreateMessageParams{}
		params.SetTo(whatsappAddress(to))
		params.SetFrom(whatsappAddress(n.from))
		params.SetBody(chunk)

		resp, err := n.api.CreateMessage(params)
		if err != nil {
			return fmt.Errorf("failed to send whatsapp message to %s: %w", to, err)
		}
		if resp != nil && resp.Sid != nil {
			n.logger.Info("whatsapp message sent", zap.String("to", to), zap.String("sid", *resp.Sid))
		}
	}
	return nil
}

// whatsappAddress adds the channel prefix Twilio expects for WhatsApp numbers
func whatsappAddress(number string) string {
	number = strings.TrimSpace(number)
	if strings.HasPrefix(number, whatsappPrefix) {
		return number
	}
	if !strings.HasPrefix(number, "+") {
		number = "+" + number
	}
	return whatsappPrefix + number
}
