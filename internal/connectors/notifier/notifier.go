// Package notifier alerts store operators when a customer asks for a
// human. Email goes out via SES, SMS via SNS; either channel failing is
// logged and never fails the turn.
package notifier

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"storeassist/internal/common/config"
	apperrors "storeassist/internal/common/errors"
	"storeassist/internal/common/logger"
)

// Define interfaces for mocking
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// HandoffRequest is the operator-facing summary of a handoff turn.
type HandoffRequest struct {
	Tenant    string
	SessionID string
	UserText  string
	Phone     string
}

// Notifier sends handoff alerts to the tenant operator.
type Notifier struct {
	cfg       config.NotificationConfig
	sesClient SESService
	snsClient SNSService
	log       logger.Logger
}

func New(ctx context.Context, cfg config.NotificationConfig, log logger.Logger) (*Notifier, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return &Notifier{
		cfg:       cfg,
		sesClient: ses.NewFromConfig(awsCfg),
		snsClient: sns.NewFromConfig(awsCfg),
		log:       log,
	}, nil
}

// NewWithClients wires explicit clients, used by tests.
func NewWithClients(cfg config.NotificationConfig, sesClient SESService, snsClient SNSService, log logger.Logger) *Notifier {
	return &Notifier{cfg: cfg, sesClient: sesClient, snsClient: snsClient, log: log}
}

// NotifyHandoff alerts the operator over every configured channel.
func (n *Notifier) NotifyHandoff(ctx context.Context, req HandoffRequest) {
	if !n.cfg.Enabled {
		return
	}
	if n.cfg.OperatorEmail != "" {
		if err := n.sendEmail(ctx, req); err != nil {
			n.log.Warn("handoff email failed", map[string]interface{}{
				"tenant": req.Tenant, "error": err.Error(),
			})
		}
	}
	if n.cfg.OperatorPhone != "" {
		if err := n.sendSMS(ctx, req); err != nil {
			n.log.Warn("handoff sms failed", map[string]interface{}{
				"tenant": req.Tenant, "error": err.Error(),
			})
		}
	}
}

func (n *Notifier) sendEmail(ctx context.Context, req HandoffRequest) error {
	subject := fmt.Sprintf("[%s] Customer wants to talk to a person", req.Tenant)
	body := fmt.Sprintf("Session: %s\nPhone: %s\n\nMessage:\n%s\n", req.SessionID, orDash(req.Phone), req.UserText)

	_, err := n.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(n.cfg.SenderEmail),
		Destination: &types.Destination{
			ToAddresses: []string{n.cfg.OperatorEmail},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
	})
	if err != nil {
		return apperrors.NewNotifyFailedError("email", err)
	}
	return nil
}

func (n *Notifier) sendSMS(ctx context.Context, req HandoffRequest) error {
	msg := fmt.Sprintf("[%s] Handoff requested in session %s. Customer phone: %s", req.Tenant, req.SessionID, orDash(req.Phone))

	_, err := n.snsClient.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(n.cfg.OperatorPhone),
		Message:     aws.String(msg),
	})
	if err != nil {
		return apperrors.NewNotifyFailedError("sms", err)
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
