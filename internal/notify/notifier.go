// internal/notify/notifier.go
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/slack-go/slack"

	"jobboard-agent/internal/board"
	awsclient "jobboard-agent/internal/common/aws"
	"jobboard-agent/internal/common/config"
	commonerrors "jobboard-agent/internal/common/errors"
	"jobboard-agent/internal/common/logger"
	"jobboard-agent/internal/common/metrics"
	"jobboard-agent/internal/followup"
)

var ErrNotificationSendFailed = errors.New("NOTIFICATION_SEND_FAILED")

const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
	ChannelSlack = "slack"
)

// JobLister is satisfied by *board.Board and by every board.Store.
type JobLister interface {
	List(ctx context.Context) ([]board.Job, error)
}

// SlackPoster is the subset of *slack.Client the notifier uses.
type SlackPoster interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

// Channels groups the optional delivery clients. A nil client disables its
// channel.
type Channels struct {
	SES   awsclient.SESService
	SNS   awsclient.SNSService
	Slack SlackPoster
}

type DigestResult struct {
	Overdue  int `json:"overdue"`
	DueToday int `json:"dueToday"`
	Emails   int `json:"emails"`
	SMS      int `json:"sms"`
	Slack    int `json:"slack"`
}

// Due is the number of jobs the digest covered.
func (r DigestResult) Due() int {
	return r.Overdue + r.DueToday
}

// Sent is the number of messages delivered across all channels.
func (r DigestResult) Sent() int {
	return r.Emails + r.SMS + r.Slack
}

type Notifier struct {
	jobs     JobLister
	channels Channels
	cfg      config.NotificationConfig
	tone     followup.Tone
	logger   logger.Logger
}

func NewNotifier(jobs JobLister, channels Channels, cfg config.NotificationConfig, log logger.Logger) (*Notifier, error) {
	tone, err := followup.ParseTone(cfg.Tone)
	if err != nil {
		return nil, err
	}
	return &Notifier{
		jobs:     jobs,
		channels: channels,
		cfg:      cfg,
		tone:     tone,
		logger:   log.WithFields(map[string]interface{}{"component": "notifier"}),
	}, nil
}

// SendDigest sends one reminder per configured channel covering every job
// whose follow-up is due today or overdue. Nothing is sent when no job is due.
// A failing channel does not stop the others.
func (n *Notifier) SendDigest(ctx context.Context, now time.Time) (DigestResult, error) {
	jobs, err := n.jobs.List(ctx)
	if err != nil {
		return DigestResult{}, err
	}

	snap := board.TodaySnapshot(jobs, now)
	result := DigestResult{Overdue: len(snap.Overdue), DueToday: len(snap.DueToday)}
	if result.Due() == 0 {
		n.logger.Debug("no follow-ups due", nil)
		return result, nil
	}

	var failed []string
	if n.channels.SES != nil && n.cfg.ToEmail != "" {
		if err := n.sendEmail(ctx, snap, now); err != nil {
			failed = append(failed, n.recordFailure(ChannelEmail, err))
		} else {
			result.Emails++
			metrics.NotificationsSent.WithLabelValues(ChannelEmail).Inc()
		}
	}
	if n.channels.SNS != nil && n.cfg.SMSPhone != "" {
		if _, err := n.channels.SNS.Publish(ctx, awsclient.TransactionalSMS(n.cfg.SMSPhone, smsText(snap))); err != nil {
			failed = append(failed, n.recordFailure(ChannelSMS, err))
		} else {
			result.SMS++
			metrics.NotificationsSent.WithLabelValues(ChannelSMS).Inc()
		}
	}
	if n.channels.Slack != nil && n.cfg.Slack.ChannelID != "" {
		if _, _, err := n.channels.Slack.PostMessageContext(ctx, n.cfg.Slack.ChannelID,
			slack.MsgOptionText(slackText(snap, now), false)); err != nil {
			failed = append(failed, n.recordFailure(ChannelSlack, err))
		} else {
			result.Slack++
			metrics.NotificationsSent.WithLabelValues(ChannelSlack).Inc()
		}
	}

	fields := map[string]interface{}{
		"overdue":  result.Overdue,
		"dueToday": result.DueToday,
		"emails":   result.Emails,
		"sms":      result.SMS,
		"slack":    result.Slack,
	}
	if result.Sent() > 0 {
		n.logger.Info("follow-up digest sent", fields)
	} else {
		n.logger.Warn("follow-up digest not delivered", fields)
	}

	if len(failed) > 0 {
		return result, fmt.Errorf("%w: %s", ErrNotificationSendFailed, strings.Join(failed, ", "))
	}
	return result, nil
}

func (n *Notifier) sendEmail(ctx context.Context, snap board.TodaySummary, now time.Time) error {
	subject := fmt.Sprintf("Follow-ups due %s (%d)", now.Format(board.DateLayout), len(snap.Overdue)+len(snap.DueToday))
	input := awsclient.PlainTextEmail(n.cfg.FromEmail, n.cfg.ToEmail, subject, n.emailBody(snap))
	_, err := n.channels.SES.SendEmail(ctx, input)
	return err
}

func (n *Notifier) recordFailure(channel string, err error) string {
	stdErr := commonerrors.NewNotificationSendFailedError(channel, err)
	n.logger.Error("notification failed", map[string]interface{}{
		"channel":   channel,
		"errorCode": string(stdErr.Code),
		"error":     err.Error(),
	})
	return channel
}

// emailBody lists the due jobs, each followed by a ready-to-send draft.
func (n *Notifier) emailBody(snap board.TodaySummary) string {
	var b strings.Builder
	write := func(heading string, jobs []board.Job) {
		for _, j := range jobs {
			draft := followup.Draft(j, n.tone)
			fmt.Fprintf(&b, "%s: %s\n", heading, j.Label())
			fmt.Fprintf(&b, "Subject: %s\n\n%s\n\n", draft.Subject, draft.Body)
			b.WriteString(strings.Repeat("-", 40))
			b.WriteString("\n\n")
		}
	}
	write("Overdue", snap.Overdue)
	write("Due today", snap.DueToday)
	return strings.TrimRight(b.String(), "\n") + "\n"
}

func smsText(snap board.TodaySummary) string {
	labels := make([]string, 0, len(snap.Overdue)+len(snap.DueToday))
	for _, j := range append(append([]board.Job{}, snap.Overdue...), snap.DueToday...) {
		labels = append(labels, j.Company)
	}
	return fmt.Sprintf("Job board: %d follow-up(s) due: %s", len(labels), strings.Join(labels, ", "))
}

func slackText(snap board.TodaySummary, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*Follow-ups for %s*\n", now.Format(board.DateLayout))
	for _, j := range snap.Overdue {
		fmt.Fprintf(&b, "• %s (overdue since %s)\n", j.Label(), j.FollowUpAt.In(now.Location()).Format(board.DateLayout))
	}
	for _, j := range snap.DueToday {
		fmt.Fprintf(&b, "• %s (today)\n", j.Label())
	}
	return strings.TrimRight(b.String(), "\n")
}
