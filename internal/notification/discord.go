package notification

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/bradykim7/pagecrawl/internal/events"
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

const (
	colorCompleted = 0x00ff00
	colorFailed    = 0xff0000

	// Discord API limits, 1 message per 2 seconds
	sendInterval = 2 * time.Second
)

type sendFunc func(channelID string, embed *discordgo.MessageEmbed) error

// DiscordNotifier posts job outcomes to a Discord channel. It observes
// job.completed and job.failed events and ignores the rest.
type DiscordNotifier struct {
	session     *discordgo.Session
	send        sendFunc
	channelID   string
	logger      *zap.Logger
	rateLimiter *time.Ticker
}

// NewDiscordNotifier creates a notifier that posts to channelID as the bot
// identified by token
func NewDiscordNotifier(token, channelID string, log *zap.Logger) (*DiscordNotifier, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	n := newNotifier(func(channelID string, embed *discordgo.MessageEmbed) error {
		_, err := session.ChannelMessageSendEmbed(channelID, embed)
		return err
	}, channelID, sendInterval, log)
	n.session = session
	return n, nil
}

func newNotifier(send sendFunc, channelID string, interval time.Duration, log *zap.Logger) *DiscordNotifier {
	return &DiscordNotifier{
		send:        send,
		channelID:   channelID,
		logger:      log.Named("discord-notifier"),
		rateLimiter: time.NewTicker(interval),
	}
}

// Observe sends an embed for finished jobs. Send failures are logged, never
// returned, so a Discord outage cannot affect a job.
func (n *DiscordNotifier) Observe(ctx context.Context, e events.Event) {
	if e.Kind != events.JobCompleted && e.Kind != events.JobFailed {
		return
	}

	// Wait for rate limiter to avoid rate limits
	select {
	case <-n.rateLimiter.C:
	case <-ctx.Done():
		n.logger.Warn("Skipping notification, context done", zap.Int64("job_id", e.JobID))
		return
	}

	if err := n.send(n.channelID, jobEmbed(e)); err != nil {
		n.logger.Error("Failed to send Discord message",
			zap.Error(err),
			zap.String("channel_id", n.channelID),
			zap.Int64("job_id", e.JobID))
		return
	}

	n.logger.Info("Sent notification",
		zap.String("channel_id", n.channelID),
		zap.Int64("job_id", e.JobID),
		zap.String("kind", string(e.Kind)))
}

// jobEmbed creates a rich embed describing a finished job
func jobEmbed(e events.Event) *discordgo.MessageEmbed {
	status, color := "completed", colorCompleted
	if e.Kind == events.JobFailed {
		status, color = "failed", colorFailed
	}

	fields := []*discordgo.MessageEmbedField{
		{
			Name:   "Source",
			Value:  e.SourceType,
			Inline: true,
		},
		{
			Name:   "Elapsed",
			Value:  e.Elapsed.Round(time.Millisecond).String(),
			Inline: true,
		},
	}

	if e.Kind == events.JobCompleted {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   "Records",
			Value:  fmt.Sprintf("%d", e.Records),
			Inline: true,
		})
	}

	if e.Err != nil {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   "Error",
			Value:  truncate(e.Err.Error(), 1024),
			Inline: false,
		})
	}

	return &discordgo.MessageEmbed{
		Title:  fmt.Sprintf("Job #%d %s %s", e.JobID, e.JobName, status),
		URL:    e.URL,
		Color:  color,
		Fields: fields,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Finished at %s", e.Time.Format("2006-01-02 15:04:05")),
		},
	}
}

// truncate limits s to n bytes without splitting a rune, embed field values
// are capped by Discord
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

// Close cleans up resources
func (n *DiscordNotifier) Close() {
	n.rateLimiter.Stop()
	if n.session != nil {
		n.session.Close()
	}
}
