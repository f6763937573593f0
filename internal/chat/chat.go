package chat

import (
	"context"
	"errors"
	"fmt"

	appLog "orga-bot/internal/log"

	"github.com/bwmarrin/discordgo"
)

// MessageLimit is the per-message character limit of the chat platform.
const MessageLimit = 2000

// ErrNotConfigured means no bot token or channel was provided.
var ErrNotConfigured = errors.New("discord not configured")

// Sender posts text to a channel.
type Sender interface {
	Send(ctx context.Context, channelID, text string) error
}

// Chunk splits text into messages of at most limit runes. When more than
// one part is needed each part starts with "(i/n)\n" and the header counts
// toward the limit.
func Chunk(text string, limit int) []string {
	runes := []rune(text)
	if len(runes) <= limit {
		return []string{text}
	}

	// Grow the part count until the header width settles.
	n := 1
	size := 0
	for {
		size = limit - len([]rune(header(n, n)))
		if size <= 0 {
			return []string{text}
		}
		need := (len(runes) + size - 1) / size
		if need <= n {
			break
		}
		n = need
	}
	parts := (len(runes) + size - 1) / size

	out := make([]string, 0, parts)
	for i := 0; i < parts; i++ {
		end := min((i+1)*size, len(runes))
		out = append(out, header(i+1, parts)+string(runes[i*size:end]))
	}
	return out
}

func header(i, n int) string {
	return fmt.Sprintf("(%d/%d)\n", i, n)
}

// Discord sends messages over the Discord REST API. No gateway session is
// opened.
type Discord struct {
	session *discordgo.Session
}

// NewDiscord builds a REST-only client from a bot token.
func NewDiscord(token string) (*Discord, error) {
	if token == "" {
		return nil, errors.New("discord bot token is empty")
	}
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	return &Discord{session: s}, nil
}

// Send posts text to channelID, split into consecutive parts if needed.
func (d *Discord) Send(ctx context.Context, channelID, text string) error {
	if channelID == "" {
		return errors.New("discord channel id is empty")
	}
	parts := Chunk(text, MessageLimit)
	for i, part := range parts {
		if _, err := d.session.ChannelMessageSend(channelID, part, discordgo.WithContext(ctx)); err != nil {
			return fmt.Errorf("send part %d/%d to channel %s: %w", i+1, len(parts), channelID, err)
		}
	}
	appLog.Info("chat message sent", "channel", channelID, "parts", len(parts), "chars", len([]rune(text)))
	return nil
}
