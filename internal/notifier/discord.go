package notifier

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// Notice describes a generated document.
type Notice struct {
	Kind      string
	Reference string
	Subject   string
	Pages     int
	Bytes     int
	URL       string
}

type Notifier interface {
	NotifyDocument(n Notice) error
}

type DiscordNotifier struct {
	session   *discordgo.Session
	channelID string
	logger    *slog.Logger
}

func NewDiscordNotifier(session *discordgo.Session, channelID string, logger *slog.Logger) *DiscordNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &DiscordNotifier{
		session:   session,
		channelID: channelID,
		logger:    logger,
	}
}

// NewDiscordSession opens a bot session for token. An empty token yields a
// nil session, which NotifyDocument reports as an error.
func NewDiscordSession(token string) (*discordgo.Session, error) {
	if token == "" {
		return nil, nil
	}
	return discordgo.New("Bot " + token)
}

func (n *DiscordNotifier) NotifyDocument(notice Notice) error {
	if n.session == nil {
		return fmt.Errorf("discord session is nil")
	}
	if n.channelID == "" {
		return fmt.Errorf("discord channel ID is empty")
	}

	_, err := n.session.ChannelMessageSend(n.channelID, Message(notice))
	if err != nil {
		n.logger.Error("failed to send discord message", "reference", notice.Reference, "error", err)
		return err
	}
	return nil
}

// Message renders the channel message for a notice.
func Message(n Notice) string {
	var b strings.Builder
	switch n.Kind {
	case "itinerary":
		b.WriteString("🧾 **Itinerary Generated**")
	default:
		b.WriteString("📄 **Document Generated**")
	}
	if n.Reference != "" {
		fmt.Fprintf(&b, "\n**Reference:** %s", n.Reference)
	}
	if n.Subject != "" {
		fmt.Fprintf(&b, "\n**Lead Guest:** %s", n.Subject)
	}
	fmt.Fprintf(&b, "\n**Pages:** %d\n**Size:** %d bytes", n.Pages, n.Bytes)
	if n.URL != "" {
		fmt.Fprintf(&b, "\n**Download:** %s", n.URL)
	}
	return b.String()
}
