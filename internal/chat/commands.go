package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	appLog "orga-bot/internal/log"

	"github.com/bwmarrin/discordgo"
)

// AddEventCommand is the slash command that creates a calendar event.
const AddEventCommand = "ajouter_evenement"

const interactionTimeout = 30 * time.Second

// EventAdder creates a calendar event and returns a confirmation line.
type EventAdder interface {
	AddEvent(ctx context.Context, summary, start string, durationMinutes int) (string, error)
}

// AddEventDefinition describes the add-event command as registered with
// Discord.
func AddEventDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        AddEventCommand,
		Description: "Ajoute un événement à Google Agenda",
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionString, Name: "titre", Description: "Titre de l'événement", Required: true},
			{Type: discordgo.ApplicationCommandOptionString, Name: "date", Description: "Début, YYYY-MM-DDTHH:MM", Required: true},
			{Type: discordgo.ApplicationCommandOptionInteger, Name: "duree", Description: "Durée en minutes", Required: true},
		},
	}
}

// AddEventArgs are the parsed options of the add-event command.
type AddEventArgs struct {
	Title    string
	Start    string
	Duration int
}

// ParseAddEvent reads the add-event options. Integers arrive as float64
// when decoded from the gateway JSON.
func ParseAddEvent(opts []*discordgo.ApplicationCommandInteractionDataOption) (AddEventArgs, error) {
	var args AddEventArgs
	for _, o := range opts {
		switch o.Name {
		case "titre":
			args.Title, _ = o.Value.(string)
		case "date":
			args.Start, _ = o.Value.(string)
		case "duree":
			switch v := o.Value.(type) {
			case float64:
				args.Duration = int(v)
			case int:
				args.Duration = v
			case int64:
				args.Duration = int(v)
			default:
				return args, fmt.Errorf("option duree: unexpected %T", o.Value)
			}
		}
	}
	args.Title = strings.TrimSpace(args.Title)
	args.Start = strings.TrimSpace(args.Start)
	if args.Title == "" {
		return args, errors.New("option titre is required")
	}
	if args.Start == "" {
		return args, errors.New("option date is required")
	}
	return args, nil
}

// HandleAddEvent runs the add-event command and returns the reply text.
// Failures become a reply too, since the user only sees the message.
func HandleAddEvent(ctx context.Context, events EventAdder, opts []*discordgo.ApplicationCommandInteractionDataOption) string {
	args, err := ParseAddEvent(opts)
	if err != nil {
		return fmt.Sprintf("❌ Commande invalide : %v", err)
	}
	msg, err := events.AddEvent(ctx, args.Title, args.Start, args.Duration)
	if err != nil {
		appLog.Error("add event command failed", err, "title", args.Title, "start", args.Start)
		return fmt.Sprintf("❌ Impossible d'ajouter l'événement : %v", err)
	}
	return msg
}

// Commands serves slash commands over a gateway session.
type Commands struct {
	session *discordgo.Session
	events  EventAdder
	guildID string
	ctx     context.Context
}

// NewCommands builds a gateway client for the slash commands. Nothing is
// opened until Open.
func NewCommands(token, guildID string, events EventAdder) (*Commands, error) {
	if token == "" {
		return nil, ErrNotConfigured
	}
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds
	c := &Commands{session: s, events: events, guildID: guildID, ctx: context.Background()}
	s.AddHandler(c.onInteraction)
	return c, nil
}

// Open connects to the gateway and registers the commands. ctx bounds the
// handlers started afterwards.
func (c *Commands) Open(ctx context.Context) error {
	c.ctx = ctx
	if err := c.session.Open(); err != nil {
		return fmt.Errorf("open discord gateway: %w", err)
	}
	appID := c.session.State.User.ID
	cmd, err := c.session.ApplicationCommandCreate(appID, c.guildID, AddEventDefinition(), discordgo.WithContext(ctx))
	if err != nil {
		_ = c.session.Close()
		return fmt.Errorf("register /%s: %w", AddEventCommand, err)
	}
	appLog.Info("slash command registered", "name", cmd.Name, "guild", c.guildID)
	return nil
}

// Close disconnects from the gateway. Registered commands stay in place.
func (c *Commands) Close() error {
	return c.session.Close()
}

func (c *Commands) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	data := i.ApplicationCommandData()
	if data.Name != AddEventCommand {
		return
	}

	// Calendar calls can outlast the three second acknowledgement window.
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
	if err != nil {
		appLog.Error("acknowledge interaction", err, "command", data.Name)
		return
	}

	ctx, cancel := context.WithTimeout(c.ctx, interactionTimeout)
	defer cancel()
	reply := HandleAddEvent(ctx, c.events, data.Options)
	if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{Content: &reply}); err != nil {
		appLog.Error("reply to interaction", err, "command", data.Name)
	}
}
