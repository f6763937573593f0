package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/require"
)

type fakeAdder struct {
	summary  string
	start    string
	duration int
	err      error
}

func (f *fakeAdder) AddEvent(_ context.Context, summary, start string, durationMinutes int) (string, error) {
	f.summary, f.start, f.duration = summary, start, durationMinutes
	if f.err != nil {
		return "", f.err
	}
	return "✅ Événement ajouté : " + summary, nil
}

func addEventOptions(title, start string, duration any) []*discordgo.ApplicationCommandInteractionDataOption {
	return []*discordgo.ApplicationCommandInteractionDataOption{
		{Name: "titre", Type: discordgo.ApplicationCommandOptionString, Value: title},
		{Name: "date", Type: discordgo.ApplicationCommandOptionString, Value: start},
		{Name: "duree", Type: discordgo.ApplicationCommandOptionInteger, Value: duration},
	}
}

func TestAddEventDefinition(t *testing.T) {
	def := AddEventDefinition()
	require.Equal(t, "ajouter_evenement", def.Name)
	require.Len(t, def.Options, 3)

	names := []string{}
	for _, o := range def.Options {
		require.True(t, o.Required)
		names = append(names, o.Name)
	}
	require.Equal(t, []string{"titre", "date", "duree"}, names)
	require.Equal(t, discordgo.ApplicationCommandOptionInteger, def.Options[2].Type)
}

func TestParseAddEvent(t *testing.T) {
	args, err := ParseAddEvent(addEventOptions(" Dentiste ", "2025-01-08T14:00", float64(45)))
	require.NoError(t, err)
	require.Equal(t, AddEventArgs{Title: "Dentiste", Start: "2025-01-08T14:00", Duration: 45}, args)

	_, err = ParseAddEvent(addEventOptions("", "2025-01-08T14:00", float64(45)))
	require.Error(t, err)

	_, err = ParseAddEvent(addEventOptions("Dentiste", "2025-01-08T14:00", "soon"))
	require.Error(t, err)
}

func TestHandleAddEvent_RepliesWithConfirmation(t *testing.T) {
	adder := &fakeAdder{}
	reply := HandleAddEvent(context.Background(), adder, addEventOptions("Dentiste", "2025-01-08T14:00", float64(30)))

	require.Equal(t, "✅ Événement ajouté : Dentiste", reply)
	require.Equal(t, "Dentiste", adder.summary)
	require.Equal(t, "2025-01-08T14:00", adder.start)
	require.Equal(t, 30, adder.duration)
}

func TestHandleAddEvent_ErrorsBecomeReplies(t *testing.T) {
	adder := &fakeAdder{err: errors.New("calendar unavailable")}
	reply := HandleAddEvent(context.Background(), adder, addEventOptions("Dentiste", "2025-01-08T14:00", float64(30)))
	require.Contains(t, reply, "calendar unavailable")

	untouched := &fakeAdder{}
	reply = HandleAddEvent(context.Background(), untouched, addEventOptions("Dentiste", "", float64(30)))
	require.Contains(t, reply, "date")
	require.Empty(t, untouched.summary)
}

func TestNewCommands_RequiresToken(t *testing.T) {
	_, err := NewCommands("", "", &fakeAdder{})
	require.ErrorIs(t, err, ErrNotConfigured)
}
