package notifier

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/cockroachdb/errors"
	"github.com/tamecovita/reservations/internal/models"
)

type Notifier interface {
	NotifyReservation(r models.Reservation) error
}

// MessageSender is the part of a discordgo session the notifier uses.
type MessageSender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type DiscordNotifier struct {
	session   MessageSender
	channelID string
}

func NewDiscordNotifier(session MessageSender, channelID string) *DiscordNotifier {
	return &DiscordNotifier{
		session:   session,
		channelID: channelID,
	}
}

// NewFromToken opens a bot session. Without a token or channel it returns
// a notifier that does nothing.
func NewFromToken(token, channelID string) (Notifier, error) {
	if token == "" || channelID == "" {
		return Nop{}, nil
	}
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return Nop{}, errors.Wrap(err, "discord session")
	}
	return NewDiscordNotifier(session, channelID), nil
}

func Message(r models.Reservation) string {
	paid := ""
	if r.PaymentMethod != "" {
		paid = fmt.Sprintf(" via %s", r.PaymentMethod)
	}
	return fmt.Sprintf("🏠 **New Reservation %s**\n**Guest:** %s (%s)\n**Apartment:** %s, %s\n**Dates:** %s - %s (%s nights)\n**Total:** %s | **Paid:** %s%s | **Balance:** %s",
		r.ReceiptNo,
		r.GuestName,
		r.Contact,
		r.ApartmentType,
		r.Location,
		r.CheckIn,
		r.CheckOut,
		r.Nights.String(),
		r.Total.Fixed(),
		r.AmountPaid.Fixed(),
		paid,
		r.Balance.Fixed(),
	)
}

func (n *DiscordNotifier) NotifyReservation(r models.Reservation) error {
	if n.session == nil {
		return errors.New("discord session is nil")
	}
	if n.channelID == "" {
		return errors.New("discord channel ID is empty")
	}

	if _, err := n.session.ChannelMessageSend(n.channelID, Message(r)); err != nil {
		return errors.Wrap(err, "send discord message")
	}
	return nil
}

type Nop struct{}

func (Nop) NotifyReservation(models.Reservation) error { return nil }
