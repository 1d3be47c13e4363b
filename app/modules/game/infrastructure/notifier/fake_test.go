package gamenotify

import (
	"context"
	"sync"

	gamedomain "github.com/Black-And-White-Club/leet-bot/app/modules/game/domain"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/bwmarrin/discordgo"
)

type FakeAnnouncer struct {
	mu          sync.Mutex
	Winners     []gamedomain.WinnerAnnouncement
	Catastrophe []gamedomain.CatastropheAnnouncement
	Err         error
}

func (f *FakeAnnouncer) AnnounceWinner(_ context.Context, a gamedomain.WinnerAnnouncement) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Winners = append(f.Winners, a)
	return f.Err
}

func (f *FakeAnnouncer) AnnounceCatastrophe(_ context.Context, a gamedomain.CatastropheAnnouncement) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Catastrophe = append(f.Catastrophe, a)
	return f.Err
}

var _ Announcer = (*FakeAnnouncer)(nil)

type FakeNotifier struct {
	winners     int
	catastrophe int
	Err         error
}

func (f *FakeNotifier) NotifyWinner(context.Context, gamedomain.WinnerAnnouncement) error {
	f.winners++
	return f.Err
}

func (f *FakeNotifier) NotifyCatastrophe(context.Context, gamedomain.CatastropheAnnouncement) error {
	f.catastrophe++
	return f.Err
}

func newTestMessage(payload []byte) *message.Message {
	return message.NewMessage(watermill.NewUUID(), payload)
}

type FakeMessageSession struct {
	Sent map[string][]string
	Err  error
}

func (f *FakeMessageSession) ChannelMessageSend(channelID, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	if f.Sent == nil {
		f.Sent = map[string][]string{}
	}
	f.Sent[channelID] = append(f.Sent[channelID], content)
	return &discordgo.Message{ID: "m1", ChannelID: channelID}, nil
}
