// Package chattest provides an in-memory model.Messenger for handler tests.
package chattest

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/bwmarrin/discordgo"
)

// Sent is one outbound message recorded by the fake.
type Sent struct {
	ChannelID string
	Content   string
	ReplyTo   string
	Files     []*discordgo.File
	Embeds    []*discordgo.MessageEmbed
}

// Reaction is one reaction add or removal.
type Reaction struct {
	ChannelID string
	MessageID string
	Emoji     string
	UserID    string
}

// Thread is one thread started from a message.
type Thread struct {
	ChannelID string
	MessageID string
	Name      string
	ID        string
}

// Fake records every call. Errors keyed by method name are returned instead
// of performing the call.
type Fake struct {
	mu sync.Mutex

	nextID int

	Sent             []Sent
	Edited           []Sent
	Deleted          []string
	ReactionsAdded   []Reaction
	ReactionsRemoved []Reaction
	Threads          []Thread
	Responses        []*discordgo.InteractionResponse

	Channels map[string]*discordgo.Channel
	Guilds   map[string]*discordgo.Guild
	Roles    map[string][]*discordgo.Role
	Users    map[string]*discordgo.User
	Messages map[string][]*discordgo.Message

	Errors map[string]error
}

func New() *Fake {
	return &Fake{
		nextID:   1000,
		Channels: make(map[string]*discordgo.Channel),
		Guilds:   make(map[string]*discordgo.Guild),
		Roles:    make(map[string][]*discordgo.Role),
		Users:    make(map[string]*discordgo.User),
		Messages: make(map[string][]*discordgo.Message),
		Errors:   make(map[string]error),
	}
}

// RESTError builds an error shaped like the ones discordgo returns.
func RESTError(status int) error {
	return &discordgo.RESTError{
		Response: &http.Response{StatusCode: status, Status: http.StatusText(status)},
		Message:  &discordgo.APIErrorMessage{Code: status, Message: http.StatusText(status)},
	}
}

func (f *Fake) id() string {
	f.nextID++
	return strconv.Itoa(f.nextID)
}

func (f *Fake) fail(method string) error {
	return f.Errors[method]
}

// AddMessage puts msg at the newest end of its channel history.
func (f *Fake) AddMessage(msg *discordgo.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Messages[msg.ChannelID] = append(f.Messages[msg.ChannelID], msg)
}

func (f *Fake) record(s Sent) *discordgo.Message {
	f.Sent = append(f.Sent, s)
	msg := &discordgo.Message{ID: f.id(), ChannelID: s.ChannelID, Content: s.Content}
	f.Messages[s.ChannelID] = append(f.Messages[s.ChannelID], msg)
	return msg
}

func (f *Fake) ChannelMessageSend(channelID string, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("ChannelMessageSend"); err != nil {
		return nil, err
	}
	return f.record(Sent{ChannelID: channelID, Content: content}), nil
}

func (f *Fake) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("ChannelMessageSendComplex"); err != nil {
		return nil, err
	}
	s := Sent{ChannelID: channelID, Content: data.Content, Files: data.Files, Embeds: data.Embeds}
	if data.Reference != nil {
		s.ReplyTo = data.Reference.MessageID
	}
	return f.record(s), nil
}

func (f *Fake) ChannelMessageSendReply(channelID string, content string, reference *discordgo.MessageReference, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("ChannelMessageSendReply"); err != nil {
		return nil, err
	}
	s := Sent{ChannelID: channelID, Content: content}
	if reference != nil {
		s.ReplyTo = reference.MessageID
	}
	return f.record(s), nil
}

func (f *Fake) ChannelMessageEdit(channelID, messageID, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("ChannelMessageEdit"); err != nil {
		return nil, err
	}
	f.Edited = append(f.Edited, Sent{ChannelID: channelID, Content: content, ReplyTo: messageID})
	return &discordgo.Message{ID: messageID, ChannelID: channelID, Content: content}, nil
}

func (f *Fake) ChannelMessageDelete(channelID, messageID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("ChannelMessageDelete"); err != nil {
		return err
	}
	f.Deleted = append(f.Deleted, messageID)
	kept := f.Messages[channelID][:0]
	for _, m := range f.Messages[channelID] {
		if m.ID != messageID {
			kept = append(kept, m)
		}
	}
	f.Messages[channelID] = kept
	return nil
}

func (f *Fake) ChannelMessage(channelID, messageID string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("ChannelMessage"); err != nil {
		return nil, err
	}
	for _, m := range f.Messages[channelID] {
		if m.ID == messageID {
			return m, nil
		}
	}
	return nil, RESTError(http.StatusNotFound)
}

// ChannelMessages returns history newest first, honouring beforeID.
func (f *Fake) ChannelMessages(channelID string, limit int, beforeID, _, _ string, _ ...discordgo.RequestOption) ([]*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("ChannelMessages"); err != nil {
		return nil, err
	}
	history := f.Messages[channelID]
	end := len(history)
	if beforeID != "" {
		end = 0
		for i, m := range history {
			if m.ID == beforeID {
				end = i
				break
			}
		}
	}
	var out []*discordgo.Message
	for i := end - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, history[i])
	}
	return out, nil
}

func (f *Fake) MessageReactionAdd(channelID, messageID, emojiID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("MessageReactionAdd"); err != nil {
		return err
	}
	f.ReactionsAdded = append(f.ReactionsAdded, Reaction{ChannelID: channelID, MessageID: messageID, Emoji: emojiID})
	return nil
}

func (f *Fake) MessageReactionRemove(channelID, messageID, emojiID, userID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("MessageReactionRemove"); err != nil {
		return err
	}
	f.ReactionsRemoved = append(f.ReactionsRemoved, Reaction{ChannelID: channelID, MessageID: messageID, Emoji: emojiID, UserID: userID})
	return nil
}

func (f *Fake) MessageThreadStartComplex(channelID, messageID string, data *discordgo.ThreadStart, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("MessageThreadStartComplex"); err != nil {
		return nil, err
	}
	thread := Thread{ChannelID: channelID, MessageID: messageID, Name: data.Name, ID: f.id()}
	f.Threads = append(f.Threads, thread)
	return &discordgo.Channel{ID: thread.ID, Name: data.Name, ParentID: channelID, Type: discordgo.ChannelTypeGuildPublicThread}, nil
}

func (f *Fake) Channel(channelID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("Channel"); err != nil {
		return nil, err
	}
	if ch, ok := f.Channels[channelID]; ok {
		return ch, nil
	}
	return nil, RESTError(http.StatusNotFound)
}

func (f *Fake) Guild(guildID string, _ ...discordgo.RequestOption) (*discordgo.Guild, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("Guild"); err != nil {
		return nil, err
	}
	if g, ok := f.Guilds[guildID]; ok {
		return g, nil
	}
	return nil, RESTError(http.StatusNotFound)
}

func (f *Fake) GuildRoles(guildID string, _ ...discordgo.RequestOption) ([]*discordgo.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("GuildRoles"); err != nil {
		return nil, err
	}
	return f.Roles[guildID], nil
}

func (f *Fake) User(userID string, _ ...discordgo.RequestOption) (*discordgo.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("User"); err != nil {
		return nil, err
	}
	if u, ok := f.Users[userID]; ok {
		return u, nil
	}
	return nil, RESTError(http.StatusNotFound)
}

func (f *Fake) UserChannelCreate(recipientID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("UserChannelCreate"); err != nil {
		return nil, err
	}
	return &discordgo.Channel{ID: fmt.Sprintf("dm-%s", recipientID), Type: discordgo.ChannelTypeDM}, nil
}

func (f *Fake) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("InteractionRespond"); err != nil {
		return err
	}
	f.Responses = append(f.Responses, resp)
	return nil
}

func (f *Fake) InteractionResponse(i *discordgo.Interaction, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("InteractionResponse"); err != nil {
		return nil, err
	}
	return &discordgo.Message{ID: "response-" + i.ID, ChannelID: i.ChannelID}, nil
}

// SentTo returns the contents posted to channelID, in order.
func (f *Fake) SentTo(channelID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, s := range f.Sent {
		if s.ChannelID == channelID {
			out = append(out, s.Content)
		}
	}
	return out
}

// LastResponse returns the most recent interaction response, or nil.
func (f *Fake) LastResponse() *discordgo.InteractionResponse {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Responses) == 0 {
		return nil
	}
	return f.Responses[len(f.Responses)-1]
}
