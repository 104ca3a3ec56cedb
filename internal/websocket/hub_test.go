package chatws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/MartinT518/MomentumTracker-sub004/internal/services"
)

func receiveEvent(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case payload := <-c.send:
		var event Event
		if err := json.Unmarshal(payload, &event); err != nil {
			t.Fatalf("decode event: %v", err)
		}
		return event
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for event")
	}
	return Event{}
}

func relayedMessage(sender, recipient, content string) *Event {
	return &Event{
		Type:           EventMessage,
		ConversationID: "5",
		SenderID:       sender,
		RecipientID:    recipient,
		Content:        content,
		Timestamp:      services.FormatChatTimestamp(time.Now().UTC()),
	}
}

func TestHubRelaysMessageToBothParticipants(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	sender := NewClient(hub, nil, "1")
	recipient := NewClient(hub, nil, "2")
	hub.Register(sender)
	hub.Register(recipient)

	hub.relay <- relayedMessage("1", "2", "see you at the track")

	got := receiveEvent(t, recipient)
	if got.Type != EventMessage || got.Content != "see you at the track" {
		t.Fatalf("unexpected recipient event %+v", got)
	}

	// The sender's other open sockets stay in sync through the echo.
	echo := receiveEvent(t, sender)
	if echo.SenderID != "1" || echo.Content != "see you at the track" {
		t.Fatalf("unexpected sender echo %+v", echo)
	}
}

func TestHubTypingEventSkipsSender(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	sender := NewClient(hub, nil, "1")
	recipient := NewClient(hub, nil, "2")
	hub.Register(sender)
	hub.Register(recipient)

	hub.relay <- &Event{
		Type:           EventTyping,
		ConversationID: "5",
		SenderID:       "1",
		RecipientID:    "2",
		Timestamp:      services.FormatChatTimestamp(time.Now().UTC()),
	}

	got := receiveEvent(t, recipient)
	if got.Type != EventTyping {
		t.Fatalf("expected typing event, got %+v", got)
	}

	select {
	case payload := <-sender.send:
		t.Fatalf("typing indicator echoed to sender: %s", payload)
	default:
	}
}

func TestHubFansOutToEverySocketOfAUser(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	laptop := NewClient(hub, nil, "2")
	phone := NewClient(hub, nil, "2")
	hub.Register(laptop)
	hub.Register(phone)

	hub.relay <- relayedMessage("1", "2", "new plan is up")

	for _, client := range []*Client{laptop, phone} {
		got := receiveEvent(t, client)
		if got.Content != "new plan is up" {
			t.Fatalf("unexpected event %+v", got)
		}
	}
}

func TestHubUnregisterStopsDelivery(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := NewClient(hub, nil, "2")
	hub.Register(client)
	hub.Unregister(client)

	select {
	case <-client.done:
	case <-time.After(time.Second):
		t.Fatalf("expected done to close on unregister")
	}

	hub.relay <- relayedMessage("1", "2", "anyone there")

	select {
	case payload := <-client.send:
		t.Fatalf("delivery after unregister: %s", payload)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSlowConsumerIsDroppedNotCrashed(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	slow := NewClient(hub, nil, "7")
	hub.Register(slow)

	// A socket that never reads eventually fills its outbound buffer.
	for i := 0; i < cap(slow.send); i++ {
		slow.send <- []byte("backlog")
	}

	hub.relay <- relayedMessage("9", "7", "overflow")

	select {
	case <-slow.done:
	case <-time.After(time.Second):
		t.Fatalf("expected slow consumer to be dropped")
	}

	// A writer racing the drop selects on done instead of panicking on a
	// closed channel.
	slow.writeError("invalid event payload")

	// The read side tears down independently after a drop.
	hub.Unregister(slow)

	fresh := NewClient(hub, nil, "7")
	hub.Register(fresh)
	hub.relay <- relayedMessage("9", "7", "still alive")

	got := receiveEvent(t, fresh)
	if got.Content != "still alive" {
		t.Fatalf("hub stopped relaying after drop: %+v", got)
	}
}
