package server_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/parlorchat/parlor/internal/server"
)

func recvChat(t *testing.T, sub *server.Subscription) server.ChatMessage {
	t.Helper()
	select {
	case msg := <-sub.C():
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for broadcast")
		return server.ChatMessage{}
	}
}

func assertSilent(t *testing.T, sub *server.Subscription) {
	t.Helper()
	select {
	case msg := <-sub.C():
		t.Fatalf("unexpected message: %+v", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRoomFanOutInOrder(t *testing.T) {
	room := server.NewRoom("general", server.DefaultRoomBuffer)
	alice := room.Subscribe("alice")
	bob := room.Subscribe("bob")
	recvChat(t, alice) // bob's join notice

	sender := uuid.New()
	for _, content := range []string{"one", "two", "three"} {
		room.Publish(server.ChatMessage{SenderID: sender, SenderName: "carol", Content: content})
	}

	for _, sub := range []*server.Subscription{alice, bob} {
		for _, want := range []string{"one", "two", "three"} {
			got := recvChat(t, sub)
			assert.Equal(t, want, got.Content)
			assert.Equal(t, "carol", got.SenderName)
			assert.Equal(t, sender, got.SenderID)
		}
	}
}

func TestRoomJoinNotice(t *testing.T) {
	room := server.NewRoom("general", server.DefaultRoomBuffer)

	alice := room.Subscribe("alice")
	assertSilent(t, alice) // nobody was there to greet alice

	bob := room.Subscribe("bob")

	notice := recvChat(t, alice)
	assert.Equal(t, server.SystemSender, notice.SenderName)
	assert.Equal(t, "User bob joined", notice.Content)
	assert.Equal(t, uuid.Nil, notice.SenderID)

	// The joiner never sees its own announcement.
	assertSilent(t, bob)
}

func TestRoomNoBacklogReplay(t *testing.T) {
	room := server.NewRoom("general", server.DefaultRoomBuffer)
	room.Publish(server.ChatMessage{SenderName: "alice", Content: "before"})

	late := room.Subscribe("late")
	assertSilent(t, late)
}

func TestRoomSlowSubscriberLosesOldest(t *testing.T) {
	const capacity = 3
	room := server.NewRoom("general", capacity)
	slow := room.Subscribe("slow")

	for _, content := range []string{"m1", "m2", "m3", "m4", "m5"} {
		room.Publish(server.ChatMessage{SenderName: "fast", Content: content})
	}

	// The buffer holds the newest capacity messages; the oldest were evicted.
	for _, want := range []string{"m3", "m4", "m5"} {
		assert.Equal(t, want, recvChat(t, slow).Content)
	}
	assertSilent(t, slow)
}

func TestRoomPublishNeverBlocks(t *testing.T) {
	room := server.NewRoom("general", 2)
	room.Subscribe("stuck") // never reads

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 500; i++ {
			room.Publish(server.ChatMessage{SenderName: "fast", Content: "x"})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}

func TestSubscriptionCancel(t *testing.T) {
	room := server.NewRoom("general", server.DefaultRoomBuffer)
	alice := room.Subscribe("alice")
	bob := room.Subscribe("bob")
	recvChat(t, alice) // bob's join notice

	alice.Cancel()
	alice.Cancel() // idempotent

	room.Publish(server.ChatMessage{SenderName: "bob", Content: "anyone?"})
	assert.Equal(t, "anyone?", recvChat(t, bob).Content)
	assertSilent(t, alice)
}
