package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPollHasVoted(t *testing.T) {
	poll := &Poll{
		Question: "repaint the lobby?",
		Options:  []string{"yes", "no"},
		Votes:    []int64{3, 1},
		Voters:   []string{"user-a", "user-b"},
	}

	assert.True(t, poll.HasVoted("user-a"))
	assert.True(t, poll.HasVoted("user-b"))
	assert.False(t, poll.HasVoted("user-c"))
	assert.False(t, poll.HasVoted(""))
}

func TestPollTotalVotes(t *testing.T) {
	poll := &Poll{
		Options: []string{"a", "b", "c"},
		Votes:   []int64{2, 0, 5},
	}
	assert.Equal(t, int64(7), poll.TotalVotes())

	empty := &Poll{Options: []string{"a", "b"}, Votes: []int64{0, 0}}
	assert.Equal(t, int64(0), empty.TotalVotes())
}

func TestEventAttendeeCount(t *testing.T) {
	event := &Event{
		Title: "diwali celebration",
		RSVPs: []EventRSVP{
			{Status: RSVPYes},
			{Status: RSVPNo},
			{Status: RSVPYes},
		},
	}
	assert.Equal(t, 2, event.AttendeeCount())

	assert.Equal(t, 0, (&Event{}).AttendeeCount())
}

func TestChatRoomHasMember(t *testing.T) {
	room := &ChatRoom{
		Code:    "AB12CD",
		Members: []string{"user-a", "user-b"},
	}

	assert.True(t, room.HasMember("user-a"))
	assert.False(t, room.HasMember("user-z"))
}
