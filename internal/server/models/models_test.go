package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeStrict(t *testing.T) {
	var m ChatMessage
	require.NoError(t, DecodeStrict([]byte(`{"senderName":"ann","recName":"bob","sentText":"hi"}`), &m))
	assert.Equal(t, "hi", m.SentText)

	assert.Error(t, DecodeStrict([]byte(`{"senderName":"ann","colour":"red"}`), &ChatMessage{}))
	assert.Error(t, DecodeStrict([]byte(`{"senderName":"ann"} {}`), &ChatMessage{}))
	assert.Error(t, DecodeStrict([]byte(`  `), &ChatMessage{}))
	assert.Error(t, DecodeStrict([]byte(`[1,2]`), &ChatMessage{}))
}

func TestServiceProvider_Validate(t *testing.T) {
	lat, badLong := 51.5, 190.0

	ok := ServiceProvider{Username: "plumber", Latitude: &lat}
	require.NoError(t, ok.Validate())

	assert.Error(t, (&ServiceProvider{}).Validate())
	assert.Error(t, (&ServiceProvider{Username: "x", Longitude: &badLong}).Validate())
	assert.Error(t, (&ServiceProvider{Username: "x", CompletedJobs: -1}).Validate())
}

func TestChatMessage_Validate(t *testing.T) {
	assert.NoError(t, (&ChatMessage{SenderName: "a", RecName: "b"}).Validate())
	assert.Error(t, (&ChatMessage{SenderName: "a"}).Validate())
	assert.Error(t, (&ChatMessage{RecName: "b"}).Validate())
}

func TestCounters_AddAndAverage(t *testing.T) {
	c := Counters{}
	assert.Equal(t, int64(1), c.Add(CounterLikes, 1))
	assert.Equal(t, int64(0), c.Add(CounterLikes, -1))
	assert.Equal(t, int64(2), c.Add(CounterComments, 2))
	assert.Equal(t, int64(2), c.Get(CounterComments))
	assert.Zero(t, c.RatingAverage())

	c.RatingSum, c.RatingCount = 9, 2
	assert.InDelta(t, 4.5, c.RatingAverage(), 1e-9)
}

func TestParseMembershipKind(t *testing.T) {
	k, err := ParseMembershipKind("dislike")
	require.NoError(t, err)
	assert.Equal(t, CounterDislikes, k.Counter())

	_, err = ParseMembershipKind("love")
	assert.Error(t, err)
}

func TestRecordClone(t *testing.T) {
	r := &Record{ID: "m1", Payload: json.RawMessage(`{"a":1}`)}
	c := r.Clone()
	c.Payload[2] = 'b'
	assert.Equal(t, `{"a":1}`, string(r.Payload))
	assert.Nil(t, (*Record)(nil).Clone())
}
