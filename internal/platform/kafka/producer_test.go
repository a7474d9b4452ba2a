package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToRecord(t *testing.T) {
	r := toRecord(Message{
		Topic:   "onboard.audit",
		Key:     []byte("person-1"),
		Value:   []byte(`{"action":"person_created"}`),
		Headers: map[string]string{"event_type": "person_created", "category": "compliance"},
	})

	assert.Equal(t, "onboard.audit", r.Topic)
	assert.Equal(t, []byte("person-1"), r.Key)
	require.Len(t, r.Headers, 2)
	assert.Equal(t, "category", r.Headers[0].Key)
	assert.Equal(t, []byte("compliance"), r.Headers[0].Value)
	assert.Equal(t, "event_type", r.Headers[1].Key)
}

func TestNewProducerRequiresBrokers(t *testing.T) {
	_, err := NewProducer(nil, nil)
	require.Error(t, err)
}
