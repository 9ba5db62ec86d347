package stream

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/novalend/governance-storage/internal/events"
)

func TestUnitTopicForSubject(t *testing.T) {
	id := uuid.New()

	for name, tc := range map[string]struct {
		subject  string
		expected string
	}{
		"global proposals": {
			subject:  events.SubjectProposals,
			expected: TopicProposals,
		},
		"single proposal": {
			subject:  events.ProposalSubject(id),
			expected: "proposal:" + id.String(),
		},
		"user channel": {
			subject:  events.UserSubject("0xabc"),
			expected: "user:0xabc",
		},
		"unrelated subject": {
			subject:  "lending.markets",
			expected: "",
		},
	} {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, tc.expected, topicForSubject(tc.subject))
		})
	}
}

func TestUnitValidTopic(t *testing.T) {
	for name, tc := range map[string]struct {
		topic    string
		expected bool
	}{
		"proposals":            {topic: TopicProposals, expected: true},
		"proposal with id":     {topic: "proposal:" + uuid.New().String(), expected: true},
		"user with address":    {topic: "user:0xabc", expected: true},
		"proposal without id":  {topic: "proposal:", expected: false},
		"user without address": {topic: "user:", expected: false},
		"empty":                {topic: "", expected: false},
		"unknown":              {topic: "markets", expected: false},
	} {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, tc.expected, validTopic(tc.topic))
		})
	}
}
