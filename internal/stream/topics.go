package stream

import (
	"strings"

	"github.com/novalend/governance-storage/internal/events"
)

// Topics the client can subscribe to:
//
//	proposals          the global proposal list channel
//	proposal:<id>      votes/discussions/tally of a single proposal
//	user:<address>     the user's notification channel
const (
	TopicProposals      = "proposals"
	topicProposalPrefix = "proposal:"
	topicUserPrefix     = "user:"
)

// topicForSubject maps a NATS subject to the client-facing topic name.
// Unknown subjects map to an empty topic and are dropped.
func topicForSubject(subject string) string {
	switch {
	case subject == events.SubjectProposals:
		return TopicProposals
	case strings.HasPrefix(subject, events.SubjectProposalPrefix):
		return topicProposalPrefix + strings.TrimPrefix(subject, events.SubjectProposalPrefix)
	case strings.HasPrefix(subject, events.SubjectUserPrefix):
		return topicUserPrefix + strings.TrimPrefix(subject, events.SubjectUserPrefix)
	}

	return ""
}

func validTopic(topic string) bool {
	if topic == TopicProposals {
		return true
	}

	if rest, ok := strings.CutPrefix(topic, topicProposalPrefix); ok {
		return rest != ""
	}

	if rest, ok := strings.CutPrefix(topic, topicUserPrefix); ok {
		return rest != ""
	}

	return false
}
