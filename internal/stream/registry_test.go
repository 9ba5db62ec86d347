package stream

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	registry := NewRegistry()

	first := uuid.New()
	second := uuid.New()

	t.Run("empty topic has no sessions", func(t *testing.T) {
		list, ok := registry.Get(TopicProposals)
		require.False(t, ok)
		require.Empty(t, list)
	})

	t.Run("added sessions are returned", func(t *testing.T) {
		registry.Add(TopicProposals, first)
		registry.Add(TopicProposals, second)

		list, ok := registry.Get(TopicProposals)
		require.True(t, ok)
		require.ElementsMatch(t, []uuid.UUID{first, second}, list)
	})

	t.Run("adding twice keeps one entry", func(t *testing.T) {
		registry.Add(TopicProposals, first)

		list, _ := registry.Get(TopicProposals)
		require.Len(t, list, 2)
	})

	t.Run("topics are independent", func(t *testing.T) {
		registry.Add("user:0xaaa", first)

		list, ok := registry.Get("user:0xaaa")
		require.True(t, ok)
		require.Equal(t, []uuid.UUID{first}, list)

		list, _ = registry.Get(TopicProposals)
		require.Len(t, list, 2)
	})

	t.Run("removing the last session drops the topic", func(t *testing.T) {
		registry.Remove("user:0xaaa", first)

		_, ok := registry.Get("user:0xaaa")
		require.False(t, ok)
	})

	t.Run("removing an unknown session is a no-op", func(t *testing.T) {
		registry.Remove(TopicProposals, uuid.New())
		registry.Remove("no-such-topic", first)

		list, _ := registry.Get(TopicProposals)
		require.Len(t, list, 2)
	})

	t.Run("remove topic clears everything", func(t *testing.T) {
		registry.RemoveTopic(TopicProposals)

		_, ok := registry.Get(TopicProposals)
		require.False(t, ok)
	})
}
