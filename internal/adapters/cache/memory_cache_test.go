package cache

import (
	"context"
	"testing"
	"time"

	"github.com/nalgeon/be"

	"github.com/casey/mailsweep/internal/core"
)

func TestMemoryCacheSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	now := time.Now()
	_, err := c.SaveMessages(ctx, []core.Message{
		{MessageID: "old", Sender: "a@x.com", Date: now.AddDate(0, 0, -10)},
		{MessageID: "new", Sender: "b@x.com", Date: now.AddDate(0, 0, -1)},
	})
	be.Err(t, err, nil)

	messages, err := c.Messages(ctx, 0)
	be.Err(t, err, nil)
	be.Equal(t, len(messages), 2)
	// newest first
	be.Equal(t, messages[0].MessageID, "new")
	be.Equal(t, messages[1].MessageID, "old")

	recent, err := c.Messages(ctx, 5)
	be.Err(t, err, nil)
	be.Equal(t, len(recent), 1)
	be.Equal(t, recent[0].MessageID, "new")
}

func TestMemoryCacheUpsert(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	_, err := c.SaveMessages(ctx, []core.Message{{MessageID: "m1", Subject: "first"}})
	be.Err(t, err, nil)
	_, err = c.SaveMessages(ctx, []core.Message{{MessageID: "m1", Subject: "second"}})
	be.Err(t, err, nil)

	count, err := c.MessageCount(ctx)
	be.Err(t, err, nil)
	be.Equal(t, count, 1)

	msg, err := c.Message(ctx, "m1")
	be.Err(t, err, nil)
	be.Equal(t, msg.Subject, "second")
}

func TestMemoryCacheMessageMiss(t *testing.T) {
	c := NewMemoryCache()
	msg, err := c.Message(context.Background(), "nope")
	be.Err(t, err, nil)
	be.True(t, msg == nil)
}

func TestMemoryCacheDeleteMessages(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	_, err := c.SaveMessages(ctx, []core.Message{
		{MessageID: "m1"}, {MessageID: "m2"}, {MessageID: "m3"},
	})
	be.Err(t, err, nil)

	deleted, err := c.DeleteMessages(ctx, []string{"m1", "m3", "missing"})
	be.Err(t, err, nil)
	be.Equal(t, deleted, 2)

	count, err := c.MessageCount(ctx)
	be.Err(t, err, nil)
	be.Equal(t, count, 1)
}

func TestMemoryCacheFreshness(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	fresh, err := c.IsFresh(ctx, time.Hour)
	be.Err(t, err, nil)
	be.True(t, !fresh)

	_, err = c.SaveMessages(ctx, []core.Message{{MessageID: "m1"}})
	be.Err(t, err, nil)

	fresh, err = c.IsFresh(ctx, time.Hour)
	be.Err(t, err, nil)
	be.True(t, fresh)

	be.Err(t, c.ClearMessages(ctx), nil)
	fresh, err = c.IsFresh(ctx, time.Hour)
	be.Err(t, err, nil)
	be.True(t, !fresh)
}

func TestMemoryCacheLabels(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	err := c.SaveLabels(ctx, []core.Label{
		{ID: "Label_2", Name: "Zebra"},
		{ID: "Label_1", Name: "Apple"},
	})
	be.Err(t, err, nil)

	labels, err := c.Labels(ctx)
	be.Err(t, err, nil)
	be.Equal(t, len(labels), 2)
	be.Equal(t, labels[0].Name, "Apple")
	be.Equal(t, labels[1].Name, "Zebra")

	nameMap, err := c.LabelNameMap(ctx)
	be.Err(t, err, nil)
	be.Equal(t, nameMap["Label_1"], "Apple")

	be.Err(t, c.ClearLabels(ctx), nil)
	labels, err = c.Labels(ctx)
	be.Err(t, err, nil)
	be.Equal(t, len(labels), 0)
}
