package labels

import (
	"testing"

	"github.com/nalgeon/be"

	"github.com/casey/mailsweep/internal/core"
)

func TestIsSystemLabel(t *testing.T) {
	be.True(t, IsSystemLabel("INBOX"))
	be.True(t, IsSystemLabel("UNREAD"))
	be.True(t, IsSystemLabel("STARRED"))
	be.True(t, IsSystemLabel("CATEGORY_PROMOTIONS"))
	be.True(t, IsSystemLabel("CATEGORY_SOCIAL"))
	be.True(t, !IsSystemLabel("Label_23"))
	be.True(t, !IsSystemLabel("Receipts"))
}

func TestHasUserLabels(t *testing.T) {
	be.True(t, !HasUserLabels(core.Message{}))
	be.True(t, !HasUserLabels(core.Message{Labels: []string{"INBOX", "UNREAD", "CATEGORY_UPDATES"}}))
	be.True(t, HasUserLabels(core.Message{Labels: []string{"INBOX", "Label_23"}}))
}

func TestUserLabels(t *testing.T) {
	got := UserLabels([]string{"INBOX", "Label_23", "CATEGORY_SOCIAL", "Receipts"})
	be.Equal(t, got, []string{"Label_23", "Receipts"})

	be.Equal(t, len(UserLabels([]string{"INBOX"})), 0)
}

func TestFilterUnlabeled(t *testing.T) {
	messages := []core.Message{
		{MessageID: "a", Labels: []string{"INBOX", "UNREAD"}},
		{MessageID: "b", Labels: []string{"INBOX", "Label_1"}},
		{MessageID: "c"},
		{MessageID: "d", Labels: []string{"CATEGORY_PROMOTIONS"}},
	}

	unlabeled := FilterUnlabeled(messages)
	be.Equal(t, len(unlabeled), 3)
	be.Equal(t, unlabeled[0].MessageID, "a")
	be.Equal(t, unlabeled[1].MessageID, "c")
	be.Equal(t, unlabeled[2].MessageID, "d")
}
