package store

import (
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func article(id string) Entity {
	return Entity{
		ID:         id,
		Kind:       KindArticle,
		Title:      gofakeit.Sentence(4),
		Tags:       []string{"go", "cli"},
		Likes:      NewSet("u2", "u3"),
		LikesCount: 2,
		Comments: []Comment{
			{ID: "c1", EntityID: id, Content: gofakeit.Sentence(6), Replies: []Comment{
				{ID: "r1", EntityID: id, ParentID: "c1", Content: gofakeit.Sentence(3)},
			}},
			{ID: "c2", EntityID: id, Content: gofakeit.Sentence(6)},
		},
	}
}

func TestSetMembership(t *testing.T) {
	s := NewSet("a", "b", "a")
	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Add("c"))
	assert.False(t, s.Add("c"))
	assert.False(t, s.Add(""))
	assert.True(t, s.Remove("a"))
	assert.False(t, s.Remove("a"))
	assert.Equal(t, []string{"b", "c"}, s.Slice())

	s.Remove("b")
	s.Remove("c")
	assert.Equal(t, Set{}, s, "emptied set should equal the zero value")
}

func TestGetReturnsIndependentCopy(t *testing.T) {
	s := New()
	s.Upsert(article("a1"))

	got, ok := s.Get("a1")
	require.True(t, ok)
	got.Likes.Add("u9")
	got.Tags[0] = "changed"
	got.Comments[0].Replies[0].Content = "changed"

	again, _ := s.Get("a1")
	assert.False(t, again.Likes.Has("u9"))
	assert.Equal(t, "go", again.Tags[0])
	assert.NotEqual(t, "changed", again.Comments[0].Replies[0].Content)
}

func TestUpsertReplacesWholesale(t *testing.T) {
	s := New()
	s.Upsert(article("a1"))
	s.Upsert(Entity{ID: "a1", Kind: KindArticle, Title: "fresh"})

	got, _ := s.Get("a1")
	assert.Equal(t, "fresh", got.Title)
	assert.Empty(t, got.Comments)
	assert.Zero(t, got.LikesCount)
}

func TestMutateReturnsPrior(t *testing.T) {
	s := New()
	s.Upsert(article("a1"))

	prior, err := s.Mutate("a1", func(e *Entity) {
		e.Likes.Add("u1")
		e.LikesCount++
	})
	require.NoError(t, err)
	assert.Equal(t, 2, prior.LikesCount)
	assert.False(t, prior.Likes.Has("u1"))

	got, _ := s.Get("a1")
	assert.Equal(t, 3, got.LikesCount)

	_, err = s.Mutate("missing", func(*Entity) {})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRemoveAndRestorePreservePositions(t *testing.T) {
	s := New()
	for _, id := range []string{"a1", "a2", "a3"} {
		s.Upsert(article(id))
	}
	s.SetList("feed", []string{"a1", "a2", "a3"})
	s.SetList("bookmarks", []string{"a2"})

	r, ok := s.Remove("a2")
	require.True(t, ok)
	assert.False(t, s.Has("a2"))
	assert.Equal(t, []string{"a1", "a3"}, s.List("feed"))
	assert.Empty(t, s.List("bookmarks"))

	s.Restore(r)
	assert.True(t, s.Has("a2"))
	assert.Equal(t, []string{"a1", "a2", "a3"}, s.List("feed"))
	assert.Equal(t, []string{"a2"}, s.List("bookmarks"))

	_, ok = s.Remove("nope")
	assert.False(t, ok)
}

func TestAppendListSkipsDuplicates(t *testing.T) {
	s := New()
	s.AppendList("feed", "a1", "a2")
	s.AppendList("feed", "a2", "a3")
	assert.Equal(t, []string{"a1", "a2", "a3"}, s.List("feed"))
}

func TestInsertComment(t *testing.T) {
	e := article("a1")

	require.NoError(t, e.InsertComment(Comment{ID: "c3", Content: "newest"}))
	assert.Equal(t, "c3", e.Comments[0].ID, "top-level comments are prepended")

	require.NoError(t, e.InsertComment(Comment{ID: "r2", ParentID: "c1"}))
	parent, _ := e.FindComment("c1")
	assert.Equal(t, "r2", parent.Replies[len(parent.Replies)-1].ID, "replies are appended")

	assert.ErrorIs(t, e.InsertComment(Comment{ID: "x", ParentID: "missing"}), ErrParentNotFound)
	assert.ErrorIs(t, e.InsertComment(Comment{ID: "x", ParentID: "r1"}), ErrNestedReply)
}

func TestReplaceAndRemoveComment(t *testing.T) {
	e := article("a1")

	ok := e.ReplaceComment("c1", Comment{ID: "c1-server", Content: "real"})
	require.True(t, ok)
	assert.Equal(t, "c1-server", e.Comments[0].ID)
	assert.Len(t, e.Comments[0].Replies, 1, "replies survive replacement")

	assert.True(t, e.RemoveComment("r1"))
	assert.Empty(t, e.Comments[0].Replies)
	assert.True(t, e.RemoveComment("c2"))
	assert.Len(t, e.Comments, 1)
	assert.False(t, e.RemoveComment("c2"))
}

func TestTombstoneKeepsReplies(t *testing.T) {
	e := article("a1")
	c, _ := e.FindComment("c1")
	c.Tombstone()

	got, ok := e.FindComment("c1")
	require.True(t, ok)
	assert.True(t, got.IsDeleted)
	assert.Equal(t, DeletedPlaceholder, got.Content)
	assert.True(t, e.HasComment("r1"))
}

func TestWalkCommentsVisitsParentsFirst(t *testing.T) {
	e := article("a1")
	var seen []string
	e.WalkComments(func(c *Comment) { seen = append(seen, c.ID) })
	assert.Equal(t, []string{"c1", "r1", "c2"}, seen)
}

func TestSnapshotOrderedByID(t *testing.T) {
	s := New()
	s.Upsert(article("b"))
	s.Upsert(article("a"))
	snap := s.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "a", snap[0].ID)
	assert.Equal(t, 2, s.Len())
}
