package store

// FindComment returns a pointer into the entity's comment tree.
// The pointer is only valid until the tree is next modified.
func (e *Entity) FindComment(id string) (*Comment, bool) {
	for i := range e.Comments {
		top := &e.Comments[i]
		if top.ID == id {
			return top, true
		}
		for j := range top.Replies {
			if top.Replies[j].ID == id {
				return &top.Replies[j], true
			}
		}
	}
	return nil, false
}

// HasComment reports whether id is anywhere in the tree
func (e *Entity) HasComment(id string) bool {
	_, ok := e.FindComment(id)
	return ok
}

// InsertComment adds c to the tree. Top-level comments are prepended so the
// list stays newest first; replies are appended to their parent.
func (e *Entity) InsertComment(c Comment) error {
	if !c.IsReply() {
		e.Comments = append([]Comment{c}, e.Comments...)
		return nil
	}

	parent, ok := e.FindComment(c.ParentID)
	if !ok {
		return ErrParentNotFound
	}
	if parent.IsReply() {
		return ErrNestedReply
	}
	parent.Replies = append(parent.Replies, c)
	return nil
}

// ReplaceComment swaps the comment with the given id for c, keeping its
// position. Replies of the old comment are kept when c carries none.
func (e *Entity) ReplaceComment(id string, c Comment) bool {
	old, ok := e.FindComment(id)
	if !ok {
		return false
	}
	if c.Replies == nil && old.Replies != nil {
		c.Replies = old.Replies
	}
	*old = c
	return true
}

// RemoveComment deletes the comment from the tree and reports whether it was there
func (e *Entity) RemoveComment(id string) bool {
	for i := range e.Comments {
		if e.Comments[i].ID == id {
			e.Comments = append(e.Comments[:i:i], e.Comments[i+1:]...)
			return true
		}
		replies := e.Comments[i].Replies
		for j := range replies {
			if replies[j].ID == id {
				e.Comments[i].Replies = append(replies[:j:j], replies[j+1:]...)
				return true
			}
		}
	}
	return false
}

// WalkComments visits every comment, parents before their replies
func (e *Entity) WalkComments(fn func(*Comment)) {
	for i := range e.Comments {
		fn(&e.Comments[i])
		for j := range e.Comments[i].Replies {
			fn(&e.Comments[i].Replies[j])
		}
	}
}

// Tombstone marks the comment deleted in place
func (c *Comment) Tombstone() {
	c.IsDeleted = true
	c.Content = DeletedPlaceholder
}
