package service

import (
	"github.com/zfogg/inkwell/pkg/logger"
	"github.com/zfogg/inkwell/pkg/optimistic"
	"github.com/zfogg/inkwell/pkg/store"
	"github.com/zfogg/inkwell/pkg/websocket"
)

// Feed is the part of the websocket client LiveSync listens on
type Feed interface {
	On(msgType websocket.MessageType, callback func(websocket.Message)) func()
}

// EventCounter counts live events by type
type EventCounter interface {
	LiveEvent(typ string)
}

// LiveSync folds server pushes into the store through the engine, so
// pushes that arrive while a mutation is pending survive its rollback
type LiveSync struct {
	engine  *optimistic.Engine
	counter EventCounter
}

// NewLiveSync creates a LiveSync. counter may be nil.
func NewLiveSync(eng *optimistic.Engine, counter EventCounter) *LiveSync {
	return &LiveSync{engine: eng, counter: counter}
}

// Attach subscribes to feed and returns a func that unsubscribes
func (l *LiveSync) Attach(feed Feed) func() {
	offs := []func(){
		feed.On(websocket.MessageTypeLikeCountUpdate, l.handle(l.likeCount)),
		feed.On(websocket.MessageTypeCommentAdded, l.handle(l.commentAdded)),
		feed.On(websocket.MessageTypeFollowerCountUpdate, l.handle(l.followerCount)),
		feed.On(websocket.MessageTypeBookmarkUpdate, l.handle(l.bookmark)),
	}
	return func() {
		for _, off := range offs {
			off()
		}
	}
}

func (l *LiveSync) handle(fn func(websocket.Message) error) func(websocket.Message) {
	return func(msg websocket.Message) {
		if l.counter != nil {
			l.counter.LiveEvent(string(msg.Type))
		}
		if err := fn(msg); err != nil {
			logger.Warn("Dropped live update", "type", msg.Type, "error", err)
		}
	}
}

func (l *LiveSync) likeCount(msg websocket.Message) error {
	var u websocket.LikeCountUpdate
	if err := msg.Decode(&u); err != nil {
		return err
	}

	if u.CommentID != "" {
		l.apply(u.EntityID, "comment-like:"+u.CommentID, func(e *store.Entity) {
			if c, ok := e.FindComment(u.CommentID); ok {
				setMembership(&c.Likes, u.UserID, u.Liked)
				c.LikesCount = u.LikesCount
			}
		})
		return nil
	}

	l.apply(u.EntityID, "likes", func(e *store.Entity) {
		setMembership(&e.Likes, u.UserID, u.Liked)
		e.LikesCount = u.LikesCount
	})
	return nil
}

func (l *LiveSync) commentAdded(msg websocket.Message) error {
	var u websocket.CommentAdded
	if err := msg.Decode(&u); err != nil {
		return err
	}
	c := CommentFromAPI(u.ArticleID, u.Comment)

	l.apply(u.ArticleID, "comment:"+c.ID, func(e *store.Entity) {
		// our own comment echoed back after its confirmation
		if e.HasComment(c.ID) {
			return
		}
		if err := e.InsertComment(c); err != nil {
			logger.Debug("Live comment skipped", "comment_id", c.ID, "error", err)
			return
		}
		e.CommentsCount++
	})
	return nil
}

func (l *LiveSync) followerCount(msg websocket.Message) error {
	var u websocket.FollowerCountUpdate
	if err := msg.Decode(&u); err != nil {
		return err
	}
	l.apply(u.UserID, "followers", func(e *store.Entity) {
		setMembership(&e.Followers, u.FollowerID, u.Following)
		e.FollowersCount = u.FollowersCount
	})
	return nil
}

func (l *LiveSync) bookmark(msg websocket.Message) error {
	var u websocket.BookmarkUpdate
	if err := msg.Decode(&u); err != nil {
		return err
	}
	l.apply(u.ArticleID, "bookmark", func(e *store.Entity) {
		e.Bookmarked = u.IsBookmarked
	})
	return nil
}

func (l *LiveSync) apply(entityID, slot string, fn func(*store.Entity)) {
	if !l.engine.ApplyRemote(entityID, slot, fn) {
		logger.Debug("Live update for uncached entity", "entity_id", entityID, "slot", slot)
	}
}

func setMembership(s *store.Set, id string, member bool) {
	if member {
		s.Add(id)
	} else {
		s.Remove(id)
	}
}
