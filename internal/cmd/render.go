package cmd

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/zfogg/inkwell/pkg/formatter"
	"github.com/zfogg/inkwell/pkg/output"
	"github.com/zfogg/inkwell/pkg/selectors"
	"github.com/zfogg/inkwell/pkg/store"
)

var kindTitles = map[store.Kind]string{
	store.KindArticle: "Article",
	store.KindPost:    "Post",
	store.KindUser:    "User",
}

var entityColumns = []string{"ID", "Title", "Author", "Likes", "Comments", "Saved", "Sync"}

func syncMark(id string) string {
	if selectors.Syncing(app.Engine, id) {
		return "syncing"
	}
	return "-"
}

func entityRows(list []store.Entity) [][]string {
	viewer := app.Sessions.UserID()
	rows := make([][]string, 0, len(list))
	for _, e := range list {
		likes := fmt.Sprintf("%d", e.LikesCount)
		if selectors.IsLikedBy(e, viewer) {
			likes += " *"
		}
		rows = append(rows, []string{
			e.ID,
			formatter.Truncate(e.Title, 40),
			e.AuthorName,
			likes,
			fmt.Sprintf("%d", e.CommentsCount),
			formatter.Mark(e.Bookmarked),
			syncMark(e.ID),
		})
	}
	return rows
}

// printEntities prints a listing; json output gets the entities themselves
func printEntities(title string, list []store.Entity) error {
	if output.Current() == output.FormatJSON {
		return output.PrintList(title, list, nil)
	}
	return output.PrintList(title, entityRows(list), entityColumns)
}

// printEntity prints the engagement summary of one entity
func printEntity(e store.Entity) error {
	viewer := app.Sessions.UserID()
	rec := map[string]interface{}{
		"id":     e.ID,
		"kind":   e.Kind,
		"author": e.AuthorName,
		"sync":   syncMark(e.ID),
	}
	switch e.Kind {
	case store.KindUser:
		rec["name"] = e.Title
		rec["followers"] = e.FollowersCount
		rec["following"] = e.FollowingCount
		rec["you_follow"] = selectors.IsFollowing(e, viewer)
	default:
		rec["title"] = e.Title
		rec["likes"] = formatter.Count(e.LikesCount, "like")
		rec["liked"] = selectors.IsLikedBy(e, viewer)
		rec["comments"] = selectors.CountComments(e)
	}
	if e.Kind == store.KindArticle {
		rec["slug"] = e.Slug
		rec["status"] = e.Status
		rec["bookmarked"] = e.Bookmarked
		if len(e.Tags) > 0 {
			rec["tags"] = strings.Join(e.Tags, ", ")
		}
	}
	return formatter.PrintKeyValue(kindTitles[e.Kind], rec)
}

// printThread prints a comment tree with replies indented under parents
func printThread(views []selectors.CommentView) error {
	if output.Current() == output.FormatJSON {
		return output.Print("comments", views)
	}
	if len(views) == 0 {
		formatter.PrintInfo("No comments yet")
		return nil
	}
	for _, v := range views {
		printComment(v, "")
		for _, r := range v.Replies {
			printComment(r, "    ")
		}
	}
	return nil
}

func printComment(v selectors.CommentView, indent string) {
	dim := color.New(color.Faint)
	head := fmt.Sprintf("%s%s  %s", indent, color.New(color.Bold).Sprint(v.AuthorName), dim.Sprint(v.ID))
	var tags []string
	if v.Pending {
		tags = append(tags, "posting")
	}
	if v.Edited {
		tags = append(tags, "edited")
	}
	if v.LikesCount > 0 {
		l := formatter.Count(v.LikesCount, "like")
		if v.Liked {
			l += " *"
		}
		tags = append(tags, l)
	}
	if len(tags) > 0 {
		head += dim.Sprintf("  (%s)", strings.Join(tags, ", "))
	}
	fmt.Fprintln(output.Writer(), head)

	body := v.Content
	if v.Deleted {
		body = dim.Sprint(body)
	}
	for _, line := range strings.Split(body, "\n") {
		fmt.Fprintf(output.Writer(), "%s  %s\n", indent, line)
	}
}
