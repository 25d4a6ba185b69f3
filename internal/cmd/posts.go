package cmd

import (
	"github.com/spf13/cobra"
	"github.com/zfogg/inkwell/pkg/api"
	"github.com/zfogg/inkwell/pkg/formatter"
	"github.com/zfogg/inkwell/pkg/prompter"
	"github.com/zfogg/inkwell/pkg/selectors"
)

var (
	postPage     int
	postPageSize int
	postTitle    string
	postContent  string
	postYes      bool
)

var postCmd = &cobra.Command{
	Use:     "post",
	Aliases: []string{"posts"},
	Short:   "Short-form posts",
}

var postListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent posts",
	RunE: func(cmd *cobra.Command, args []string) error {
		list, more, err := app.Services.Posts.List(cmd.Context(), postPage, postPageSize)
		if err != nil {
			return err
		}
		if err := printEntities("Posts", list); err != nil {
			return err
		}
		if more {
			formatter.PrintInfo("More posts: --page %d", postPage+1)
		}
		return nil
	},
}

var postShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a post with its comments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := app.Services.Posts.Show(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if err := printEntity(e); err != nil {
			return err
		}
		return printThread(selectors.CommentTree(app.Engine.Store(), e.ID, app.Sessions.UserID()))
	},
}

var postCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Publish a post",
	RunE: func(cmd *cobra.Command, args []string) error {
		title, err := promptIfEmpty(postTitle, "Title")
		if err != nil {
			return err
		}
		content := postContent
		if content == "" {
			if content, err = prompter.PromptMultilineString("Content (empty line to finish):", 50); err != nil {
				return err
			}
		}
		e, err := app.Services.Posts.Create(cmd.Context(), title, content)
		if err != nil {
			return err
		}
		formatter.PrintSuccess("Posted %s", e.ID)
		return nil
	},
}

var postEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a post's title or content",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := app.Services.Posts.Update(cmd.Context(), args[0], api.UpdatePostRequest{Title: postTitle, Content: postContent})
		if err != nil {
			return err
		}
		formatter.PrintSuccess("Updated %s", e.Title)
		return nil
	},
}

var postDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete one of your posts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !postYes {
			ok, err := prompter.PromptConfirm("Delete post " + args[0] + "?")
			if err != nil || !ok {
				return err
			}
		}
		h, err := app.Services.Posts.Delete(cmd.Context(), args[0])
		return settle(cmd.Context(), h, err, func() {
			formatter.PrintSuccess("Deleted post %s", args[0])
		})
	},
}

var postUpvoteCmd = &cobra.Command{
	Use:   "upvote <id>",
	Short: "Upvote a post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := app.Services.Posts.Upvote(cmd.Context(), args[0])
		return settle(cmd.Context(), h, err, func() {
			e, _ := app.Engine.Store().Get(h.EntityID())
			formatter.PrintSuccess("Upvoted %s (%s)", entityTitle(e.ID), formatter.Count(e.LikesCount, "upvote"))
		})
	},
}

func init() {
	postListCmd.Flags().IntVar(&postPage, "page", 1, "Page number")
	postListCmd.Flags().IntVar(&postPageSize, "page-size", 10, "Results per page")
	for _, c := range []*cobra.Command{postCreateCmd, postEditCmd} {
		c.Flags().StringVar(&postTitle, "title", "", "Post title")
		c.Flags().StringVar(&postContent, "content", "", "Post text")
	}
	postDeleteCmd.Flags().BoolVarP(&postYes, "yes", "y", false, "Skip confirmation")

	postCmd.AddCommand(postListCmd)
	postCmd.AddCommand(postShowCmd)
	postCmd.AddCommand(postCreateCmd)
	postCmd.AddCommand(postEditCmd)
	postCmd.AddCommand(postDeleteCmd)
	postCmd.AddCommand(postUpvoteCmd)
}
