package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/zfogg/inkwell/pkg/formatter"
	"github.com/zfogg/inkwell/pkg/optimistic"
	"github.com/zfogg/inkwell/pkg/prompter"
	"github.com/zfogg/inkwell/pkg/service"
)

var onPost bool

var commentCmd = &cobra.Command{
	Use:     "comment",
	Aliases: []string{"comments"},
	Short:   "Read and write comments",
	Long: `Read and write comments on articles, or on posts with --post.
Article comments can have one level of replies; post comments cannot.`,
}

var commentListCmd = &cobra.Command{
	Use:   "list <article|post>",
	Short: "Show the comment thread",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		views, err := app.Services.Comments.List(cmd.Context(), targetRef(args[0]))
		if err != nil {
			return err
		}
		return printThread(views)
	},
}

var commentAddCmd = &cobra.Command{
	Use:   "add <article|post> [text]",
	Short: "Add a comment",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := commentText(args[1:])
		if err != nil {
			return err
		}
		h, err := app.Services.Comments.Add(cmd.Context(), targetRef(args[0]), text)
		return settle(cmd.Context(), h, err, func() { showPosted(h) })
	},
}

var commentReplyCmd = &cobra.Command{
	Use:   "reply <article> <comment-id> [text]",
	Short: "Reply to a top-level comment",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := commentText(args[2:])
		if err != nil {
			return err
		}
		h, err := app.Services.Comments.Reply(cmd.Context(), targetRef(args[0]), args[1], text)
		return settle(cmd.Context(), h, err, func() { showPosted(h) })
	},
}

var commentEditCmd = &cobra.Command{
	Use:   "edit <article|post> <comment-id> [text]",
	Short: "Edit one of your comments",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := commentText(args[2:])
		if err != nil {
			return err
		}
		h, err := app.Services.Comments.Edit(cmd.Context(), targetRef(args[0]), args[1], text)
		return settle(cmd.Context(), h, err, func() { formatter.PrintSuccess("Comment updated") })
	},
}

var commentDeleteCmd = &cobra.Command{
	Use:   "delete <article|post> <comment-id>",
	Short: "Delete one of your comments",
	Long:  "Delete a comment. Its replies stay visible under a placeholder.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := app.Services.Comments.Delete(cmd.Context(), targetRef(args[0]), args[1])
		return settle(cmd.Context(), h, err, func() { formatter.PrintSuccess("Comment deleted") })
	},
}

var commentLikeCmd = &cobra.Command{
	Use:   "like <article> <comment-id>",
	Short: "Like or unlike an article comment",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := app.Services.Comments.Like(cmd.Context(), targetRef(args[0]), args[1])
		return settle(cmd.Context(), h, err, func() {
			e, _ := app.Engine.Store().Get(h.EntityID())
			c, ok := e.FindComment(args[1])
			if !ok {
				return
			}
			verb := "Unliked"
			if c.Likes.Has(app.Sessions.UserID()) {
				verb = "Liked"
			}
			formatter.PrintSuccess("%s comment (%s)", verb, formatter.Count(c.LikesCount, "like"))
		})
	},
}

func init() {
	commentCmd.PersistentFlags().BoolVar(&onPost, "post", false, "The target is a post id")

	commentCmd.AddCommand(commentListCmd)
	commentCmd.AddCommand(commentAddCmd)
	commentCmd.AddCommand(commentReplyCmd)
	commentCmd.AddCommand(commentEditCmd)
	commentCmd.AddCommand(commentDeleteCmd)
	commentCmd.AddCommand(commentLikeCmd)
}

func targetRef(id string) service.Ref {
	if onPost {
		return service.PostRef(id)
	}
	return service.ArticleRef(id)
}

func commentText(args []string) (string, error) {
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		return args[0], nil
	}
	return prompter.PromptMultilineString("Comment (empty line to finish):", 40)
}

func showPosted(h *optimistic.Handle) {
	formatter.PrintSuccess("Comment posted on %s", entityTitle(h.EntityID()))
}
