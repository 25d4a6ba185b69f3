package cmd

import (
	"github.com/spf13/cobra"
	"github.com/zfogg/inkwell/pkg/formatter"
)

var (
	bookmarkPage     int
	bookmarkPageSize int
)

var bookmarkCmd = &cobra.Command{
	Use:     "bookmark",
	Aliases: []string{"bookmarks"},
	Short:   "Saved articles",
}

var bookmarkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your saved articles",
	RunE: func(cmd *cobra.Command, args []string) error {
		list, page, err := app.Services.Bookmarks.List(cmd.Context(), bookmarkPage, bookmarkPageSize)
		if err != nil {
			return err
		}
		if err := printEntities("Bookmarks", list); err != nil {
			return err
		}
		if page.TotalPages > 1 {
			formatter.PrintInfo("Page %d of %d", page.CurrentPage, page.TotalPages)
		}
		return nil
	},
}

var bookmarkToggleCmd = &cobra.Command{
	Use:   "toggle <id|slug>",
	Short: "Save or unsave an article",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return toggleBookmark(cmd, args[0])
	},
}

var bookmarkRemoveCmd = &cobra.Command{
	Use:   "remove <id|slug>",
	Short: "Remove an article from your bookmarks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := app.Services.Bookmarks.Remove(cmd.Context(), args[0])
		if err != nil {
			return noChange(err, "Not bookmarked")
		}
		formatter.PrintSuccess("Removed %s from bookmarks", entityTitle(e.ID))
		return nil
	},
}

func init() {
	bookmarkListCmd.Flags().IntVar(&bookmarkPage, "page", 1, "Page number")
	bookmarkListCmd.Flags().IntVar(&bookmarkPageSize, "page-size", 10, "Results per page")

	bookmarkCmd.AddCommand(bookmarkListCmd)
	bookmarkCmd.AddCommand(bookmarkToggleCmd)
	bookmarkCmd.AddCommand(bookmarkRemoveCmd)
}

func toggleBookmark(cmd *cobra.Command, idOrSlug string) error {
	h, err := app.Services.Bookmarks.Toggle(cmd.Context(), idOrSlug)
	return settle(cmd.Context(), h, err, func() {
		e, _ := app.Engine.Store().Get(h.EntityID())
		if e.Bookmarked {
			formatter.PrintSuccess("Saved %s", entityTitle(e.ID))
		} else {
			formatter.PrintSuccess("Removed %s from bookmarks", entityTitle(e.ID))
		}
	})
}
