package cmd

import (
	"io"
	"os"
	"strings"

	json "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"github.com/zfogg/inkwell/pkg/api"
	"github.com/zfogg/inkwell/pkg/formatter"
	"github.com/zfogg/inkwell/pkg/prompter"
	"github.com/zfogg/inkwell/pkg/selectors"
)

var (
	articlePage     int
	articlePageSize int
	articleTag      string
	articleCategory string
	articleSearch   string
	articleAuthor   string
	articleFeatured bool
	articleMine     bool

	articleTitle       string
	articleContentFile string
	articleTags        []string
	articleCat         string
	articleDraft       bool
	articleYes         bool
)

var articleCmd = &cobra.Command{
	Use:     "article",
	Aliases: []string{"articles"},
	Short:   "Read, write and react to articles",
}

var articleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List published articles",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := app.Services.Articles
		switch {
		case articleFeatured:
			list, err := svc.Featured(cmd.Context())
			if err != nil {
				return err
			}
			return printEntities("Featured", list)
		case articleMine:
			list, err := svc.Mine(cmd.Context())
			if err != nil {
				return err
			}
			return printEntities("My articles", list)
		}

		list, page, err := svc.List(cmd.Context(), api.ArticleParams{
			Page:     articlePage,
			Limit:    articlePageSize,
			Tag:      articleTag,
			Category: articleCategory,
			Search:   articleSearch,
			Author:   articleAuthor,
		})
		if err != nil {
			return err
		}
		if err := printEntities("Articles", list); err != nil {
			return err
		}
		if page.TotalPages > 1 {
			formatter.PrintInfo("Page %d of %d (%d total)", page.CurrentPage, page.TotalPages, page.Total)
		}
		return nil
	},
}

var articleShowCmd = &cobra.Command{
	Use:   "show <id|slug>",
	Short: "Show an article with its comments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := app.Services.Articles.Show(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if err := printEntity(e); err != nil {
			return err
		}
		return printThread(selectors.CommentTree(app.Engine.Store(), e.ID, app.Sessions.UserID()))
	},
}

var articleCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Write a new article",
	RunE: func(cmd *cobra.Command, args []string) error {
		title, err := promptIfEmpty(articleTitle, "Title")
		if err != nil {
			return err
		}
		content, err := readArticleContent(articleContentFile)
		if err != nil {
			return err
		}
		status := "published"
		if articleDraft {
			status = "draft"
		}

		e, err := app.Services.Articles.Create(cmd.Context(), api.CreateArticleRequest{
			Title:    title,
			Content:  content,
			Tags:     articleTags,
			Category: articleCat,
			Status:   status,
		})
		if err != nil {
			return err
		}
		formatter.PrintSuccess("Created %s (%s)", e.Slug, e.ID)
		return nil
	},
}

var articleEditCmd = &cobra.Command{
	Use:   "edit <id|slug>",
	Short: "Edit an article's title, content or tags",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := api.UpdateArticleRequest{Title: articleTitle, Tags: articleTags, Category: articleCat}
		if articleContentFile != "" {
			content, err := readArticleContent(articleContentFile)
			if err != nil {
				return err
			}
			req.Content = content
		}
		if cmd.Flags().Changed("draft") {
			req.Status = "published"
			if articleDraft {
				req.Status = "draft"
			}
		}

		e, err := app.Services.Articles.Update(cmd.Context(), args[0], req)
		if err != nil {
			return err
		}
		formatter.PrintSuccess("Updated %s", e.Title)
		return nil
	},
}

var articleDeleteCmd = &cobra.Command{
	Use:   "delete <id|slug>",
	Short: "Delete one of your articles",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !articleYes {
			ok, err := prompter.PromptConfirm("Delete " + args[0] + "?")
			if err != nil || !ok {
				return err
			}
		}
		h, err := app.Services.Articles.Delete(cmd.Context(), args[0])
		return settle(cmd.Context(), h, err, func() {
			formatter.PrintSuccess("Deleted %s", args[0])
		})
	},
}

var articleLikeCmd = &cobra.Command{
	Use:   "like <id|slug>",
	Short: "Like or unlike an article",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := app.Services.Articles.Like(cmd.Context(), args[0])
		return settle(cmd.Context(), h, err, func() { showLikes(h.EntityID()) })
	},
}

var articleBookmarkCmd = &cobra.Command{
	Use:   "bookmark <id|slug>",
	Short: "Save or unsave an article",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return toggleBookmark(cmd, args[0])
	},
}

var articleByCmd = &cobra.Command{
	Use:   "by <user-id>",
	Short: "List an author's published articles",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		list, page, err := app.Services.Articles.ByAuthor(cmd.Context(), args[0], articlePage, articlePageSize)
		if err != nil {
			return err
		}
		if err := printEntities("Articles by "+entityTitle(args[0]), list); err != nil {
			return err
		}
		if page.TotalPages > 1 {
			formatter.PrintInfo("Page %d of %d (%d total)", page.CurrentPage, page.TotalPages, page.Total)
		}
		return nil
	},
}

func init() {
	articleByCmd.Flags().IntVar(&articlePage, "page", 1, "Page number")
	articleByCmd.Flags().IntVar(&articlePageSize, "page-size", 10, "Results per page")
	articleListCmd.Flags().IntVar(&articlePage, "page", 1, "Page number")
	articleListCmd.Flags().IntVar(&articlePageSize, "page-size", 10, "Results per page")
	articleListCmd.Flags().StringVar(&articleTag, "tag", "", "Only articles with this tag")
	articleListCmd.Flags().StringVar(&articleCategory, "category", "", "Only articles in this category")
	articleListCmd.Flags().StringVar(&articleSearch, "search", "", "Search titles")
	articleListCmd.Flags().StringVar(&articleAuthor, "author", "", "Only articles by this user id")
	articleListCmd.Flags().BoolVar(&articleFeatured, "featured", false, "List featured articles")
	articleListCmd.Flags().BoolVar(&articleMine, "mine", false, "List your own articles, drafts included")

	for _, c := range []*cobra.Command{articleCreateCmd, articleEditCmd} {
		c.Flags().StringVar(&articleTitle, "title", "", "Article title")
		c.Flags().StringVar(&articleContentFile, "content-file", "", "Read content from a file (\"-\" for stdin)")
		c.Flags().StringSliceVar(&articleTags, "tag", nil, "Tag (repeatable)")
		c.Flags().StringVar(&articleCat, "category", "", "Category")
		c.Flags().BoolVar(&articleDraft, "draft", false, "Save as draft")
	}
	articleDeleteCmd.Flags().BoolVarP(&articleYes, "yes", "y", false, "Skip confirmation")

	articleCmd.AddCommand(articleListCmd)
	articleCmd.AddCommand(articleByCmd)
	articleCmd.AddCommand(articleShowCmd)
	articleCmd.AddCommand(articleCreateCmd)
	articleCmd.AddCommand(articleEditCmd)
	articleCmd.AddCommand(articleDeleteCmd)
	articleCmd.AddCommand(articleLikeCmd)
	articleCmd.AddCommand(articleBookmarkCmd)
}

func showLikes(entityID string) {
	e, ok := app.Engine.Store().Get(entityID)
	if !ok {
		return
	}
	l := selectors.Likes(e, app.Sessions.UserID())
	verb := "Unliked"
	if l.Liked {
		verb = "Liked"
	}
	formatter.PrintSuccess("%s %s (%s)", verb, e.Title, formatter.Count(l.Count, "like"))
}

// readArticleContent reads editor JSON from path, or wraps plain text in
// paragraph blocks. An empty path prompts for text.
func readArticleContent(path string) ([]byte, error) {
	var text string
	switch path {
	case "":
		t, err := prompter.PromptMultilineString("Content (empty line to finish):", 500)
		if err != nil {
			return nil, err
		}
		text = t
	case "-":
		b, err := readAllStdin()
		if err != nil {
			return nil, err
		}
		text = string(b)
	default:
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		text = string(b)
	}

	if json.Valid([]byte(text)) {
		return []byte(text), nil
	}
	return paragraphs(text)
}

type block struct {
	Type string            `json:"type"`
	Data map[string]string `json:"data"`
}

func paragraphs(text string) ([]byte, error) {
	var blocks []block
	for _, p := range strings.Split(strings.TrimSpace(text), "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			blocks = append(blocks, block{Type: "paragraph", Data: map[string]string{"text": p}})
		}
	}
	return json.Marshal(map[string]interface{}{"blocks": blocks})
}

func readAllStdin() ([]byte, error) {
	return io.ReadAll(os.Stdin)
}

func entityTitle(id string) string {
	if e, ok := app.Engine.Store().Get(id); ok && e.Title != "" {
		return e.Title
	}
	return id
}
