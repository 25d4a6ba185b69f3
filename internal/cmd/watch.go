package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/zfogg/inkwell/pkg/api"
	"github.com/zfogg/inkwell/pkg/formatter"
	"github.com/zfogg/inkwell/pkg/logger"
	"github.com/zfogg/inkwell/pkg/optimistic"
	"github.com/zfogg/inkwell/pkg/selectors"
	"github.com/zfogg/inkwell/pkg/service"
	"github.com/zfogg/inkwell/pkg/websocket"
)

var (
	watchMetricsAddr string
	watchArticles    []string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow live likes, comments and follows",
	Long: `Connect to the live feed and apply updates to the loaded articles as
they arrive. The first page of articles is loaded, plus any given with
--article. Use --metrics-addr to expose Prometheus metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if _, _, err := app.Services.Articles.List(ctx, api.ArticleParams{}); err != nil {
			return err
		}
		for _, id := range watchArticles {
			if _, err := app.Services.Articles.Show(ctx, id); err != nil {
				return err
			}
		}

		if watchMetricsAddr != "" {
			srv := metricsServer(watchMetricsAddr)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("Metrics server stopped", "error", err)
				}
			}()
			defer func() {
				shutCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutCtx)
			}()
			formatter.PrintInfo("Metrics on http://%s/metrics", watchMetricsAddr)
		}

		ws := websocket.NewClient(websocket.ConfigFromSettings(), app.Sessions)
		detach := service.NewLiveSync(app.Engine, app.Metrics).Attach(ws)
		defer detach()
		defer func() { _ = ws.Disconnect() }()
		unsubscribe := ws.On(websocket.MessageTypeAny, announce)
		defer unsubscribe()
		defer app.Engine.Subscribe(announceMutation)()

		if err := ws.Connect(); err != nil {
			return err
		}
		formatter.PrintSuccess("Watching %d articles. Ctrl-C to stop.", app.Engine.Store().Len())

		<-ctx.Done()
		return nil
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchMetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9464)")
	watchCmd.Flags().StringSliceVar(&watchArticles, "article", nil, "Also load this article id or slug (repeatable)")
}

func metricsServer(addr string) *http.Server {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/metrics", gin.WrapH(app.Metrics.Handler()))
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	return &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}
}

// announce prints one line per live update, after it has been applied
func announce(msg websocket.Message) {
	switch msg.Type {
	case websocket.MessageTypeLikeCountUpdate:
		var u websocket.LikeCountUpdate
		if msg.Decode(&u) == nil {
			formatter.PrintInfo("%s: %s", entityTitle(u.EntityID), formatter.Count(u.LikesCount, "like"))
		}
	case websocket.MessageTypeCommentAdded:
		var u websocket.CommentAdded
		if msg.Decode(&u) == nil {
			formatter.PrintInfo("%s: new comment by %s", entityTitle(u.ArticleID), u.Comment.Author.Name)
		}
	case websocket.MessageTypeFollowerCountUpdate:
		var u websocket.FollowerCountUpdate
		if msg.Decode(&u) == nil {
			formatter.PrintInfo("%s: %s", entityTitle(u.UserID), formatter.Count(u.FollowersCount, "follower"))
		}
	case websocket.MessageTypeBookmarkUpdate:
		var u websocket.BookmarkUpdate
		if msg.Decode(&u) == nil {
			e, _ := app.Engine.Store().Get(u.ArticleID)
			formatter.PrintInfo("%s: saved %s", entityTitle(u.ArticleID), formatter.Mark(selectors.IsBookmarked(e)))
		}
	case websocket.MessageTypeError:
		formatter.PrintWarning("Live feed error: %s", string(msg.Payload))
	}
}

// announceMutation prints the lifecycle of the user's own changes. Rollbacks
// are already reported by the engine's notifier.
func announceMutation(ev optimistic.Event) {
	action := service.Describe(ev.Kind)
	switch ev.Type {
	case optimistic.EventApplied:
		formatter.PrintInfo("%s: %s sent", entityTitle(ev.EntityID), action)
	case optimistic.EventConfirmed:
		formatter.PrintSuccess("%s: %s saved", entityTitle(ev.EntityID), action)
	case optimistic.EventDiscarded:
		formatter.PrintWarning("%s: %s dropped", entityTitle(ev.EntityID), action)
	}
}
