package cmd

import (
	"github.com/spf13/cobra"
	"github.com/zfogg/inkwell/pkg/api"
	"github.com/zfogg/inkwell/pkg/formatter"
	"github.com/zfogg/inkwell/pkg/optimistic"
	"github.com/zfogg/inkwell/pkg/output"
)

var followCmd = &cobra.Command{
	Use:   "follow",
	Short: "Follow writers",
}

var followUserCmd = &cobra.Command{
	Use:   "user <user-id>",
	Short: "Follow a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := app.Services.Follows.Follow(cmd.Context(), args[0])
		if err = settle(cmd.Context(), h, err, func() { showFollow(h) }); err != nil {
			return noChange(err, "Already following "+entityTitle(args[0]))
		}
		return nil
	},
}

var unfollowUserCmd = &cobra.Command{
	Use:   "unfollow <user-id>",
	Short: "Stop following a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := app.Services.Follows.Unfollow(cmd.Context(), args[0])
		if err = settle(cmd.Context(), h, err, func() { showFollow(h) }); err != nil {
			return noChange(err, "Not following "+entityTitle(args[0]))
		}
		return nil
	},
}

var followToggleCmd = &cobra.Command{
	Use:   "toggle <user-id>",
	Short: "Follow or unfollow a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := app.Services.Follows.Toggle(cmd.Context(), args[0])
		return settle(cmd.Context(), h, err, func() { showFollow(h) })
	},
}

var followersCmd = &cobra.Command{
	Use:   "followers <user-id>",
	Short: "List a user's followers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		users, err := app.Services.Follows.Followers(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printUsers("Followers", users)
	},
}

var followingCmd = &cobra.Command{
	Use:   "following <user-id>",
	Short: "List whom a user follows",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		users, err := app.Services.Follows.Following(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printUsers("Following", users)
	},
}

func init() {
	followCmd.AddCommand(followUserCmd)
	followCmd.AddCommand(unfollowUserCmd)
	followCmd.AddCommand(followToggleCmd)
	followCmd.AddCommand(followersCmd)
	followCmd.AddCommand(followingCmd)
}

func showFollow(h *optimistic.Handle) {
	e, ok := app.Engine.Store().Get(h.EntityID())
	if !ok {
		return
	}
	verb := "Unfollowed"
	if e.Followers.Has(app.Sessions.UserID()) {
		verb = "Following"
	}
	formatter.PrintSuccess("%s %s (%s)", verb, e.Title, formatter.Count(e.FollowersCount, "follower"))
}

func printUsers(title string, users []api.FollowUser) error {
	if output.Current() == output.FormatJSON {
		return output.PrintList(title, users, nil)
	}
	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []string{u.ID, u.Name, formatter.Truncate(u.Bio, 50)})
	}
	return output.PrintList(title, rows, []string{"ID", "Name", "Bio"})
}
