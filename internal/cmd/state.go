package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zfogg/inkwell/pkg/output"
	"github.com/zfogg/inkwell/pkg/service"
)

var stateLoad []string

var stateCmd = &cobra.Command{
	Use:    "state",
	Short:  "Dump the local store and pending mutations",
	Long:   "Load the given articles, then print the entity store and the mutation journal as JSON. Meant for debugging.",
	Hidden: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, id := range stateLoad {
			if _, err := app.Services.Hydrator.Load(cmd.Context(), service.ArticleRef(id)); err != nil {
				return err
			}
		}
		dump, err := output.FormatAsPrettyJSON(map[string]interface{}{
			"viewer":   app.Sessions.UserID(),
			"entities": app.Engine.Store().Snapshot(),
			"pending":  app.Engine.Pending(),
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), dump)
		return nil
	},
}

func init() {
	stateCmd.Flags().StringSliceVar(&stateLoad, "article", nil, "Load this article first (repeatable)")
}
