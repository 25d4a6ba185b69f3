package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/zfogg/inkwell/pkg/api"
	"github.com/zfogg/inkwell/pkg/formatter"
	"github.com/zfogg/inkwell/pkg/prompter"
	"github.com/zfogg/inkwell/pkg/session"
)

var (
	authEmail string
	authName  string

	profile api.UpdateProfileRequest
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authentication commands",
	Long:  "Sign in to Inkwell and manage the stored session",
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new Inkwell account",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, err := promptIfEmpty(authName, "Name")
		if err != nil {
			return err
		}
		email, err := promptIfEmpty(authEmail, "Email")
		if err != nil {
			return err
		}
		password, err := prompter.PromptPassword("Password: ")
		if err != nil {
			return err
		}

		s, err := app.Services.Auth.Register(cmd.Context(), name, email, password)
		if err != nil {
			return err
		}
		return showSession("Registered", s)
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to Inkwell",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, err := promptIfEmpty(authEmail, "Email")
		if err != nil {
			return err
		}
		password, err := prompter.PromptPassword("Password: ")
		if err != nil {
			return err
		}

		s, err := app.Services.Auth.Login(cmd.Context(), email, password)
		if err != nil {
			return err
		}
		return showSession("Signed in", s)
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the stored token",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := noChange(app.Services.Auth.Logout(), "Not signed in"); err != nil {
			return err
		}
		formatter.PrintSuccess("Signed out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:     "whoami",
	Aliases: []string{"me"},
	Short:   "Show the signed-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := app.Services.Auth.WhoAmI(cmd.Context())
		if err != nil {
			return err
		}
		return formatter.PrintKeyValue("Account", map[string]interface{}{
			"id":        u.ID,
			"name":      u.Name,
			"email":     u.Email,
			"role":      u.Role,
			"followers": u.FollowersCount,
			"following": u.FollowingCount,
			"articles":  u.ArticlesCount,
		})
	},
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Update your name, bio, avatar or website",
	RunE: func(cmd *cobra.Command, args []string) error {
		if profile == (api.UpdateProfileRequest{}) {
			return cmd.Usage()
		}
		u, err := app.Services.Auth.UpdateProfile(cmd.Context(), profile)
		if err != nil {
			return err
		}
		formatter.PrintSuccess("Profile updated for %s", u.Name)
		return nil
	},
}

func init() {
	profileCmd.Flags().StringVar(&profile.Name, "name", "", "Display name")
	profileCmd.Flags().StringVar(&profile.Email, "email", "", "Account email")
	profileCmd.Flags().StringVar(&profile.Bio, "bio", "", "Short bio")
	profileCmd.Flags().StringVar(&profile.Avatar, "avatar", "", "Avatar URL")
	profileCmd.Flags().StringVar(&profile.Website, "website", "", "Website URL")

	loginCmd.Flags().StringVar(&authEmail, "email", "", "Account email")
	registerCmd.Flags().StringVar(&authEmail, "email", "", "Account email")
	registerCmd.Flags().StringVar(&authName, "name", "", "Display name")

	authCmd.AddCommand(registerCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(whoamiCmd)
	authCmd.AddCommand(profileCmd)
}

func promptIfEmpty(v, label string) (string, error) {
	if v = strings.TrimSpace(v); v != "" {
		return v, nil
	}
	return prompter.PromptString(label + ": ")
}

func showSession(verb string, s session.Session) error {
	formatter.PrintSuccess("%s as %s", verb, s.User.Name)
	if s.ExpiresAt.IsZero() {
		return nil
	}
	formatter.PrintInfo("Session valid until %s", s.ExpiresAt.Local().Format("2006-01-02 15:04"))
	return nil
}
