package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/treewarden/internal/config"
	"github.com/example/treewarden/internal/wire"
)

// LoginCmd returns the login command.
func LoginCmd() *cobra.Command {
	var (
		token    string
		username string
		userID   int64
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store the OSM access token used for uploads",
		Long: fmt.Sprintf(`Store an OAuth 2.0 access token for the OSM API in the config file.

The %s environment variable overrides the stored token and is
never written to disk. --username and --user-id are recorded on every edit.`, config.EnvToken),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := wire.Config()
			if cmd.Flags().Changed("token") {
				cfg.SetAccessToken(token)
			}
			if cmd.Flags().Changed("username") {
				cfg.Username = username
			}
			if cmd.Flags().Changed("user-id") {
				cfg.UserID = userID
			}
			if err := wire.SaveConfig(); err != nil {
				return err
			}
			fmt.Println("✓ Account saved")
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "OAuth 2.0 access token")
	cmd.Flags().StringVar(&username, "username", "", "OSM display name")
	cmd.Flags().Int64Var(&userID, "user-id", 0, "OSM user id")
	return cmd
}
