package cmd

import (
	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the session and forget the stored credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()
		return s.Auth.Logout(commandContext(cmd))
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
