package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/jrsteele09/go-enrollment-client/internal/errors"
	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user, refreshing the session if needed",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		profile, err := s.Auth.Restore(commandContext(cmd))
		if errors.Is(err, errors.ErrNotAuthenticated) {
			s.term.println("Not signed in. Run `enrollctl login`.")
			return nil
		}
		if err != nil {
			return err
		}

		role := lipgloss.NewStyle().Foreground(roleColour(profile.Role)).Render(string(profile.Role))
		s.term.println(fmt.Sprintf("%s <%s> %s", titleStyle.Render(profile.FullName()), profile.Email, role))
		if id := profile.DisplaySchoolID(); id != "" {
			s.term.println("School id: " + id)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
