package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jrsteele09/go-enrollment-client/auth"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var identifier string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with your email or school id",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		in := bufio.NewReader(cmd.InOrStdin())
		creds := auth.Credentials{Identifier: identifier}
		if creds.Identifier == "" {
			if creds.Identifier, err = prompt(cmd.OutOrStdout(), in, "Email or school id: "); err != nil {
				return err
			}
		}
		if creds.Password, err = readPassword(cmd.OutOrStdout(), in); err != nil {
			return err
		}

		profile, err := s.Auth.Login(commandContext(cmd), creds)
		if err != nil {
			return err
		}
		s.term.println(fmt.Sprintf("Signed in as %s", titleStyle.Render(profile.FullName())))
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVarP(&identifier, "user", "u", "", "email or school id")
	rootCmd.AddCommand(loginCmd)
}

func prompt(out io.Writer, in *bufio.Reader, label string) (string, error) {
	_, _ = fmt.Fprint(out, label)
	line, err := in.ReadString('\n')
	if err != nil && !(err == io.EOF && line != "") {
		return "", fmt.Errorf("read %s: %w", strings.TrimSpace(strings.TrimSuffix(label, ": ")), err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// readPassword reads without echo from a terminal, or a plain line when
// stdin is piped.
func readPassword(out io.Writer, in *bufio.Reader) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return prompt(out, in, "Password: ")
	}
	_, _ = fmt.Fprint(out, "Password: ")
	pw, err := term.ReadPassword(fd)
	_, _ = fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(pw), nil
}
