package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jrsteele09/go-enrollment-client/enrollment"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list <resource>",
	Short: "List a collection as JSON",
	Long: "List a collection as JSON. Resources: " +
		strings.Join(enrollment.NewAPI(nil).CollectionNames(), ", "),
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		lister, err := s.API.Collection(args[0])
		if err != nil {
			return err
		}
		ctx := commandContext(cmd)
		if _, err := s.Auth.Restore(ctx); err != nil {
			return fmt.Errorf("list %s: %w", args[0], err)
		}

		items, err := lister.ListAny(ctx)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
