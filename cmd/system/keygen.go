package system

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	pasetotoken "github.com/ridhamz/AppointmentEase/pkg/paseto"
)

// NewKeygenCommand prints fresh PASETO key material as config entries.
func NewKeygenCommand() *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate PASETO keys for authentication.paseto",
		RunE: func(cmd *cobra.Command, args []string) error {
			m := pasetotoken.Mode(strings.ToLower(mode))
			keys, err := pasetotoken.GenerateKeys(m)
			if err != nil {
				return err
			}

			entries := keys.ConfigHex()
			names := make([]string, 0, len(entries))
			for name := range entries {
				names = append(names, name)
			}
			slices.Sort(names)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "mode: %s\n", m)
			for _, name := range names {
				fmt.Fprintf(out, "%s: %s\n", name, entries[name])
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", string(pasetotoken.ModeLocal), "key mode (local or public)")
	return cmd
}
