package user

import "github.com/spf13/cobra"

func NewUserCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "User directory commands",
	}

	cmd.AddCommand(NewCreateCommand())

	return cmd
}
