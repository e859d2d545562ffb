package cli

import (
	"fmt"
	"io"

	"github.com/mrlokans/airspace/internal/auth"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

// HashTokenCommand prints a trigger token and the bcrypt hash to put in
// TRIGGER_TOKEN_HASH.
type HashTokenCommand struct {
	Token string
	Cost  int
}

func NewHashTokenCommand() *HashTokenCommand {
	return &HashTokenCommand{Cost: bcrypt.DefaultCost}
}

func (cmd *HashTokenCommand) Command() *cobra.Command {
	c := &cobra.Command{
		Use:           "hash-token",
		Short:         "Generate a trigger token and its bcrypt hash",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(c *cobra.Command, _ []string) error {
			return cmd.Run(c.OutOrStdout())
		},
	}
	c.Flags().StringVar(&cmd.Token, "token", "", "Hash this token instead of generating one")
	c.Flags().IntVar(&cmd.Cost, "cost", cmd.Cost, "bcrypt cost factor")
	return c
}

func (cmd *HashTokenCommand) Run(out io.Writer) error {
	token := cmd.Token
	if token == "" {
		generated, err := auth.GenerateToken()
		if err != nil {
			return fmt.Errorf("failed to generate token: %w", err)
		}
		token = generated
	}

	hash, err := auth.HashToken(token, cmd.Cost)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "TOKEN=%s\n", token)
	fmt.Fprintf(out, "TRIGGER_TOKEN_HASH=%s\n", hash)
	return nil
}
