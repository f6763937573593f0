package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"orga-bot/internal/auth"

	"github.com/spf13/cobra"
)

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password",
	Short: "Read a password on stdin and print its bcrypt hash for http.password_hash",
	Args:  cobra.NoArgs,
	RunE:  runHashPassword,
}

func runHashPassword(cmd *cobra.Command, _ []string) error {
	sc := bufio.NewScanner(cmd.InOrStdin())
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return err
		}
		return errors.New("no password on stdin")
	}
	password := strings.TrimRight(sc.Text(), "\r\n")
	if password == "" {
		return errors.New("password is empty")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), hash)
	return nil
}
