package user

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/felixgeelhaar/studyload/adapter/cli"
	"github.com/felixgeelhaar/studyload/internal/identity/application/commands"
)

var (
	name     string
	email    string
	password string
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	Long: `Create an account. Without --password the password is read from the
terminal without echo, or from the first line of stdin when piped.

Examples:
  studyload user register --name "Ada Lovelace" --email ada@example.com
  echo "$PASSWORD" | studyload user register --name Ada --email ada@example.com`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.Require()
		if err != nil {
			return err
		}

		pw := password
		if pw == "" {
			if pw, err = readPassword(cmd); err != nil {
				return err
			}
		}

		result, err := app.Container.RegisterUserHandler.Handle(cmd.Context(), commands.RegisterUserCommand{
			Name:     name,
			Email:    email,
			Password: pw,
		})
		if err != nil {
			return fmt.Errorf("failed to register: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Account created: %s\n", result.UserID)
		fmt.Fprintf(out, "  name: %s\n", result.Name)
		fmt.Fprintf(out, "  email: %s\n", result.Email)
		fmt.Fprintf(out, "Set STUDYLOAD_USER_EMAIL=%s or pass --user to act as this account.\n", result.Email)
		return nil
	},
}

func readPassword(cmd *cobra.Command) (string, error) {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
		pw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(pw), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	pw := strings.TrimRight(line, "\r\n")
	if pw == "" {
		return "", errors.New("password is required")
	}
	return pw, nil
}

func init() {
	registerCmd.Flags().StringVarP(&name, "name", "n", "", "display name")
	registerCmd.Flags().StringVarP(&email, "email", "e", "", "email address")
	registerCmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")
	_ = registerCmd.MarkFlagRequired("name")
	_ = registerCmd.MarkFlagRequired("email")
}
