// Package admctl implements the operator commands of the admctl binary.
// They act on the database directly, without going through the HTTP API,
// and are meant for creating the first administrator or recovering access.
package admctl

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrijs2005/admissions/internal/common"
	"github.com/dmitrijs2005/admissions/internal/server/auth"
	"github.com/dmitrijs2005/admissions/internal/server/config"
	"golang.org/x/term"
)

// OperatorID is recorded as the acting user for changes made from the
// command line.
const OperatorID = "admctl"

const (
	CommandCreateAdmin   = "create-admin"
	CommandResetPassword = "reset-password"
	CommandSeed          = "seed"
)

var commands = []string{CommandCreateAdmin, CommandResetPassword, CommandSeed}

var (
	ErrUnknownCommand   = errors.New("unknown command")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrEmptyValue       = errors.New("value must not be empty")
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// Accounts is the part of services.UserService the commands use.
type Accounts interface {
	Register(ctx context.Context, email, password string, isAdmin bool) (string, error)
	ResetPassword(ctx context.Context, caller *auth.Identity, targetUserID string) (string, error)
	Bootstrap(ctx context.Context, seeds []config.SeedUser) (int, error)
}

type Tool struct {
	accounts Accounts
	seeds    []config.SeedUser
	in       *bufio.Reader
	out      io.Writer
}

func NewTool(accounts Accounts, seeds []config.SeedUser, in io.Reader, out io.Writer) *Tool {
	return &Tool{accounts: accounts, seeds: seeds, in: bufio.NewReader(in), out: out}
}

// SplitCommand finds the first known command in args and returns it with
// the arguments that follow it. Anything before the command belongs to the
// shared server flags.
func SplitCommand(args []string) (string, []string) {
	for i, a := range args {
		for _, c := range commands {
			if a == c {
				return c, args[i+1:]
			}
		}
	}
	return "", nil
}

// Usage prints the command summary to w.
func Usage(w io.Writer) {
	fmt.Fprintln(w, "usage: admctl [server flags] <command> [command flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commands:")
	fmt.Fprintln(w, "  create-admin   -email <email>     create an administrator, password is prompted")
	fmt.Fprintln(w, "  reset-password -user-id <uuid>    issue a temporary password for a user")
	fmt.Fprintln(w, "  seed                              create missing bootstrap accounts")
}

// Run executes command with its arguments.
func (t *Tool) Run(ctx context.Context, command string, args []string) error {
	switch command {
	case CommandCreateAdmin:
		return t.createAdmin(ctx, args)
	case CommandResetPassword:
		return t.resetPassword(ctx, args)
	case CommandSeed:
		return t.seed(ctx)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, command)
	}
}

func (t *Tool) createAdmin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet(CommandCreateAdmin, flag.ContinueOnError)
	fs.SetOutput(t.out)
	email := fs.String("email", "", "administrator email")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *email == "" {
		var err error
		if *email, err = t.readLine("Email"); err != nil {
			return err
		}
	}
	if *email == "" {
		return fmt.Errorf("email: %w", ErrEmptyValue)
	}

	password, err := t.newPassword()
	if err != nil {
		return err
	}

	id, err := t.accounts.Register(ctx, *email, password, true)
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	fmt.Fprintf(t.out, "administrator %s created, id %s\n", *email, id)
	return nil
}

func (t *Tool) resetPassword(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet(CommandResetPassword, flag.ContinueOnError)
	fs.SetOutput(t.out)
	userID := fs.String("user-id", "", "target user id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *userID == "" {
		return fmt.Errorf("user-id: %w", ErrEmptyValue)
	}

	operator := &auth.Identity{UserID: OperatorID, IsAdmin: true}
	password, err := t.accounts.ResetPassword(ctx, operator, *userID)
	if err != nil {
		return fmt.Errorf("reset password: %w", err)
	}

	fmt.Fprintf(t.out, "temporary password: %s\n", password)
	return nil
}

func (t *Tool) seed(ctx context.Context) error {
	n, err := t.accounts.Bootstrap(ctx, t.seeds)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	fmt.Fprintf(t.out, "%d account(s) created\n", n)
	return nil
}

func (t *Tool) readLine(prompt string) (string, error) {
	if _, err := fmt.Fprint(t.out, prompt+": "); err != nil {
		return "", err
	}
	line, err := t.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// newPassword prompts twice without echo and returns the password when
// both entries match.
func (t *Tool) newPassword() (string, error) {
	first, err := t.promptPassword("Password: ")
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(first)

	if len(first) == 0 {
		return "", fmt.Errorf("password: %w", ErrEmptyValue)
	}

	second, err := t.promptPassword("Repeat password: ")
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(second)

	if !bytes.Equal(first, second) {
		return "", ErrPasswordMismatch
	}
	return string(first), nil
}

func (t *Tool) promptPassword(prompt string) ([]byte, error) {
	if _, err := fmt.Fprint(t.out, prompt); err != nil {
		return nil, err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(t.out)
	if err != nil {
		return nil, err
	}
	return pw, nil
}
