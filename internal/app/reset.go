package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/x/term"
	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/five82/presser/internal/api"
	"github.com/five82/presser/internal/config"
)

// passwordResetter is the slice of the api client used by ResetPassword.
type passwordResetter interface {
	RequestPasswordReset(ctx context.Context, email string) error
	VerifyResetOTP(ctx context.Context, email, otp string) error
	ResetPassword(ctx context.Context, email, otp, password string) error
}

const minPasswordLength = 8

// ResetPassword runs the one-time-code password reset from the terminal,
// reading answers from in and writing prompts to out.
func ResetPassword(ctx context.Context, opts Options, email string, in io.Reader, out io.Writer) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	client, err := api.NewClient(api.ClientOptions{BaseURL: cfg.APIBaseURL, Token: cfg.APIToken})
	if err != nil {
		return fmt.Errorf("init api client: %w", err)
	}
	return resetPassword(ctx, client, email, in, out)
}

func resetPassword(ctx context.Context, client passwordResetter, email string, in io.Reader, out io.Writer) error {
	email = strings.TrimSpace(email)
	if err := validatorv10.New().Var(email, "required,email"); err != nil {
		return fmt.Errorf("invalid email %q", email)
	}

	if err := client.RequestPasswordReset(ctx, email); err != nil {
		return fmt.Errorf("request reset code: %w", err)
	}
	fmt.Fprintf(out, "A reset code was sent to %s\n", email)

	r := newPromptReader(in)
	otp, err := r.line(out, "Code: ")
	if err != nil {
		return err
	}
	if err := client.VerifyResetOTP(ctx, email, otp); err != nil {
		return fmt.Errorf("verify code: %w", err)
	}

	password, err := r.secret(out, "New password: ")
	if err != nil {
		return err
	}
	if len(password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	confirm, err := r.secret(out, "Confirm password: ")
	if err != nil {
		return err
	}
	if confirm != password {
		return errors.New("passwords do not match")
	}

	if err := client.ResetPassword(ctx, email, otp, password); err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	fmt.Fprintln(out, "Password updated")
	return nil
}

// promptReader reads answers line by line. Secrets are read without echo
// when in is a terminal.
type promptReader struct {
	scanner *bufio.Scanner
	fd      uintptr
	tty     bool
}

func newPromptReader(in io.Reader) *promptReader {
	r := &promptReader{scanner: bufio.NewScanner(in)}
	if f, ok := in.(*os.File); ok && term.IsTerminal(f.Fd()) {
		r.fd = f.Fd()
		r.tty = true
	}
	return r
}

func (r *promptReader) line(out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", fmt.Errorf("read input: %w", err)
		}
		return "", io.ErrUnexpectedEOF
	}
	return nonEmpty(label, r.scanner.Text())
}

func (r *promptReader) secret(out io.Writer, label string) (string, error) {
	if !r.tty {
		return r.line(out, label)
	}
	fmt.Fprint(out, label)
	raw, err := term.ReadPassword(r.fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return nonEmpty(label, string(raw))
}

func nonEmpty(label, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("%sempty input", label)
	}
	return value, nil
}
