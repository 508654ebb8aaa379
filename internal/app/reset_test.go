package app

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

type fakeResetter struct {
	calls  []string
	otpErr error
}

func (f *fakeResetter) RequestPasswordReset(_ context.Context, email string) error {
	f.calls = append(f.calls, "request:"+email)
	return nil
}

func (f *fakeResetter) VerifyResetOTP(_ context.Context, email, otp string) error {
	f.calls = append(f.calls, "verify:"+otp)
	return f.otpErr
}

func (f *fakeResetter) ResetPassword(_ context.Context, email, otp, password string) error {
	f.calls = append(f.calls, "reset:"+password)
	return nil
}

func TestResetPassword(t *testing.T) {
	tests := []struct {
		name      string
		email     string
		input     string
		otpErr    error
		wantErr   string
		wantCalls []string
	}{
		{
			name:      "happy path",
			email:     " a@b.com ",
			input:     "123456\nsecret123\nsecret123\n",
			wantCalls: []string{"request:a@b.com", "verify:123456", "reset:secret123"},
		},
		{
			name:    "invalid email",
			email:   "nope",
			wantErr: "invalid email",
		},
		{
			name:    "missing domain",
			email:   "a@",
			wantErr: "invalid email",
		},
		{
			name:    "missing local part",
			email:   "@b",
			wantErr: "invalid email",
		},
		{
			name:      "bad code",
			email:     "a@b.com",
			input:     "000000\n",
			otpErr:    errors.New("bad otp"),
			wantErr:   "verify code",
			wantCalls: []string{"request:a@b.com", "verify:000000"},
		},
		{
			name:      "short password",
			email:     "a@b.com",
			input:     "123456\nshort\n",
			wantErr:   "at least",
			wantCalls: []string{"request:a@b.com", "verify:123456"},
		},
		{
			name:      "mismatch",
			email:     "a@b.com",
			input:     "123456\nsecret123\nsecret124\n",
			wantErr:   "do not match",
			wantCalls: []string{"request:a@b.com", "verify:123456"},
		},
		{
			name:      "eof",
			email:     "a@b.com",
			input:     "",
			wantErr:   "unexpected EOF",
			wantCalls: []string{"request:a@b.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeResetter{otpErr: tt.otpErr}
			var out bytes.Buffer
			err := resetPassword(context.Background(), fake, tt.email, strings.NewReader(tt.input), &out)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("resetPassword returned error: %v", err)
				}
				if !strings.Contains(out.String(), "Password updated") {
					t.Fatalf("output = %q, want confirmation", out.String())
				}
			} else if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("resetPassword error = %v, want %q", err, tt.wantErr)
			}
			if strings.Join(fake.calls, ",") != strings.Join(tt.wantCalls, ",") {
				t.Fatalf("calls = %v, want %v", fake.calls, tt.wantCalls)
			}
		})
	}
}

func TestPromptReader_NonTerminalReadsSecretsAsLines(t *testing.T) {
	r := newPromptReader(strings.NewReader("  hunter22  \n\n"))
	if r.tty {
		t.Fatal("strings.Reader reported as terminal")
	}
	var out bytes.Buffer
	got, err := r.secret(&out, "New password: ")
	if err != nil {
		t.Fatalf("secret returned error: %v", err)
	}
	if got != "hunter22" {
		t.Fatalf("secret = %q, want hunter22", got)
	}
	if out.String() != "New password: " {
		t.Fatalf("output = %q, want the prompt only", out.String())
	}
	if _, err := r.secret(&out, "Confirm password: "); err == nil || !strings.Contains(err.Error(), "empty input") {
		t.Fatalf("blank secret error = %v, want empty input", err)
	}
}
