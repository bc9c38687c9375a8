// Package admin implements the interactive account bootstrap used by
// cmd/admin.
package admin

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/holocron/internal/server/auth"
	"github.com/dmitrijs2005/holocron/internal/server/models"
	"github.com/dmitrijs2005/holocron/internal/server/services"
)

var ErrPasswordMismatch = errors.New("passwords do not match")

type Registrar interface {
	Register(ctx context.Context, in services.RegisterInput) (*auth.LoginResult, error)
}

// Prompter reads the registration details from a terminal.
type Prompter struct {
	reader *bufio.Reader
	out    io.Writer
	fd     int
}

func NewPrompter(in io.Reader, out io.Writer, fd int) *Prompter {
	return &Prompter{reader: bufio.NewReader(in), out: out, fd: fd}
}

// Ask collects email, role and a confirmed password. An empty role answer
// means ADMIN.
func (p *Prompter) Ask() (services.RegisterInput, error) {
	var in services.RegisterInput

	email, err := GetSimpleText(p.reader, "Enter email", p.out)
	if err != nil {
		return in, fmt.Errorf("read email: %w", err)
	}

	role, err := GetSimpleText(p.reader, "Enter role (USER or ADMIN, default ADMIN)", p.out)
	if err != nil && !errors.Is(err, io.EOF) {
		return in, fmt.Errorf("read role: %w", err)
	}
	if strings.TrimSpace(role) == "" {
		role = string(models.RoleAdmin)
	}
	parsed, err := models.ParseRole(role)
	if err != nil {
		return in, err
	}

	password, err := GetPassword(p.fd, "Enter password", p.out)
	if err != nil {
		return in, fmt.Errorf("read password: %w", err)
	}
	confirm, err := GetPassword(p.fd, "Repeat password", p.out)
	if err != nil {
		return in, fmt.Errorf("read password: %w", err)
	}
	if password != confirm {
		return in, ErrPasswordMismatch
	}

	return services.RegisterInput{Email: email, Password: password, Role: parsed}, nil
}

// Register prompts for the account details and creates the account.
func Register(ctx context.Context, p *Prompter, r Registrar) error {
	in, err := p.Ask()
	if err != nil {
		return err
	}

	res, err := r.Register(ctx, in)
	if err != nil {
		return err
	}

	fmt.Fprintf(p.out, "Account %s created with role %s\n", res.User.Email, res.User.Role)
	return nil
}
