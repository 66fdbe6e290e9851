// Package csu implements the interactive "create superuser" command.
package csu

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrijs2005/diary/internal/common"
	"github.com/dmitrijs2005/diary/internal/server/models"
	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

type Creator interface {
	CreateSuperuser(ctx context.Context, email, displayName, password string) (*models.User, error)
}

// getText prints a prompt and reads one trimmed line. A final line without a
// newline is accepted.
func getText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+": "); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func getPassword(prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+": "); err != nil {
		return "", err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

// Run asks for the account details and creates the superuser. The password
// is read twice without echo.
func Run(ctx context.Context, c Creator, in io.Reader, w io.Writer) error {
	reader := bufio.NewReader(in)

	email, err := getText(reader, "Email address", w)
	if err != nil {
		return err
	}
	name, err := getText(reader, "Display name", w)
	if err != nil {
		return err
	}
	p1, err := getPassword("Password", w)
	if err != nil {
		return err
	}
	p2, err := getPassword("Password (again)", w)
	if err != nil {
		return err
	}
	if p1 != p2 {
		return errors.New("passwords didn't match")
	}

	u, err := c.CreateSuperuser(ctx, email, name, p1)
	if err != nil {
		var verr *common.ValidationError
		if errors.As(err, &verr) {
			for field, msg := range verr.Fields {
				fmt.Fprintf(w, "%s: %s\n", field, msg)
			}
		}
		return err
	}

	fmt.Fprintf(w, "Superuser %s created (id %s)\n", u.Email, u.ID)
	return nil
}
