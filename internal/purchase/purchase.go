// Package purchase confirms product purchases. Payment itself happens elsewhere;
// the answer given here is trusted.
package purchase

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/manifoldco/promptui"
	"go.uber.org/zap"

	"github.com/spigell/career-boost/internal/session"
)

// Interactive asks the user on the terminal.
type Interactive struct {
	// Stdin and Stdout default to the process terminal.
	Stdin  io.ReadCloser
	Stdout io.WriteCloser
	Logger *zap.Logger
}

func (i *Interactive) Confirm(ctx context.Context, product session.Product) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	prompt := promptui.Prompt{
		Label:     Label(product),
		IsConfirm: true,
		Stdin:     i.Stdin,
		Stdout:    i.Stdout,
	}

	_, err := prompt.Run()
	switch {
	case err == nil:
		i.log().Info("purchase confirmed by user", zap.Stringer("product", product))
		return true, nil
	case errors.Is(err, promptui.ErrAbort):
		i.log().Info("purchase declined by user", zap.Stringer("product", product))
		return false, nil
	default:
		return false, fmt.Errorf("purchase prompt: %w", err)
	}
}

func (i *Interactive) log() *zap.Logger {
	if i.Logger == nil {
		return zap.NewNop()
	}
	return i.Logger
}

// Static answers every confirmation the same way.
type Static struct {
	Approve bool
}

func (s Static) Confirm(ctx context.Context, _ session.Product) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return s.Approve, nil
}

// Label is the question shown when asking for product.
func Label(product session.Product) string {
	return fmt.Sprintf("Buy %s for %s", product.Title(), product.Price())
}
