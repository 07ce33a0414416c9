package admin

import (
	"context"
	"io"
	"log/slog"
)

// ConsoleAlerter rings the terminal bell and logs the arrival. Stands in
// for the storefront's audible chime on a headless console.
type ConsoleAlerter struct {
	log *slog.Logger
	out io.Writer
}

func NewConsoleAlerter(log *slog.Logger, out io.Writer) *ConsoleAlerter {
	return &ConsoleAlerter{log: log, out: out}
}

func (a *ConsoleAlerter) Alert(ctx context.Context, newOrders, total int) {
	_, _ = a.out.Write([]byte("\a"))
	a.log.Info("new orders arrived", "new", newOrders, "total", total)
}
