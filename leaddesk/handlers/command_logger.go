package handlers

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/disgoorg/disgo/handler"

	"github.com/ellavondegurechaff/leaddesk/leaddesk/config"
)

// WrapWithLogging wraps a command handler with logging functionality
func WrapWithLogging(name string, h handler.CommandHandler) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		return runLogged("cmd", name, e.User().Username, config.CommandExecutionTimeout, func() error {
			return h(e)
		})
	}
}

// WrapComponentWithLogging wraps a component handler with logging functionality
func WrapComponentWithLogging(name string, h handler.ComponentHandler) handler.ComponentHandler {
	return func(e *handler.ComponentEvent) error {
		return runLogged("component", name, e.User().Username, config.ComponentTimeout, func() error {
			return h(e)
		})
	}
}

func runLogged(kind, name, userName string, timeout time.Duration, fn func() error) error {
	start := time.Now()

	slog.Info("Handler started",
		slog.String("type", kind),
		slog.String("name", name),
		slog.String("user_name", userName),
	)

	done := make(chan error, 1)
	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		duration := time.Since(start)
		attrs := []any{
			slog.String("type", kind),
			slog.String("name", name),
			slog.String("user_name", userName),
			slog.Duration("took", duration),
		}
		if err != nil {
			slog.Error("Handler failed", append(attrs,
				slog.Any("error", err),
				slog.String("status", "failed"),
			)...)
		} else if duration > 2*time.Second {
			slog.Warn("Handler executed slowly", append(attrs,
				slog.String("status", "slow"),
			)...)
		} else {
			slog.Info("Handler completed", append(attrs,
				slog.String("status", "success"),
			)...)
		}
		return err

	case <-time.After(timeout):
		slog.Error("Handler timed out",
			slog.String("type", kind),
			slog.String("name", name),
			slog.String("user_name", userName),
			slog.String("status", "timeout"),
			slog.Duration("timeout", timeout),
		)
		return fmt.Errorf("handler timed out after %s", timeout)
	}
}
