package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/sourceplane/liteprov/internal/provision"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var abort *provision.AbortError
		if errors.As(err, &abort) && abort.Hint != "" {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", abort.Hint)
		}
		stop()
		os.Exit(1)
	}
}
