package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/valksor/go-planbook/cmd/planbook/commands"
	"github.com/valksor/go-planbook/internal/display"
)

func main() {
	if err := commands.Execute(); err != nil {
		// The verdict was already printed.
		if !errors.Is(err, commands.ErrBlocked) {
			fmt.Fprint(os.Stderr, display.ErrorWithSuggestions(err.Error(), display.SuggestionsFor(err)))
		}
		os.Exit(1)
	}
}
