package main

import (
	"log/slog"

	"github.com/deckbinder/deckbinder/binder/logger"
	"github.com/deckbinder/deckbinder/cmd"
)

func main() {
	slog.SetDefault(slog.New(logger.NewHandler()))
	cmd.Execute()
}
