package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/mark3labs/notekit/cmd"
)

var version = "dev"

func main() {
	if err := fang.Execute(context.Background(), cmd.GetRootCommand(version), fang.WithVersion(version)); err != nil {
		os.Exit(1)
	}
}
