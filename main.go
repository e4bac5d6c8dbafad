package main

import (
	"os"

	"github.com/tkubica12/scalable-ai-chat/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
