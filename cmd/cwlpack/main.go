package main

import (
	"os"

	"github.com/charmbracelet/log"
)

func main() {
	if err := NewRootCommand().Execute(); err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
}
