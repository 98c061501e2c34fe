package main

import (
	"os"

	"github.com/grafo-kg/grafo/cmd/grafo"
)

func main() {
	if err := grafo.Execute(); err != nil {
		os.Exit(1)
	}
}
