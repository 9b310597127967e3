package main

import (
	"os"

	"github.com/goliatone/go-security-jwt/cmd/tokenserver/app"
)

func main() {
	if err := app.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
