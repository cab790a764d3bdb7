package main

import (
	"os"

	"github.com/billgix/billgix/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
