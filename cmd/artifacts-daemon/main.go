package main

import (
	"github.com/adelacruz/artifacts-go/internal/adapters/cli"
)

func main() {
	cli.Execute()
}
