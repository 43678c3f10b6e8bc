package main

import (
	"os"

	"github.com/MeKo-Tech/qrlocal/cmd/qrlocal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
