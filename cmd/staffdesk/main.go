package main

import (
	"github.com/itops/staffdesk/internal/cmd"
)

func main() {
	cmd.Execute()
}
