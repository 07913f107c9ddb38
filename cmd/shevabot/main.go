package main

import (
	"github.com/shevaserg83-collab/sheva-bot/internal/cli"
)

func main() {
	cli.Execute()
}
