package main

import "github.com/mcoot/wordgame-go/internal/cli"

func main() {
	cli.Execute()
}
