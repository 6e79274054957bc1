package main

import "github.com/mcoot/skillgomoku/internal/cli"

func main() {
	cli.Execute()
}
