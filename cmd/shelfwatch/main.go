package main

import "github.com/shelfwatch/shelfwatch/internal/cli"

func main() {
	cli.Execute()
}
