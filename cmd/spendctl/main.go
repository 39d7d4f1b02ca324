package main

import "github.com/mcoot/spendboard/internal/cli"

func main() {
	cli.Execute()
}
