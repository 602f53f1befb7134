package main

import "github.com/jason-s-yu/bussfix/internal/cli"

func main() {
	cli.Execute()
}
