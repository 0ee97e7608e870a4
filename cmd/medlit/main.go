package main

import "medlit/internal/cli"

func main() {
	cli.Execute()
}
