package main

import "pvpcwatch/internal/cli"

func main() {
	cli.Execute()
}
