package main

import "trscan/internal/cli"

func main() {
	cli.Execute()
}
