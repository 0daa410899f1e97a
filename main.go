package main

import "github.com/chazu/trim/cmd"

func main() {
	cmd.Execute()
}
