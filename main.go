package main

import "github.com/theirongolddev/eventoo/cmd"

func main() {
	cmd.Execute()
}
