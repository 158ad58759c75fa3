package main

import "github.com/slighter12/toolbelt-mcp-go/cmd"

func main() {
	cmd.Execute()
}
