package main

import "github.com/theirongolddev/tokenchar/cmd"

func main() {
	cmd.Execute()
}
