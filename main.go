package main

import "github.com/josephlewis42/mathshell/cmd"

func main() {
	cmd.Execute()
}
