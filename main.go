package main

import "github.com/iksnae/quest-log/cmd"

func main() {
	cmd.Execute()
}
