package main

import "github.com/ludyw21/autokeys/cmd"

func main() {
	cmd.Execute()
}
