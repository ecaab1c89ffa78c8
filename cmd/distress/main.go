package main

import "distress/cmd/distress/cmd"

func main() {
	cmd.Execute()
}
