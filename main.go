package main

import "github.com/jiabinchengithub/Extract-audio-and-text-from-video/cmd"

func main() {
	cmd.Execute()
}
