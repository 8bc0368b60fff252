package main

import "github.com/acrompton/spotify-season-tools/cmd"

func main() {
	cmd.Execute()
}
