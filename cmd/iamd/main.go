package main

import "github.com/terraconstructs/iamcore/cmd/iamd/cmd"

func main() {
	cmd.Execute()
}
