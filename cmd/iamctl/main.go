package main

import "github.com/terraconstructs/iamcore/cmd/iamctl/cmd"

func main() {
	cmd.Execute()
}
