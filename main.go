package main

import "github.com/lepinkainen/readersrealm/cmd"

var execute = cmd.Execute

func main() {
	execute()
}
