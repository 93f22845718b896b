package main

import "github.com/nextlevelbuilder/mention/cmd"

func main() {
	cmd.Execute()
}
