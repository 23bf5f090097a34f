package main

import "github.com/ynotnauk/go-irc/cmd/ircmsg/cli"

func main() {
	cli.Execute()
}
