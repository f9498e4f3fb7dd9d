// Command ragchat is a terminal client for a RAG chat gateway.
package main

import "github.com/diogo/ragchat/internal/commands"

func main() {
	commands.Execute()
}
