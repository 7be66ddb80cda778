package main

import "weddingpress-web/cmd"

func main() {
	cmd.Run()
}
