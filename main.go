package main

import "bizdesk/cmd"

func main() {
	cmd.Execute()
}
