package main

import "github.com/KaramelBytes/hdiview/cmd"

func main() {
	cmd.Execute()
}
