package main

import "mixmodas/cmd"

func main() {
	cmd.Execute()
}
