/*
Copyright © 2025 Blitzdose
*/
package main

import "github.com/blitzdose/serial-port-win32/cmd"

func main() {
	cmd.Execute()
}
