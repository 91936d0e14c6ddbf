package main

import "github.com/AlexisVallejos/macroentreno-flet/cmd/macro"

func main() {
	macro.Execute()
}
