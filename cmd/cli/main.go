package main

import "alfredoptarigan/mock-interviewer/internal/cli"

func main() {
	cli.Execute()
}
