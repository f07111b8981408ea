package main

import "github.com/nikogura/career-tailor/cmd"

func main() {
	cmd.Execute()
}
