package main

import "github.com/CraigKelly/paraminsight/cmd"

func main() {
	cmd.Execute()
}
