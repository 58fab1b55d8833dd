package main

import "github.com/oshokin/redlight-sentinel/cmd/redlight-sentinel/cmd"

func main() {
	cmd.Execute()
}
