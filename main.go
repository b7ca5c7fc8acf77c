package main

import "github.com/Mohsinsiddi/atmcli/cmd"

func main() {
	cmd.Execute()
}
