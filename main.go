package main

import "github.com/ValentinKolb/kvbatch/cmd"

func main() {
	cmd.Execute()
}
