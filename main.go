package main

import "github.com/Jordan-Sun/geos-chem/cmd"

func main() {
	cmd.Execute()
}
