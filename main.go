package main

import "github.com/nekruzvatanshoev/tcoserv/pkg/cmd"

func main() {
	cmd.Execute()
}
