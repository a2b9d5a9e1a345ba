package main

import "movie-pipeline/cmd"

func main() {
	cmd.Execute()
}
