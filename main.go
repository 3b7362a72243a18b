package main

import "github.com/shouni/go-web-scraper/cmd"

func main() {
	cmd.Execute()
}
