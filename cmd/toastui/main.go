// Package main provides the CLI entrypoint for toastui.
package main

func main() {
	Execute()
}
