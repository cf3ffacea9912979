/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import "k6gen/cmd"

func main() {
	cmd.Execute()
}
