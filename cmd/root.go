/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "k6gen",
	Short: "k6 load test generator based on OpenAPI Specification",
	Long: `k6gen converts an OpenAPI Specification into a runnable k6 load test script.

The generated script injects authorization headers, excludes administrative
endpoints, and threads identifiers returned by resource-creating requests
into later requests that reference them through path parameters.`,
}

func Execute() {
	cobra.OnInitialize(initConfig)
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetConfigName("k6gen")
	viper.SetConfigType("toml")
	viper.AddConfigPath(".")

	viper.SetDefault("filter.exclude", "/admin")
	viper.SetDefault("script.sleep", "0.5")
	if err := viper.BindEnv("auth.key", "AUTH_KEY"); err != nil {
		log.Fatalf("Error binding environment: %v", err)
	}

	// The config file is optional; only a present-but-broken file is fatal.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Fatalf("Error reading config file: %v", err)
		}
	}
}
