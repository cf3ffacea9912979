/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"k6gen/internal/emitter"
	"k6gen/internal/filter"
	"k6gen/internal/output"
	"k6gen/internal/parser"
	"k6gen/internal/tracker"
)

var (
	inputFile      string
	outputFile     string
	authKey        string
	excludeSegment string

	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a k6 load test script from an OpenAPI spec",
	Long: `Generate a k6 load test script from an OpenAPI specification (YAML or JSON).

The script covers every non-administrative endpoint in document order,
injects a Bearer authorization header where the spec requires one, and
tracks identifiers returned by resource-creating requests so later requests
can resolve their path parameters against them.

Examples:
  # Basic usage
  k6gen generate -i api.yaml -o test.js

  # With a literal authorization key baked in as the fallback
  k6gen generate -i api.yaml -o test.js --auth-key "your-api-key"

  # Run the generated test
  k6 run test.js -e AUTH_KEY="your-api-key" -e BASE_URL="https://api.example.com"`,
	Run: runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) {
	p, err := parser.ParseFile(inputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing OpenAPI file: %v\n", err)
		os.Exit(1)
	}

	baseURL, err := p.ServerURL()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading server URL: %v\n", err)
		os.Exit(1)
	}

	operations, warnings, err := p.Operations()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading operations: %v\n", err)
		os.Exit(1)
	}
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "%s %s\n", yellow("warning:"), w)
	}

	table := tracker.Build(operations)

	exclude := excludeSegment
	if exclude == "" {
		exclude = viper.GetString("filter.exclude")
	}
	policy := filter.New(exclude)
	included := policy.Apply(operations)

	key := authKey
	if key == "" {
		key = viper.GetString("auth.key")
	}

	script, err := emitter.Generate(included, table, emitter.Config{
		BaseURL: baseURL,
		AuthKey: key,
		Stages:  emitter.DefaultStages(),
		Sleep:   viper.GetString("script.sleep"),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating script: %v\n", err)
		os.Exit(1)
	}

	if err := output.WriteScript(script, outputFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing script: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%s Generated k6 test script: %s\n", green("✓"), outputFile)
	fmt.Printf("  %d endpoints included, %d excluded by %s\n",
		len(included), len(operations)-len(included), policy.ExcludeSegment())

	fmt.Println("\nTo run the test:")
	fmt.Printf("  k6 run %s -e AUTH_KEY='your-key' -e BASE_URL='%s'\n", outputFile, baseURL)
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Input OpenAPI spec file (YAML or JSON)")
	generateCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output k6 test script file (use - for stdout)")
	generateCmd.Flags().StringVar(&authKey, "auth-key", "", "Authorization key to use in requests (can also be set via AUTH_KEY env var)")
	generateCmd.Flags().StringVar(&excludeSegment, "exclude", "", "Administrative path segment to exclude (default /admin)")

	cobra.CheckErr(generateCmd.MarkFlagRequired("input"))
	cobra.CheckErr(generateCmd.MarkFlagRequired("output"))
}
