// Command queuedemo drives a configurable producer/consumer session
// against a blockingqueue.Queue.
package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "queuedemo",
	Short: "concurrentqueue demo is a command line tool",
	Long:  "concurrentqueue demo drives producer/consumer goroutines against a bounded lock-free queue",
	Run: func(cmd *cobra.Command, args []string) {
		if err := cmd.Help(); err != nil {
			return
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		panic(err)
	}
}
