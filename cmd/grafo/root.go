// Package grafo implements the command line interface for analyzing
// documents into a consolidated knowledge graph.
package grafo

import (
	"github.com/spf13/cobra"

	"github.com/grafo-kg/grafo/internal/util"
	"github.com/grafo-kg/grafo/pkg/logger"
	"github.com/grafo-kg/grafo/pkg/logger/console"
)

var debug bool

var rootCmd = &cobra.Command{
	Use:   "grafo",
	Short: "Document-to-knowledge-graph consolidation",
	Long: `Grafo extracts entities and relationships from documents with a
reasoning service and consolidates them into a deduplicated knowledge
graph backed by Neo4j.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		util.LoadEnv()
		logger.Init(console.NewConsoleLogger(console.ConsoleLoggerParams{
			Debug: debug || util.GetEnvBool("DEBUG", false),
		}))
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"log reasoning-service requests and responses")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
