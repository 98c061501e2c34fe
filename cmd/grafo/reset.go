package grafo

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/grafo-kg/grafo/internal/util"
	"github.com/grafo-kg/grafo/pkg/logger"
	neo4jstore "github.com/grafo-kg/grafo/pkg/store/neo4j"
)

var resetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete every node and relationship from the graph store",
	RunE:  runReset,
}

func init() {
	rootCmd.AddCommand(resetCmd)
	resetCmd.Flags().BoolVar(&resetYes, "yes", false, "skip the confirmation prompt")
}

func runReset(cmd *cobra.Command, args []string) error {
	if !resetYes {
		fmt.Print("This deletes ALL graph data. Type 'yes' to continue: ")
		answer, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			return err
		}
		if strings.TrimSpace(answer) != "yes" {
			logger.Info("Reset aborted")
			return nil
		}
	}

	storage, err := neo4jstore.NewGraphStore(neo4jstore.NewGraphStoreParams{
		URI:      util.GetEnvString("NEO4J_URI", "bolt://localhost:7687"),
		Username: util.GetEnvString("NEO4J_USERNAME", "neo4j"),
		Password: util.GetEnv("NEO4J_PASSWORD"),
		Database: util.GetEnv("NEO4J_DATABASE"),
	})
	if err != nil {
		return err
	}
	defer storage.Close(context.Background())

	return storage.Reset(cmd.Context())
}
