package grafo

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/grafo-kg/grafo/internal/util"
	"github.com/grafo-kg/grafo/pkg/ai"
	oai "github.com/grafo-kg/grafo/pkg/ai/ollama"
	gai "github.com/grafo-kg/grafo/pkg/ai/openai"
	"github.com/grafo-kg/grafo/pkg/graph"
	"github.com/grafo-kg/grafo/pkg/loader"
	pdfloader "github.com/grafo-kg/grafo/pkg/loader/pdf"
	textloader "github.com/grafo-kg/grafo/pkg/loader/text"
	webloader "github.com/grafo-kg/grafo/pkg/loader/web"
	"github.com/grafo-kg/grafo/pkg/logger"
	"github.com/grafo-kg/grafo/pkg/store"
	"github.com/grafo-kg/grafo/pkg/store/archive"
	memorystore "github.com/grafo-kg/grafo/pkg/store/memory"
	neo4jstore "github.com/grafo-kg/grafo/pkg/store/neo4j"
)

var (
	analyzeFile     string
	analyzeURL      string
	analyzePDF      string
	analyzeStore    string
	analyzeSkipFile bool
	analyzeOutDir   string
	analyzeLanguage string
	analyzeProvider string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a document and consolidate it into the graph",
	Long: `Analyze reads a document from a file, URL or PDF, extracts entities
and relationships unit by unit, resolves duplicate identities and
writes the consolidated graph to the configured store plus a JSON
analysis artifact next to it.`,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&analyzeFile, "file", "", "path to a plain text document")
	analyzeCmd.Flags().StringVar(&analyzeURL, "url", "", "URL of a web page to analyze")
	analyzeCmd.Flags().StringVar(&analyzePDF, "pdf", "", "path to a PDF document")
	analyzeCmd.Flags().StringVar(&analyzeStore, "store", "neo4j", "graph store backend (neo4j, memory)")
	analyzeCmd.Flags().BoolVar(&analyzeSkipFile, "skip-file", false, "do not write the JSON analysis artifact")
	analyzeCmd.Flags().StringVar(&analyzeOutDir, "output-dir", ".", "directory for analysis artifacts")
	analyzeCmd.Flags().StringVar(&analyzeLanguage, "language", "en", "document language hint")
	analyzeCmd.Flags().StringVar(&analyzeProvider, "provider", "", "reasoning provider (openai, ollama); defaults to AI_ADAPTER")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	doc, err := loadDocument(ctx)
	if err != nil {
		return err
	}

	aiClient, provider, err := newAIClient()
	if err != nil {
		return err
	}

	storage, err := newStorage()
	if err != nil {
		return err
	}
	defer storage.Close(context.Background())

	client := graph.NewGraphClient(graph.NewGraphClientParams{
		TokenEncoder:      util.GetEnvString("TOKEN_ENCODER", "o200k_base"),
		MaxUnitTokens:     util.GetEnvInt("MAX_UNIT_TOKENS", 0),
		OverlapRunes:      util.GetEnvInt("OVERLAP_RUNES", 600),
		ParallelRequests:  util.GetEnvInt("PARALLEL_REQUESTS", 4),
		MaxRetries:        util.GetEnvInt("MAX_RETRIES", 3),
		RetryBaseDelay:    time.Duration(util.GetEnvInt("RETRY_BASE_DELAY_MS", 500)) * time.Millisecond,
		RequestsPerSecond: util.GetEnvNumeric("REQUESTS_PER_SECOND", 0),
		AliasSimilarity:   util.GetEnvNumeric("ALIAS_SIMILARITY", 0),
	})

	result, _, err := client.ProcessDocument(ctx, doc, graph.ProcessParams{
		AIClient: aiClient,
		Storage:  storage,
		Language: analyzeLanguage,
		Provider: provider,
	})
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if !analyzeSkipFile {
		if _, err := archive.Write(analyzeOutDir, result); err != nil {
			logger.Error("Could not write analysis artifact", "err", err)
		}
	}

	fmt.Printf("Consolidated %d entities and %d relations from %q\n",
		len(result.Entities), len(result.Relations), result.Title)
	return nil
}

func loadDocument(ctx context.Context) (*loader.Document, error) {
	set := 0
	for _, v := range []string{analyzeFile, analyzeURL, analyzePDF} {
		if v != "" {
			set++
		}
	}
	if set != 1 {
		return nil, fmt.Errorf("exactly one of --file, --url or --pdf is required")
	}

	switch {
	case analyzeURL != "":
		return webloader.NewWebLoader(http.DefaultClient).Fetch(ctx, analyzeURL)
	case analyzePDF != "":
		return pdfloader.Load(analyzePDF)
	default:
		return textloader.Load(analyzeFile)
	}
}

func newAIClient() (ai.GraphAIClient, string, error) {
	provider := analyzeProvider
	if provider == "" {
		provider = util.GetEnvString("AI_ADAPTER", "openai")
	}

	switch provider {
	case "ollama":
		client, err := oai.NewGraphOllamaClient(oai.NewGraphOllamaClientParams{
			ExtractionModel:  util.GetEnv("AI_CHAT_EXTRACT_MODEL"),
			DescriptionModel: util.GetEnv("AI_CHAT_DESCRIBE_MODEL"),
			BaseURL:          util.GetEnv("AI_CHAT_URL"),
			APIKey:           util.GetEnv("AI_CHAT_KEY"),
		})
		if err != nil {
			return nil, "", fmt.Errorf("could not create Ollama client: %w", err)
		}
		return client, provider, nil
	case "openai":
		return gai.NewGraphOpenAIClient(gai.NewGraphOpenAIClientParams{
			ExtractionModel:  util.GetEnv("AI_CHAT_EXTRACT_MODEL"),
			DescriptionModel: util.GetEnv("AI_CHAT_DESCRIBE_MODEL"),
			BaseURL:          util.GetEnv("AI_CHAT_URL"),
			APIKey:           util.GetEnv("AI_CHAT_KEY"),
		}), provider, nil
	default:
		return nil, "", fmt.Errorf("unknown provider %q", provider)
	}
}

func newStorage() (store.GraphStorage, error) {
	switch analyzeStore {
	case "memory":
		return memorystore.NewGraphStore(), nil
	case "neo4j":
		return neo4jstore.NewGraphStore(neo4jstore.NewGraphStoreParams{
			URI:      util.GetEnvString("NEO4J_URI", "bolt://localhost:7687"),
			Username: util.GetEnvString("NEO4J_USERNAME", "neo4j"),
			Password: util.GetEnv("NEO4J_PASSWORD"),
			Database: util.GetEnv("NEO4J_DATABASE"),
		})
	default:
		return nil, fmt.Errorf("unknown store %q", analyzeStore)
	}
}
