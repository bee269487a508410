// Command vecdbctl is a thin CLI boundary adapter over the vecdb store
// and service layer — cobra with package-level commands and a RunE
// closure per verb, the same shape as liliang-cn-sqvect's cmd/sqvect,
// generalized from one SQLite file to one JSON snapshot path.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/vecdbx/vecdb"
	"github.com/vecdbx/vecdb/internal/logging"
	"github.com/vecdbx/vecdb/internal/service"
	"github.com/vecdbx/vecdb/pkg/filter"
)

var (
	dbPath     string
	outputJSON bool
)

var rootCmd = &cobra.Command{
	Use:   "vecdbctl",
	Short: "CLI for the in-memory vector library store",
	Long:  `A command-line interface for managing libraries, documents, chunks, and indexes in the vector store.`,
	// PersistentPostRunE closes whichever store the invoked subcommand
	// opened, flushing a final snapshot before the process exits cleanly.
	// Cobra runs it only after a RunE that returned nil; closeLiveStore
	// treats a nil liveStore as nothing to close.
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeLiveStore()
	},
}

var liveStore *vecdb.Store

func openStore() *vecdb.Store {
	cfg := vecdb.LoadConfig()
	if dbPath != "" {
		cfg.PersistencePath = dbPath
	}
	liveStore = vecdb.NewStore(cfg, logging.NewStd(cfg.LogLevel))
	return liveStore
}

func closeLiveStore() error {
	if liveStore == nil {
		return nil
	}
	err := liveStore.Close()
	liveStore = nil
	return err
}

func printResult(v interface{}, human func()) {
	if outputJSON {
		data, _ := json.MarshalIndent(v, "", "  ")
		fmt.Println(string(data))
		return
	}
	human()
}

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "Manage libraries",
}

var libraryCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new library",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		desc, _ := cmd.Flags().GetString("description")

		svc := service.NewLibraryService(openStore())
		lib, err := svc.Create(service.CreateLibraryRequest{Name: args[0], Description: desc})
		if err != nil {
			return err
		}

		printResult(lib, func() {
			fmt.Printf("Library %q created with ID %s\n", lib.Name, lib.ID)
		})
		return nil
	},
}

var libraryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all libraries",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := service.NewLibraryService(openStore())
		libs := svc.List()

		printResult(libs, func() {
			fmt.Printf("Libraries (%d):\n", len(libs))
			for _, l := range libs {
				fmt.Printf("  %s  %-24s  %d docs, %d chunks\n", l.ID, l.Name, len(l.Documents), l.TotalChunks())
			}
		})
		return nil
	},
}

var libraryGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Get a library by ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := service.NewLibraryService(openStore())
		lib, err := svc.Get(args[0])
		if err != nil {
			return err
		}
		printResult(lib, func() {
			fmt.Printf("%s (%s): %d documents, %d chunks\n", lib.Name, lib.ID, len(lib.Documents), lib.TotalChunks())
		})
		return nil
	},
}

var libraryUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a library's name or description",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		desc, _ := cmd.Flags().GetString("description")

		req := service.UpdateLibraryRequest{}
		if cmd.Flags().Changed("name") {
			req.Name = &name
		}
		if cmd.Flags().Changed("description") {
			req.Description = &desc
		}

		svc := service.NewLibraryService(openStore())
		lib, err := svc.Update(args[0], req)
		if err != nil {
			return err
		}
		printResult(lib, func() {
			fmt.Printf("Library %s updated\n", lib.ID)
		})
		return nil
	},
}

var libraryDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a library",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := service.NewLibraryService(openStore())
		if err := svc.Delete(args[0]); err != nil {
			return err
		}
		fmt.Printf("Library %s deleted\n", args[0])
		return nil
	},
}

var libraryBuildIndexCmd = &cobra.Command{
	Use:   "build-index <id>",
	Short: "Build or rebuild a library's index",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		indexType, _ := cmd.Flags().GetString("type")
		numHashes, _ := cmd.Flags().GetInt("num-hashes")
		numBuckets, _ := cmd.Flags().GetInt("num-buckets")

		svc := service.NewLibraryService(openStore())
		params := service.BuildIndexParams{NumHashes: numHashes, NumBuckets: numBuckets}
		if err := svc.BuildIndex(args[0], vecdb.IndexType(indexType), params); err != nil {
			return err
		}
		fmt.Printf("Index built for library %s (%s)\n", args[0], indexType)
		return nil
	},
}

var libraryIndexTypesCmd = &cobra.Command{
	Use:   "index-types",
	Short: "Describe the available index strategies",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := service.NewLibraryService(openStore())
		types := svc.AvailableIndexTypes()

		printResult(types, func() {
			for t, info := range types {
				fmt.Printf("%s: %s\n  build=%s search=%s space=%s accuracy=%s\n  %s\n",
					t, info.Name, info.BuildTime, info.SearchTime, info.Space, info.Accuracy, info.Description)
			}
		})
		return nil
	},
}

var libraryStatsCmd = &cobra.Command{
	Use:   "stats <id>",
	Short: "Show statistics for a library",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := service.NewLibraryService(openStore())
		stats, err := svc.Stats(args[0])
		if err != nil {
			return err
		}
		printResult(stats, func() {
			fmt.Printf("%s (%s): %d documents, %d chunks\n", stats.Name, stats.LibraryID, stats.TotalDocuments, stats.TotalChunks)
		})
		return nil
	},
}

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage documents within a library",
}

var documentCreateCmd = &cobra.Command{
	Use:   "create <library-id> <name>",
	Short: "Create a document in a library",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := service.NewDocumentService(openStore())
		doc, err := svc.Create(args[0], service.CreateDocumentRequest{Name: args[1]})
		if err != nil {
			return err
		}
		printResult(doc, func() {
			fmt.Printf("Document %q created with ID %s\n", doc.Name, doc.ID)
		})
		return nil
	},
}

var documentGetCmd = &cobra.Command{
	Use:   "get <library-id> <document-id>",
	Short: "Get a document by ID",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := service.NewDocumentService(openStore())
		doc, err := svc.Get(args[0], args[1])
		if err != nil {
			return err
		}
		printResult(doc, func() {
			fmt.Printf("%s (%s): %d chunks\n", doc.Name, doc.ID, len(doc.Chunks))
		})
		return nil
	},
}

var documentListCmd = &cobra.Command{
	Use:   "list <library-id>",
	Short: "List documents in a library",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := service.NewDocumentService(openStore())
		docs, err := svc.List(args[0])
		if err != nil {
			return err
		}
		printResult(docs, func() {
			fmt.Printf("Documents (%d):\n", len(docs))
			for _, d := range docs {
				fmt.Printf("  %s  %-24s  %d chunks\n", d.ID, d.Name, len(d.Chunks))
			}
		})
		return nil
	},
}

var documentUpdateCmd = &cobra.Command{
	Use:   "update <library-id> <document-id>",
	Short: "Rename a document",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")

		req := service.UpdateDocumentRequest{}
		if cmd.Flags().Changed("name") {
			req.Name = &name
		}

		svc := service.NewDocumentService(openStore())
		doc, err := svc.Update(args[0], args[1], req)
		if err != nil {
			return err
		}
		printResult(doc, func() {
			fmt.Printf("Document %s updated\n", doc.ID)
		})
		return nil
	},
}

var documentDeleteCmd = &cobra.Command{
	Use:   "delete <library-id> <document-id>",
	Short: "Delete a document",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := service.NewDocumentService(openStore())
		if err := svc.Delete(args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("Document %s deleted\n", args[1])
		return nil
	},
}

var documentAddChunkCmd = &cobra.Command{
	Use:   "add-chunk <library-id> <document-id> <text>",
	Short: "Add a single chunk to a document",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		vectorStr, _ := cmd.Flags().GetString("vector")
		embedding, err := parseVector(vectorStr)
		if err != nil {
			return err
		}

		svc := service.NewDocumentService(openStore())
		chunks, err := svc.AddChunks(args[0], args[1], []vecdb.NewChunk{{Text: args[2], Embedding: embedding}})
		if err != nil {
			return err
		}
		fmt.Printf("Chunk %s added\n", chunks[0].ID)
		return nil
	},
}

var documentSearchNameCmd = &cobra.Command{
	Use:   "search-name <library-id> <query>",
	Short: "Find documents by a case-insensitive substring of their name",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := service.NewDocumentService(openStore())
		docs, err := svc.FindByName(args[0], args[1])
		if err != nil {
			return err
		}
		printResult(docs, func() {
			fmt.Printf("Documents matching %q (%d):\n", args[1], len(docs))
			for _, d := range docs {
				fmt.Printf("  %s  %-24s  %d chunks\n", d.ID, d.Name, len(d.Chunks))
			}
		})
		return nil
	},
}

var documentSearchMetadataCmd = &cobra.Command{
	Use:   "search-metadata <library-id>",
	Short: "Find documents whose metadata matches a filter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filterStr, _ := cmd.Flags().GetString("filter")

		svc := service.NewDocumentService(openStore())
		docs, err := svc.FindByMetadata(args[0], parseFilter(filterStr))
		if err != nil {
			return err
		}
		printResult(docs, func() {
			fmt.Printf("Documents matching filter (%d):\n", len(docs))
			for _, d := range docs {
				fmt.Printf("  %s  %-24s  %d chunks\n", d.ID, d.Name, len(d.Chunks))
			}
		})
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <library-id>",
	Short: "Search a library for similar chunks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		vectorStr, _ := cmd.Flags().GetString("vector")
		k, _ := cmd.Flags().GetInt("top-k")
		filterStr, _ := cmd.Flags().GetString("filter")

		embedding, err := parseVector(vectorStr)
		if err != nil {
			return err
		}

		svc := service.NewSearchService(openStore())
		res, err := svc.Search(args[0], service.Query{Embedding: embedding, K: k, Filters: parseFilter(filterStr)})
		if err != nil {
			return err
		}

		printResult(res, func() {
			fmt.Printf("Found %d results in %.2fms (%s index):\n", res.TotalFound, res.SearchTimeMs, res.IndexType)
			for i, c := range res.Chunks {
				fmt.Printf("%d. %s (score: %.4f): %s\n", i+1, c.ID, res.Scores[i], truncate(c.Text, 80))
			}
		})
		return nil
	},
}

var searchAcrossCmd = &cobra.Command{
	Use:   "search-across",
	Short: "Search every library concurrently and merge results",
	RunE: func(cmd *cobra.Command, args []string) error {
		vectorStr, _ := cmd.Flags().GetString("vector")
		k, _ := cmd.Flags().GetInt("top-k")

		embedding, err := parseVector(vectorStr)
		if err != nil {
			return err
		}

		svc := service.NewSearchService(openStore())
		results := svc.SearchAcrossLibraries(context.Background(), service.Query{Embedding: embedding, K: k}, nil)

		printResult(results, func() {
			for id, res := range results {
				fmt.Printf("library %s: %d results in %.2fms\n", id, res.TotalFound, res.SearchTimeMs)
			}
		})
		return nil
	},
}

var searchSuggestCmd = &cobra.Command{
	Use:   "suggest <library-id> <partial>",
	Short: "Suggest completions from chunk text",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		svc := service.NewSearchService(openStore())
		suggestions, err := svc.Suggestions(args[0], args[1], limit)
		if err != nil {
			return err
		}
		printResult(suggestions, func() {
			for _, s := range suggestions {
				fmt.Println(s)
			}
		})
		return nil
	},
}

var searchAnalyticsCmd = &cobra.Command{
	Use:   "analytics <library-id>",
	Short: "Show search analytics for a library",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := service.NewSearchService(openStore())
		a, err := svc.Analytics(args[0])
		if err != nil {
			return err
		}
		printResult(a, func() {
			fmt.Printf("%s: %d docs, %d chunks, avg length %.1f, dim %d\n",
				a.LibraryID, a.TotalDocuments, a.TotalChunks, a.AverageChunkLength, a.EmbeddingDimension)
		})
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show store-wide statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := openStore()
		st := store.Stats()

		printResult(st, func() {
			fmt.Println("Store statistics:")
			fmt.Printf("  Libraries: %d (indexed: %d)\n", st.TotalLibraries, st.IndexedLibraries)
			fmt.Printf("  Documents: %d\n", st.TotalDocuments)
			fmt.Printf("  Chunks:    %d\n", st.TotalChunks)
			if st.PersistenceEnabled {
				fmt.Printf("  Snapshot:  %s\n", humanize.Bytes(uint64(st.SnapshotSizeBytes)))
			}
		})
		return nil
	},
}

func parseVector(s string) ([]float64, error) {
	if s == "" {
		return nil, fmt.Errorf("vector is required")
	}
	parts := strings.Split(s, ",")
	vec := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid vector component %q: %w", p, err)
		}
		vec = append(vec, v)
	}
	return vec, nil
}

// parseFilter accepts key=value,key2=value2 as a shorthand for simple
// equality filters; anything requiring an operator should be submitted
// through a future JSON-body interface, not this CLI.
func parseFilter(s string) filter.Filters {
	if s == "" {
		return nil
	}
	f := make(filter.Filters)
	for _, pair := range strings.Split(s, ",") {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) == 2 {
			f[strings.TrimSpace(kv[0])] = strings.TrimSpace(kv[1])
		}
	}
	return f
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Snapshot file path (overrides VECDB_PERSISTENCE_PATH)")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output as JSON")

	libraryCreateCmd.Flags().String("description", "", "Library description")
	libraryUpdateCmd.Flags().String("name", "", "New library name")
	libraryUpdateCmd.Flags().String("description", "", "New library description")
	libraryBuildIndexCmd.Flags().String("type", "linear", "Index type (linear, kdtree, lsh)")
	libraryBuildIndexCmd.Flags().Int("num-hashes", 0, "LSH hyperplane count override (0 = use configured default)")
	libraryBuildIndexCmd.Flags().Int("num-buckets", 0, "LSH bucket count override (0 = use configured default)")
	libraryCmd.AddCommand(libraryCreateCmd, libraryListCmd, libraryGetCmd, libraryUpdateCmd, libraryDeleteCmd,
		libraryBuildIndexCmd, libraryIndexTypesCmd, libraryStatsCmd)

	documentAddChunkCmd.Flags().String("vector", "", "Embedding values (comma-separated)")
	documentAddChunkCmd.MarkFlagRequired("vector")
	documentUpdateCmd.Flags().String("name", "", "New document name")
	documentSearchMetadataCmd.Flags().String("filter", "", "Metadata filters (key=value,key2=value2)")
	documentCmd.AddCommand(documentCreateCmd, documentGetCmd, documentListCmd, documentUpdateCmd, documentDeleteCmd,
		documentAddChunkCmd, documentSearchNameCmd, documentSearchMetadataCmd)

	searchCmd.Flags().String("vector", "", "Query vector (comma-separated)")
	searchCmd.Flags().Int("top-k", 10, "Number of results")
	searchCmd.Flags().String("filter", "", "Metadata filters (key=value,key2=value2)")
	searchCmd.MarkFlagRequired("vector")

	searchAcrossCmd.Flags().String("vector", "", "Query vector (comma-separated)")
	searchAcrossCmd.Flags().Int("top-k", 10, "Number of results per library")
	searchAcrossCmd.MarkFlagRequired("vector")

	searchSuggestCmd.Flags().Int("limit", 5, "Maximum number of suggestions")

	rootCmd.AddCommand(libraryCmd, documentCmd, searchCmd, searchAcrossCmd, searchSuggestCmd, searchAnalyticsCmd, statsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
