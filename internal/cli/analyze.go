package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/wikicull/wikicull/internal/app"
	"github.com/wikicull/wikicull/internal/model"
	"github.com/wikicull/wikicull/internal/store"
)

var (
	analyzeName       string
	analyzeThreshold  int
	analyzeFilters    []string
	analyzePredicates []string
	disambigGuard     bool
	listGuard         bool
	apiURL            string
	storePath         string
	noStore           bool
	outputFormat      string
	fetchConcurrency  int
	analyzeTimeout    time.Duration
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [listing-file]",
	Short: "Analyze a listing and print it with minor diffs culled",
	Long: `Analyze parses a wikitext listing of pages and diff links, fetches the
added text of every diff, and removes the diffs judged minor under the
configured filters and predicates.

The listing is read from the given file, or from stdin when the
argument is missing or "-".

Example:
  wikicull analyze listing.txt
  wikicull analyze listing.txt --threshold 8 --predicates word-count,whitelist
  cat listing.txt | wikicull analyze --format json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&analyzeName, "name", "", "name to save the analysis under (default: listing file name)")
	analyzeCmd.Flags().IntVar(&analyzeThreshold, "threshold", 0, "minimum consecutive-word run that keeps a diff (0=use config)")
	analyzeCmd.Flags().StringSliceVar(&analyzeFilters, "filters", nil, "text filters: references,external-links,comments")
	analyzeCmd.Flags().StringSliceVar(&analyzePredicates, "predicates", nil, "culling predicates: word-count,whitelist,list-item,file-addition,table")
	analyzeCmd.Flags().BoolVar(&disambigGuard, "disambiguation-guard", false, "never cull diffs of new disambiguation pages")
	analyzeCmd.Flags().BoolVar(&listGuard, "list-guard", false, "never cull diffs of new \"List of\" pages")
	analyzeCmd.Flags().StringVar(&apiURL, "api", "", "MediaWiki api.php endpoint (default: English Wikipedia)")
	analyzeCmd.Flags().StringVar(&storePath, "store", "", "SQLite database for saved analyses (default: ~/.wikicull/wikicull.db)")
	analyzeCmd.Flags().BoolVar(&noStore, "no-store", false, "do not persist the analysis")
	analyzeCmd.Flags().StringVar(&outputFormat, "format", "text", "output format: text|json|yaml")
	analyzeCmd.Flags().IntVar(&fetchConcurrency, "concurrency", 0, "parallel diff fetches (0=use config)")
	analyzeCmd.Flags().DurationVar(&analyzeTimeout, "timeout", 10*time.Minute, "overall analysis timeout")
}

// analysisOutput is the machine-readable shape of one analysis.
type analysisOutput struct {
	AnalysisID string        `json:"analysis_id,omitempty" yaml:"analysis_id,omitempty"`
	Report     *model.Report `json:"report" yaml:"report"`
	Minor      []string      `json:"minor" yaml:"minor"`
	Culled     string        `json:"culled" yaml:"culled"`
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	source, name, err := readListing(args)
	if err != nil {
		return err
	}
	if analyzeName != "" {
		name = analyzeName
	}

	cfg := analyzeConfig()

	var st *store.Store
	if !noStore {
		path, err := expandPath(cfg.StorePath)
		if err != nil {
			return fmt.Errorf("expanding store path: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("creating store directory: %w", err)
		}
		st, err = store.Open(path, newLogger("Store"))
		if err != nil {
			return fmt.Errorf("opening store: %w", err)
		}
		defer st.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), analyzeTimeout)
	defer cancel()

	if verbose {
		fmt.Fprintf(os.Stderr, "Analyzing %q against %s\n", name, cfg.LoaderCfg.APIURL)
	}

	orch := app.NewOrchestrator(cfg, st, newLogger("CLI"))
	result, err := orch.Analyze(ctx, name, source)
	if err != nil {
		return err
	}

	return renderAnalysis(cmd.OutOrStdout(), outputFormat, result)
}

// analyzeConfig overlays the analyze flags on the loaded configuration.
func analyzeConfig() *app.Config {
	cfg := loadConfig()
	if analyzeThreshold > 0 {
		cfg.WordThreshold = analyzeThreshold
	}
	if len(analyzeFilters) > 0 {
		cfg.Filters = analyzeFilters
	}
	if len(analyzePredicates) > 0 {
		cfg.Predicates = analyzePredicates
	}
	if disambigGuard {
		cfg.DisambiguationGuard = true
	}
	if listGuard {
		cfg.ListGuard = true
	}
	if apiURL != "" {
		cfg.LoaderCfg.APIURL = apiURL
	}
	if storePath != "" {
		cfg.StorePath = storePath
	}
	if fetchConcurrency > 0 {
		cfg.EngineCfg.FetchConcurrency = fetchConcurrency
	}
	return cfg
}

func readListing(args []string) (source, name string, err error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", "", fmt.Errorf("reading listing from stdin: %w", err)
		}
		return string(data), "stdin", nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", "", fmt.Errorf("reading listing file: %w", err)
	}
	base := filepath.Base(args[0])
	return string(data), strings.TrimSuffix(base, filepath.Ext(base)), nil
}

// renderAnalysis writes the result in the requested format.
func renderAnalysis(w io.Writer, format string, result *app.AnalysisResult) error {
	out := analysisOutput{
		AnalysisID: result.AnalysisID,
		Report:     result.Report,
		Minor:      result.Page.MinorEdits,
		Culled:     result.CulledListing,
	}
	if out.Minor == nil {
		out.Minor = []string{}
	}

	switch format {
	case "text":
		fmt.Fprintln(w, out.Culled)
		fmt.Fprintf(w, "\n%d of %d diffs culled across %d entries\n",
			out.Report.Totals.Minor, out.Report.Totals.Diffs, out.Report.Totals.Entries)
		if out.AnalysisID != "" {
			fmt.Fprintf(w, "saved as %s\n", out.AnalysisID)
		}
		return nil
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case "yaml":
		data, err := yaml.Marshal(out)
		if err != nil {
			return fmt.Errorf("marshaling YAML output: %w", err)
		}
		_, err = w.Write(data)
		return err
	default:
		return fmt.Errorf("unknown output format %q (want text, json or yaml)", format)
	}
}
