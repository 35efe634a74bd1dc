package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/framescope/framescope/internal/labels"
	"github.com/framescope/framescope/internal/model"
	"github.com/framescope/framescope/internal/trends"
	"github.com/gocarina/gocsv"
	"github.com/spf13/cobra"
)

var (
	exportOut    string
	exportFormat string
)

// exportRow is one flattened dataset row for downstream analysis tools.
type exportRow struct {
	EpisodeID     string  `csv:"episode_id" json:"episode_id"`
	Program       string  `csv:"program" json:"program"`
	Host          string  `csv:"host" json:"host,omitempty"`
	AirDate       string  `csv:"air_date" json:"air_date,omitempty"`
	Period        string  `csv:"period" json:"period,omitempty"`
	Frame         string  `csv:"frame" json:"frame"`
	CoderMajority string  `csv:"coder_majority" json:"coder_majority,omitempty"`
	AutoFrame     string  `csv:"auto_frame" json:"auto_frame,omitempty"`
	MatchCount    int     `csv:"match_count" json:"match_count"`
	Sentiment     float64 `csv:"sentiment" json:"sentiment"`
	Snippet       string  `csv:"snippet" json:"snippet"`
}

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the analysis dataset as CSV or JSON",
	Long: `Export flattens the dataset into one row per relevant episode: metadata,
broadcast period, snippet, sentiment and every label source side by
side.

The frame column carries the effective label (coder majority when one
exists, automated label otherwise, unknown when neither resolves); the
coder_majority and auto_frame columns keep the sources separate for
agreement analysis downstream.

Example:
  framescope export
  framescope export --out dataset.csv
  framescope export --format json --out dataset.json`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportOut, "out", "-", "output file (- = stdout)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "output format: csv or json")
}

func runExport(cmd *cobra.Command, args []string) (err error) {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	rows, err := st.Dataset(context.Background())
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	flat, err := buildExportRows(rows, cfg.Trends.Period)
	if err != nil {
		return err
	}

	var out io.Writer = os.Stdout
	dest := "stdout"
	if exportOut != "-" {
		f, createErr := os.Create(exportOut)
		if createErr != nil {
			return fmt.Errorf("create %s: %w", exportOut, createErr)
		}
		defer func() {
			if closeErr := f.Close(); closeErr != nil && err == nil {
				err = fmt.Errorf("close %s: %w", exportOut, closeErr)
			}
		}()
		out = f
		dest = exportOut
	}

	switch exportFormat {
	case "csv":
		if err := gocsv.Marshal(&flat, out); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	case "json":
		data, err := json.MarshalIndent(flat, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		if _, err := out.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("write json: %w", err)
		}
	default:
		return fmt.Errorf("unknown export format: %s (supported: csv, json)", exportFormat)
	}

	fmt.Fprintf(os.Stderr, "✓ Exported %d rows to %s\n", len(flat), dest)
	return nil
}

// buildExportRows flattens dataset rows, deriving the broadcast period and
// the effective frame.
func buildExportRows(rows []model.DatasetRow, granularity string) ([]exportRow, error) {
	flat := make([]exportRow, 0, len(rows))
	for _, row := range rows {
		er := exportRow{
			EpisodeID:  row.EpisodeID,
			Program:    row.Program,
			Host:       row.Host,
			Frame:      string(trends.EffectiveFrame(row)),
			AutoFrame:  string(row.AutoFrame),
			MatchCount: row.MatchCount,
			Sentiment:  row.Sentiment,
			Snippet:    row.Snippet,
		}
		if !row.AirDate.IsZero() {
			er.AirDate = row.AirDate.Format("2006-01-02")
			period, err := trends.PeriodOf(row.AirDate, granularity)
			if err != nil {
				return nil, err
			}
			er.Period = period
		}
		if len(row.CoderFrames) > 0 {
			er.CoderMajority = string(labels.Majority(row.CoderFrames))
		}
		flat = append(flat, er)
	}
	return flat, nil
}
