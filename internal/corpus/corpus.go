// Package corpus loads the four tabular inputs (utterances, episode
// metadata, host map, coder labels) and collapses guest utterances into one
// Document per episode. Ingestion failures are fatal: a missing or
// malformed file aborts the pipeline with a descriptive message.
package corpus

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/framescope/framescope/internal/labels"
	"github.com/framescope/framescope/internal/model"
)

// utteranceRecord is one row of the utterances CSV.
type utteranceRecord struct {
	EpisodeID string `csv:"episode_id"`
	Sequence  int    `csv:"sequence"`
	Speaker   string `csv:"speaker"`
	IsHost    int    `csv:"is_host"` // 1 when the speaker is the program host
	Text      string `csv:"text"`
}

// episodeRecord is one row of the episode metadata CSV.
type episodeRecord struct {
	EpisodeID string `csv:"episode_id"`
	Program   string `csv:"program"`
	AirDate   string `csv:"air_date"` // YYYY-MM-DD
	Title     string `csv:"title"`
}

// hostRecord maps an episode to its host.
type hostRecord struct {
	EpisodeID string `csv:"episode_id"`
	Host      string `csv:"host"`
}

// labelRecord is one coder's one-hot annotation row.
type labelRecord struct {
	EpisodeID    string `csv:"episode_id"`
	Coder        string `csv:"coder"`
	Security     int    `csv:"security"`
	Economic     int    `csv:"economic"`
	Humanitarian int    `csv:"humanitarian"`
	Other        int    `csv:"other"`
}

// Meta is the joined episode metadata.
type Meta struct {
	Program string
	Title   string
	AirDate time.Time
}

func loadCSV(path string, out interface{}) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	if err := gocsv.UnmarshalFile(f, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// LoadUtterances reads the utterances CSV.
func LoadUtterances(path string) ([]model.Utterance, error) {
	var records []*utteranceRecord
	if err := loadCSV(path, &records); err != nil {
		return nil, err
	}

	utterances := make([]model.Utterance, 0, len(records))
	for _, r := range records {
		utterances = append(utterances, model.Utterance{
			EpisodeID: r.EpisodeID,
			Sequence:  r.Sequence,
			Speaker:   r.Speaker,
			IsHost:    r.IsHost != 0,
			Text:      r.Text,
		})
	}
	return utterances, nil
}

// LoadMeta reads the episode metadata CSV into a map keyed by episode id.
func LoadMeta(path string) (map[string]Meta, error) {
	var records []*episodeRecord
	if err := loadCSV(path, &records); err != nil {
		return nil, err
	}

	meta := make(map[string]Meta, len(records))
	for _, r := range records {
		m := Meta{Program: r.Program, Title: r.Title}
		if r.AirDate != "" {
			t, err := time.Parse("2006-01-02", r.AirDate)
			if err != nil {
				return nil, fmt.Errorf("episode %s: parse air date %q: %w", r.EpisodeID, r.AirDate, err)
			}
			m.AirDate = t
		}
		meta[r.EpisodeID] = m
	}
	return meta, nil
}

// LoadHosts reads the host-to-episode mapping CSV.
func LoadHosts(path string) (map[string]string, error) {
	var records []*hostRecord
	if err := loadCSV(path, &records); err != nil {
		return nil, err
	}

	hosts := make(map[string]string, len(records))
	for _, r := range records {
		hosts[r.EpisodeID] = r.Host
	}
	return hosts, nil
}

// LoadCoderRows reads the coder one-hot labels CSV into reconciler rows,
// indicators aligned with model.Frames().
func LoadCoderRows(path string) ([]labels.Row, error) {
	var records []*labelRecord
	if err := loadCSV(path, &records); err != nil {
		return nil, err
	}

	rows := make([]labels.Row, 0, len(records))
	for _, r := range records {
		rows = append(rows, labels.Row{
			EpisodeID:  r.EpisodeID,
			Coder:      r.Coder,
			Indicators: []int{r.Security, r.Economic, r.Humanitarian, r.Other},
		})
	}
	return rows, nil
}

// Summary reports what the collapse produced.
type Summary struct {
	Episodes        int
	Utterances      int
	GuestUtterances int
	WithoutMeta     int // Episodes missing a metadata row
	WithoutHost     int // Episodes missing a host mapping
}

// Collapse concatenates each episode's guest utterances, in sequence order,
// into one Document joined with its metadata and host. Host turns are the
// interviewer's questions, not the content under study, so they are dropped.
// Episodes missing metadata or a host are kept with the fields empty and
// counted in the summary.
func Collapse(utterances []model.Utterance, meta map[string]Meta, hosts map[string]string) ([]model.Document, Summary) {
	summary := Summary{Utterances: len(utterances)}

	byEpisode := make(map[string][]model.Utterance)
	for _, u := range utterances {
		if u.IsHost {
			continue
		}
		summary.GuestUtterances++
		byEpisode[u.EpisodeID] = append(byEpisode[u.EpisodeID], u)
	}

	ids := make([]string, 0, len(byEpisode))
	for id := range byEpisode {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	docs := make([]model.Document, 0, len(ids))
	for _, id := range ids {
		turns := byEpisode[id]
		sort.Slice(turns, func(i, j int) bool { return turns[i].Sequence < turns[j].Sequence })

		parts := make([]string, 0, len(turns))
		for _, turn := range turns {
			if cleaned := StripMarkup(turn.Text); cleaned != "" {
				parts = append(parts, cleaned)
			}
		}
		text := strings.Join(parts, " ")

		doc := model.Document{
			EpisodeID: id,
			Text:      text,
			WordCount: model.WordCount(text),
		}
		if m, ok := meta[id]; ok {
			doc.Program = m.Program
			doc.Title = m.Title
			doc.AirDate = m.AirDate
		} else {
			summary.WithoutMeta++
		}
		if host, ok := hosts[id]; ok {
			doc.Host = host
		} else {
			summary.WithoutHost++
		}

		docs = append(docs, doc)
		summary.Episodes++
	}

	return docs, summary
}

// Load reads the three transcript inputs and collapses them. Any load error
// is returned as-is for the caller to treat as fatal.
func Load(utterancesPath, metaPath, hostsPath string) ([]model.Document, Summary, error) {
	utterances, err := LoadUtterances(utterancesPath)
	if err != nil {
		return nil, Summary{}, err
	}
	meta, err := LoadMeta(metaPath)
	if err != nil {
		return nil, Summary{}, err
	}
	hosts, err := LoadHosts(hostsPath)
	if err != nil {
		return nil, Summary{}, err
	}

	docs, summary := Collapse(utterances, meta, hosts)
	return docs, summary, nil
}
