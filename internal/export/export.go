// Package export writes habits with their records and cycle histories as CSV or JSON.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/habitcycle/internal/constants"
	"github.com/julianstephens/habitcycle/internal/models"
	"github.com/julianstephens/habitcycle/internal/stats"
)

// Kind selects what a CSV export contains.
type Kind string

const (
	KindRecords   Kind = "records"
	KindHistories Kind = "histories"
)

// HabitData is one exported habit.
type HabitData struct {
	Habit     models.Habit          `json:"habit"`
	Records   []models.DailyRecord  `json:"records"`
	Histories []models.CycleHistory `json:"histories"`
}

// Document is the JSON export envelope.
type Document struct {
	Version    string      `json:"version"`
	ExportedAt time.Time   `json:"exported_at"`
	Habits     []HabitData `json:"habits"`
}

// FromSnapshots builds a Document from store snapshots.
func FromSnapshots(snaps []stats.Snapshot, now time.Time) Document {
	doc := Document{Version: constants.Version, ExportedAt: now.UTC(), Habits: []HabitData{}}
	for _, s := range snaps {
		d := HabitData{Habit: s.Habit, Records: s.Records, Histories: s.Histories}
		if d.Records == nil {
			d.Records = []models.DailyRecord{}
		}
		if d.Histories == nil {
			d.Histories = []models.CycleHistory{}
		}
		doc.Habits = append(doc.Habits, d)
	}
	return doc
}

// WriteJSON writes doc as indented JSON.
func WriteJSON(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// WriteCSV writes one row per record or per history, depending on kind.
func WriteCSV(w io.Writer, doc Document, kind Kind) error {
	cw := csv.NewWriter(w)

	switch kind {
	case KindRecords:
		if err := cw.Write([]string{"Habit", "Day", "Level", "Items", "Memo", "Updated"}); err != nil {
			return err
		}
		for _, h := range doc.Habits {
			for _, r := range h.Records {
				memo := ""
				if r.Memo != nil {
					memo = *r.Memo
				}
				row := []string{
					h.Habit.Title,
					r.Day,
					string(r.Level),
					strings.Join(r.SelectedItems, "; "),
					memo,
					r.UpdatedAt.UTC().Format(time.RFC3339),
				}
				if err := cw.Write(row); err != nil {
					return err
				}
			}
		}
	case KindHistories:
		if err := cw.Write([]string{"Habit", "Cycle", "Start", "End", "Completed", "Successful", "Mini", "More", "Max", "Skip"}); err != nil {
			return err
		}
		for _, h := range doc.Habits {
			for _, c := range h.Histories {
				row := []string{
					h.Habit.Title,
					strconv.Itoa(c.CycleNumber),
					c.StartDay,
					c.EndDay,
					strconv.Itoa(c.CompletedDays),
					strconv.FormatBool(c.Successful),
					strconv.Itoa(c.MiniCount),
					strconv.Itoa(c.MoreCount),
					strconv.Itoa(c.MaxCount),
					strconv.Itoa(c.SkipCount),
				}
				if err := cw.Write(row); err != nil {
					return err
				}
			}
		}
	default:
		return fmt.Errorf("unknown export kind %q", kind)
	}

	cw.Flush()
	return cw.Error()
}

// ToFile runs write against path, or stdout when path is empty or "-".
func ToFile(path string, stdout io.Writer, write func(io.Writer) error) error {
	if path == "" || path == "-" {
		return write(stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
