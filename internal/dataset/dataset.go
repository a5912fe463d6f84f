// Package dataset combines the games schedule and the participant draw into
// the emitted document, computes run statistics and writes the outputs.
package dataset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/kingrea/sportsmeet/internal/meet"
)

// ErrNoDocument is returned when the dataset file does not exist.
var ErrNoDocument = errors.New("dataset: document not found")

const sampleEventCount = 5

// Census is the read-only roster view needed for summary counts.
type Census interface {
	Len() int
	ClassCount() int
	GradeCount(meet.Grade) int
}

// GradeCount is the headcount of one grade.
type GradeCount struct {
	Grade    meet.Grade
	Students int
}

// Summary reports end-of-run statistics.
type Summary struct {
	TotalStudents          int
	TotalClasses           int
	ScheduledEvents        int
	EventsWithParticipants int
	PerGrade               []GradeCount
	SkippedEvents          []string
	SynthesizedLanes       int
	SampleEvents           []string
}

// Compose builds the document and its summary. census may be nil.
func Compose(games meet.Games, players meet.Players, census Census) (meet.Document, Summary) {
	doc := meet.Document{Games: games, Players: players}
	summary := Summary{
		ScheduledEvents:        games.Len(),
		EventsWithParticipants: players.Len(),
	}
	if census != nil {
		summary.TotalStudents = census.Len()
		summary.TotalClasses = census.ClassCount()
		for _, g := range meet.Grades {
			summary.PerGrade = append(summary.PerGrade, GradeCount{Grade: g, Students: census.GradeCount(g)})
		}
	}
	labels := players.Labels()
	if len(labels) > sampleEventCount {
		labels = labels[:sampleEventCount]
	}
	summary.SampleEvents = labels
	return doc, summary
}

// Encode renders the document as indented JSON with non-ASCII text kept literal.
func Encode(doc meet.Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("dataset: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// Indent re-indents an encoded document the way Encode lays it out.
func Indent(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return nil, fmt.Errorf("dataset: indent: %w", err)
	}
	out := bytes.TrimRight(buf.Bytes(), " \t\r\n")
	return append(out, '\n'), nil
}

// WriteJSON encodes the whole document and writes it in a single call.
func WriteJSON(path string, doc meet.Document) error {
	data, err := Encode(doc)
	if err != nil {
		return err
	}
	return WriteBytes(path, data)
}

// WriteBytes writes an already encoded document, creating its directory.
func WriteBytes(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("dataset: ensure output dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("dataset: write %s: %w", path, err)
	}
	return nil
}

// Decode parses a document.
func Decode(data []byte) (meet.Document, error) {
	var doc meet.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return meet.Document{}, fmt.Errorf("dataset: decode: %w", err)
	}
	return doc, nil
}

// ReadFile loads a previously written document.
func ReadFile(path string) (meet.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return meet.Document{}, ErrNoDocument
		}
		return meet.Document{}, fmt.Errorf("dataset: read %s: %w", path, err)
	}
	doc, err := Decode(data)
	if err != nil {
		return meet.Document{}, fmt.Errorf("%w (%s)", err, path)
	}
	return doc, nil
}
