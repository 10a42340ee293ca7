// Package export writes task reports as CSV, JSON or PDF.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"taskdeck/internal/output"
	"taskdeck/internal/service"
)

// Format is a report format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatPDF  Format = "pdf"
)

// Formats lists the supported formats.
var Formats = []Format{FormatCSV, FormatJSON, FormatPDF}

// ParseFormat matches s case-insensitively against the supported formats.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if strings.EqualFold(strings.TrimSpace(s), string(f)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format %s (want csv, json or pdf)", s)
}

// Report is what gets exported.
type Report struct {
	Tasks       []service.Task
	Stats       service.Stats
	GeneratedAt time.Time
}

// csvHeader is the column order of CSV exports.
var csvHeader = []string{"id", "title", "description", "status", "priority", "category", "due_date", "tags", "created_at", "updated_at"}

// record is the JSON shape of an exported task.
type record struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Status      string   `json:"status"`
	Priority    string   `json:"priority"`
	Category    string   `json:"category"`
	DueDate     *string  `json:"due_date"`
	Tags        []string `json:"tags"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

type jsonReport struct {
	GeneratedAt string   `json:"generated_at"`
	Stats       stats    `json:"stats"`
	Tasks       []record `json:"tasks"`
}

type stats struct {
	Total          int     `json:"total_tasks"`
	Completed      int     `json:"completed_tasks"`
	Pending        int     `json:"pending_tasks"`
	InProgress     int     `json:"in_progress_tasks"`
	Overdue        int     `json:"overdue_tasks"`
	CompletionRate float64 `json:"completion_rate"`
}

// Write renders r in format f to w.
func Write(w io.Writer, f Format, r Report) error {
	switch f {
	case FormatCSV:
		return writeCSV(w, r)
	case FormatJSON:
		return writeJSON(w, r)
	case FormatPDF:
		return writePDF(w, r)
	default:
		return fmt.Errorf("unknown format %s", f)
	}
}

func toRecord(t service.Task) record {
	rec := record{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		Category:    string(t.Category),
		Tags:        t.Tags,
		CreatedAt:   t.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   t.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if rec.Tags == nil {
		rec.Tags = []string{}
	}
	if t.DueDate != nil {
		d := t.DueDate.Format(service.DateLayout)
		rec.DueDate = &d
	}
	return rec
}

func writeCSV(w io.Writer, r Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, t := range r.Tasks {
		rec := toRecord(t)
		due := ""
		if rec.DueDate != nil {
			due = *rec.DueDate
		}
		row := []string{rec.ID, rec.Title, rec.Description, rec.Status, rec.Priority, rec.Category,
			due, strings.Join(rec.Tags, ";"), rec.CreatedAt, rec.UpdatedAt}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeJSON(w io.Writer, r Report) error {
	out := jsonReport{
		GeneratedAt: r.GeneratedAt.UTC().Format(time.RFC3339),
		Stats: stats{
			Total:          r.Stats.Total,
			Completed:      r.Stats.Completed,
			Pending:        r.Stats.Pending,
			InProgress:     r.Stats.InProgress,
			Overdue:        r.Stats.Overdue,
			CompletionRate: r.Stats.CompletionRate,
		},
		Tasks: make([]record, 0, len(r.Tasks)),
	}
	for _, t := range r.Tasks {
		out.Tasks = append(out.Tasks, toRecord(t))
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func writePDF(w io.Writer, r Report) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Task Report", false)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(40, 10, "Task Report")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 9)
	pdf.Cell(40, 6, "Generated "+r.GeneratedAt.Format(output.TimestampLayout))
	pdf.Ln(8)

	s := r.Stats
	pdf.SetFont("Arial", "B", 10)
	summary := fmt.Sprintf("Total %d   Completed %d   In Progress %d   Pending %d   Overdue %d   Completion %s",
		s.Total, s.Completed, s.InProgress, s.Pending, s.Overdue, output.FormatRate(s.CompletionRate))
	pdf.MultiCell(0, 6, summary, "B", "L", false)
	pdf.Ln(4)

	if len(r.Tasks) == 0 {
		pdf.SetFont("Arial", "I", 10)
		pdf.Cell(40, 6, "No tasks found")
	}
	for _, t := range r.Tasks {
		pdf.SetFont("Arial", "B", 10)
		pdf.MultiCell(0, 6, tr(fmt.Sprintf("[%s] %s", t.Status, t.Title)), "0", "L", false)
		pdf.SetFont("Arial", "", 9)
		meta := fmt.Sprintf("%s priority, %s", t.Priority, t.Category)
		if t.DueDate != nil {
			meta += ", due " + t.DueDate.Format(service.DateLayout)
			if b := output.Badge(t, r.GeneratedAt); b != "" {
				meta += " (" + b + ")"
			}
		}
		if len(t.Tags) > 0 {
			meta += "   " + strings.Join(t.Tags, ", ")
		}
		pdf.MultiCell(0, 5, tr(meta), "0", "L", false)
		if d := strings.TrimSpace(t.Description); d != "" {
			pdf.MultiCell(0, 5, tr(d), "0", "L", false)
		}
		pdf.Ln(2)
	}

	return pdf.Output(w)
}
