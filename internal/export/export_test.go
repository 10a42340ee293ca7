package export_test

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"taskdeck/internal/export"
	"taskdeck/internal/service"
)

func report() export.Report {
	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	due := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	return export.Report{
		Tasks: []service.Task{
			{
				ID: "2", Title: "Write report, final", Description: "Q1", DueDate: &due,
				Status: service.StatusInProgress, Priority: service.PriorityHigh, Category: service.CategoryWork,
				Tags: []string{"q1", "finance"}, CreatedAt: created, UpdatedAt: created,
			},
			{
				ID: "1", Title: "Buy milk", Status: service.StatusPending, Priority: service.PriorityLow,
				Category: service.CategoryShopping, CreatedAt: created, UpdatedAt: created,
			},
		},
		Stats:       service.Stats{Total: 2, Pending: 1, InProgress: 1},
		GeneratedAt: time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC),
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := export.ParseFormat(" PDF "); err != nil || f != export.FormatPDF {
		t.Errorf("ParseFormat(PDF) = %q, %v", f, err)
	}
	if _, err := export.ParseFormat("xlsx"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := export.Write(&buf, export.FormatCSV, report()); err != nil {
		t.Fatal(err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header and two rows, got %d", len(rows))
	}
	if rows[0][0] != "id" || rows[1][1] != "Write report, final" || rows[1][6] != "2024-03-05" || rows[1][7] != "q1;finance" {
		t.Errorf("unexpected rows %v", rows)
	}
	if rows[2][6] != "" {
		t.Errorf("expected empty due date, got %q", rows[2][6])
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := export.Write(&buf, export.FormatJSON, report()); err != nil {
		t.Fatal(err)
	}
	var got struct {
		GeneratedAt string `json:"generated_at"`
		Stats       struct {
			Total int `json:"total_tasks"`
		} `json:"stats"`
		Tasks []struct {
			ID      string   `json:"id"`
			DueDate *string  `json:"due_date"`
			Tags    []string `json:"tags"`
		} `json:"tasks"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.GeneratedAt != "2024-03-04T12:00:00Z" || got.Stats.Total != 2 || len(got.Tasks) != 2 {
		t.Errorf("unexpected report %+v", got)
	}
	if got.Tasks[1].DueDate != nil || got.Tasks[1].Tags == nil {
		t.Errorf("expected null due date and empty tags, got %+v", got.Tasks[1])
	}
	if !strings.Contains(buf.String(), `"tags": []`) {
		t.Error("empty tags should encode as []")
	}
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	if err := export.Write(&buf, export.FormatPDF, report()); err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Errorf("expected PDF header, got %q", buf.Bytes()[:min(8, buf.Len())])
	}
}

func TestWritePDF_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := export.Write(&buf, export.FormatPDF, export.Report{GeneratedAt: time.Now()}); err != nil {
		t.Fatal(err)
	}
	if buf.Len() == 0 {
		t.Error("expected a document")
	}
}
