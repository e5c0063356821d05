package jobs

import (
	"fmt"
	"os"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// DefaultBookPath is the spreadsheet the tracker persists to when no
// override is configured.
const DefaultBookPath = "jobs.xlsx"

const bookSheet = "Sheet1"

// bookColumns is the header row, in storage order.
var bookColumns = []string{
	"id", "sender_name", "sender_email",
	"company_name", "job_title", "application_status", "user_applied",
}

// Book persists the application tracker as a spreadsheet file. Every save
// rewrites the whole file; there is no incremental append format. Concurrent
// writers are not serialized, callers run single-process.
type Book struct {
	path string
}

// NewBook creates a Book stored at path.
func NewBook(path string) *Book {
	if path == "" {
		path = DefaultBookPath
	}
	return &Book{path: path}
}

// Path returns the backing file location.
func (b *Book) Path() string {
	return b.path
}

// Load reads the whole spreadsheet into a tracker. A missing file yields an
// empty tracker, not an error: the book is created on first save.
func (b *Book) Load() (*Tracker, error) {
	if _, err := os.Stat(b.path); os.IsNotExist(err) {
		return NewTracker(nil), nil
	}

	f, err := excelize.OpenFile(b.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open application book %s: %w", b.path, err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(bookSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read application book %s: %w", b.path, err)
	}

	var apps []Application
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		apps = append(apps, rowToApplication(row))
	}
	return NewTracker(apps), nil
}

// Save rewrites the spreadsheet from the tracker's current contents.
func (b *Book) Save(t *Tracker) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	for col, name := range bookColumns {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("failed to build header cell: %w", err)
		}
		if err := f.SetCellValue(bookSheet, cell, name); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	for i, app := range t.Applications() {
		values := []any{
			app.ID, app.SenderName, app.SenderEmail,
			app.Company, app.Title, string(app.Status), app.UserApplied,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return fmt.Errorf("failed to build cell for row %d: %w", i+2, err)
			}
			if err := f.SetCellValue(bookSheet, cell, v); err != nil {
				return fmt.Errorf("failed to write row %d: %w", i+2, err)
			}
		}
	}

	if err := f.SaveAs(b.path); err != nil {
		return fmt.Errorf("failed to save application book %s: %w", b.path, err)
	}
	return nil
}

// rowToApplication maps a spreadsheet row to an application, tolerating
// short rows from hand-edited files.
func rowToApplication(row []string) Application {
	get := func(i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}

	applied, _ := strconv.ParseBool(get(6))
	status, ok := ParseStatus(get(5))
	if !ok {
		status = StatusPending
	}

	return Application{
		ID:          get(0),
		SenderName:  get(1),
		SenderEmail: get(2),
		Company:     get(3),
		Title:       get(4),
		Status:      status,
		UserApplied: applied,
	}
}
