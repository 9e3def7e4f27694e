package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"airbnb-cleaner/models"
)

const dateLayout = "2006-01-02"

// Writer handles writing schedules and nickname tables to Google Sheets
type Writer struct {
	service       *sheets.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewWriter creates a new Google Sheets writer
func NewWriter(ctx context.Context, spreadsheetID string, credentialsPath string, logger *zap.Logger) (*Writer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	credsJSON, err := readCredentials(credentialsPath)
	if err != nil {
		return nil, err
	}

	service, err := sheets.NewService(ctx, option.WithCredentialsJSON(credsJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Writer{
		service:       service,
		spreadsheetID: spreadsheetID,
		logger:        logger,
	}, nil
}

// readCredentials reads service account JSON from a file, or from GOOGLE_SHEETS_CREDENTIALS when no path is given
func readCredentials(credentialsPath string) ([]byte, error) {
	var credsJSON []byte

	if credentialsPath != "" {
		data, err := os.ReadFile(credentialsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read credentials file: %w", err)
		}
		credsJSON = data
	} else {
		credsEnv := strings.TrimSpace(os.Getenv("GOOGLE_SHEETS_CREDENTIALS"))
		if credsEnv == "" {
			return nil, fmt.Errorf("credentials not found: GOOGLE_SHEETS_CREDENTIALS environment variable is empty or not set")
		}
		credsJSON = []byte(credsEnv)
	}

	var creds map[string]interface{}
	if err := json.Unmarshal(credsJSON, &creds); err != nil {
		return nil, fmt.Errorf("invalid credentials JSON (check if JSON is properly formatted): %w", err)
	}
	if creds["type"] != "service_account" {
		return nil, fmt.Errorf("credentials must be a service account JSON file (type: service_account), got type: %v", creds["type"])
	}

	return credsJSON, nil
}

// ScheduleSheetName names the sheet holding one reference date
func ScheduleSheetName(reference time.Time) string {
	return "Tomorrow_" + reference.Format(dateLayout)
}

// ScheduleRows lays out a schedule: metadata row, header, checkouts then check-ins
func ScheduleRows(schedule models.Schedule, generated time.Time) [][]interface{} {
	values := [][]interface{}{
		{"Reference", schedule.Reference.Format(dateLayout), "Generated", generated.Format("2006-01-02 15:04:05")},
		{"Type", "Nickname", "Property", "Guest", "People", "Check-in", "Check-out", "Nights"},
	}

	for _, group := range [][]models.Reservation{schedule.Checkouts, schedule.Checkins} {
		for _, r := range group {
			values = append(values, []interface{}{
				string(r.Type),
				r.PropertyNickname,
				r.PropertyName,
				r.GuestName,
				r.GuestCount,
				formatDate(r.CheckIn),
				formatDate(r.CheckOut),
				r.Nights(),
			})
		}
	}

	if schedule.IsEmpty() {
		values = append(values, []interface{}{"No check-ins or check-outs"})
	}

	return values
}

// NicknameRows lays out the nickname table with a header
func NicknameRows(listings []models.Listing) [][]interface{} {
	values := [][]interface{}{{"Airbnb Name", "Internal Name", "Status"}}
	for _, l := range listings {
		values = append(values, []interface{}{l.AirbnbName, l.InternalName, l.Status})
	}
	return values
}

// CreateSheetAndWriteSchedule creates a Tomorrow_<date> sheet at the front of the spreadsheet and writes the schedule.
// Returns the sheet name and sheet ID (gid) that was created.
func (w *Writer) CreateSheetAndWriteSchedule(ctx context.Context, schedule models.Schedule, generated time.Time) (string, int64, error) {
	name := ScheduleSheetName(schedule.Reference)
	rows := ScheduleRows(schedule, generated)
	return w.createSheetAndWrite(ctx, name, rows)
}

// CreateSheetAndWriteNicknames stores a snapshot of the nickname table in its own sheet
func (w *Writer) CreateSheetAndWriteNicknames(ctx context.Context, listings []models.Listing, now time.Time) (string, int64, error) {
	name := "Nicknames_" + now.Format("20060102_150405")
	return w.createSheetAndWrite(ctx, name, NicknameRows(listings))
}

func (w *Writer) createSheetAndWrite(ctx context.Context, sheetName string, values [][]interface{}) (string, int64, error) {
	sheetName = sanitizeSheetName(sheetName)
	if len(sheetName) > 100 {
		sheetName = sheetName[:100]
	}

	insertIndex := int64(0)
	batchUpdateRequest := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			{
				AddSheet: &sheets.AddSheetRequest{
					Properties: &sheets.SheetProperties{
						Title: sheetName,
						Index: insertIndex,
					},
				},
			},
		},
	}

	batchUpdateResp, err := w.service.Spreadsheets.BatchUpdate(w.spreadsheetID, batchUpdateRequest).Context(ctx).Do()
	if err != nil {
		return "", 0, fmt.Errorf("failed to create sheet: %w", err)
	}

	var sheetID int64
	if len(batchUpdateResp.Replies) > 0 && batchUpdateResp.Replies[0].AddSheet != nil {
		sheetID = batchUpdateResp.Replies[0].AddSheet.Properties.SheetId
	}

	w.logger.Info("created sheet",
		zap.String("sheet", sheetName),
		zap.Int64("sheet_id", sheetID),
		zap.Int64("index", insertIndex),
	)

	range_ := fmt.Sprintf("%s!A1", sheetName)
	valueRange := &sheets.ValueRange{
		Values: values,
	}

	_, err = w.service.Spreadsheets.Values.Update(w.spreadsheetID, range_, valueRange).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return "", 0, fmt.Errorf("failed to write to sheet: %w", err)
	}

	w.logger.Info("wrote sheet rows", zap.String("sheet", sheetName), zap.Int("rows", len(values)))
	return sheetName, sheetID, nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

// sanitizeSheetName removes invalid characters from sheet name
func sanitizeSheetName(name string) string {
	// Google Sheets sheet names cannot contain: / \ ? * [ ]
	invalidChars := []string{"/", "\\", "?", "*", "[", "]"}
	result := name
	for _, char := range invalidChars {
		result = strings.ReplaceAll(result, char, "_")
	}
	result = strings.TrimSpace(result)
	if result == "" {
		result = "Sheet1"
	}
	return result
}

// ExtractSpreadsheetID extracts the spreadsheet ID from a Google Sheets URL
func ExtractSpreadsheetID(url string) string {
	// https://docs.google.com/spreadsheets/d/SPREADSHEET_ID/edit?usp=sharing
	parts := strings.Split(url, "/d/")
	if len(parts) < 2 {
		return ""
	}

	idPart := parts[1]
	if idx := strings.Index(idPart, "/"); idx != -1 {
		idPart = idPart[:idx]
	}
	if idx := strings.Index(idPart, "?"); idx != -1 {
		idPart = idPart[:idx]
	}

	return strings.TrimSpace(idPart)
}
