package export

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"marcenaria_mdf/internal/usecase/interfaces"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// ValuesAPI is the part of the Sheets API the publisher needs.
type ValuesAPI interface {
	Clear(ctx context.Context, spreadsheetID, rng string) error
	Update(ctx context.Context, spreadsheetID, rng string, values [][]any) (int, error)
}

// GoogleSheetsPublisher replaces the content of one sheet with the exported table.
type GoogleSheetsPublisher struct {
	values        ValuesAPI
	spreadsheetID string
	sheetName     string
}

var _ interfaces.ISheetPublisher = (*GoogleSheetsPublisher)(nil)

// NewGoogleSheetsPublisher authenticates with a service account JSON file.
func NewGoogleSheetsPublisher(ctx context.Context, spreadsheetID, sheetName, credentialsFile string) (*GoogleSheetsPublisher, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	if credentialsFile == "" {
		return nil, errors.New("missing GOOGLE_SERVICE_ACCOUNT_FILE")
	}
	creds, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	log.Printf("[export][sheets] service created spreadsheet=%s", spreadsheetID)
	return NewGoogleSheetsPublisherWith(sheetsValues{svc: svc}, spreadsheetID, sheetName), nil
}

func NewGoogleSheetsPublisherWith(values ValuesAPI, spreadsheetID, sheetName string) *GoogleSheetsPublisher {
	if sheetName == "" {
		sheetName = "Orçamentos"
	}
	return &GoogleSheetsPublisher{values: values, spreadsheetID: spreadsheetID, sheetName: sheetName}
}

// Publish overwrites the sheet with header + rows and returns the data row count.
func (p *GoogleSheetsPublisher) Publish(ctx context.Context, header []string, rows [][]string) (int, error) {
	rng := fmt.Sprintf("'%s'!A1", p.sheetName)
	if err := p.values.Clear(ctx, p.spreadsheetID, fmt.Sprintf("'%s'", p.sheetName)); err != nil {
		return 0, fmt.Errorf("clear sheet %s: %w", p.sheetName, err)
	}

	values := make([][]any, 0, len(rows)+1)
	values = append(values, toAny(header))
	for _, r := range rows {
		values = append(values, toAny(r))
	}

	updated, err := p.values.Update(ctx, p.spreadsheetID, rng, values)
	if err != nil {
		return 0, fmt.Errorf("update sheet %s: %w", p.sheetName, err)
	}
	if updated > 0 {
		updated--
	}
	return updated, nil
}

func toAny(in []string) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

type sheetsValues struct {
	svc *gsheet.Service
}

func (s sheetsValues) Clear(ctx context.Context, spreadsheetID, rng string) error {
	_, err := s.svc.Spreadsheets.Values.Clear(spreadsheetID, rng, &gsheet.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

// Values are sent RAW so amounts like "1579.50" are not reinterpreted by locale.
func (s sheetsValues) Update(ctx context.Context, spreadsheetID, rng string, values [][]any) (int, error) {
	resp, err := s.svc.Spreadsheets.Values.Update(spreadsheetID, rng, &gsheet.ValueRange{Values: values}).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return 0, err
	}
	return int(resp.UpdatedRows), nil
}
