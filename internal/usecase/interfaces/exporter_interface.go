package interfaces

import "context"

// ISheetPublisher appends rows to a remote spreadsheet.
type ISheetPublisher interface {
	Publish(ctx context.Context, header []string, rows [][]string) (int, error)
}
