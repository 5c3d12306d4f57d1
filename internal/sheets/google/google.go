// Package google exports month expenses to a Google Sheets spreadsheet.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"planner/internal/core"
	"planner/internal/log"
	ports "planner/internal/sheets"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	logger        *log.Logger
}

var (
	_ ports.ExpenseExporter = (*Client)(nil)
	_ ports.ExpenseLister   = (*Client)(nil)
)

type Options struct {
	SpreadsheetID string
	// CredentialsJSON wins over CredentialsFile.
	CredentialsJSON string
	CredentialsFile string
	Logger          *log.Logger
	// ClientOptions are appended after the credentials. Without credentials
	// they must carry authentication themselves, e.g. an HTTP client.
	ClientOptions []goption.ClientOption
}

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, opts Options) (*Client, error) {
	spreadsheetID := strings.TrimSpace(opts.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.Config{Component: log.ComponentSheets})
	}

	clientOpts, err := credentialOptions(opts)
	if err != nil {
		return nil, err
	}
	clientOpts = append(clientOpts, opts.ClientOptions...)

	svc, err := gsheet.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	logger.InfoContext(ctx, "Google Sheets service created", log.FieldSheetsRef, spreadsheetID)

	return &Client{svc: svc, spreadsheetID: spreadsheetID, logger: logger}, nil
}

func credentialOptions(opts Options) ([]goption.ClientOption, error) {
	if len(opts.ClientOptions) > 0 && opts.CredentialsJSON == "" && opts.CredentialsFile == "" {
		return nil, nil
	}
	var credentialsJSON []byte
	switch {
	case strings.TrimSpace(opts.CredentialsJSON) != "":
		credentialsJSON = []byte(opts.CredentialsJSON)
	case strings.TrimSpace(opts.CredentialsFile) != "":
		data, err := os.ReadFile(opts.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = data
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}
	return []goption.ClientOption{
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope),
	}, nil
}

// Export rewrites the month's tab, creating it on first use.
func (c *Client) Export(ctx context.Context, scope core.Scope, expenses []core.Expense) (string, error) {
	if err := scope.Validate(); err != nil {
		return "", err
	}
	title := ports.Title(scope)
	if err := c.ensureSheet(ctx, title); err != nil {
		return "", err
	}

	sheet := quote(title)
	_, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, sheet+"!A:C", &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("clear %s: %w", title, err)
	}

	rows := ports.Rows(expenses)
	rng := fmt.Sprintf("%s!A1:C%d", sheet, len(rows))
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, &gsheet.ValueRange{Values: rows}).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("write %s: %w", rng, err)
	}

	c.logger.InfoContext(ctx, "Exported expenses",
		log.FieldYear, scope.Year,
		log.FieldMonth, int(scope.Month),
		log.FieldCount, len(expenses),
		log.FieldSheetsRef, rng)
	return rng, nil
}

// ListExpenses reads the month's tab back. A missing tab is an empty month.
func (c *Client) ListExpenses(ctx context.Context, scope core.Scope) ([]core.Expense, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	title := ports.Title(scope)
	exists, err := c.hasSheet(ctx, title)
	if err != nil {
		return nil, err
	}
	if !exists {
		return []core.Expense{}, nil
	}
	rng := quote(title) + "!A:C"
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).
		ValueRenderOption("UNFORMATTED_VALUE").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return parseRows(resp.Values), nil
}

func (c *Client) hasSheet(ctx context.Context, title string) (bool, error) {
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return false, fmt.Errorf("read spreadsheet: %w", err)
	}
	for _, s := range ss.Sheets {
		if s.Properties != nil && s.Properties.Title == title {
			return true, nil
		}
	}
	return false, nil
}

func (c *Client) ensureSheet(ctx context.Context, title string) error {
	exists, err := c.hasSheet(ctx, title)
	if err != nil || exists {
		return err
	}
	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: title}},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("add sheet %s: %w", title, err)
	}
	c.logger.InfoContext(ctx, "Created month sheet", log.FieldSheetsRef, title)
	return nil
}

// quote wraps a sheet title for A1 notation.
func quote(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}
