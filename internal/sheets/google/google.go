package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"khata/internal/core"
	ports "khata/internal/sheets"
)

// Client backs payments up to a Google Sheet. One row per payment, keyed by
// the payment ID in column A, so upserts and deletes can locate their row.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// Ensure interface conformance
var (
	_ ports.PaymentWriter  = (*Client)(nil)
	_ ports.PaymentDeleter = (*Client)(nil)
)

// NewClient creates a Sheets client using Service Account credentials from
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
func NewClient(ctx context.Context, spreadsheetID, sheetName string) (*Client, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	if strings.TrimSpace(sheetName) == "" {
		sheetName = "Payments"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// UpsertPayment writes the payment to its existing row when the ID is already
// present, otherwise appends a new row.
func (c *Client) UpsertPayment(ctx context.Context, p core.Payment) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	row, err := c.findRow(ctx, p.ID)
	if err != nil {
		return "", err
	}
	if row == 0 {
		resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, fmt.Sprintf("%s!A:A", c.sheetName)).
			Context(ctx).Do()
		if err != nil {
			return "", fmt.Errorf("get sheet dimensions for %s: %w", c.sheetName, err)
		}
		row = len(resp.Values) + 1
	}

	rng := fmt.Sprintf("%s!A%d:H%d", c.sheetName, row, row)
	vr := &gsheet.ValueRange{Values: [][]any{{
		p.ID,
		p.ShopID,
		p.BillID,
		p.Date.String(),
		p.Amount.Rupees(),
		string(p.Method),
		p.Reference,
		p.Notes,
	}}}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("update row in sheet %s: %w", c.sheetName, err)
	}

	slog.InfoContext(ctx, "Payment backed up to sheet",
		"payment_id", p.ID, "row", row, "sheet", c.sheetName)
	return rng, nil
}

// DeletePayment blanks the payment's row. Blanking instead of removing the
// row keeps later row numbers stable for concurrent upserts.
func (c *Client) DeletePayment(ctx context.Context, paymentID string) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	row, err := c.findRow(ctx, paymentID)
	if err != nil {
		return err
	}
	if row == 0 {
		slog.WarnContext(ctx, "Payment not found in backup sheet, nothing to delete",
			"payment_id", paymentID, "sheet", c.sheetName)
		return nil
	}

	rng := fmt.Sprintf("%s!A%d:H%d", c.sheetName, row, row)
	_, err = c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear row in sheet %s: %w", c.sheetName, err)
	}

	slog.InfoContext(ctx, "Payment removed from backup sheet",
		"payment_id", paymentID, "row", row)
	return nil
}

// findRow returns the 1-based row holding the payment ID, or 0 when absent.
func (c *Client) findRow(ctx context.Context, paymentID string) (int, error) {
	rng := fmt.Sprintf("%s!A:A", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", rng, err)
	}
	for i, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		if strings.TrimSpace(fmt.Sprint(row[0])) == paymentID {
			return i + 1, nil
		}
	}
	return 0, nil
}
