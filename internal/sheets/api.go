package sheets

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// spreadsheetAPI is the subset of the Sheets API the writer needs.
type spreadsheetAPI interface {
	// Tabs returns the sheet IDs of an existing spreadsheet keyed by tab title.
	Tabs(ctx context.Context, spreadsheetID string) (map[string]int64, error)
	Create(ctx context.Context, title, timeZone string, tabs []string) (string, error)
	AddTabs(ctx context.Context, spreadsheetID string, tabs []string) error
	Clear(ctx context.Context, spreadsheetID, rng string) error
	Update(ctx context.Context, spreadsheetID, rng string, values [][]any) error
	BatchUpdate(ctx context.Context, spreadsheetID string, requests []*sheets.Request) error
}

// serviceAPI implements spreadsheetAPI with the Google client.
type serviceAPI struct {
	service *sheets.Service
}

// createSheetsService creates a Google Sheets API service.
func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		// Use service account authentication
		jsonKey, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}

		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		// Use OAuth2 authentication
		client := &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{sheets.SpreadsheetsScope},
		}

		token := &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		}

		tokenSource = client.TokenSource(ctx, token)
	}

	httpClient := oauth2.NewClient(ctx, tokenSource)
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return srv, nil
}

func (a *serviceAPI) Tabs(ctx context.Context, spreadsheetID string) (map[string]int64, error) {
	spreadsheet, err := a.service.Spreadsheets.Get(spreadsheetID).
		Fields("sheets.properties").
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	return tabIDs(spreadsheet), nil
}

func (a *serviceAPI) Create(ctx context.Context, title, timeZone string, tabs []string) (string, error) {
	spreadsheet := &sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title:    title,
			TimeZone: timeZone,
		},
	}
	for _, tab := range tabs {
		spreadsheet.Sheets = append(spreadsheet.Sheets, &sheets.Sheet{
			Properties: &sheets.SheetProperties{Title: tab},
		})
	}

	created, err := a.service.Spreadsheets.Create(spreadsheet).Context(ctx).Do()
	if err != nil {
		return "", err
	}
	return created.SpreadsheetId, nil
}

func (a *serviceAPI) AddTabs(ctx context.Context, spreadsheetID string, tabs []string) error {
	requests := make([]*sheets.Request, 0, len(tabs))
	for _, tab := range tabs {
		requests = append(requests, &sheets.Request{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: tab},
			},
		})
	}
	return a.BatchUpdate(ctx, spreadsheetID, requests)
}

func (a *serviceAPI) Clear(ctx context.Context, spreadsheetID, rng string) error {
	_, err := a.service.Spreadsheets.Values.Clear(spreadsheetID, rng, &sheets.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

func (a *serviceAPI) Update(ctx context.Context, spreadsheetID, rng string, values [][]any) error {
	_, err := a.service.Spreadsheets.Values.Update(spreadsheetID, rng, &sheets.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	return err
}

func (a *serviceAPI) BatchUpdate(ctx context.Context, spreadsheetID string, requests []*sheets.Request) error {
	if len(requests) == 0 {
		return nil
	}
	_, err := a.service.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}).Context(ctx).Do()
	return err
}

func tabIDs(spreadsheet *sheets.Spreadsheet) map[string]int64 {
	ids := make(map[string]int64, len(spreadsheet.Sheets))
	for _, s := range spreadsheet.Sheets {
		if s.Properties != nil {
			ids[s.Properties.Title] = s.Properties.SheetId
		}
	}
	return ids
}
