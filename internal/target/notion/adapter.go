// Package notion implements the remote target adapter for Notion databases.
package notion

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/freqsync/freqsync/internal/domain"
	"github.com/freqsync/freqsync/internal/utils"
)

const queryPageSize = 100

// AdapterOptions contains options for creating an Adapter
type AdapterOptions struct {
	Token      string
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	Logger     *utils.Logger
}

// Adapter talks to the Notion API. Safe for concurrent use.
type Adapter struct {
	client *client
	logger *utils.Logger

	schemaMu    sync.Mutex
	schemaCache map[string]map[string]schemaProperty
}

// New creates a new Adapter
func New(opts AdapterOptions) (*Adapter, error) {
	if opts.Token == "" {
		return nil, errors.New("notion: token is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = utils.NewDefaultLogger()
	}

	return &Adapter{
		client:      newClient(opts.Token, opts.BaseURL, opts.Timeout, opts.MaxRetries),
		logger:      logger.WithComponent("notion"),
		schemaCache: make(map[string]map[string]schemaProperty),
	}, nil
}

// Name returns the target kind name
func (a *Adapter) Name() string {
	return "notion"
}

type queryRequest struct {
	StartCursor string `json:"start_cursor,omitempty"`
	PageSize    int    `json:"page_size"`
	Filter      any    `json:"filter,omitempty"`
}

type pageObject struct {
	ID         string                   `json:"id"`
	Properties map[string]propertyValue `json:"properties"`
}

type queryResponse struct {
	Results    []pageObject `json:"results"`
	HasMore    bool         `json:"has_more"`
	NextCursor string       `json:"next_cursor"`
}

// FetchExisting scans the whole database page by page and returns its rows
// keyed by title text. Result order from the API is not relied on. Rows
// without a title are skipped.
func (a *Adapter) FetchExisting(ctx context.Context, databaseID, groupFilter string) (map[string]domain.RemoteRecord, error) {
	records := make(map[string]domain.RemoteRecord)
	cursor := ""

	for {
		req := queryRequest{
			StartCursor: cursor,
			PageSize:    queryPageSize,
		}
		if groupFilter != "" {
			req.Filter = map[string]any{
				"property": domain.PropGroup,
				"select":   map[string]any{"equals": groupFilter},
			}
		}

		var resp queryResponse
		path := fmt.Sprintf("/databases/%s/query", databaseID)
		if err := a.client.do(ctx, http.MethodPost, path, req, &resp); err != nil {
			return nil, err
		}

		for _, page := range resp.Results {
			title := plainText(page.Properties[domain.PropTitle].Title)
			if title == "" {
				continue
			}
			records[title] = domain.RemoteRecord{
				RemoteID:       page.ID,
				TitleKey:       title,
				Freq30:         page.Properties[domain.PropFreq30].Number,
				Freq90:         page.Properties[domain.PropFreq90].Number,
				Freq180:        page.Properties[domain.PropFreq180].Number,
				AcceptanceRate: page.Properties[domain.PropAcceptRate].Number,
			}
		}

		if !resp.HasMore {
			break
		}
		cursor = resp.NextCursor
	}

	return records, nil
}

type schemaProperty struct {
	Type        string      `json:"type"`
	Select      *optionList `json:"select,omitempty"`
	MultiSelect *optionList `json:"multi_select,omitempty"`
}

type optionList struct {
	Options []selectOption `json:"options"`
}

type databaseResponse struct {
	Properties map[string]schemaProperty `json:"properties"`
}

// EnsureSchema adds missing option values for the given categorical fields,
// one bulk schema call per field at most. A failure on one field does not
// stop the others; the first field error is returned after all fields were
// attempted, and dependent writes fail on their own later.
func (a *Adapter) EnsureSchema(ctx context.Context, databaseID string, options map[string][]string) error {
	if len(options) == 0 {
		return nil
	}

	schema, err := a.schema(ctx, databaseID)
	if err != nil {
		return err
	}

	fields := make([]string, 0, len(options))
	for field := range options {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var firstErr error
	for _, field := range fields {
		if len(options[field]) == 0 {
			continue
		}
		if err := a.ensureFieldOptions(ctx, databaseID, schema, field, options[field]); err != nil {
			a.logger.Warn().Err(err).Str("field", field).Msg("Schema ensure failed for field")
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}

func (a *Adapter) ensureFieldOptions(ctx context.Context, databaseID string, schema map[string]schemaProperty, field string, values []string) error {
	prop, ok := schema[field]
	if !ok {
		return domain.NewSchemaError(field, errors.New("field not present on database"))
	}

	var list *optionList
	switch prop.Type {
	case "select":
		list = prop.Select
	case "multi_select":
		list = prop.MultiSelect
	default:
		return domain.NewSchemaError(field, fmt.Errorf("field type %q has no options", prop.Type))
	}
	if list == nil {
		list = &optionList{}
	}

	existing := make(map[string]bool, len(list.Options))
	for _, opt := range list.Options {
		existing[opt.Name] = true
	}

	merged := append([]selectOption(nil), list.Options...)
	added := 0
	for _, value := range values {
		if value == "" || existing[value] {
			continue
		}
		merged = append(merged, selectOption{Name: value})
		existing[value] = true
		added++
	}
	if added == 0 {
		return nil
	}

	payload := map[string]any{
		"properties": map[string]any{
			field: map[string]any{
				prop.Type: map[string]any{"options": merged},
			},
		},
	}
	path := fmt.Sprintf("/databases/%s", databaseID)
	if err := a.client.do(ctx, http.MethodPatch, path, payload, nil); err != nil {
		return domain.NewSchemaError(field, err)
	}

	// Keep the cached schema in line with what we just wrote.
	list.Options = merged
	a.storeSchemaField(databaseID, field, prop)

	a.logger.Debug().
		Str("field", field).
		Int("added", added).
		Msg("Schema options extended")
	return nil
}

// schema retrieves and caches the database property schema.
func (a *Adapter) schema(ctx context.Context, databaseID string) (map[string]schemaProperty, error) {
	a.schemaMu.Lock()
	cached, ok := a.schemaCache[databaseID]
	a.schemaMu.Unlock()
	if ok {
		return cached, nil
	}

	var resp databaseResponse
	path := fmt.Sprintf("/databases/%s", databaseID)
	if err := a.client.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}

	a.schemaMu.Lock()
	a.schemaCache[databaseID] = resp.Properties
	a.schemaMu.Unlock()
	return resp.Properties, nil
}

func (a *Adapter) storeSchemaField(databaseID, field string, prop schemaProperty) {
	a.schemaMu.Lock()
	defer a.schemaMu.Unlock()
	if schema, ok := a.schemaCache[databaseID]; ok {
		schema[field] = prop
	}
}

// Create inserts a new row carrying only the managed fields.
func (a *Adapter) Create(ctx context.Context, databaseID string, props domain.PropertySet) error {
	payload := map[string]any{
		"parent":     map[string]any{"database_id": databaseID},
		"properties": encodeProperties(props),
	}
	return a.client.do(ctx, http.MethodPost, "/pages", payload, nil)
}

// Update patches an existing row. Fields absent from props stay untouched on
// the remote side, which is what keeps user-maintained columns safe.
func (a *Adapter) Update(ctx context.Context, remoteID string, props domain.PropertySet) error {
	payload := map[string]any{
		"properties": encodeProperties(props),
	}
	path := fmt.Sprintf("/pages/%s", remoteID)
	return a.client.do(ctx, http.MethodPatch, path, payload, nil)
}

// Close releases resources
func (a *Adapter) Close() error {
	return nil
}
