package docs

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	docs "google.golang.org/api/docs/v1"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/teemow/gdrive-mcp/internal/google"
	"github.com/teemow/gdrive-mcp/internal/instrumentation"
)

// Client wraps the Google Docs and Drive API services
type Client struct {
	docsService  *docs.Service
	driveService *drive.Service
	account      string // The account this client is associated with
}

// Account returns the account name this client is associated with
func (c *Client) Account() string {
	return c.account
}

// HasTokenForAccountWithProvider checks if a valid OAuth token exists for the specified account
func HasTokenForAccountWithProvider(account string, provider google.TokenProvider) bool {
	if provider == nil {
		return false
	}
	return provider.HasTokenForAccount(account)
}

// NewClientForAccountWithProvider creates a new Google Docs client with OAuth2 authentication for a specific account
// The OAuth token is retrieved from the provided token provider
func NewClientForAccountWithProvider(ctx context.Context, account string, tokenProvider google.TokenProvider) (*Client, error) {
	if tokenProvider == nil {
		return nil, fmt.Errorf("token provider cannot be nil")
	}

	token, err := tokenProvider.GetTokenForAccount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("failed to get Google OAuth token for account %s: %w", account, err)
	}

	return NewClientWithToken(ctx, account, token)
}

// NewClientWithToken creates a client that authenticates with an existing token.
func NewClientWithToken(ctx context.Context, account string, token *oauth2.Token) (*Client, error) {
	httpClient := google.NewHTTPClient(ctx, token)
	return NewClientWithOptions(ctx, account, option.WithHTTPClient(httpClient))
}

// NewClientWithOptions creates a client from raw API options. Tests use it to
// point the services at a fake endpoint.
func NewClientWithOptions(ctx context.Context, account string, opts ...option.ClientOption) (*Client, error) {
	docsService, err := docs.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Docs service: %w", err)
	}

	driveService, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive service: %w", err)
	}

	return &Client{
		docsService:  docsService,
		driveService: driveService,
		account:      account,
	}, nil
}

// GetDocument retrieves a Google Doc's content by document ID
// This method automatically fetches all tabs to support documents with multiple tabs
func (c *Client) GetDocument(ctx context.Context, documentID string) (*docs.Document, error) {
	if documentID == "" {
		return nil, fmt.Errorf("documentID is required")
	}

	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceDocs, instrumentation.OperationGet)
	defer span.End()

	// With includeTabsContent=true, content is returned in document.tabs
	// and document.body is left empty.
	doc, err := c.docsService.Documents.Get(documentID).IncludeTabsContent(true).Context(ctx).Do()
	if err != nil {
		instrumentation.SetSpanError(span, err)
		return nil, fmt.Errorf("failed to get document %s: %w", documentID, err)
	}

	instrumentation.SetSpanSuccess(span)
	return doc, nil
}

// ContentOptions selects what GetContent extracts.
type ContentOptions struct {
	TabID         string
	IncludeTables bool
}

// GetContent fetches a document and extracts its text with API offsets.
func (c *Client) GetContent(ctx context.Context, documentID string, opts ContentOptions) (*Content, error) {
	doc, err := c.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	return ExtractTab(doc, opts.TabID, WithTablesIf(opts.IncludeTables))
}

// GetDocumentAsMarkdown converts a Google Doc to Markdown format
func (c *Client) GetDocumentAsMarkdown(ctx context.Context, documentID string) (string, error) {
	doc, err := c.GetDocument(ctx, documentID)
	if err != nil {
		return "", err
	}

	return DocumentToMarkdown(doc)
}

// GetDocumentAsPlainText extracts plain text from a Google Doc
func (c *Client) GetDocumentAsPlainText(ctx context.Context, documentID string) (string, error) {
	doc, err := c.GetDocument(ctx, documentID)
	if err != nil {
		return "", err
	}

	return DocumentToPlainText(doc)
}

// GetDocumentAsHTML renders a Google Doc as HTML
func (c *Client) GetDocumentAsHTML(ctx context.Context, documentID string) (string, error) {
	doc, err := c.GetDocument(ctx, documentID)
	if err != nil {
		return "", err
	}

	return DocumentToHTML(doc)
}

// GetFileMetadata retrieves metadata for any Google Drive file
func (c *Client) GetFileMetadata(ctx context.Context, fileID string) (*DocumentMetadata, error) {
	if fileID == "" {
		return nil, fmt.Errorf("fileID is required")
	}

	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceDrive, instrumentation.OperationGet)
	defer span.End()

	file, err := c.driveService.Files.Get(fileID).
		Fields("id, name, mimeType, createdTime, modifiedTime, size, owners, webViewLink").
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		instrumentation.SetSpanError(span, err)
		return nil, fmt.Errorf("failed to get file metadata %s: %w", fileID, err)
	}
	instrumentation.SetSpanSuccess(span)

	metadata := &DocumentMetadata{
		ID:           file.Id,
		Name:         file.Name,
		MimeType:     file.MimeType,
		CreatedTime:  file.CreatedTime,
		ModifiedTime: file.ModifiedTime,
		Size:         file.Size,
		WebViewLink:  file.WebViewLink,
	}

	// Convert owners
	for _, owner := range file.Owners {
		metadata.Owners = append(metadata.Owners, User{
			DisplayName:  owner.DisplayName,
			EmailAddress: owner.EmailAddress,
		})
	}

	return metadata, nil
}

// CreateDocument creates a new document and optionally inserts initial text.
func (c *Client) CreateDocument(ctx context.Context, title, initialText string) (*CreatedDocument, error) {
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}

	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceDocs, instrumentation.OperationCreate)
	defer span.End()

	doc, err := c.docsService.Documents.Create(&docs.Document{Title: title}).Context(ctx).Do()
	if err != nil {
		instrumentation.SetSpanError(span, err)
		return nil, fmt.Errorf("failed to create document: %w", err)
	}
	instrumentation.SetSpanSuccess(span)

	created := &CreatedDocument{
		DocumentID: doc.DocumentId,
		Title:      doc.Title,
		URL:        documentURL(doc.DocumentId),
	}

	if initialText != "" {
		req, err := InsertTextRequest(1, initialText, "")
		if err != nil {
			return nil, err
		}
		if _, err := c.BatchUpdate(ctx, doc.DocumentId, []*docs.Request{req}); err != nil {
			return created, fmt.Errorf("document %s created but initial content failed: %w", doc.DocumentId, err)
		}
	}

	return created, nil
}

// BatchUpdate applies requests to a document and returns the API replies.
func (c *Client) BatchUpdate(ctx context.Context, documentID string, requests []*docs.Request) ([]*docs.Response, error) {
	if documentID == "" {
		return nil, fmt.Errorf("documentID is required")
	}
	if len(requests) == 0 {
		return nil, fmt.Errorf("at least one request is required")
	}

	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceDocs, instrumentation.OperationUpdate)
	defer span.End()

	resp, err := c.docsService.Documents.BatchUpdate(documentID, &docs.BatchUpdateDocumentRequest{
		Requests: requests,
	}).Context(ctx).Do()
	if err != nil {
		instrumentation.SetSpanError(span, err)
		return nil, fmt.Errorf("failed to update document %s: %w", documentID, err)
	}

	instrumentation.SetSpanSuccess(span)
	return resp.Replies, nil
}

// InsertText inserts text at a 1-based index.
func (c *Client) InsertText(ctx context.Context, documentID string, index int64, text, tabID string) error {
	req, err := InsertTextRequest(index, text, tabID)
	if err != nil {
		return err
	}
	_, err = c.BatchUpdate(ctx, documentID, []*docs.Request{req})
	return err
}

// DeleteContentRange deletes [start, end).
func (c *Client) DeleteContentRange(ctx context.Context, documentID string, start, end int64, tabID string) error {
	req, err := DeleteContentRangeRequest(start, end, tabID)
	if err != nil {
		return err
	}
	_, err = c.BatchUpdate(ctx, documentID, []*docs.Request{req})
	return err
}

// FormatRange applies a text style to [start, end).
func (c *Client) FormatRange(ctx context.Context, documentID string, start, end int64, tabID string, style TextStyleOptions) error {
	req, err := UpdateTextStyleRequest(start, end, tabID, style)
	if err != nil {
		return err
	}
	_, err = c.BatchUpdate(ctx, documentID, []*docs.Request{req})
	return err
}

// ReplaceAllText replaces every match and returns the number of occurrences changed.
func (c *Client) ReplaceAllText(ctx context.Context, documentID, contains, replace string, matchCase bool) (int64, error) {
	req, err := ReplaceAllTextRequest(contains, replace, matchCase)
	if err != nil {
		return 0, err
	}
	replies, err := c.BatchUpdate(ctx, documentID, []*docs.Request{req})
	if err != nil {
		return 0, err
	}

	var changed int64
	for _, reply := range replies {
		if reply != nil && reply.ReplaceAllText != nil {
			changed += reply.ReplaceAllText.OccurrencesChanged
		}
	}
	return changed, nil
}

// MatchOptions locates the text FormatMatchingText styles.
type MatchOptions struct {
	Text          string
	Occurrence    int
	MatchCase     bool
	TabID         string
	IncludeTables bool
}

// FormatMatchingText reads the document, locates the requested occurrence of
// a text and styles exactly that range. It returns the styled range.
func (c *Client) FormatMatchingText(ctx context.Context, documentID string, match MatchOptions, style TextStyleOptions) (Range, error) {
	content, err := c.GetContent(ctx, documentID, ContentOptions{TabID: match.TabID, IncludeTables: match.IncludeTables})
	if err != nil {
		return Range{}, err
	}

	occurrence := match.Occurrence
	if occurrence == 0 {
		occurrence = 1
	}
	r, err := FindNth(content.Segments, match.Text, occurrence, FindOptions{MatchCase: match.MatchCase})
	if err != nil {
		return Range{}, err
	}

	if err := c.FormatRange(ctx, documentID, r.StartIndex, r.EndIndex, match.TabID, style); err != nil {
		return Range{}, err
	}
	return r, nil
}

// ReplaceDocumentContent replaces the whole body of a document with text.
// The body's final newline cannot be deleted, so the range removed is
// [1, end-1).
func (c *Client) ReplaceDocumentContent(ctx context.Context, documentID, text string) error {
	doc, err := c.GetDocument(ctx, documentID)
	if err != nil {
		return err
	}

	var requests []*docs.Request
	if end := bodyEndIndex(doc); end > 2 {
		del, err := DeleteContentRangeRequest(1, end-1, "")
		if err != nil {
			return err
		}
		requests = append(requests, del)
	}
	if text != "" {
		ins, err := InsertTextRequest(1, text, "")
		if err != nil {
			return err
		}
		requests = append(requests, ins)
	}
	if len(requests) == 0 {
		return nil
	}

	_, err = c.BatchUpdate(ctx, documentID, requests)
	return err
}

// bodyEndIndex returns the end offset of the last structural element in the
// document's primary body.
func bodyEndIndex(doc *docs.Document) int64 {
	body := doc.Body
	if body == nil && len(doc.Tabs) > 0 {
		body = tabBody(doc.Tabs[0])
	}
	if body == nil || len(body.Content) == 0 {
		return 0
	}
	last := body.Content[len(body.Content)-1]
	if last == nil {
		return 0
	}
	return last.EndIndex
}

func documentURL(documentID string) string {
	return fmt.Sprintf("https://docs.google.com/document/d/%s/edit", documentID)
}
