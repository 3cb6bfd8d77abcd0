package drive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/oauth2"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/teemow/gdrive-mcp/internal/google"
	"github.com/teemow/gdrive-mcp/internal/instrumentation"
)

const (
	// DefaultMaxDownloadBytes bounds Download and Export.
	DefaultMaxDownloadBytes = 10 << 20

	fileFields = "id, name, mimeType, size, description, createdTime, modifiedTime, webViewLink, webContentLink, parents, owners, shared, trashed, trashedTime"
)

// Client is a Drive v3 service bound to one account.
type Client struct {
	service *drive.Service
	account string
}

func (c *Client) Account() string {
	return c.account
}

// NewClientForAccountWithProvider resolves the account's token through
// tokenProvider and builds a client around it.
func NewClientForAccountWithProvider(ctx context.Context, account string, tokenProvider google.TokenProvider) (*Client, error) {
	if tokenProvider == nil {
		return nil, fmt.Errorf("token provider cannot be nil")
	}
	token, err := tokenProvider.GetTokenForAccount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("drive client for account %s: %w", account, err)
	}
	return NewClientWithToken(ctx, account, token)
}

func NewClientWithToken(ctx context.Context, account string, token *oauth2.Token) (*Client, error) {
	return NewClientWithOptions(ctx, account, option.WithHTTPClient(google.NewHTTPClient(ctx, token)))
}

// NewClientWithOptions is used by tests to point the client at a fake endpoint.
func NewClientWithOptions(ctx context.Context, account string, opts ...option.ClientOption) (*Client, error) {
	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive service: %w", err)
	}
	return &Client{service: svc, account: account}, nil
}

// buildListFilesQuery combines a user query with the trashed filter.
func buildListFilesQuery(userQuery string, includeTrashed bool) string {
	if includeTrashed {
		return userQuery
	}
	if userQuery == "" {
		return "trashed=false"
	}
	return "(" + userQuery + ") and trashed=false"
}

// escapeQueryValue escapes a value for use inside single quotes in a Drive query.
func escapeQueryValue(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	return strings.ReplaceAll(v, `'`, `\'`)
}

// ListFiles runs files.list. Trashed files are excluded unless
// options.IncludeTrashed is set.
func (c *Client) ListFiles(ctx context.Context, options *ListOptions) (files []*FileInfo, nextPageToken string, err error) {
	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceDrive, instrumentation.OperationList)
	defer func() { instrumentation.FinishSpan(span, err) }()

	if options == nil {
		options = &ListOptions{}
	}
	if options.MaxResults < 0 || options.MaxResults > 1000 {
		return nil, "", fmt.Errorf("page size must be between 1 and 1000, got %d", options.MaxResults)
	}

	call := c.service.Files.List().
		Context(ctx).
		Fields(googleapi.Field("nextPageToken, files(" + fileFields + ")"))

	if q := buildListFilesQuery(options.Query, options.IncludeTrashed); q != "" {
		call = call.Q(q)
	}
	if options.MaxResults > 0 {
		call = call.PageSize(int64(options.MaxResults))
	}
	if options.OrderBy != "" {
		call = call.OrderBy(options.OrderBy)
	}
	if options.PageToken != "" {
		call = call.PageToken(options.PageToken)
	}
	if options.Spaces != "" {
		call = call.Spaces(options.Spaces)
	}
	if options.Corpora != "" {
		call = call.Corpora(options.Corpora)
	}
	if options.AllDrives {
		call = call.SupportsAllDrives(true).IncludeItemsFromAllDrives(true)
	}

	fileList, err := call.Do()
	if err != nil {
		return nil, "", fmt.Errorf("failed to list files: %w", err)
	}

	files = make([]*FileInfo, len(fileList.Files))
	for i, f := range fileList.Files {
		files[i] = convertToFileInfo(f)
	}

	return files, fileList.NextPageToken, nil
}

// Search runs a full-text search over names and content.
func (c *Client) Search(ctx context.Context, text string, maxResults int) ([]*FileInfo, string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, "", fmt.Errorf("search query is required")
	}
	return c.ListFiles(ctx, &ListOptions{
		Query:      fmt.Sprintf("fullText contains '%s'", escapeQueryValue(text)),
		MaxResults: maxResults,
		AllDrives:  true,
	})
}

// ListFolder lists the direct children of a folder. "root" is the user's My Drive.
func (c *Client) ListFolder(ctx context.Context, folderID string, maxResults int, pageToken string) ([]*FileInfo, string, error) {
	if folderID == "" {
		folderID = "root"
	}
	return c.ListFiles(ctx, &ListOptions{
		Query:      fmt.Sprintf("'%s' in parents", escapeQueryValue(folderID)),
		MaxResults: maxResults,
		PageToken:  pageToken,
		OrderBy:    "folder,name",
		AllDrives:  true,
	})
}

// GetFile returns a file's metadata including its permissions.
func (c *Client) GetFile(ctx context.Context, fileID string) (*FileInfo, error) {
	f, err := c.getFile(ctx, fileID, fileFields+", permissions")
	if err != nil {
		return nil, err
	}
	return convertToFileInfo(f), nil
}

func (c *Client) getFile(ctx context.Context, fileID, fields string) (f *drive.File, err error) {
	if fileID == "" {
		return nil, fmt.Errorf("fileID is required")
	}

	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceDrive, instrumentation.OperationGet)
	defer func() { instrumentation.FinishSpan(span, err) }()

	f, err = c.service.Files.Get(fileID).Context(ctx).SupportsAllDrives(true).Fields(googleapi.Field(fields)).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get file %s: %w", fileID, err)
	}
	return f, nil
}

// Download fetches the content of a file. Google Workspace files cannot be
// downloaded directly and are exported in their default format instead.
// At most maxBytes are read; a non-positive value selects DefaultMaxDownloadBytes.
func (c *Client) Download(ctx context.Context, fileID string, maxBytes int64) (*FileContent, error) {
	info, err := c.GetFile(ctx, fileID)
	if err != nil {
		return nil, err
	}

	if info.IsFolder() {
		return nil, fmt.Errorf("%s is a folder and has no content", fileID)
	}
	if IsWorkspaceFile(info.MimeType) {
		return c.export(ctx, info, DefaultExportMimeType(info.MimeType), maxBytes)
	}

	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceDrive, instrumentation.OperationGet)
	resp, err := c.service.Files.Get(fileID).Context(ctx).SupportsAllDrives(true).Download()
	if err != nil {
		instrumentation.FinishSpan(span, err)
		return nil, fmt.Errorf("failed to download file %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	data, truncated, err := readLimited(resp.Body, maxBytes)
	instrumentation.FinishSpan(span, err)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", fileID, err)
	}

	return &FileContent{
		File:      info,
		MimeType:  info.MimeType,
		Data:      data,
		Truncated: truncated,
	}, nil
}

// Export converts a Google Workspace file to mimeType. An empty mimeType
// selects the default for the file's type.
func (c *Client) Export(ctx context.Context, fileID, mimeType string, maxBytes int64) (*FileContent, error) {
	info, err := c.GetFile(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if !IsWorkspaceFile(info.MimeType) {
		return nil, fmt.Errorf("file %s has type %s; only Google Workspace files can be exported", fileID, info.MimeType)
	}
	if mimeType == "" {
		mimeType = DefaultExportMimeType(info.MimeType)
	}
	return c.export(ctx, info, mimeType, maxBytes)
}

func (c *Client) export(ctx context.Context, info *FileInfo, mimeType string, maxBytes int64) (content *FileContent, err error) {
	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceDrive, instrumentation.OperationExport)
	defer func() { instrumentation.FinishSpan(span, err) }()

	resp, err := c.service.Files.Export(info.ID, mimeType).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("failed to export file %s as %s: %w", info.ID, mimeType, err)
	}
	defer resp.Body.Close()

	data, truncated, err := readLimited(resp.Body, maxBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to read export of %s: %w", info.ID, err)
	}

	return &FileContent{
		File:      info,
		MimeType:  mimeType,
		Data:      data,
		Exported:  true,
		Truncated: truncated,
	}, nil
}

func readLimited(r io.Reader, maxBytes int64) ([]byte, bool, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxDownloadBytes
	}
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, false, err
	}
	if int64(len(data)) > maxBytes {
		return data[:maxBytes], true, nil
	}
	return data, false, nil
}

// CreateFile creates a file with the given content. Content may be empty,
// which is how native Google Docs, Sheets and Slides are created.
func (c *Client) CreateFile(ctx context.Context, name string, content []byte, options *CreateOptions) (info *FileInfo, err error) {
	if name == "" {
		return nil, fmt.Errorf("file name is required")
	}

	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceDrive, instrumentation.OperationCreate)
	defer func() { instrumentation.FinishSpan(span, err) }()

	file := &drive.File{
		Name: name,
	}
	if options != nil {
		file.Parents = options.ParentFolders
		file.Description = options.Description
		file.MimeType = options.MimeType
	}

	call := c.service.Files.Create(file).
		Context(ctx).
		SupportsAllDrives(true).
		Fields(fileFields)
	if len(content) > 0 {
		call = call.Media(bytes.NewReader(content), googleapi.ContentType(uploadContentType(file.MimeType)))
	}

	driveFile, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	return convertToFileInfo(driveFile), nil
}

// uploadContentType picks the media type for uploaded bytes. Content sent
// for a Workspace type is plain text that Drive converts.
func uploadContentType(mimeType string) string {
	if mimeType == "" {
		return "application/octet-stream"
	}
	if IsWorkspaceFile(mimeType) {
		if mimeType == SpreadsheetMimeType {
			return "text/csv"
		}
		return "text/plain"
	}
	return mimeType
}

func (c *Client) CreateFolder(ctx context.Context, name string, parentFolders []string) (*FileInfo, error) {
	if name == "" {
		return nil, fmt.Errorf("folder name is required")
	}
	return c.CreateFile(ctx, name, nil, &CreateOptions{
		ParentFolders: parentFolders,
		MimeType:      FolderMimeType,
	})
}

// UpdateFile applies the non-nil fields of options and moves the file
// between parents. Description and Trashed are sent even when zero.
func (c *Client) UpdateFile(ctx context.Context, fileID string, options *UpdateOptions) (info *FileInfo, err error) {
	if fileID == "" {
		return nil, fmt.Errorf("fileID is required")
	}
	if options == nil || (options.Name == nil && options.Description == nil && options.Trashed == nil &&
		len(options.AddParents) == 0 && len(options.RemoveParents) == 0) {
		return nil, fmt.Errorf("at least one field to update is required")
	}

	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceDrive, instrumentation.OperationUpdate)
	defer func() { instrumentation.FinishSpan(span, err) }()

	update := &drive.File{}
	if options.Name != nil {
		if *options.Name == "" {
			return nil, fmt.Errorf("name cannot be empty")
		}
		update.Name = *options.Name
	}
	if options.Description != nil {
		update.Description = *options.Description
		update.ForceSendFields = append(update.ForceSendFields, "Description")
	}
	if options.Trashed != nil {
		update.Trashed = *options.Trashed
		update.ForceSendFields = append(update.ForceSendFields, "Trashed")
	}

	call := c.service.Files.Update(fileID, update).
		Context(ctx).
		SupportsAllDrives(true).
		Fields(fileFields)
	if len(options.AddParents) > 0 {
		call = call.AddParents(strings.Join(options.AddParents, ","))
	}
	if len(options.RemoveParents) > 0 {
		call = call.RemoveParents(strings.Join(options.RemoveParents, ","))
	}

	driveFile, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to update file %s: %w", fileID, err)
	}

	return convertToFileInfo(driveFile), nil
}

// MoveFile is UpdateFile restricted to parents and name.
func (c *Client) MoveFile(ctx context.Context, fileID string, options *MoveOptions) (*FileInfo, error) {
	if options == nil {
		return nil, fmt.Errorf("move options are required")
	}

	update := &UpdateOptions{
		AddParents:    options.AddParents,
		RemoveParents: options.RemoveParents,
	}
	if options.NewName != "" {
		update.Name = &options.NewName
	}
	return c.UpdateFile(ctx, fileID, update)
}

func (c *Client) CopyFile(ctx context.Context, fileID string, options *CopyOptions) (info *FileInfo, err error) {
	if fileID == "" {
		return nil, fmt.Errorf("fileID is required")
	}

	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceDrive, instrumentation.OperationCopy)
	defer func() { instrumentation.FinishSpan(span, err) }()

	file := &drive.File{}
	if options != nil {
		file.Name = options.Name
		file.Parents = options.ParentFolders
		file.Description = options.Description
	}

	driveFile, err := c.service.Files.Copy(fileID, file).
		Context(ctx).
		SupportsAllDrives(true).
		Fields(fileFields).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to copy file %s: %w", fileID, err)
	}

	return convertToFileInfo(driveFile), nil
}

// DeleteFile removes a file permanently, bypassing the trash.
func (c *Client) DeleteFile(ctx context.Context, fileID string) (err error) {
	if fileID == "" {
		return fmt.Errorf("fileID is required")
	}

	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceDrive, instrumentation.OperationDelete)
	defer func() { instrumentation.FinishSpan(span, err) }()

	err = c.service.Files.Delete(fileID).Context(ctx).SupportsAllDrives(true).Do()
	if err != nil {
		return fmt.Errorf("failed to delete file %s: %w", fileID, err)
	}

	return nil
}

// About returns the authenticated user and, when requested, the storage quota.
func (c *Client) About(ctx context.Context, includeQuota bool) (about *About, err error) {
	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceDrive, instrumentation.OperationGet)
	defer func() { instrumentation.FinishSpan(span, err) }()

	fields := "user"
	if includeQuota {
		fields = "user, storageQuota"
	}

	a, err := c.service.About.Get().Context(ctx).Fields(googleapi.Field(fields)).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get account info: %w", err)
	}

	return convertToAbout(a), nil
}

// TestFileAccess reports the caller's role on a file and its capabilities.
func (c *Client) TestFileAccess(ctx context.Context, fileID string) (*FileAccess, error) {
	f, err := c.getFile(ctx, fileID, "id, name, mimeType, ownedByMe, owners, capabilities")
	if err != nil {
		return nil, err
	}
	return convertToFileAccess(f), nil
}

// parseTime returns the zero time for empty or malformed RFC 3339 values.
func parseTime(v string) time.Time {
	t, _ := time.Parse(time.RFC3339, v)
	return t
}

func convertToFileInfo(f *drive.File) *FileInfo {
	info := &FileInfo{
		ID:             f.Id,
		Name:           f.Name,
		MimeType:       f.MimeType,
		Description:    f.Description,
		Size:           f.Size,
		CreatedTime:    parseTime(f.CreatedTime),
		ModifiedTime:   parseTime(f.ModifiedTime),
		Trashed:        f.Trashed,
		WebViewLink:    f.WebViewLink,
		WebContentLink: f.WebContentLink,
		Parents:        f.Parents,
		Shared:         f.Shared,
	}
	if t := parseTime(f.TrashedTime); !t.IsZero() {
		info.TrashedTime = &t
	}
	for _, o := range f.Owners {
		info.Owners = append(info.Owners, convertToUser(o))
	}
	for _, p := range f.Permissions {
		info.Permissions = append(info.Permissions, *convertToPermission(p))
	}
	return info
}

func convertToUser(u *drive.User) User {
	if u == nil {
		return User{}
	}
	return User{
		DisplayName:  u.DisplayName,
		EmailAddress: u.EmailAddress,
		PhotoLink:    u.PhotoLink,
	}
}

func convertToPermission(p *drive.Permission) *Permission {
	return &Permission{
		ID:           p.Id,
		Type:         p.Type,
		Role:         p.Role,
		EmailAddress: p.EmailAddress,
		Domain:       p.Domain,
		DisplayName:  p.DisplayName,
	}
}

func convertToAbout(a *drive.About) *About {
	about := &About{User: convertToUser(a.User)}
	if q := a.StorageQuota; q != nil {
		about.StorageQuota = &StorageQuota{
			Limit:        q.Limit,
			Usage:        q.Usage,
			UsageInDrive: q.UsageInDrive,
			UsageInTrash: q.UsageInDriveTrash,
		}
	}
	return about
}

func convertToFileAccess(f *drive.File) *FileAccess {
	access := &FileAccess{
		File:           convertToFileInfo(f),
		YourPermission: "reader",
		Capabilities:   map[string]bool{},
	}

	if caps := f.Capabilities; caps != nil {
		access.Capabilities = map[string]bool{
			"canEdit":     caps.CanEdit,
			"canComment":  caps.CanComment,
			"canShare":    caps.CanShare,
			"canCopy":     caps.CanCopy,
			"canDownload": caps.CanDownload,
			"canDelete":   caps.CanDelete,
			"canRename":   caps.CanRename,
			"canTrash":    caps.CanTrash,
		}
		switch {
		case caps.CanEdit:
			access.YourPermission = "writer"
		case caps.CanComment:
			access.YourPermission = "commenter"
		}
	}
	if f.OwnedByMe {
		access.YourPermission = "owner"
	}

	return access
}
