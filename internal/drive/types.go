package drive

import "time"

// FileInfo is the subset of Drive file metadata the tools report.
// Size is zero for folders and Google Workspace files.
type FileInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	MimeType    string `json:"mimeType"`
	Description string `json:"description,omitempty"`
	Size        int64  `json:"size,omitempty"`

	CreatedTime  time.Time  `json:"createdTime"`
	ModifiedTime time.Time  `json:"modifiedTime"`
	TrashedTime  *time.Time `json:"trashedTime,omitempty"`
	Trashed      bool       `json:"trashed"`

	WebViewLink    string `json:"webViewLink,omitempty"`
	WebContentLink string `json:"webContentLink,omitempty"`

	Parents     []string     `json:"parents,omitempty"`
	Owners      []User       `json:"owners,omitempty"`
	Shared      bool         `json:"shared"`
	Permissions []Permission `json:"permissions,omitempty"`
}

// IsFolder reports whether the file is a Drive folder.
func (f *FileInfo) IsFolder() bool {
	return f.MimeType == FolderMimeType
}

type User struct {
	DisplayName  string `json:"displayName"`
	EmailAddress string `json:"emailAddress"`
	PhotoLink    string `json:"photoLink,omitempty"`
}

// Permission is one grant on a file. Type is user, group, domain or anyone;
// EmailAddress and Domain are set depending on Type.
type Permission struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	Role         string `json:"role"`
	EmailAddress string `json:"emailAddress,omitempty"`
	Domain       string `json:"domain,omitempty"`
	DisplayName  string `json:"displayName,omitempty"`
}

// ListOptions filters a files.list call. Query uses the Drive search syntax,
// for example "name contains 'report' and mimeType = 'application/pdf'".
type ListOptions struct {
	Query          string
	OrderBy        string
	PageToken      string
	MaxResults     int // 1..1000, Drive picks the page size when zero
	IncludeTrashed bool

	Spaces    string
	Corpora   string
	AllDrives bool // include shared drive items
}

// CreateOptions places and types a new file. A Google Workspace MimeType
// creates an empty native file.
type CreateOptions struct {
	ParentFolders []string
	Description   string
	MimeType      string
}

// UpdateOptions changes file metadata; nil fields are left alone.
type UpdateOptions struct {
	Name          *string
	Description   *string
	Trashed       *bool
	AddParents    []string
	RemoveParents []string
}

// CopyOptions configures files.copy. Drive names the copy "Copy of <name>"
// when Name is empty.
type CopyOptions struct {
	Name          string
	Description   string
	ParentFolders []string
}

// MoveOptions moves and optionally renames a file.
type MoveOptions struct {
	NewName       string
	AddParents    []string
	RemoveParents []string
}

// FileContent holds downloaded or exported bytes.
type FileContent struct {
	File      *FileInfo `json:"file"`
	MimeType  string    `json:"mimeType"`
	Data      []byte    `json:"-"`
	Exported  bool      `json:"exported"`  // Workspace file converted to MimeType
	Truncated bool      `json:"truncated"` // stopped at the download limit
}

type Comment struct {
	ID           string  `json:"id"`
	Content      string  `json:"content"`
	Author       User    `json:"author"`
	CreatedTime  string  `json:"createdTime"`
	ModifiedTime string  `json:"modifiedTime,omitempty"`
	Resolved     bool    `json:"resolved"`
	QuotedText   string  `json:"quotedText,omitempty"`
	Anchor       string  `json:"anchor,omitempty"`
	Replies      []Reply `json:"replies,omitempty"`
}

// Reply.Action is "resolve" or "reopen" when the reply changed the
// comment's state.
type Reply struct {
	ID           string `json:"id"`
	Content      string `json:"content"`
	Author       User   `json:"author"`
	CreatedTime  string `json:"createdTime"`
	ModifiedTime string `json:"modifiedTime,omitempty"`
	Action       string `json:"action,omitempty"`
}

type CommentListOptions struct {
	PageSize          int
	PageToken         string
	IncludeDeleted    bool
	StartModifiedTime string
}

// About identifies the account behind a client.
type About struct {
	User         User          `json:"user"`
	StorageQuota *StorageQuota `json:"storageQuota,omitempty"`
}

// StorageQuota is in bytes; Limit is zero for unlimited accounts.
type StorageQuota struct {
	Limit        int64 `json:"limit,omitempty"`
	Usage        int64 `json:"usage"`
	UsageInDrive int64 `json:"usageInDrive"`
	UsageInTrash int64 `json:"usageInDriveTrash"`
}

// FileAccess is the caller's effective role on a file plus the boolean
// capabilities Drive reports for it.
type FileAccess struct {
	File           *FileInfo       `json:"file"`
	YourPermission string          `json:"yourPermission"`
	Capabilities   map[string]bool `json:"capabilities"`
}
