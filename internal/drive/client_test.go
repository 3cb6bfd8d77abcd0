package drive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	drive "google.golang.org/api/drive/v3"
)

func TestConvertToFileInfo(t *testing.T) {
	t.Run("full file", func(t *testing.T) {
		info := convertToFileInfo(&drive.File{
			Id:           "doc1",
			Name:         "Quarterly report",
			MimeType:     DocumentMimeType,
			CreatedTime:  "2024-03-01T09:00:00Z",
			ModifiedTime: "2024-03-02T17:45:00Z",
			TrashedTime:  "2024-03-05T08:00:00Z",
			WebViewLink:  "https://docs.google.com/document/d/doc1/edit",
			Parents:      []string{"folderA"},
			Shared:       true,
			Trashed:      true,
			Description:  "Q1 numbers",
			Owners:       []*drive.User{{DisplayName: "Ana", EmailAddress: "ana@example.com"}},
			Permissions:  []*drive.Permission{{Id: "p1", Type: "user", Role: "commenter", EmailAddress: "bo@example.com"}},
		})

		assert.Equal(t, "doc1", info.ID)
		assert.Equal(t, "Quarterly report", info.Name)
		assert.Equal(t, DocumentMimeType, info.MimeType)
		assert.Equal(t, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), info.CreatedTime)
		assert.Equal(t, time.Date(2024, 3, 2, 17, 45, 0, 0, time.UTC), info.ModifiedTime)
		require.NotNil(t, info.TrashedTime)
		assert.Equal(t, time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC), *info.TrashedTime)
		assert.Equal(t, []string{"folderA"}, info.Parents)
		assert.True(t, info.Shared)
		assert.True(t, info.Trashed)
		assert.Equal(t, "Q1 numbers", info.Description)
		assert.Equal(t, []User{{DisplayName: "Ana", EmailAddress: "ana@example.com"}}, info.Owners)
		assert.Equal(t, []Permission{{ID: "p1", Type: "user", Role: "commenter", EmailAddress: "bo@example.com"}}, info.Permissions)
	})

	t.Run("minimal file", func(t *testing.T) {
		info := convertToFileInfo(&drive.File{Id: "f1", Name: "notes.txt"})

		assert.Equal(t, "f1", info.ID)
		assert.True(t, info.CreatedTime.IsZero())
		assert.True(t, info.ModifiedTime.IsZero())
		assert.Nil(t, info.TrashedTime)
		assert.Empty(t, info.Owners)
		assert.Empty(t, info.Permissions)
	})

	t.Run("unparseable timestamps are ignored", func(t *testing.T) {
		info := convertToFileInfo(&drive.File{Id: "f1", CreatedTime: "yesterday", TrashedTime: "soon"})

		assert.True(t, info.CreatedTime.IsZero())
		assert.Nil(t, info.TrashedTime)
	})
}

func TestConvertToPermission(t *testing.T) {
	tests := []struct {
		name     string
		input    *drive.Permission
		expected *Permission
	}{
		{
			name:     "user grant",
			input:    &drive.Permission{Id: "p1", Type: "user", Role: "writer", EmailAddress: "ana@example.com", DisplayName: "Ana"},
			expected: &Permission{ID: "p1", Type: "user", Role: "writer", EmailAddress: "ana@example.com", DisplayName: "Ana"},
		},
		{
			name:     "domain grant",
			input:    &drive.Permission{Id: "p2", Type: "domain", Role: "reader", Domain: "example.com"},
			expected: &Permission{ID: "p2", Type: "domain", Role: "reader", Domain: "example.com"},
		},
		{
			name:     "anyone with link",
			input:    &drive.Permission{Id: "anyoneWithLink", Type: "anyone", Role: "reader"},
			expected: &Permission{ID: "anyoneWithLink", Type: "anyone", Role: "reader"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, convertToPermission(tt.input))
		})
	}
}

func TestConvertToComment(t *testing.T) {
	comment := convertToComment(&drive.Comment{
		Id:                "c1",
		Content:           "Please cite a source",
		Author:            &drive.User{DisplayName: "Ana"},
		CreatedTime:       "2024-03-01T09:00:00Z",
		Resolved:          true,
		Anchor:            "kix.abc",
		QuotedFileContent: &drive.CommentQuotedFileContent{Value: "growth doubled"},
		Replies: []*drive.Reply{
			{Id: "r1", Content: "Added", Author: &drive.User{DisplayName: "Bo"}, Action: "resolve"},
		},
	})

	assert.Equal(t, "c1", comment.ID)
	assert.Equal(t, "Please cite a source", comment.Content)
	assert.Equal(t, "Ana", comment.Author.DisplayName)
	assert.True(t, comment.Resolved)
	assert.Equal(t, "kix.abc", comment.Anchor)
	assert.Equal(t, "growth doubled", comment.QuotedText)
	require.Len(t, comment.Replies, 1)
	assert.Equal(t, Reply{ID: "r1", Content: "Added", Author: User{DisplayName: "Bo"}, Action: "resolve"}, comment.Replies[0])
}

func TestConvertToComment_NoAuthorOrQuote(t *testing.T) {
	comment := convertToComment(&drive.Comment{Id: "c2", Content: "?"})

	assert.Equal(t, User{}, comment.Author)
	assert.Empty(t, comment.QuotedText)
	assert.Empty(t, comment.Replies)
}

func TestConvertToAbout(t *testing.T) {
	about := convertToAbout(&drive.About{
		User: &drive.User{DisplayName: "Ana", EmailAddress: "ana@example.com"},
		StorageQuota: &drive.AboutStorageQuota{
			Limit:             100,
			Usage:             40,
			UsageInDrive:      30,
			UsageInDriveTrash: 5,
		},
	})

	assert.Equal(t, "ana@example.com", about.User.EmailAddress)
	assert.Equal(t, &StorageQuota{Limit: 100, Usage: 40, UsageInDrive: 30, UsageInTrash: 5}, about.StorageQuota)

	assert.Nil(t, convertToAbout(&drive.About{}).StorageQuota)
}

func TestAccount(t *testing.T) {
	client := &Client{account: "work"}
	assert.Equal(t, "work", client.Account())
}

func TestBuildListFilesQuery(t *testing.T) {
	tests := []struct {
		name           string
		userQuery      string
		includeTrashed bool
		expected       string
	}{
		{
			name:     "no query excludes trashed",
			expected: "trashed=false",
		},
		{
			name:           "no query with trashed",
			includeTrashed: true,
			expected:       "",
		},
		{
			name:      "query is wrapped before the trashed filter",
			userQuery: "mimeType='application/vnd.google-apps.document' or name contains 'plan'",
			expected:  "(mimeType='application/vnd.google-apps.document' or name contains 'plan') and trashed=false",
		},
		{
			name:           "query with trashed is unchanged",
			userQuery:      "'folderA' in parents",
			includeTrashed: true,
			expected:       "'folderA' in parents",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, buildListFilesQuery(tt.userQuery, tt.includeTrashed))
		})
	}
}

func TestEscapeQueryValue(t *testing.T) {
	assert.Equal(t, `Ana\'s plan`, escapeQueryValue("Ana's plan"))
	assert.Equal(t, `C:\\docs`, escapeQueryValue(`C:\docs`))
}
