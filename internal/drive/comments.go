package drive

import (
	"context"
	"fmt"

	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"

	"github.com/teemow/gdrive-mcp/internal/instrumentation"
)

const (
	replyFields   = "id, content, author(displayName, emailAddress, photoLink), createdTime, modifiedTime, action"
	commentFields = "id, content, author(displayName, emailAddress, photoLink), createdTime, modifiedTime, resolved, anchor, quotedFileContent, replies(" + replyFields + ")"

	// ReplyActionResolve marks a comment resolved.
	ReplyActionResolve = "resolve"
	// ReplyActionReopen reopens a resolved comment.
	ReplyActionReopen = "reopen"
)

// ListComments lists the comments on a file
func (c *Client) ListComments(ctx context.Context, fileID string, options *CommentListOptions) (comments []*Comment, nextPageToken string, err error) {
	if fileID == "" {
		return nil, "", fmt.Errorf("fileID is required")
	}
	if options == nil {
		options = &CommentListOptions{}
	}
	if options.PageSize < 0 || options.PageSize > 100 {
		return nil, "", fmt.Errorf("page size must be between 1 and 100, got %d", options.PageSize)
	}

	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceDrive, instrumentation.OperationList)
	defer func() { instrumentation.FinishSpan(span, err) }()

	call := c.service.Comments.List(fileID).
		Context(ctx).
		Fields(googleapi.Field("nextPageToken, comments(" + commentFields + ")"))
	if options.PageSize > 0 {
		call = call.PageSize(int64(options.PageSize))
	}
	if options.PageToken != "" {
		call = call.PageToken(options.PageToken)
	}
	if options.IncludeDeleted {
		call = call.IncludeDeleted(true)
	}
	if options.StartModifiedTime != "" {
		call = call.StartModifiedTime(options.StartModifiedTime)
	}

	list, err := call.Do()
	if err != nil {
		return nil, "", fmt.Errorf("failed to list comments on %s: %w", fileID, err)
	}

	comments = make([]*Comment, len(list.Comments))
	for i, cm := range list.Comments {
		comments[i] = convertToComment(cm)
	}
	return comments, list.NextPageToken, nil
}

// CreateComment adds a comment to a file. quotedText, when set, is the text
// the comment refers to.
func (c *Client) CreateComment(ctx context.Context, fileID, content, anchor, quotedText string) (comment *Comment, err error) {
	if fileID == "" {
		return nil, fmt.Errorf("fileID is required")
	}
	if content == "" {
		return nil, fmt.Errorf("comment content is required")
	}

	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceDrive, instrumentation.OperationCreate)
	defer func() { instrumentation.FinishSpan(span, err) }()

	req := &drive.Comment{
		Content: content,
		Anchor:  anchor,
	}
	if quotedText != "" {
		req.QuotedFileContent = &drive.CommentQuotedFileContent{
			MimeType: "text/plain",
			Value:    quotedText,
		}
	}

	created, err := c.service.Comments.Create(fileID, req).
		Context(ctx).
		Fields(commentFields).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create comment on %s: %w", fileID, err)
	}
	return convertToComment(created), nil
}

// CreateReply replies to a comment. action may be empty, ReplyActionResolve or ReplyActionReopen.
func (c *Client) CreateReply(ctx context.Context, fileID, commentID, content, action string) (reply *Reply, err error) {
	if fileID == "" || commentID == "" {
		return nil, fmt.Errorf("fileID and commentID are required")
	}
	if err := validateReplyAction(action); err != nil {
		return nil, err
	}
	if content == "" && action == "" {
		return nil, fmt.Errorf("reply content is required")
	}

	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceDrive, instrumentation.OperationCreate)
	defer func() { instrumentation.FinishSpan(span, err) }()

	created, err := c.service.Replies.Create(fileID, commentID, &drive.Reply{
		Content: content,
		Action:  action,
	}).
		Context(ctx).
		Fields(replyFields).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to reply to comment %s: %w", commentID, err)
	}
	return convertToReply(created), nil
}

// GetReply returns one reply. Deleted replies are only returned when
// includeDeleted is set; their content is empty.
func (c *Client) GetReply(ctx context.Context, fileID, commentID, replyID string, includeDeleted bool) (reply *Reply, err error) {
	if fileID == "" || commentID == "" || replyID == "" {
		return nil, fmt.Errorf("fileID, commentID and replyID are required")
	}

	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceDrive, instrumentation.OperationGet)
	defer func() { instrumentation.FinishSpan(span, err) }()

	r, err := c.service.Replies.Get(fileID, commentID, replyID).
		Context(ctx).
		IncludeDeleted(includeDeleted).
		Fields(replyFields).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get reply %s: %w", replyID, err)
	}
	return convertToReply(r), nil
}

// UpdateReply changes the text of a reply and, with a non-empty action,
// resolves or reopens the comment it belongs to.
func (c *Client) UpdateReply(ctx context.Context, fileID, commentID, replyID, content, action string) (reply *Reply, err error) {
	if fileID == "" || commentID == "" || replyID == "" {
		return nil, fmt.Errorf("fileID, commentID and replyID are required")
	}
	if content == "" {
		return nil, fmt.Errorf("reply content is required")
	}
	if err := validateReplyAction(action); err != nil {
		return nil, err
	}

	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceDrive, instrumentation.OperationUpdate)
	defer func() { instrumentation.FinishSpan(span, err) }()

	r, err := c.service.Replies.Update(fileID, commentID, replyID, &drive.Reply{
		Content: content,
		Action:  action,
	}).
		Context(ctx).
		Fields(replyFields).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to update reply %s: %w", replyID, err)
	}
	return convertToReply(r), nil
}

func validateReplyAction(action string) error {
	switch action {
	case "", ReplyActionResolve, ReplyActionReopen:
		return nil
	}
	return fmt.Errorf("invalid reply action %q: must be %q or %q", action, ReplyActionResolve, ReplyActionReopen)
}

// GetComment returns a single comment with its replies
func (c *Client) GetComment(ctx context.Context, fileID, commentID string) (comment *Comment, err error) {
	if fileID == "" || commentID == "" {
		return nil, fmt.Errorf("fileID and commentID are required")
	}

	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceDrive, instrumentation.OperationGet)
	defer func() { instrumentation.FinishSpan(span, err) }()

	cm, err := c.service.Comments.Get(fileID, commentID).Context(ctx).Fields(commentFields).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get comment %s: %w", commentID, err)
	}
	return convertToComment(cm), nil
}

// UpdateComment changes the content of a comment
func (c *Client) UpdateComment(ctx context.Context, fileID, commentID, content string) (comment *Comment, err error) {
	if fileID == "" || commentID == "" {
		return nil, fmt.Errorf("fileID and commentID are required")
	}
	if content == "" {
		return nil, fmt.Errorf("comment content is required")
	}

	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceDrive, instrumentation.OperationUpdate)
	defer func() { instrumentation.FinishSpan(span, err) }()

	cm, err := c.service.Comments.Update(fileID, commentID, &drive.Comment{Content: content}).
		Context(ctx).
		Fields(commentFields).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to update comment %s: %w", commentID, err)
	}
	return convertToComment(cm), nil
}

// ListReplies lists the replies to a comment
func (c *Client) ListReplies(ctx context.Context, fileID, commentID string, pageSize int, pageToken string) (replies []*Reply, nextPageToken string, err error) {
	if fileID == "" || commentID == "" {
		return nil, "", fmt.Errorf("fileID and commentID are required")
	}
	if pageSize < 0 || pageSize > 100 {
		return nil, "", fmt.Errorf("page size must be between 1 and 100, got %d", pageSize)
	}

	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceDrive, instrumentation.OperationList)
	defer func() { instrumentation.FinishSpan(span, err) }()

	call := c.service.Replies.List(fileID, commentID).
		Context(ctx).
		Fields(googleapi.Field("nextPageToken, replies(" + replyFields + ")"))
	if pageSize > 0 {
		call = call.PageSize(int64(pageSize))
	}
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	list, err := call.Do()
	if err != nil {
		return nil, "", fmt.Errorf("failed to list replies to %s: %w", commentID, err)
	}

	replies = make([]*Reply, len(list.Replies))
	for i, r := range list.Replies {
		replies[i] = convertToReply(r)
	}
	return replies, list.NextPageToken, nil
}

// DeleteReply deletes a reply
func (c *Client) DeleteReply(ctx context.Context, fileID, commentID, replyID string) (err error) {
	if fileID == "" || commentID == "" || replyID == "" {
		return fmt.Errorf("fileID, commentID and replyID are required")
	}

	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceDrive, instrumentation.OperationDelete)
	defer func() { instrumentation.FinishSpan(span, err) }()

	if err = c.service.Replies.Delete(fileID, commentID, replyID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to delete reply %s: %w", replyID, err)
	}
	return nil
}

// DeleteComment deletes a comment
func (c *Client) DeleteComment(ctx context.Context, fileID, commentID string) (err error) {
	if fileID == "" || commentID == "" {
		return fmt.Errorf("fileID and commentID are required")
	}

	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceDrive, instrumentation.OperationDelete)
	defer func() { instrumentation.FinishSpan(span, err) }()

	if err = c.service.Comments.Delete(fileID, commentID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to delete comment %s: %w", commentID, err)
	}
	return nil
}

func convertToComment(cm *drive.Comment) *Comment {
	comment := &Comment{
		ID:           cm.Id,
		Content:      cm.Content,
		Author:       convertToUser(cm.Author),
		CreatedTime:  cm.CreatedTime,
		ModifiedTime: cm.ModifiedTime,
		Resolved:     cm.Resolved,
		Anchor:       cm.Anchor,
	}
	if cm.QuotedFileContent != nil {
		comment.QuotedText = cm.QuotedFileContent.Value
	}
	for _, r := range cm.Replies {
		comment.Replies = append(comment.Replies, *convertToReply(r))
	}
	return comment
}

func convertToReply(r *drive.Reply) *Reply {
	return &Reply{
		ID:           r.Id,
		Content:      r.Content,
		Author:       convertToUser(r.Author),
		CreatedTime:  r.CreatedTime,
		ModifiedTime: r.ModifiedTime,
		Action:       r.Action,
	}
}
