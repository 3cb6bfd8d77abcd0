package drive_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/gdrive-mcp/internal/drive"
	"github.com/teemow/gdrive-mcp/internal/instrumentation"
	"github.com/teemow/gdrive-mcp/internal/server"
	"github.com/teemow/gdrive-mcp/internal/tools/common"
)

type commentList struct {
	Comments      []*drive.Comment `json:"comments"`
	Count         int              `json:"count"`
	NextPageToken string           `json:"nextPageToken,omitempty"`
}

type replyList struct {
	Replies       []*drive.Reply `json:"replies"`
	Count         int            `json:"count"`
	NextPageToken string         `json:"nextPageToken,omitempty"`
}

func registerCommentReadTools(s *mcpserver.MCPServer, sc *server.ServerContext) {
	listCommentsTool := mcp.NewTool("drive_list_comments",
		mcp.WithDescription("List the comments on a Drive file, including their replies"),
		common.AccountOption(),
		fileIDOption("The ID of the file"),
		maxResultsOption(),
		pageTokenOption(),
		mcp.WithBoolean("includeDeleted",
			mcp.Description("Include deleted comments (default: false)"),
		),
		mcp.WithString("startModifiedTime",
			mcp.Description("Only return comments modified after this RFC 3339 timestamp"),
		),
	)
	s.AddTool(listCommentsTool, common.InstrumentedToolHandlerWithService("drive_list_comments",
		instrumentation.ServiceDrive, instrumentation.OperationList, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListComments(ctx, request, sc)
		}))

	getCommentTool := mcp.NewTool("drive_get_comment",
		mcp.WithDescription("Get a single comment on a Drive file"),
		common.AccountOption(),
		fileIDOption("The ID of the file"),
		commentIDOption(),
	)
	s.AddTool(getCommentTool, common.InstrumentedToolHandlerWithService("drive_get_comment",
		instrumentation.ServiceDrive, instrumentation.OperationGet, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetComment(ctx, request, sc)
		}))

	listRepliesTool := mcp.NewTool("drive_list_replies",
		mcp.WithDescription("List the replies to a comment on a Drive file"),
		common.AccountOption(),
		fileIDOption("The ID of the file"),
		commentIDOption(),
		maxResultsOption(),
		pageTokenOption(),
	)
	s.AddTool(listRepliesTool, common.InstrumentedToolHandlerWithService("drive_list_replies",
		instrumentation.ServiceDrive, instrumentation.OperationList, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListReplies(ctx, request, sc)
		}))

	getReplyTool := mcp.NewTool("drive_get_reply",
		mcp.WithDescription("Get a single reply to a comment on a Drive file"),
		common.AccountOption(),
		fileIDOption("The ID of the file"),
		commentIDOption(),
		replyIDOption(),
		mcp.WithBoolean("includeDeleted",
			mcp.Description("Return the reply even if it was deleted (default: false)"),
		),
	)
	s.AddTool(getReplyTool, common.InstrumentedToolHandlerWithService("drive_get_reply",
		instrumentation.ServiceDrive, instrumentation.OperationGet, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetReply(ctx, request, sc)
		}))
}

func registerCommentWriteTools(s *mcpserver.MCPServer, sc *server.ServerContext) {
	createCommentTool := mcp.NewTool("drive_create_comment",
		mcp.WithDescription("Add a comment to a Drive file"),
		common.AccountOption(),
		fileIDOption("The ID of the file"),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("The text of the comment"),
		),
		mcp.WithString("quotedText",
			mcp.Description("The document text the comment refers to"),
		),
		mcp.WithString("anchor",
			mcp.Description("JSON anchor describing the region the comment refers to"),
		),
	)
	s.AddTool(createCommentTool, common.InstrumentedToolHandlerWithService("drive_create_comment",
		instrumentation.ServiceDrive, instrumentation.OperationCreate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateComment(ctx, request, sc)
		}))

	updateCommentTool := mcp.NewTool("drive_update_comment",
		mcp.WithDescription("Change the text of a comment"),
		common.AccountOption(),
		fileIDOption("The ID of the file"),
		commentIDOption(),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("The new text of the comment"),
		),
	)
	s.AddTool(updateCommentTool, common.InstrumentedToolHandlerWithService("drive_update_comment",
		instrumentation.ServiceDrive, instrumentation.OperationUpdate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleUpdateComment(ctx, request, sc)
		}))

	deleteCommentTool := mcp.NewTool("drive_delete_comment",
		mcp.WithDescription("Delete a comment from a Drive file"),
		common.AccountOption(),
		fileIDOption("The ID of the file"),
		commentIDOption(),
	)
	s.AddTool(deleteCommentTool, common.InstrumentedToolHandlerWithService("drive_delete_comment",
		instrumentation.ServiceDrive, instrumentation.OperationDelete, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDeleteComment(ctx, request, sc)
		}))

	createReplyTool := mcp.NewTool("drive_create_reply",
		mcp.WithDescription("Reply to a comment. The reply can also resolve or reopen the comment."),
		common.AccountOption(),
		fileIDOption("The ID of the file"),
		commentIDOption(),
		mcp.WithString("content",
			mcp.Description("The text of the reply. Required unless action is set."),
		),
		mcp.WithString("action",
			mcp.Description("Optional action: 'resolve' or 'reopen'"),
			mcp.Enum("resolve", "reopen"),
		),
	)
	s.AddTool(createReplyTool, common.InstrumentedToolHandlerWithService("drive_create_reply",
		instrumentation.ServiceDrive, instrumentation.OperationCreate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateReply(ctx, request, sc)
		}))

	updateReplyTool := mcp.NewTool("drive_update_reply",
		mcp.WithDescription("Change the text of a reply. The update can also resolve or reopen the comment."),
		common.AccountOption(),
		fileIDOption("The ID of the file"),
		commentIDOption(),
		replyIDOption(),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("The new text of the reply"),
		),
		mcp.WithString("action",
			mcp.Description("Optional action: 'resolve' or 'reopen'"),
			mcp.Enum("resolve", "reopen"),
		),
	)
	s.AddTool(updateReplyTool, common.InstrumentedToolHandlerWithService("drive_update_reply",
		instrumentation.ServiceDrive, instrumentation.OperationUpdate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleUpdateReply(ctx, request, sc)
		}))

	deleteReplyTool := mcp.NewTool("drive_delete_reply",
		mcp.WithDescription("Delete a reply to a comment"),
		common.AccountOption(),
		fileIDOption("The ID of the file"),
		commentIDOption(),
		replyIDOption(),
	)
	s.AddTool(deleteReplyTool, common.InstrumentedToolHandlerWithService("drive_delete_reply",
		instrumentation.ServiceDrive, instrumentation.OperationDelete, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDeleteReply(ctx, request, sc)
		}))
}

// commentArgs returns the fileId and commentId arguments.
func commentArgs(request mcp.CallToolRequest) (string, string, error) {
	fileID, err := common.RequiredString(request, "fileId")
	if err != nil {
		return "", "", err
	}
	commentID, err := common.RequiredString(request, "commentId")
	if err != nil {
		return "", "", err
	}
	return fileID, commentID, nil
}

// replyArgs returns the fileId, commentId and replyId arguments.
func replyArgs(request mcp.CallToolRequest) (string, string, string, error) {
	fileID, commentID, err := commentArgs(request)
	if err != nil {
		return "", "", "", err
	}
	replyID, err := common.RequiredString(request, "replyId")
	if err != nil {
		return "", "", "", err
	}
	return fileID, commentID, replyID, nil
}

func handleListComments(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	fileID, err := common.RequiredString(request, "fileId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getDriveClient(ctx, request, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	comments, next, err := client.ListComments(ctx, fileID, &drive.CommentListOptions{
		PageSize:          maxResults(request),
		PageToken:         request.GetString("pageToken", ""),
		IncludeDeleted:    request.GetBool("includeDeleted", false),
		StartModifiedTime: request.GetString("startModifiedTime", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list comments: %v", err)), nil
	}
	if comments == nil {
		comments = []*drive.Comment{}
	}

	return common.JSONResult("", commentList{Comments: comments, Count: len(comments), NextPageToken: next})
}

func handleGetComment(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	fileID, commentID, err := commentArgs(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getDriveClient(ctx, request, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	comment, err := client.GetComment(ctx, fileID, commentID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get comment: %v", err)), nil
	}

	return common.JSONResult("", comment)
}

func handleListReplies(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	fileID, commentID, err := commentArgs(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getDriveClient(ctx, request, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	replies, next, err := client.ListReplies(ctx, fileID, commentID, maxResults(request), request.GetString("pageToken", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list replies: %v", err)), nil
	}
	if replies == nil {
		replies = []*drive.Reply{}
	}

	return common.JSONResult("", replyList{Replies: replies, Count: len(replies), NextPageToken: next})
}

func handleGetReply(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	fileID, commentID, replyID, err := replyArgs(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getDriveClient(ctx, request, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	reply, err := client.GetReply(ctx, fileID, commentID, replyID, request.GetBool("includeDeleted", false))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get reply: %v", err)), nil
	}

	return common.JSONResult("", reply)
}

func handleCreateComment(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	fileID, err := common.RequiredString(request, "fileId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := common.RequiredString(request, "content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getDriveClient(ctx, request, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	comment, err := client.CreateComment(ctx, fileID, content,
		request.GetString("anchor", ""), request.GetString("quotedText", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create comment: %v", err)), nil
	}

	return common.JSONResult("Comment created successfully:", comment)
}

func handleUpdateComment(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	fileID, commentID, err := commentArgs(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := common.RequiredString(request, "content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getDriveClient(ctx, request, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	comment, err := client.UpdateComment(ctx, fileID, commentID, content)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to update comment: %v", err)), nil
	}

	return common.JSONResult("Comment updated successfully:", comment)
}

func handleDeleteComment(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	fileID, commentID, err := commentArgs(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getDriveClient(ctx, request, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := client.DeleteComment(ctx, fileID, commentID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to delete comment: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Comment %s deleted", commentID)), nil
}

func handleCreateReply(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	fileID, commentID, err := commentArgs(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	content := request.GetString("content", "")
	action := request.GetString("action", "")
	switch action {
	case "", "resolve", "reopen":
	default:
		return mcp.NewToolResultError(fmt.Sprintf("invalid action %q: must be 'resolve' or 'reopen'", action)), nil
	}
	if content == "" && action == "" {
		return mcp.NewToolResultError("content is required unless action is set"), nil
	}

	client, err := getDriveClient(ctx, request, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	reply, err := client.CreateReply(ctx, fileID, commentID, content, action)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create reply: %v", err)), nil
	}

	return common.JSONResult("Reply created successfully:", reply)
}

func handleUpdateReply(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	fileID, commentID, replyID, err := replyArgs(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := common.RequiredString(request, "content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	action := request.GetString("action", "")
	switch action {
	case "", "resolve", "reopen":
	default:
		return mcp.NewToolResultError(fmt.Sprintf("invalid action %q: must be 'resolve' or 'reopen'", action)), nil
	}

	client, err := getDriveClient(ctx, request, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	reply, err := client.UpdateReply(ctx, fileID, commentID, replyID, content, action)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to update reply: %v", err)), nil
	}

	return common.JSONResult("Reply updated successfully:", reply)
}

func handleDeleteReply(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	fileID, commentID, replyID, err := replyArgs(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getDriveClient(ctx, request, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := client.DeleteReply(ctx, fileID, commentID, replyID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to delete reply: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Reply %s deleted", replyID)), nil
}
