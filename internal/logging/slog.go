package logging

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log/slog"
)

// Attribute keys shared across packages.
const (
	KeyError      = "error"
	KeyUserHash   = "user_hash"
	KeyDocumentID = "document_id"
	KeyStartIndex = "start_index"
	KeyEndIndex   = "end_index"
)

// NewLogger returns a text logger writing to w. Stdio transport reserves
// stdout for the protocol, so callers pass os.Stderr there.
func NewLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func DocumentID(id string) slog.Attr {
	return slog.String(KeyDocumentID, id)
}

// Range groups the UTF-16 start and end offsets of a document range.
func Range(start, end int64) slog.Attr {
	return slog.Group("range",
		slog.Int64(KeyStartIndex, start),
		slog.Int64(KeyEndIndex, end),
	)
}

// Err is safe to call with a nil error; the empty group it returns is
// dropped by every slog handler.
//
//	logger.Warn("shutdown failed", logging.Err(err))
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Group("")
	}
	return slog.String(KeyError, err.Error())
}

// AnonymizeEmail hashes an email so log lines can be correlated without
// carrying the address.
func AnonymizeEmail(email string) string {
	if email == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(email))
	return "user:" + hex.EncodeToString(sum[:8])
}

// UserHash is AnonymizeEmail as an attribute.
func UserHash(email string) slog.Attr {
	return slog.String(KeyUserHash, AnonymizeEmail(email))
}
