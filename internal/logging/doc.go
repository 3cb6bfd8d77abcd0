// Package logging holds the slog conventions of gdrive-mcp: the process
// logger, shared attribute helpers and the Logger interface kept by the
// server context.
//
//	logger.Debug("formatted range",
//	    logging.DocumentID(id),
//	    logging.Range(1235, 1245))
//
// Email addresses are logged through UserHash, never verbatim. Tokens are
// never logged.
package logging
