// Package docs provides access to the Google Docs API and the text model
// built on top of it.
//
// The extractor walks a document body and emits Segments: one per text run,
// each carrying the start and end offsets reported by the API. Offsets are
// never recomputed from text lengths, because documents contain structural
// elements (tables of contents, section breaks, inline objects) that occupy
// index space without producing runs. Content.Gaps reports those holes.
//
// Edit operations are expressed as batchUpdate requests built from those
// offsets:
//   - FindText and FindNth locate text inside segments
//   - UpdateTextStyleRequest, InsertTextRequest and DeleteContentRangeRequest build requests
//   - Client.FormatMatchingText combines both to style a located phrase
//
// Documents can also be rendered as Markdown, HTML or plain text.
//
// Example usage:
//
//	client, err := docs.NewClientForAccountWithProvider(ctx, "default", google.NewFileTokenProvider())
//	if err != nil {
//	    return err
//	}
//
//	content, err := client.GetContent(ctx, "1ABC123xyz", docs.ContentOptions{})
//	if err != nil {
//	    return err
//	}
//
//	for _, seg := range content.Segments {
//	    fmt.Printf("[%d,%d) %q\n", seg.StartIndex, seg.EndIndex, seg.Text)
//	}
package docs
