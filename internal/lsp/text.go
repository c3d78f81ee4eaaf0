package lsp

// applyChanges applies incremental and full-text changes in order. Ranges
// are UTF-16 based and clamp to the document.
func applyChanges(text string, changes []textDocumentContentChangeEvent) string {
	for _, change := range changes {
		if change.Range == nil {
			text = change.Text
			continue
		}
		fs, id := documentFile("", text)
		file := fs.Get(id)
		start := int(file.OffsetForUTF16(fromPosition(change.Range.Start)))
		end := int(file.OffsetForUTF16(fromPosition(change.Range.End)))
		if end < start {
			end = start
		}
		text = text[:start] + change.Text + text[end:]
	}
	return text
}
