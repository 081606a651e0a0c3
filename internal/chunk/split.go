package chunk

import "strings"

// splitRecursive implements the hierarchical recursive splitter: text
// is split on the strongest available separator, groups are greedily
// joined until the running length would exceed maxSize, and oversized
// groups recurse into the remaining separator list. Positions are
// absolute byte offsets into the original document, tracked via base.
func splitRecursive(text string, base int, seps []string, maxSize, minSize int) []Piece {
	if len(text) == 0 {
		return nil
	}
	if len(text) <= maxSize || len(seps) == 0 {
		return []Piece{{Content: text, StartPosition: base, EndPosition: base + len(text)}}
	}

	sep := seps[0]
	rest := seps[1:]

	var parts []string
	if sep == "" {
		// Last resort: arbitrary character cut at maxSize boundaries.
		parts = cutEvery(text, maxSize)
	} else {
		parts = splitKeepSeparator(text, sep)
	}

	var pieces []Piece
	var group strings.Builder
	groupStart := base
	offset := base

	flush := func(endAt int) {
		if group.Len() == 0 {
			return
		}
		content := group.String()
		if len(content) > maxSize {
			pieces = append(pieces, splitRecursive(content, groupStart, rest, maxSize, minSize)...)
		} else {
			pieces = append(pieces, Piece{Content: content, StartPosition: groupStart, EndPosition: endAt})
		}
		group.Reset()
	}

	for _, part := range parts {
		if group.Len() > 0 && group.Len()+len(part) > maxSize {
			flush(offset)
			groupStart = offset
		}
		if group.Len() == 0 {
			groupStart = offset
		}
		group.WriteString(part)
		offset += len(part)
	}
	flush(offset)

	return mergeTinyPieces(pieces, minSize)
}

// splitKeepSeparator splits text on sep, re-attaching sep to the front
// of every part after the first so no content is lost and offsets stay
// contiguous when the parts are concatenated back together.
func splitKeepSeparator(text, sep string) []string {
	raw := strings.Split(text, sep)
	if len(raw) == 1 {
		return raw
	}
	parts := make([]string, 0, len(raw))
	for i, r := range raw {
		if i == 0 {
			parts = append(parts, r)
			continue
		}
		parts = append(parts, sep+r)
	}
	return parts
}

// cutEvery splits text into fixed-size byte runs as an unconditional
// last resort when no separator applies.
func cutEvery(text string, size int) []string {
	if size <= 0 {
		return []string{text}
	}
	var out []string
	for len(text) > 0 {
		n := size
		if n > len(text) {
			n = len(text)
		}
		out = append(out, text[:n])
		text = text[n:]
	}
	return out
}

// mergeTinyPieces folds any piece shorter than minSize into its
// successor (or predecessor, if it is the last piece), avoiding a
// trail of fragment-sized chunks.
func mergeTinyPieces(pieces []Piece, minSize int) []Piece {
	if minSize <= 0 || len(pieces) < 2 {
		return pieces
	}
	out := make([]Piece, 0, len(pieces))
	for i := 0; i < len(pieces); i++ {
		p := pieces[i]
		if len(p.Content) < minSize && i+1 < len(pieces) {
			pieces[i+1] = Piece{
				Content:       p.Content + pieces[i+1].Content,
				StartPosition: p.StartPosition,
				EndPosition:   pieces[i+1].EndPosition,
			}
			continue
		}
		if len(p.Content) < minSize && len(out) > 0 {
			prev := out[len(out)-1]
			out[len(out)-1] = Piece{
				Content:       prev.Content + p.Content,
				StartPosition: prev.StartPosition,
				EndPosition:   p.EndPosition,
			}
			continue
		}
		out = append(out, p)
	}
	return out
}

// applyOverlap prepends the trailing overlap bytes of each chunk's
// predecessor to its content. The first chunk is left untouched.
func applyOverlap(pieces []Piece, overlap int) []Piece {
	if overlap <= 0 || len(pieces) < 2 {
		return pieces
	}
	out := make([]Piece, len(pieces))
	out[0] = pieces[0]
	for i := 1; i < len(pieces); i++ {
		prev := pieces[i-1].Content
		tail := prev
		if len(tail) > overlap {
			tail = tail[len(tail)-overlap:]
		}
		out[i] = pieces[i]
		out[i].Content = tail + pieces[i].Content
	}
	return out
}
