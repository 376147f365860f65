package domain

// Chunk is one unit produced by the chunking pipeline. Before parent
// grouping only Text, HeaderPath, Level and ContextHeader are populated;
// grouping fills in ParentText, ParentID and LeafIndex.
type Chunk struct {
	// Text is the chunk content, including its heading line.
	Text string
	// HeaderPath lists ancestor heading titles, outermost first.
	HeaderPath []string
	// Level is the heading depth (1–3); 0 marks pre-heading content.
	Level int
	// ContextHeader is a human-readable provenance string, e.g.
	// "[Source: plan.md > Findings > Customer Segments]".
	ContextHeader string

	// ParentText is the full text of the parent section this leaf
	// belongs to. Parent groups partition the document.
	ParentText string
	// ParentID is the first 12 hex chars of the MD5 digest of ParentText.
	ParentID string
	// LeafIndex is this chunk's position within its parent group.
	LeafIndex int
}
