package core

// Parser converts between a document's serialized content and its blocks.
// Blocks returned by Parse carry ids and orders 0..n-1. Implementations should
// give unchanged blocks the same id on every Parse.
type Parser interface {
	Parse(content string) ([]Block, error)
	Serialize(blocks []Block) (string, error)
}

// MetadataParser is implemented by parsers that carry document-level metadata
// (e.g. YAML frontmatter) alongside the blocks.
type MetadataParser interface {
	Parser
	ParseDocument(content string) (Metadata, []Block, error)
	SerializeDocument(meta Metadata, blocks []Block) (string, error)
}
