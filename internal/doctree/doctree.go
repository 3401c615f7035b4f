package doctree

// Document is the parsed form of one source file.
type Document struct {
	Source string // Full file contents
	Body   string // Expression text following the header
	Lines  int    // Number of lines in Source
}

// Parsed is what a successful parse yields: the free-text header plus the document.
type Parsed struct {
	Header string
	Doc    Document
}

// Entry is a source file that parsed successfully.
type Entry struct {
	Path   string // Absolute path inside the package root
	Header string // Raw header, comment syntax still present
	Doc    Document
}
