package output

type Options struct {
	PrintRequestHeader  bool
	PrintResponseHeader bool
	PrintText           bool

	EnableColor bool

	Download   bool
	OutputFile string
	Overwrite  bool

	// ProgressWidth is the terminal width used for download progress;
	// zero disables the progress line.
	ProgressWidth int
}
