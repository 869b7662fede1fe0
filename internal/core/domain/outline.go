package domain

// Heading is one entry of a markdown document outline.
type Heading struct {
	// Level is the heading depth, 1 for H1.
	Level int

	// Text is the heading text without markers.
	Text string
}
