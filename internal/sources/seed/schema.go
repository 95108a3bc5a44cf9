package seed

// File is the top-level structure of a sites seed file.
type File struct {
	Sites []Entry `yaml:"sites"`
}

// Entry describes one site to import.
type Entry struct {
	URL     string   `yaml:"url"`
	Title   string   `yaml:"title,omitempty"`
	Favicon string   `yaml:"favicon,omitempty"`
	Notes   string   `yaml:"notes,omitempty"`
	Tags    []string `yaml:"tags,omitempty"`
}
