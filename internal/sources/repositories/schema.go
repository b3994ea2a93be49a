package repositories

// FileConfig represents the top-level structure of repositories.yaml.
type FileConfig struct {
	Repositories []RepositoryProps `yaml:"repositories"`

	// Networks are share-link templates, one per line, shaped as
	// "name|urltemplate" or "name|urltemplate|icon".
	Networks []string `yaml:"networks,omitempty"`
}

// RepositoryProps contains the raw properties of one object bank.
type RepositoryProps struct {
	Name string `yaml:"name,omitempty"`
	URI  string `yaml:"uri"`
}
