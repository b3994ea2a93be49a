package repositories

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/bambuco/boa/internal/resource"
)

// Repository is a configured object bank ready for use.
type Repository struct {
	// Name labels the bank in the UI. When the config omits it, the name
	// is derived from the catalogue segment of the URI.
	Name string

	// URI is the bank's resources endpoint.
	URI string

	// Host is the bank's hostname, used for the proxy allow-list.
	Host string
}

// catalogueRe extracts the catalogue name from bank URIs shaped like
// https://host/c/<catalogue>/resources.json
var catalogueRe = regexp.MustCompile(`/c/([^/]+)`)

// Mapper converts the raw file config into repositories and share
// networks.
type Mapper struct{}

// NewMapper creates a new mapper instance
func NewMapper() *Mapper {
	return &Mapper{}
}

// MapRepositories validates and converts the configured banks. Entries
// without a usable URI are rejected rather than skipped: a misconfigured
// bank should fail loudly at startup.
func (m *Mapper) MapRepositories(config FileConfig) ([]Repository, error) {
	if len(config.Repositories) == 0 {
		return nil, fmt.Errorf("no repositories configured")
	}

	repos := make([]Repository, 0, len(config.Repositories))
	for i, props := range config.Repositories {
		parsed, err := url.Parse(props.URI)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return nil, fmt.Errorf("repository %d has invalid uri %q", i, props.URI)
		}

		name := props.Name
		if name == "" {
			name = catalogueName(props.URI, parsed.Hostname())
		}

		repos = append(repos, Repository{
			Name: name,
			URI:  props.URI,
			Host: parsed.Hostname(),
		})
	}

	return repos, nil
}

// MapNetworks parses the share-link lines. Malformed lines are dropped.
func (m *Mapper) MapNetworks(config FileConfig) []resource.Network {
	networks := make([]resource.Network, 0, len(config.Networks))
	for _, line := range config.Networks {
		parts := strings.SplitN(line, "|", 3)
		if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
			continue
		}
		n := resource.Network{Name: parts[0], URL: parts[1]}
		if len(parts) == 3 {
			n.Icon = parts[2]
		}
		networks = append(networks, n)
	}
	return networks
}

// Hosts returns the distinct hostnames of the given repositories.
func Hosts(repos []Repository) []string {
	seen := make(map[string]struct{}, len(repos))
	hosts := make([]string, 0, len(repos))
	for _, r := range repos {
		if _, ok := seen[r.Host]; ok {
			continue
		}
		seen[r.Host] = struct{}{}
		hosts = append(hosts, r.Host)
	}
	return hosts
}

func catalogueName(uri, fallback string) string {
	if match := catalogueRe.FindStringSubmatch(uri); match != nil {
		return match[1]
	}
	return fallback
}
