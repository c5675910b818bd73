package commands

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// HelpEntry describes one prefix command.
type HelpEntry struct {
	Description string `yaml:"description"`
	Usage       string `yaml:"usage"`
}

// Catalog maps a prefix command name to its help text.
type Catalog map[string]HelpEntry

// DefaultCatalog is used when no help file is configured or it is missing.
var DefaultCatalog = Catalog{
	"ano": {
		Description: "Anonymises a message, so it appears to come from the bot rather than you",
		Usage:       "{prefix}ano <your message here>",
	},
	"delete": {
		Description: "Delete a specified number of messages",
		Usage:       "{prefix}delete <number of messages>",
	},
	"rewrite": {
		Description: "Repost a member's message as the bot",
		Usage:       "{prefix}rewrite <member id> <message id>",
	},
	"toggletranslation": {
		Description: "Switch automatic translation on or off",
		Usage:       "{prefix}toggletranslation",
	},
	"reload": {
		Description: "Reload settings and re-sync commands",
		Usage:       "{prefix}reload",
	},
}

// LoadCatalog reads the YAML help file at path. Entries missing from the
// file fall back to DefaultCatalog.
func LoadCatalog(path string) (Catalog, error) {
	catalog := make(Catalog, len(DefaultCatalog))
	for name, entry := range DefaultCatalog {
		catalog[name] = entry
	}
	if path == "" {
		return catalog, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return catalog, nil
		}
		return nil, fmt.Errorf("failed to read command help file: %w", err)
	}

	var fromFile Catalog
	if err := yaml.Unmarshal(data, &fromFile); err != nil {
		return nil, fmt.Errorf("failed to parse command help file %s: %w", path, err)
	}
	for name, entry := range fromFile {
		catalog[strings.ToLower(name)] = entry
	}
	return catalog, nil
}

// Help renders the help text for name with the command prefix filled in.
func (c Catalog) Help(name, prefix string) (string, bool) {
	entry, ok := c[name]
	if !ok {
		return "", false
	}
	usage := strings.ReplaceAll(entry.Usage, "{prefix}", prefix)
	return fmt.Sprintf("Description: %s\nUsage: %s", entry.Description, usage), true
}
