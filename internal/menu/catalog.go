package menu

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// ErrUnknownTopic is returned when a label is not one of the top-level options.
var ErrUnknownTopic = errors.New("unknown topic")

// Topic identifies one of the fixed top-level menu entries.
type Topic string

const (
	TopicSoccer Topic = "soccer"
	TopicCrypto Topic = "crypto"
	TopicMovies Topic = "movies"
)

var knownTopics = []Topic{TopicSoccer, TopicCrypto, TopicMovies}

type entryDoc struct {
	Topic   Topic    `yaml:"topic"`
	Label   string   `yaml:"label"`
	Options []string `yaml:"options"`
}

type catalogDoc struct {
	Topics []entryDoc `yaml:"topics"`
}

// Catalog is the immutable lookup of top-level options and their sub-options.
// It is safe for concurrent use.
type Catalog struct {
	labels  []string
	topics  map[string]Topic
	options map[string][]string
}

// Default returns the catalog embedded in the binary.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog from a YAML file. An empty path yields the embedded default.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read menu catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var doc catalogDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse menu catalog: %w", err)
	}

	c := &Catalog{
		topics:  make(map[string]Topic, len(doc.Topics)),
		options: make(map[string][]string, len(doc.Topics)),
	}
	seenTopics := make(map[Topic]bool, len(doc.Topics))

	for _, e := range doc.Topics {
		if !isKnownTopic(e.Topic) {
			return nil, fmt.Errorf("menu catalog: unsupported topic %q", e.Topic)
		}
		if seenTopics[e.Topic] {
			return nil, fmt.Errorf("menu catalog: duplicate topic %q", e.Topic)
		}
		if e.Label == "" {
			return nil, fmt.Errorf("menu catalog: topic %q has no label", e.Topic)
		}
		if _, dup := c.topics[e.Label]; dup {
			return nil, fmt.Errorf("menu catalog: duplicate label %q", e.Label)
		}
		if len(e.Options) == 0 {
			return nil, fmt.Errorf("menu catalog: topic %q has no options", e.Topic)
		}
		seen := make(map[string]bool, len(e.Options))
		for _, opt := range e.Options {
			if opt == "" || seen[opt] {
				return nil, fmt.Errorf("menu catalog: topic %q has an empty or duplicate option %q", e.Topic, opt)
			}
			seen[opt] = true
		}

		seenTopics[e.Topic] = true
		c.labels = append(c.labels, e.Label)
		c.topics[e.Label] = e.Topic
		c.options[e.Label] = append([]string(nil), e.Options...)
	}

	for _, t := range knownTopics {
		if !seenTopics[t] {
			return nil, fmt.Errorf("menu catalog: missing topic %q", t)
		}
	}

	return c, nil
}

func isKnownTopic(t Topic) bool {
	for _, k := range knownTopics {
		if k == t {
			return true
		}
	}
	return false
}

// TopOptions returns the top-level labels in display order.
func (c *Catalog) TopOptions() []string {
	return append([]string(nil), c.labels...)
}

// SubOptions returns the ordered sub-options of a top-level label.
func (c *Catalog) SubOptions(label string) ([]string, error) {
	opts, ok := c.options[label]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTopic, label)
	}
	return append([]string(nil), opts...), nil
}

// TopicFor maps a top-level label to its topic.
func (c *Catalog) TopicFor(label string) (Topic, bool) {
	t, ok := c.topics[label]
	return t, ok
}

// Label returns the top-level label configured for a topic.
func (c *Catalog) Label(t Topic) (string, bool) {
	for label, topic := range c.topics {
		if topic == t {
			return label, true
		}
	}
	return "", false
}

// HasSubOption reports whether option belongs to the sub-options of the topic.
func (c *Catalog) HasSubOption(t Topic, option string) bool {
	label, ok := c.Label(t)
	if !ok {
		return false
	}
	for _, o := range c.options[label] {
		if o == option {
			return true
		}
	}
	return false
}
