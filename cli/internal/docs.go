package cli

import (
	"embed"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

//go:embed docs/*.md
var docsFS embed.FS

func newDocsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "docs [topic]",
		Short: "Show usage documentation",
		Long:  `Show the bundled usage documentation. Without a topic, lists the available topics.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				topics, err := docTopics()
				if err != nil {
					return err
				}
				fmt.Println("Available topics:")
				for _, topic := range topics {
					fmt.Printf("  %s\n", topic)
				}
				fmt.Println("\nUse 'gimsctl docs TOPIC' to read one.")
				return nil
			}

			topic := args[0]
			content, err := docsFS.ReadFile("docs/" + topic + ".md")
			if err != nil {
				topics, listErr := docTopics()
				if listErr != nil {
					return fmt.Errorf("unknown topic %q", topic)
				}
				return fmt.Errorf("unknown topic %q (available: %s)", topic, strings.Join(topics, ", "))
			}

			return printMarkdown(string(content))
		},
	}
}

func docTopics() ([]string, error) {
	entries, err := docsFS.ReadDir("docs")
	if err != nil {
		return nil, err
	}
	topics := make([]string, 0, len(entries))
	for _, entry := range entries {
		topics = append(topics, strings.TrimSuffix(entry.Name(), ".md"))
	}
	sort.Strings(topics)
	return topics, nil
}
