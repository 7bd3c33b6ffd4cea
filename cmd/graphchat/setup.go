package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"graphchat/internal/sample"
)

const envTemplate = `# graphchat configuration. Every value is optional.

# Graph backend: falkor (default) or neo4j
GRAPH_BACKEND=falkor
GRAPH_NAME=graphchat

# FalkorDB (Redis protocol)
FALKOR_HOST=localhost
FALKOR_PORT=6379
#FALKOR_USERNAME=
#FALKOR_PASSWORD=

# Neo4j (only read when GRAPH_BACKEND=neo4j)
#NEO4J_URI=bolt://localhost:7687
#NEO4J_USER=neo4j
#NEO4J_PASSWORD=password

# LLM provider. Without a key, chat answers use search summaries.
#OPENAI_API_KEY=sk-...
#OPENAI_MODEL=gpt-4o-mini
#OPENAI_BASE_URL=

# Retrieval and chat defaults
#DEFAULT_MAX_RESULTS=5
#CHAT_HISTORY_SIZE=10

# Web server
#WEB_HOST=0.0.0.0
#WEB_PORT=8000
#UPLOAD_DIR=
`

const sampleFilesDir = "./data"

func quickStartGuide() string {
	return `
Quick Start Guide
=================

1. Set up:
   graphchat setup --create-config
   graphchat init

2. Add documents:
   graphchat add-doc --file document.txt
   graphchat add-json --file data.json
   graphchat add ./docs

3. Search and chat:
   graphchat search "your question"
   graphchat chat

4. Web interface:
   graphchat serve
   then open http://localhost:8000

5. Check health:
   graphchat status

More help: graphchat --help
`
}

// writeEnvFile writes the starter .env, refusing to clobber an existing one.
func writeEnvFile(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	if err := os.WriteFile(path, []byte(envTemplate), 0o644); err != nil {
		return false, fmt.Errorf("writing %s: %w", path, err)
	}
	return true, nil
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup helpers",
	Long: `First-time setup helpers.

Examples:
  graphchat setup --create-config
  graphchat setup --create-sample-files
  graphchat setup --guide`,
	RunE: func(cmd *cobra.Command, args []string) error {
		createConfig, _ := cmd.Flags().GetBool("create-config")
		createSamples, _ := cmd.Flags().GetBool("create-sample-files")
		guide, _ := cmd.Flags().GetBool("guide")

		// Bare `setup` shows the guide.
		if !createConfig && !createSamples && !guide {
			guide = true
		}

		if createConfig {
			created, err := writeEnvFile(".env")
			if err != nil {
				return err
			}
			if created {
				printSuccess("Created .env")
				printStep("Edit .env with your settings before running init")
			} else {
				printWarning(".env already exists, leaving it unchanged")
			}
		}

		if createSamples {
			written, err := sample.WriteFiles(sampleFilesDir)
			if err != nil {
				return err
			}
			printSuccess("Created %d sample files in %s", len(written), sampleFilesDir)
			printStep("Ingest them with: graphchat add %s", sampleFilesDir)
		}

		if guide {
			fmt.Print(quickStartGuide())
		}
		return nil
	},
}

func init() {
	setupCmd.Flags().Bool("create-config", false, "write a starter .env file")
	setupCmd.Flags().Bool("create-sample-files", false, "write sample documents to "+sampleFilesDir)
	setupCmd.Flags().Bool("guide", false, "print the quick start guide")
}
