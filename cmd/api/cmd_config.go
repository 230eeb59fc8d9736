package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/01moynul/finmanager-golang/internal/models"
	"github.com/01moynul/finmanager-golang/internal/settings"
)

var (
	setProvider    string
	setGeminiKey   string
	setOllamaURL   string
	setOllamaModel string
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or change the stored AI provider configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the active AI configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, kv, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()

		ai := settings.NewAISettings(kv, settings.DefaultAIConfig(cfg.AI.GeminiAPIKey), logger).Load(cmd.Context())
		if ai.GeminiAPIKey != "" {
			ai.GeminiAPIKey = maskKey(ai.GeminiAPIKey)
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(ai)
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update fields of the AI configuration",
	Example: `  finmanager config set --provider ollama --ollama-model mistral
  finmanager config set --gemini-key AIza...`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var patch models.AIConfigPatch
		flags := cmd.Flags()
		if flags.Changed("provider") {
			p := models.AIProvider(setProvider)
			if p != models.ProviderGemini && p != models.ProviderOllama {
				return fmt.Errorf("unknown provider %q (want gemini or ollama)", setProvider)
			}
			patch.Provider = &p
		}
		if flags.Changed("gemini-key") {
			patch.GeminiAPIKey = &setGeminiKey
		}
		if flags.Changed("ollama-url") {
			patch.OllamaURL = &setOllamaURL
		}
		if flags.Changed("ollama-model") {
			patch.OllamaModel = &setOllamaModel
		}

		db, kv, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()

		updated, err := settings.NewAISettings(kv, settings.DefaultAIConfig(cfg.AI.GeminiAPIKey), logger).Update(cmd.Context(), patch)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "AI provider set to %s\n", updated.Provider)
		return nil
	},
}

var plansCmd = &cobra.Command{
	Use:   "plans",
	Short: "List the subscription plans",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tPRICE\tDAILY AI QUERIES")
		for _, p := range models.Plans() {
			limit := fmt.Sprint(p.DailyAIQueryLimit)
			if p.IsUnlimited() {
				limit = "unlimited"
			}
			fmt.Fprintf(w, "%s\t%s\t$%.2f/mo\t%s\n", p.ID, p.Name, p.Price, limit)
		}
		return w.Flush()
	},
}

func init() {
	configSetCmd.Flags().StringVar(&setProvider, "provider", "", "AI provider: gemini or ollama")
	configSetCmd.Flags().StringVar(&setGeminiKey, "gemini-key", "", "Gemini API key")
	configSetCmd.Flags().StringVar(&setOllamaURL, "ollama-url", "", "Ollama base URL")
	configSetCmd.Flags().StringVar(&setOllamaModel, "ollama-model", "", "Ollama model name")
}

// maskKey keeps the last four characters of a secret.
func maskKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}
