package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/talentscout/talentbot/internal/ai"
	"github.com/talentscout/talentbot/internal/ai/gemini"
	"github.com/talentscout/talentbot/internal/interview"
	"github.com/talentscout/talentbot/internal/logger"
	"github.com/talentscout/talentbot/internal/secrets"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptExport    = "Export anonymized profile"
	PromptStartOver = "Start a new interview"
	PromptQuit      = "Quit"

	// Shown on transport failures instead of internal error detail; the
	// interview stays resumable from the same turn.
	transportApology = "I apologize, I'm experiencing a brief technical issue. Could you please repeat your last message?"
)

var endPrompt = promptui.Select{
	Label: "Interview ended. What next?",
	Items: []string{PromptExport, PromptStartOver, PromptQuit},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a screening interview in the terminal",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

// run drives the whole interview loop: greet, then one candidate turn at a
// time until the session ends, then the post-interview menu.
func run(*cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting talentbot", zap.String("version", version))

	generator, err := newGenerator(ctx, config, logger)
	if err != nil {
		logger.Fatal("building the model client", zap.Error(err))
	}

	session := interview.New(generator, logger)

	if err := greet(ctx, session); err != nil {
		logger.Fatal("delivering the greeting", zap.Error(err))
	}

	for {
		input, err := readCandidate()
		if err != nil {
			logger.Info("exiting", zap.String("reason", "input closed"))
			return
		}

		if strings.TrimSpace(input) == "" {
			continue
		}

		reply, err := session.Submit(ctx, input)
		switch {
		case errors.Is(err, interview.ErrSessionEnded):
			// fallthrough to the end menu below
		case ai.IsTransport(err):
			logger.Warn("model call failed, turn can be retried", zap.Error(err))
			say(transportApology)
			continue
		case err != nil:
			logger.Fatal("processing the turn", zap.Error(err))
		default:
			say(reply)
		}

		if !session.Ended() {
			continue
		}

		done, err := endMenu(ctx, session, logger)
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
		if done {
			return
		}
	}
}

func greet(ctx context.Context, session *interview.Session) error {
	greeting, err := session.Greet(ctx)
	if err != nil {
		return err
	}
	say(greeting)
	return nil
}

// endMenu handles the post-interview actions. Returns true when the process
// should exit.
func endMenu(ctx context.Context, session *interview.Session, logger *zap.Logger) (bool, error) {
	for {
		_, action, err := endPrompt.Run()
		if err != nil {
			return true, err
		}

		switch action {
		case PromptExport:
			pretty, err := json.MarshalIndent(session.Export(), "", "  ")
			if err != nil {
				return true, fmt.Errorf("marshal export: %w", err)
			}
			fmt.Println(string(pretty))
		case PromptStartOver:
			session.Reset()
			logger.Info("session reset", zap.String("session_id", session.ID()))
			return false, greet(ctx, session)
		case PromptQuit:
			logger.Info("exiting", zap.String("reason", "got quit from prompt"))
			return true, nil
		default:
			return true, fmt.Errorf("invalid action: %s", action)
		}
	}
}

func readCandidate() (string, error) {
	input := promptui.Prompt{Label: "You"}
	return input.Run()
}

func say(text string) {
	fmt.Printf("\nTalentBot: %s\n\n", text)
}

func newGenerator(ctx context.Context, config *Config, logger *zap.Logger) (ai.Generator, error) {
	aiCfg := config.AI
	if aiCfg == nil {
		aiCfg = &AIConfig{}
	}

	provider := strings.TrimSpace(strings.ToLower(aiCfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", aiCfg.Provider)
	}

	geminiCfg := aiCfg.Gemini
	if geminiCfg == nil {
		geminiCfg = &GeminiConfig{}
	}

	keyFile := geminiCfg.APIKeyFile
	if strings.TrimSpace(keyFile) == "" {
		keyFile = viper.GetString("ai.gemini.api-key-file")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: geminiCfg.APIKey,
		Env:   "GEMINI_API_KEY",
		File:  keyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file, GEMINI_API_KEY_FILE or GEMINI_API_KEY)", err)
	}

	return gemini.NewGenerator(ctx, apiKey, geminiCfg.Model, geminiCfg.MaxRetries, logger)
}
