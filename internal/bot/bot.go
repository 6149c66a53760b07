// Package bot provides the Telegram bot initialization and handler registration.
package bot

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"daily-picks-bot/internal/config"
	"daily-picks-bot/internal/handler"
	"daily-picks-bot/internal/provider"
	"daily-picks-bot/internal/service"
)

// Bot wraps the telebot instance with application dependencies.
type Bot struct {
	bot *tele.Bot
	cfg *config.Config

	cardHandler    *handler.CardHandler
	profileHandler *handler.ProfileHandler
	sandboxHandler *handler.SandboxHandler
	statusHandler  *handler.StatusHandler
}

// Dependencies holds all the dependencies needed by the bot handlers.
type Dependencies struct {
	Config     *config.Config
	Cards      *service.CardService
	Scoreboard *provider.Scoreboard
	Poller     *service.Poller
	Clock      *service.Clock
}

// New creates a new Bot instance with the given dependencies.
func New(deps *Dependencies) (*Bot, error) {
	if deps.Config.Bot.Token == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	pref := tele.Settings{
		Token:  deps.Config.Bot.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c tele.Context) {
			log.Error().Err(err).Msg("Telegram handler error")
		},
	}

	teleBot, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b := &Bot{
		bot:            teleBot,
		cfg:            deps.Config,
		cardHandler:    handler.NewCardHandler(deps.Cards, deps.Clock),
		profileHandler: handler.NewProfileHandler(deps.Cards),
		sandboxHandler: handler.NewSandboxHandler(deps.Cards, deps.Clock),
		statusHandler:  handler.NewStatusHandler(deps.Scoreboard, deps.Poller, deps.Cards, deps.Clock),
	}

	b.registerMiddleware()
	b.registerHandlers()

	return b, nil
}

func (b *Bot) registerMiddleware() {
	b.bot.Use(RecoveryMiddleware())
	b.bot.Use(WhitelistMiddleware(b.cfg))
	b.bot.Use(LoggingMiddleware())
}

func (b *Bot) registerHandlers() {
	// Card
	b.bot.Handle("/start", b.cardHandler.HandleStart)
	b.bot.Handle("/card", b.cardHandler.HandleCard)
	b.bot.Handle("/slate", b.cardHandler.HandleCard)
	b.bot.Handle("/pick", b.cardHandler.HandlePick)
	b.bot.Handle("/lock", b.cardHandler.HandleLock)
	b.bot.Handle("/submit", b.cardHandler.HandleSubmit)
	b.bot.Handle("/check", b.cardHandler.HandleCheck)
	b.bot.Handle("/reset", b.cardHandler.HandleReset)
	b.bot.Handle("/mode", b.cardHandler.HandleMode)

	// Progression
	b.bot.Handle("/profile", b.profileHandler.HandleProfile)
	b.bot.Handle("/badges", b.profileHandler.HandleBadges)
	b.bot.Handle("/challenges", b.profileHandler.HandleChallenges)
	b.bot.Handle("/history", b.profileHandler.HandleHistory)

	// Sandbox
	b.bot.Handle("/sandbox", b.sandboxHandler.HandleSandbox)
	b.bot.Handle("/simulate", b.sandboxHandler.HandleSimulate)

	// Data
	b.bot.Handle("/status", b.statusHandler.HandleStatus)
	b.bot.Handle("/scores", b.statusHandler.HandleScores)

	adminGroup := b.bot.Group()
	adminGroup.Use(AdminMiddleware(b.cfg))
	adminGroup.Handle("/check_all", b.statusHandler.HandleCheckAll)

	b.bot.Handle(tele.OnCallback, b.handleCallback)
}

// handleCallback routes callbacks to appropriate handlers
func (b *Bot) handleCallback(c tele.Context) error {
	cb := c.Callback()
	if cb == nil {
		return nil
	}
	action, _ := handler.DecodeCallback(cb.Data)
	if action == "" {
		log.Debug().Str("data", cb.Data).Msg("Ignoring unknown callback")
		return c.Respond()
	}
	return b.cardHandler.HandleCallback(c)
}

// Start starts the bot polling. It blocks until Stop is called.
func (b *Bot) Start() {
	log.Info().Str("username", b.bot.Me.Username).Msg("Starting bot...")
	b.bot.Start()
}

// Stop stops the bot gracefully.
func (b *Bot) Stop() {
	log.Info().Msg("Stopping bot...")
	b.bot.Stop()
}
