package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/keshon/sentinel/internal/collab"
	"github.com/keshon/sentinel/internal/collab/ai"
	"github.com/keshon/sentinel/internal/collab/market"
	"github.com/keshon/sentinel/internal/collab/stats"
	"github.com/keshon/sentinel/internal/command"
	"github.com/keshon/sentinel/internal/commands"
	"github.com/keshon/sentinel/internal/config"
	"github.com/keshon/sentinel/internal/cooldown"
	"github.com/keshon/sentinel/internal/discord"
	"github.com/keshon/sentinel/internal/dispatch"
	"github.com/keshon/sentinel/internal/history"
	"github.com/keshon/sentinel/internal/logging"
	"github.com/keshon/sentinel/internal/middleware"
	"github.com/keshon/sentinel/internal/permission"
	"github.com/keshon/sentinel/internal/status"
	"github.com/keshon/sentinel/pkg/jobmgr"
	"github.com/rs/zerolog"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const (
	historySize   = 20
	historyMaxAge = 7 * 24 * time.Hour
	slowCommand   = 3 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := zerolog.New(os.Stderr).With().Timestamp().Logger()
		boot.Fatal().Err(err).Msg("failed to load config")
	}
	log := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}
	log.Info().Str("version", version).Msg("starting sentinel")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctx = log.WithContext(ctx)

	started := time.Now()
	hist := history.New(historySize)
	reg := command.NewRegistry(
		middleware.WithLogging(),
		middleware.WithHistory(hist),
		middleware.WithTiming(slowCommand),
	)

	policy := permission.DefaultPolicy(cfg.LeadershipRoles)
	policy.Disable(cfg.DisabledCommands...)
	eval := permission.NewEvaluator(policy)

	cds := cooldown.New(
		cooldown.WithThreshold(cfg.CooldownSweepThreshold),
		cooldown.WithHorizon(cfg.CooldownHorizon),
	)

	hc := &http.Client{Timeout: 60 * time.Second}
	chat := ai.FromSpecs(cfg.AIProviders, log)

	var statsProvider collab.StatsProvider
	if cfg.WargamingAppID != "" {
		sc, err := stats.New(cfg.WargamingAppID, cfg.WargamingRealm, hc)
		if err != nil {
			log.Warn().Err(err).Msg("stats lookups disabled")
		} else {
			statsProvider = sc
		}
	}

	var marketClient *market.Client
	var marketProvider collab.MarketDataProvider
	if cfg.MarketAPIURL != "" {
		marketClient = market.New(cfg.MarketAPIURL, cfg.MarketAPIKey, cfg.MarketProbeTimeout, hc)
		marketProvider = marketClient
	}

	bot, err := discord.New(cfg.DiscordToken, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create bot")
	}

	jobs := jobmgr.NewManager(log)
	commands.RegisterAll(reg, &commands.Deps{
		Prefix:    cfg.Prefix,
		Version:   version,
		Started:   started,
		Evaluator: eval,
		Cooldowns: cds,
		History:   hist,
		Guild:     discord.NewGuild(bot.Session()),
		Chat:      chat,
		Stats:     statsProvider,
		Voice:     discord.NewVoice(bot.Session()),
		Market:    marketProvider,
		Jobs:      jobs,
		Latency:   bot.Latency,
	})
	log.Info().Int("commands", reg.Len()).Msg("commands registered")

	d := dispatch.New(dispatch.Options{
		Prefix:       cfg.Prefix,
		Registry:     reg,
		Evaluator:    eval,
		Cooldowns:    cds,
		Chat:         chat,
		ChatCooldown: cfg.ChatCooldown,
		IsOwner:      cfg.IsOwner,
		Logger:       log,
	})

	mustSchedule(log, jobs, "cooldown-sweep", "@every 1m", func(context.Context) error {
		if n := cds.Sweep(); n > 0 {
			log.Debug().Int("removed", n).Msg("cooldown entries swept")
		}
		return nil
	})
	mustSchedule(log, jobs, "history-trim", "@every 1h", func(context.Context) error {
		hist.Trim(historyMaxAge, time.Now())
		return nil
	})
	if marketClient != nil {
		mustSchedule(log, jobs, "market-probe", "@every 5m", func(ctx context.Context) error {
			return marketClient.Probe(ctx)
		})
	}
	jobs.Start(ctx)
	defer jobs.Stop()

	if cfg.StatusAddr != "" {
		h := status.Handler(status.Deps{
			Version:   version,
			Started:   started,
			Registry:  reg,
			Cooldowns: cds,
			History:   hist,
			Jobs:      jobs,
		}, log)
		go func() {
			if err := status.Serve(ctx, cfg.StatusAddr, h, log); err != nil {
				log.Error().Err(err).Msg("status server exited")
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- bot.Run(ctx, d)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		log.Info().Str("signal", s.String()).Msg("shutting down")
		cancel()
		<-errCh
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("discord bot error")
		}
		cancel()
	}

	log.Info().Msg("sentinel exited cleanly")
}

func mustSchedule(log zerolog.Logger, jobs *jobmgr.Manager, name, spec string, fn func(context.Context) error) {
	if err := jobs.Schedule(name, spec, fn); err != nil {
		log.Fatal().Err(err).Str("job", name).Msg("failed to schedule job")
	}
}
